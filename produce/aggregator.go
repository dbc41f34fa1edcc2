package produce

// buildResponse folds per-record outcomes into the response body. The offsets
// slice is positionally aligned with the submitted records: entry i reports
// record i, success or failure. Failed records carry the sentinel
// partition/offset -1 plus an error code and message; successes carry their
// broker placement and no error fields.
func buildResponse(outcomes []RecordOutcome, keyID, valueID *int) *ProduceResponse {
	offsets := make([]PartitionOffset, len(outcomes))
	for i, out := range outcomes {
		if out.Failed() {
			code := recordErrorCode(out.Err)
			msg := out.Err.Error()
			offsets[i] = PartitionOffset{
				Partition:    -1,
				Offset:       -1,
				ErrorCode:    &code,
				ErrorMessage: &msg,
			}
			continue
		}
		offsets[i] = PartitionOffset{
			Partition: out.Partition,
			Offset:    out.Offset,
		}
	}

	return &ProduceResponse{
		Offsets:       offsets,
		KeySchemaID:   keyID,
		ValueSchemaID: valueID,
	}
}
