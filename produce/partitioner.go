package produce

import (
	"github.com/IBM/sarama"
)

// newPinningPartitioner builds the pool's partitioner. Records tagged with an
// explicit partition (record-level partition or request-level override) are
// routed there; everything else falls back to key-hash partitioning, or
// round-robin for records without a key. The pinned partition travels on the
// message metadata because sarama overwrites Message.Partition with the
// partitioner's choice.
func newPinningPartitioner(topic string) sarama.Partitioner {
	return &pinningPartitioner{
		hash:       sarama.NewHashPartitioner(topic),
		roundRobin: sarama.NewRoundRobinPartitioner(topic),
	}
}

type pinningPartitioner struct {
	hash       sarama.Partitioner
	roundRobin sarama.Partitioner
}

func (p *pinningPartitioner) Partition(msg *sarama.ProducerMessage, numPartitions int32) (int32, error) {
	if tag, ok := msg.Metadata.(*recordTag); ok && tag.partition >= 0 {
		// Out-of-range pins are rejected by the producer and surface as a
		// per-record failure instead of the pool guessing a partition.
		return tag.partition, nil
	}
	if msg.Key == nil {
		return p.roundRobin.Partition(msg, numPartitions)
	}
	return p.hash.Partition(msg, numPartitions)
}

// RequiresConsistency guarantees key-to-partition stability for keyed records.
func (p *pinningPartitioner) RequiresConsistency() bool {
	return true
}
