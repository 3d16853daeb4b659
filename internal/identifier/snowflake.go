// Package identifier generates the two identifier kinds used across the
// checkout core: 64-bit snowflake ids for aggregate rows and prefixed
// business numbers for orders and payments.
package identifier

import (
	"fmt"
	"sync"
	"time"
)

const (
	// snowflakeEpoch is 2025-01-01 00:00:00 UTC+8 in unix milliseconds.
	snowflakeEpoch = 1735660800000

	workerIDBits = 10
	sequenceBits = 12

	maxWorkerID = -1 ^ (-1 << workerIDBits) // 1023
	maxSequence = -1 ^ (-1 << sequenceBits) // 4095

	workerIDShift  = sequenceBits
	timestampShift = sequenceBits + workerIDBits
)

// Snowflake packs sign(1) + timestamp(41) + worker id(10) + sequence(12)
// into an int64. Ids from one instance are strictly increasing.
type Snowflake struct {
	mu            sync.Mutex
	workerID      int64
	sequence      int64
	lastTimestamp int64
	nowMillis     func() int64
}

func NewSnowflake(workerID int64) (*Snowflake, error) {
	if workerID < 0 || workerID > maxWorkerID {
		return nil, fmt.Errorf("worker id must be between 0 and %d, got %d", maxWorkerID, workerID)
	}
	return &Snowflake{
		workerID:      workerID,
		lastTimestamp: -1,
		nowMillis:     func() int64 { return time.Now().UnixMilli() },
	}, nil
}

// NextID returns the next id. A clock running backwards is fatal rather
// than retried, because waiting it out risks duplicate ids on restart.
func (s *Snowflake) NextID() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timestamp := s.nowMillis()
	if timestamp < s.lastTimestamp {
		return 0, fmt.Errorf("clock moved backwards, refusing to generate ids for %d ms", s.lastTimestamp-timestamp)
	}

	if timestamp == s.lastTimestamp {
		s.sequence = (s.sequence + 1) & maxSequence
		if s.sequence == 0 {
			// Sequence exhausted within this millisecond; spin to the next.
			for timestamp <= s.lastTimestamp {
				timestamp = s.nowMillis()
			}
		}
	} else {
		s.sequence = 0
	}

	s.lastTimestamp = timestamp

	return ((timestamp - snowflakeEpoch) << timestampShift) |
		(s.workerID << workerIDShift) |
		s.sequence, nil
}

// DecomposeID splits an id into its timestamp, worker id and sequence.
func DecomposeID(id int64) (timestamp int64, workerID int64, sequence int64) {
	return (id >> timestampShift) + snowflakeEpoch,
		(id >> workerIDShift) & maxWorkerID,
		id & maxSequence
}
