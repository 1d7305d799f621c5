// Package message provides shared data structures for stream records and batches.
package message

// Record is a strongly typed representation of one camera event stream entry.
// Fields carries the producer's raw field map exactly as delivered by the
// broker; values are strings on the wire but may be pre-decoded structures
// when records are built in-process.
type Record struct {
	ID     string
	Stream string
	Fields map[string]interface{}
}

// Batch is an envelope returned by stream readers
type Batch struct {
	Records []Record
}

// Empty reports whether the batch carries no records
func (b Batch) Empty() bool {
	return len(b.Records) == 0
}

// IDs returns the record IDs in read order
func (b Batch) IDs() []string {
	ids := make([]string, len(b.Records))
	for i := range b.Records {
		ids[i] = b.Records[i].ID
	}
	return ids
}

// PendingInfo reports un-acknowledged records from both the broker's view of
// this consumer and the locally tracked pending set.
type PendingInfo struct {
	BrokerCount int
	LocalCount  int
}
