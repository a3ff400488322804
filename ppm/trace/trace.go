package trace

import "sync"

// Recorder collects request records (goroutine-safe).
type Recorder struct {
	mu      sync.Mutex
	records []RequestRecord
}

// NewRecorder creates a Recorder ready for recording.
func NewRecorder() *Recorder {
	return &Recorder{records: make([]RequestRecord, 0)}
}

// Record appends a record, assigning its sequence number.
func (r *Recorder) Record(record RequestRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.Seq = len(r.records)
	r.records = append(r.records, record)
}

// Records returns a copy of everything recorded so far.
func (r *Recorder) Records() []RequestRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RequestRecord(nil), r.records...)
}

// Len returns the number of records.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
