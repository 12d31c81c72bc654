package attendance

import "time"

// DateLayout is the calendar-day key format used across both backends.
const DateLayout = "2006-01-02"

// Status of a day's attendance record.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// Valid returns true when the status is a supported value.
func (s Status) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// Record is one student's attendance for one date. (StudentID, Date) is the
// composite identity; at most one record may exist per pair.
type Record struct {
	StudentID string    `json:"student_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Status    Status    `json:"status"`
	Remark    string    `json:"remark,omitempty"`
	MarkedAt  time.Time `json:"marked_at"` // UTC
	MarkedBy  string    `json:"marked_by"`
}

// Entry is one row of a marking batch.
type Entry struct {
	StudentID string `json:"student_id"`
	Status    Status `json:"status"`
	Remark    string `json:"remark,omitempty"`
}
