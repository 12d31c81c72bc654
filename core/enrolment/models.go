package enrolment

// Status of an enrolment record.
type Status string

const (
	StatusEnrolled  Status = "enrolled"
	StatusCompleted Status = "completed"
	StatusDropped   Status = "dropped"
)

// Valid returns true when the status is a supported value.
func (s Status) Valid() bool {
	switch s {
	case StatusEnrolled, StatusCompleted, StatusDropped:
		return true
	default:
		return false
	}
}

// Record captures one student's registration to one course within one
// semester. (StudentID, CourseID, Semester) is the composite identity; within
// a semester a course appears at most once per student.
type Record struct {
	StudentID   string `json:"student_id"`
	CourseID    string `json:"course_id"`
	Semester    string `json:"semester"`
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
	Credits     *int   `json:"credits"` // nullable; nil counts as 0
	ProgramID   string `json:"program_id,omitempty"`
	Status      Status `json:"status"`
}
