package enrolment

import (
	"errors"

	pkgerrors "github.com/pkg/errors"

	"github.com/kymoja/darasa/core/program"
)

var (
	ErrUnknownCourse = errors.New("course not in the program catalogue")
	ErrBadStatus     = errors.New("invalid enrolment status")
	ErrBadSemester   = errors.New("semester is required")
)

// Store holds one student's enrolment collection, read and written whole.
type Store interface {
	LoadAll(studentID string) ([]Record, error)
	ReplaceAll(studentID string, records []Record) error
}

// Engine maintains the at-most-one-course-per-semester invariant with
// replace-by-semester write semantics: saving a semester replaces that
// semester's slice and leaves every other semester untouched.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Save resolves courseIDs against the student's program catalogue, builds
// records with status enrolled and replaces the semester's slice. Duplicate
// ids within the selection collapse to one record.
func (e *Engine) Save(studentID, semester string, courseIDs []string, prog program.Program) error {
	if semester == "" {
		return ErrBadSemester
	}

	seen := make(map[string]bool, len(courseIDs))
	recs := make([]Record, 0, len(courseIDs))
	for _, id := range courseIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		crs, ok := prog.Course(id)
		if !ok {
			return pkgerrors.Wrapf(ErrUnknownCourse, "course %s", id)
		}
		recs = append(recs, Record{
			StudentID:   studentID,
			CourseID:    crs.ID,
			Semester:    semester,
			SubjectCode: crs.Code,
			SubjectName: crs.Name,
			Credits:     crs.Credits,
			ProgramID:   prog.ID,
			Status:      StatusEnrolled,
		})
	}

	return e.replaceSemester(studentID, semester, recs)
}

// AdminSave replaces the semester's slice with ad hoc rows that need not come
// from the program catalogue; each row carries an explicit status. Within the
// semester a course still appears at most once.
func (e *Engine) AdminSave(studentID, semester string, rows []Record) error {
	if semester == "" {
		return ErrBadSemester
	}

	seen := make(map[string]int, len(rows)) // courseID -> index
	recs := make([]Record, 0, len(rows))
	for _, r := range rows {
		if !r.Status.Valid() {
			return ErrBadStatus
		}
		r.StudentID = studentID
		r.Semester = semester
		if i, ok := seen[r.CourseID]; ok {
			recs[i] = r
			continue
		}
		seen[r.CourseID] = len(recs)
		recs = append(recs, r)
	}

	return e.replaceSemester(studentID, semester, recs)
}

func (e *Engine) replaceSemester(studentID, semester string, recs []Record) error {
	all, err := e.store.LoadAll(studentID)
	if err != nil {
		return pkgerrors.Wrap(err, "loading enrolment collection")
	}

	next := make([]Record, 0, len(all)+len(recs))
	for _, r := range all {
		if r.Semester != semester {
			next = append(next, r)
		}
	}
	next = append(next, recs...)

	return pkgerrors.Wrap(e.store.ReplaceAll(studentID, next), "replacing enrolment collection")
}

// ForSemester returns the student's records for one semester.
func (e *Engine) ForSemester(studentID, semester string) ([]Record, error) {
	all, err := e.store.LoadAll(studentID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "loading enrolment collection")
	}
	var out []Record
	for _, r := range all {
		if r.Semester == semester {
			out = append(out, r)
		}
	}
	return out, nil
}

// CreditTotal sums the semester's credit values, skipping dropped records and
// treating missing credit values as 0.
func (e *Engine) CreditTotal(studentID, semester string) (int, error) {
	recs, err := e.ForSemester(studentID, semester)
	if err != nil {
		return 0, err
	}
	var total int
	for _, r := range recs {
		if r.Status == StatusDropped || r.Credits == nil {
			continue
		}
		total += *r.Credits
	}
	return total, nil
}
