package remote

import (
	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/kymoja/darasa/core/account"
	"github.com/kymoja/darasa/core/activity"
	"github.com/kymoja/darasa/core/attendance"
	"github.com/kymoja/darasa/core/enrolment"
	"github.com/kymoja/darasa/core/program"
)

// The domain stores speak to the same hosted document service as the profile
// documents: one document per collection, read and rewritten whole. A missing
// document reads as an empty collection.

func (b *Backend) idToken() (string, error) {
	tok, err := b.token()
	if err != nil || tok == nil {
		return "", err
	}
	return tok.IDToken, nil
}

func (b *Backend) loadDoc(path string, out interface{}) error {
	idToken, err := b.idToken()
	if err != nil {
		return err
	}
	err = b.call(rest.Get, path, nil, nil, out, idToken)
	if errors.Cause(err) == account.ErrNotFound {
		return nil
	}
	return err
}

func (b *Backend) putDoc(path string, doc interface{}) error {
	idToken, err := b.idToken()
	if err != nil {
		return err
	}
	return b.call(rest.Put, path, nil, doc, nil, idToken)
}

// AttendanceStore keeps the attendance collection in a single remote document.
type AttendanceStore struct {
	b *Backend
}

var _ attendance.Store = (*AttendanceStore)(nil)

func NewAttendanceStore(b *Backend) *AttendanceStore { return &AttendanceStore{b: b} }

type attendanceDoc struct {
	Records []attendance.Record `json:"records"`
}

func (s *AttendanceStore) LoadAll() ([]attendance.Record, error) {
	var doc attendanceDoc
	if err := s.b.loadDoc("/v1/documents/attendance", &doc); err != nil {
		return nil, err
	}
	return doc.Records, nil
}

func (s *AttendanceStore) ReplaceAll(records []attendance.Record) error {
	return s.b.putDoc("/v1/documents/attendance", attendanceDoc{Records: records})
}

// EnrolmentStore keeps one remote document per student.
type EnrolmentStore struct {
	b *Backend
}

var _ enrolment.Store = (*EnrolmentStore)(nil)

func NewEnrolmentStore(b *Backend) *EnrolmentStore { return &EnrolmentStore{b: b} }

type enrolmentDoc struct {
	Records []enrolment.Record `json:"records"`
}

func (s *EnrolmentStore) LoadAll(studentID string) ([]enrolment.Record, error) {
	var doc enrolmentDoc
	if err := s.b.loadDoc("/v1/documents/enrolments/"+studentID, &doc); err != nil {
		return nil, err
	}
	return doc.Records, nil
}

func (s *EnrolmentStore) ReplaceAll(studentID string, records []enrolment.Record) error {
	return s.b.putDoc("/v1/documents/enrolments/"+studentID, enrolmentDoc{Records: records})
}

// ProgramStore keeps the program catalogue in a single remote document.
type ProgramStore struct {
	b *Backend
}

var _ program.Store = (*ProgramStore)(nil)

func NewProgramStore(b *Backend) *ProgramStore { return &ProgramStore{b: b} }

type programDoc struct {
	Programs []program.Program `json:"programs"`
}

func (s *ProgramStore) LoadAll() ([]program.Program, error) {
	var doc programDoc
	if err := s.b.loadDoc("/v1/documents/programs", &doc); err != nil {
		return nil, err
	}
	return doc.Programs, nil
}

func (s *ProgramStore) ReplaceAll(programs []program.Program) error {
	return s.b.putDoc("/v1/documents/programs", programDoc{Programs: programs})
}

// ActivityStore keeps the activity log in a single remote document.
type ActivityStore struct {
	b *Backend
}

var _ activity.Store = (*ActivityStore)(nil)

func NewActivityStore(b *Backend) *ActivityStore { return &ActivityStore{b: b} }

type activityDoc struct {
	Entries []activity.Entry `json:"entries"`
}

func (s *ActivityStore) LoadAll() ([]activity.Entry, error) {
	var doc activityDoc
	if err := s.b.loadDoc("/v1/documents/activity", &doc); err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

func (s *ActivityStore) ReplaceAll(entries []activity.Entry) error {
	return s.b.putDoc("/v1/documents/activity", activityDoc{Entries: entries})
}
