package localstore

import (
	"github.com/kymoja/darasa/core/activity"
	"github.com/kymoja/darasa/core/attendance"
	"github.com/kymoja/darasa/core/enrolment"
	"github.com/kymoja/darasa/core/program"
)

// Whole-collection stores over the flat file. Each Load reads the entire
// collection and each Replace rewrites it; the engines own all filtering.

type attendanceStore struct{ db *DB }

var _ attendance.Store = (*attendanceStore)(nil)

func NewAttendanceStore(db *DB) attendance.Store { return &attendanceStore{db: db} }

func (s *attendanceStore) LoadAll() ([]attendance.Record, error) {
	var recs []attendance.Record
	if _, err := s.db.Get(keyAttendance, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *attendanceStore) ReplaceAll(recs []attendance.Record) error {
	return s.db.Put(keyAttendance, recs)
}

// enrolmentStore keeps one record slice per student, keyed by student ID.
type enrolmentStore struct{ db *DB }

var _ enrolment.Store = (*enrolmentStore)(nil)

func NewEnrolmentStore(db *DB) enrolment.Store { return &enrolmentStore{db: db} }

func (s *enrolmentStore) LoadAll(studentID string) ([]enrolment.Record, error) {
	byStudent := make(map[string][]enrolment.Record)
	if _, err := s.db.Get(keyEnrolments, &byStudent); err != nil {
		return nil, err
	}
	return byStudent[studentID], nil
}

func (s *enrolmentStore) ReplaceAll(studentID string, recs []enrolment.Record) error {
	byStudent := make(map[string][]enrolment.Record)
	if _, err := s.db.Get(keyEnrolments, &byStudent); err != nil {
		return err
	}
	byStudent[studentID] = recs
	return s.db.Put(keyEnrolments, byStudent)
}

type programStore struct{ db *DB }

var _ program.Store = (*programStore)(nil)

func NewProgramStore(db *DB) program.Store { return &programStore{db: db} }

func (s *programStore) LoadAll() ([]program.Program, error) {
	var progs []program.Program
	if _, err := s.db.Get(keyPrograms, &progs); err != nil {
		return nil, err
	}
	return progs, nil
}

func (s *programStore) ReplaceAll(progs []program.Program) error {
	return s.db.Put(keyPrograms, progs)
}

type activityStore struct{ db *DB }

var _ activity.Store = (*activityStore)(nil)

func NewActivityStore(db *DB) activity.Store { return &activityStore{db: db} }

func (s *activityStore) LoadAll() ([]activity.Entry, error) {
	var entries []activity.Entry
	if _, err := s.db.Get(keyActivity, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *activityStore) ReplaceAll(entries []activity.Entry) error {
	return s.db.Put(keyActivity, entries)
}
