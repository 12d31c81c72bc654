package attendance

import (
	"errors"
	"math"
	"sort"
	"time"

	pkgerrors "github.com/pkg/errors"
)

var (
	ErrBadDate   = errors.New("invalid attendance date")
	ErrBadStatus = errors.New("invalid attendance status")

	nowFunc = time.Now // mockable
)

// Store holds the attendance collection. Both backends read and write the
// collection whole; there is no partial-key access.
type Store interface {
	LoadAll() ([]Record, error)
	ReplaceAll(records []Record) error
}

// Engine maintains the one-record-per-(student, date) invariant with
// full-replace-by-date write semantics.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Mark replaces all records for date with the given batch: records of every
// other date carry over untouched, prior records for date are dropped, and
// the batch is written in as the date's complete new set. Duplicate student
// rows within one batch collapse to the last row. There are no partial-date
// writes; re-running the same call is idempotent.
func (e *Engine) Mark(date string, entries []Entry, markedBy string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return ErrBadDate
	}
	for _, en := range entries {
		if !en.Status.Valid() {
			return ErrBadStatus
		}
	}

	all, err := e.store.LoadAll()
	if err != nil {
		return pkgerrors.Wrap(err, "loading attendance collection")
	}

	next := make([]Record, 0, len(all)+len(entries))
	for _, r := range all {
		if r.Date != date {
			next = append(next, r)
		}
	}

	now := nowFunc().UTC()
	byStudent := make(map[string]int, len(entries)) // studentID -> index in next
	for _, en := range entries {
		rec := Record{
			StudentID: en.StudentID,
			Date:      date,
			Status:    en.Status,
			Remark:    en.Remark,
			MarkedAt:  now,
			MarkedBy:  markedBy,
		}
		if i, ok := byStudent[en.StudentID]; ok {
			next[i] = rec
			continue
		}
		byStudent[en.StudentID] = len(next)
		next = append(next, rec)
	}

	return pkgerrors.Wrap(e.store.ReplaceAll(next), "replacing attendance collection")
}

// ForStudent returns the student's records, newest date first.
func (e *Engine) ForStudent(studentID string) ([]Record, error) {
	all, err := e.store.LoadAll()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "loading attendance collection")
	}
	var out []Record
	for _, r := range all {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// Percentage returns the student's rounded present percentage; 0 with no
// records.
func (e *Engine) Percentage(studentID string) (int, error) {
	recs, err := e.ForStudent(studentID)
	if err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		return 0, nil
	}
	var present int
	for _, r := range recs {
		if r.Status == StatusPresent {
			present++
		}
	}
	return int(math.Round(100 * float64(present) / float64(len(recs)))), nil
}

// CountPresentOn counts students marked present on date.
func (e *Engine) CountPresentOn(date string) (int, error) {
	all, err := e.store.LoadAll()
	if err != nil {
		return 0, pkgerrors.Wrap(err, "loading attendance collection")
	}
	var n int
	for _, r := range all {
		if r.Date == date && r.Status == StatusPresent {
			n++
		}
	}
	return n, nil
}
