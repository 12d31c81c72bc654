package attendance

import (
	"testing"
	"time"
)

type storeMock struct {
	records []Record
}

func (s *storeMock) LoadAll() ([]Record, error) {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *storeMock) ReplaceAll(records []Record) error {
	s.records = records
	return nil
}

func recordsFor(recs []Record, date string) map[string]Status {
	out := make(map[string]Status)
	for _, r := range recs {
		if r.Date == date {
			out[r.StudentID] = r.Status
		}
	}
	return out
}

func TestMarkReplacesByDate(t *testing.T) {
	store := &storeMock{}
	eng := NewEngine(store)

	// prior day stays untouched throughout
	if err := eng.Mark("2026-03-08", []Entry{
		{StudentID: "STU26-1101", Status: StatusAbsent},
	}, "head@uni.test"); err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}

	if err := eng.Mark("2026-03-09", []Entry{
		{StudentID: "STU26-1101", Status: StatusPresent},
		{StudentID: "STU26-1102", Status: StatusAbsent, Remark: "sick"},
	}, "head@uni.test"); err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}

	// full replace: second batch wins entirely for the date
	if err := eng.Mark("2026-03-09", []Entry{
		{StudentID: "STU26-1102", Status: StatusPresent},
		{StudentID: "STU26-1103", Status: StatusPresent},
	}, "head@uni.test"); err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}

	got := recordsFor(store.records, "2026-03-09")
	want := map[string]Status{"STU26-1102": StatusPresent, "STU26-1103": StatusPresent}
	if len(got) != len(want) {
		t.Fatalf("records for date = %v, want %v", got, want)
	}
	for id, st := range want {
		if got[id] != st {
			t.Errorf("record %s = %q, want %q", id, got[id], st)
		}
	}

	other := recordsFor(store.records, "2026-03-08")
	if len(other) != 1 || other["STU26-1101"] != StatusAbsent {
		t.Errorf("other date leaked: %v", other)
	}
}

func TestMarkCollapsesDuplicateRows(t *testing.T) {
	store := &storeMock{}
	eng := NewEngine(store)

	if err := eng.Mark("2026-03-09", []Entry{
		{StudentID: "STU26-1101", Status: StatusAbsent},
		{StudentID: "STU26-1101", Status: StatusPresent},
	}, "head@uni.test"); err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}
	got := recordsFor(store.records, "2026-03-09")
	if len(got) != 1 || got["STU26-1101"] != StatusPresent {
		t.Errorf("duplicate rows not collapsed to last: %v", got)
	}
}

func TestMarkValidation(t *testing.T) {
	eng := NewEngine(&storeMock{})

	if err := eng.Mark("09/03/2026", nil, "x"); err != ErrBadDate {
		t.Errorf("Mark() bad date error = %v, want ErrBadDate", err)
	}
	if err := eng.Mark("2026-03-09", []Entry{{StudentID: "s", Status: "late"}}, "x"); err != ErrBadStatus {
		t.Errorf("Mark() bad status error = %v, want ErrBadStatus", err)
	}
}

func TestForStudentNewestFirst(t *testing.T) {
	store := &storeMock{}
	eng := NewEngine(store)

	for _, date := range []string{"2026-03-08", "2026-03-10", "2026-03-09"} {
		if err := eng.Mark(date, []Entry{{StudentID: "STU26-1101", Status: StatusPresent}}, "x"); err != nil {
			t.Fatalf("Mark() failed: %v", err)
		}
	}

	recs, err := eng.ForStudent("STU26-1101")
	if err != nil {
		t.Fatalf("ForStudent() failed: %v", err)
	}
	want := []string{"2026-03-10", "2026-03-09", "2026-03-08"}
	if len(recs) != len(want) {
		t.Fatalf("got %d records, want %d", len(recs), len(want))
	}
	for i, date := range want {
		if recs[i].Date != date {
			t.Errorf("recs[%d].Date = %s, want %s", i, recs[i].Date, date)
		}
	}
}

func TestPercentage(t *testing.T) {
	nowFunc = func() time.Time { return time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC) }
	defer func() { nowFunc = time.Now }()

	store := &storeMock{}
	eng := NewEngine(store)

	// no records at all
	pct, err := eng.Percentage("STU26-1101")
	if err != nil || pct != 0 {
		t.Fatalf("Percentage() = %d, %v; want 0, nil", pct, err)
	}

	days := []struct {
		date   string
		status Status
	}{
		{"2026-03-02", StatusPresent},
		{"2026-03-03", StatusPresent},
		{"2026-03-04", StatusPresent},
		{"2026-03-05", StatusAbsent},
	}
	for _, d := range days {
		if err := eng.Mark(d.date, []Entry{{StudentID: "STU26-1101", Status: d.status}}, "x"); err != nil {
			t.Fatalf("Mark() failed: %v", err)
		}
	}

	pct, err = eng.Percentage("STU26-1101")
	if err != nil {
		t.Fatalf("Percentage() failed: %v", err)
	}
	if pct != 75 {
		t.Errorf("Percentage() = %d, want 75", pct)
	}
}

func TestCountPresentOn(t *testing.T) {
	store := &storeMock{}
	eng := NewEngine(store)

	if err := eng.Mark("2026-03-09", []Entry{
		{StudentID: "STU26-1101", Status: StatusPresent},
		{StudentID: "STU26-1102", Status: StatusAbsent},
		{StudentID: "STU26-1103", Status: StatusPresent},
	}, "x"); err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}

	n, err := eng.CountPresentOn("2026-03-09")
	if err != nil || n != 2 {
		t.Errorf("CountPresentOn() = %d, %v; want 2, nil", n, err)
	}
	n, err = eng.CountPresentOn("2026-03-10")
	if err != nil || n != 0 {
		t.Errorf("CountPresentOn() empty date = %d, %v; want 0, nil", n, err)
	}
}
