package program

import "testing"

type storeMock struct {
	programs []Program
}

func (s *storeMock) LoadAll() ([]Program, error) {
	out := make([]Program, len(s.programs))
	copy(out, s.programs)
	return out, nil
}

func (s *storeMock) ReplaceAll(programs []Program) error {
	s.programs = programs
	return nil
}

func intp(v int) *int { return &v }

func TestSaveAssignsIDs(t *testing.T) {
	svc := NewService(&storeMock{})

	prog, err := svc.Save(Program{
		Name:    "Diploma in IT",
		Courses: []Course{{Code: "IT101", Name: "Programming Fundamentals", Credits: intp(3)}},
	})
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if prog.ID == "" {
		t.Error("program id not assigned")
	}
	if prog.Courses[0].ID == "" {
		t.Error("course id not assigned")
	}
	if prog.Status != StatusActive {
		t.Errorf("Status = %q; want %q", prog.Status, StatusActive)
	}

	got, err := svc.Get(prog.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Name != "Diploma in IT" {
		t.Errorf("Name = %q", got.Name)
	}
}

func TestSaveReplacesExisting(t *testing.T) {
	svc := NewService(&storeMock{})

	prog, err := svc.Save(Program{Name: "Diploma in IT"})
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	prog.Name = "Diploma in IT & Networking"
	prog.Status = StatusInactive
	if _, err = svc.Save(prog); err != nil {
		t.Fatalf("Save() update failed: %v", err)
	}

	all, err := svc.All()
	if err != nil {
		t.Fatalf("All() failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("len(All()) = %d; want 1", len(all))
	}
	if all[0].Name != "Diploma in IT & Networking" || all[0].Status != StatusInactive {
		t.Errorf("unexpected program: %+v", all[0])
	}
}

func TestByNameMatchesLoosely(t *testing.T) {
	svc := NewService(&storeMock{})
	if _, err := svc.Save(Program{Name: "Diploma in IT"}); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	// linkage is by trimmed, case-insensitive name
	got, err := svc.ByName("  diploma in it ")
	if err != nil {
		t.Fatalf("ByName() failed: %v", err)
	}
	if got.Name != "Diploma in IT" {
		t.Errorf("Name = %q", got.Name)
	}

	if _, err = svc.ByName("BSc Computer Science"); err != ErrNotFound {
		t.Errorf("ByName() error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	svc := NewService(&storeMock{})
	prog, err := svc.Save(Program{Name: "Diploma in IT"})
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	if err = svc.Delete(prog.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err = svc.Get(prog.ID); err != ErrNotFound {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if err = svc.Delete(prog.ID); err != ErrNotFound {
		t.Errorf("Delete() again error = %v, want ErrNotFound", err)
	}
}
