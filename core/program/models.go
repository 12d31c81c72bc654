package program

import "strings"

// Statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Course is one catalogue entry embedded in a Program.
type Course struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Credits *int   `json:"credits"` // nullable; nil counts as 0
}

// Program is an admin-owned study program with its ordered course catalogue.
// Students reference it by name match (loose linkage, not an enforced
// relational constraint).
type Program struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Code        string   `json:"code"`
	Level       string   `json:"level"`
	Department  string   `json:"department"`
	Duration    string   `json:"duration"`
	Fee         float64  `json:"fee"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status"`
	Courses     []Course `json:"courses"`
}

// Course looks a course up by id in the program's catalogue.
func (p *Program) Course(courseID string) (Course, bool) {
	for _, c := range p.Courses {
		if c.ID == courseID {
			return c, true
		}
	}
	return Course{}, false
}

// Matches reports whether the program is referenced by the given name.
func (p *Program) Matches(name string) bool {
	return strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(name))
}
