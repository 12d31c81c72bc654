package program

import (
	"errors"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

var ErrNotFound = errors.New("program not found")

// Store holds the program collection, read and written whole.
type Store interface {
	LoadAll() ([]Program, error)
	ReplaceAll(programs []Program) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (svc *Service) All() ([]Program, error) {
	return svc.store.LoadAll()
}

func (svc *Service) Get(id string) (Program, error) {
	all, err := svc.store.LoadAll()
	if err != nil {
		return Program{}, pkgerrors.Wrap(err, "loading program collection")
	}
	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}
	return Program{}, ErrNotFound
}

// ByName resolves a student's program linkage by name match.
func (svc *Service) ByName(name string) (Program, error) {
	all, err := svc.store.LoadAll()
	if err != nil {
		return Program{}, pkgerrors.Wrap(err, "loading program collection")
	}
	for _, p := range all {
		if p.Matches(name) {
			return p, nil
		}
	}
	return Program{}, ErrNotFound
}

// Save inserts or replaces a program. Courses without ids get one assigned.
func (svc *Service) Save(p Program) (Program, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	for i := range p.Courses {
		if p.Courses[i].ID == "" {
			p.Courses[i].ID = uuid.New().String()
		}
	}

	all, err := svc.store.LoadAll()
	if err != nil {
		return Program{}, pkgerrors.Wrap(err, "loading program collection")
	}
	replaced := false
	for i := range all {
		if all[i].ID == p.ID {
			all[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, p)
	}
	return p, pkgerrors.Wrap(svc.store.ReplaceAll(all), "replacing program collection")
}

func (svc *Service) Delete(id string) error {
	all, err := svc.store.LoadAll()
	if err != nil {
		return pkgerrors.Wrap(err, "loading program collection")
	}
	next := all[:0]
	found := false
	for _, p := range all {
		if p.ID == id {
			found = true
			continue
		}
		next = append(next, p)
	}
	if !found {
		return ErrNotFound
	}
	return pkgerrors.Wrap(svc.store.ReplaceAll(next), "replacing program collection")
}
