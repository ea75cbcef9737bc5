package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/acclaimhq/acclaim/internal/domain/model"
)

// awardKey identifies the unique (employee, badge) pair.
type awardKey struct {
	employeeID string
	badgeID    string
}

// digestKey identifies the unique (employee, week start) pair.
type digestKey struct {
	employeeID string
	weekStart  time.Time
}

// MemStore is a mutex-guarded in-memory Store. One lock covers every
// mutation, which makes the check-and-insert primitives and their counter
// bumps trivially atomic.
type MemStore struct {
	mu           sync.RWMutex
	employees    map[string]model.Employee
	emails       map[string]string // email -> employee id
	efforts      map[string]model.Effort
	byEmployee   map[string][]string // employee id -> effort ids, insertion order
	recognitions map[string]model.Recognition
	byEffort     map[string]string // effort id -> recognition id (1:1 invariant)
	awards       map[awardKey]model.BadgeAward
	digests      map[digestKey]model.WeeklyDigest
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		employees:    make(map[string]model.Employee),
		emails:       make(map[string]string),
		efforts:      make(map[string]model.Effort),
		byEmployee:   make(map[string][]string),
		recognitions: make(map[string]model.Recognition),
		byEffort:     make(map[string]string),
		awards:       make(map[awardKey]model.BadgeAward),
		digests:      make(map[digestKey]model.WeeklyDigest),
	}
}

func (s *MemStore) InsertEmployee(_ context.Context, e model.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[e.ID]; ok {
		return fmt.Errorf("employee %s: %w", e.ID, ErrConflict)
	}
	if _, ok := s.emails[e.Email]; ok {
		return fmt.Errorf("email %s: %w", e.Email, ErrConflict)
	}
	s.employees[e.ID] = e
	s.emails[e.Email] = e.ID
	return nil
}

func (s *MemStore) FindEmployee(_ context.Context, id string) (model.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.employees[id]
	if !ok {
		return model.Employee{}, fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	return e, nil
}

func (s *MemStore) InsertEffort(_ context.Context, e model.Effort) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	emp, ok := s.employees[e.EmployeeID]
	if !ok {
		return fmt.Errorf("employee %s: %w", e.EmployeeID, ErrNotFound)
	}
	if _, ok := s.efforts[e.ID]; ok {
		return fmt.Errorf("effort %s: %w", e.ID, ErrConflict)
	}
	s.efforts[e.ID] = e
	s.byEmployee[e.EmployeeID] = append(s.byEmployee[e.EmployeeID], e.ID)
	if e.At.After(emp.LastActivityAt) {
		emp.LastActivityAt = e.At
		s.employees[e.EmployeeID] = emp
	}
	return nil
}

func (s *MemStore) FindEfforts(_ context.Context, employeeID string, source model.Source, from, to time.Time) ([]model.Effort, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Effort
	for _, id := range s.byEmployee[employeeID] {
		e := s.efforts[id]
		if source != "" && e.Source != source {
			continue
		}
		if inRange(e.At, from, to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out, nil
}

func (s *MemStore) InsertRecognition(_ context.Context, r model.Recognition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emp, ok := s.employees[r.EmployeeID]
	if !ok {
		return false, fmt.Errorf("employee %s: %w", r.EmployeeID, ErrNotFound)
	}
	if _, ok := s.byEffort[r.EffortID]; ok {
		return false, nil
	}
	s.recognitions[r.ID] = r
	s.byEffort[r.EffortID] = r.ID
	emp.RecognitionCount++
	emp.TotalEffortScore += r.Impact
	s.employees[r.EmployeeID] = emp
	return true, nil
}

func (s *MemStore) FindRecognitions(_ context.Context, employeeID string, from, to time.Time) ([]model.Recognition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Recognition
	for _, r := range s.recognitions {
		if r.EmployeeID == employeeID && inRange(r.At, from, to) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].At.Equal(out[j].At) {
			return out[i].At.Before(out[j].At)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemStore) FindAward(_ context.Context, employeeID, badgeID string) (model.BadgeAward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.awards[awardKey{employeeID, badgeID}]
	if !ok {
		return model.BadgeAward{}, fmt.Errorf("award %s/%s: %w", employeeID, badgeID, ErrNotFound)
	}
	return a, nil
}

func (s *MemStore) FindAwards(_ context.Context, employeeID string, from, to time.Time) ([]model.BadgeAward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.BadgeAward
	for k, a := range s.awards {
		if k.employeeID == employeeID && inRange(a.EarnedAt, from, to) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EarnedAt.Equal(out[j].EarnedAt) {
			return out[i].EarnedAt.Before(out[j].EarnedAt)
		}
		return out[i].BadgeID < out[j].BadgeID
	})
	return out, nil
}

func (s *MemStore) InsertAwardIfAbsent(_ context.Context, a model.BadgeAward) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emp, ok := s.employees[a.EmployeeID]
	if !ok {
		return false, fmt.Errorf("employee %s: %w", a.EmployeeID, ErrNotFound)
	}
	key := awardKey{a.EmployeeID, a.BadgeID}
	if _, ok := s.awards[key]; ok {
		return false, nil
	}
	s.awards[key] = a
	emp.BadgeCount++
	s.employees[a.EmployeeID] = emp
	return true, nil
}

func (s *MemStore) UpsertDigest(_ context.Context, d model.WeeklyDigest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[d.EmployeeID]; !ok {
		return fmt.Errorf("employee %s: %w", d.EmployeeID, ErrNotFound)
	}
	s.digests[digestKey{d.EmployeeID, d.WeekStart}] = d
	return nil
}

func (s *MemStore) FindDigest(_ context.Context, employeeID string, weekStart time.Time) (model.WeeklyDigest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.digests[digestKey{employeeID, weekStart}]
	if !ok {
		return model.WeeklyDigest{}, fmt.Errorf("digest %s/%s: %w", employeeID, weekStart.Format(time.DateOnly), ErrNotFound)
	}
	return d, nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error { return nil }

// inRange reports whether t falls in [from, to). Zero boundaries are open.
func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
