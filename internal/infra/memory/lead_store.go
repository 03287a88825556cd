// Package memory implements the repository contracts in-process. Every conditional
// update runs under the store mutex, which gives the same all-or-nothing behaviour the
// Postgres repositories get from a single UPDATE ... WHERE.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/xavierca1/hirelocal/internal/entity"
)

type LeadStore struct {
	mu    sync.Mutex
	leads map[string]*entity.Lead
}

var _ entity.LeadRepository = (*LeadStore)(nil)

func NewLeadStore() *LeadStore {
	return &LeadStore{leads: make(map[string]*entity.Lead)}
}

func cloneLead(l *entity.Lead) *entity.Lead {
	c := *l
	if l.AcceptedBy != nil {
		v := *l.AcceptedBy
		c.AcceptedBy = &v
	}
	if l.AcceptedAt != nil {
		v := *l.AcceptedAt
		c.AcceptedAt = &v
	}
	return &c
}

func (s *LeadStore) Create(_ context.Context, lead *entity.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[lead.ID] = cloneLead(lead)
	return nil
}

func (s *LeadStore) FindByID(_ context.Context, id string) (*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return cloneLead(l), nil
}

func (s *LeadStore) FindByIDs(_ context.Context, ids []string) ([]*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Lead, 0, len(ids))
	for _, id := range ids {
		if l, ok := s.leads[id]; ok {
			out = append(out, cloneLead(l))
		}
	}
	return out, nil
}

func (s *LeadStore) ListByStatus(_ context.Context, status entity.LeadStatus, limit int) ([]*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Lead
	for _, l := range s.leads {
		if l.Status == status {
			out = append(out, cloneLead(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *LeadStore) TryAccept(_ context.Context, leadID, freelancerID string, at time.Time) (entity.AcceptResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[leadID]
	if !ok {
		return entity.AcceptResult{Reason: entity.AcceptNotFound}, nil
	}
	switch l.Status {
	case entity.LeadPending:
	case entity.LeadAccepted, entity.LeadCompleted:
		return entity.AcceptResult{Reason: entity.AcceptAlreadyAccepted, Lead: cloneLead(l)}, nil
	default:
		return entity.AcceptResult{Reason: entity.AcceptNotPending, Lead: cloneLead(l)}, nil
	}

	winner := freelancerID
	acceptedAt := at
	l.Status = entity.LeadAccepted
	l.AcceptedBy = &winner
	l.AcceptedAt = &acceptedAt
	l.UpdatedAt = at
	return entity.AcceptResult{Accepted: true, Lead: cloneLead(l)}, nil
}

func (s *LeadStore) Transition(_ context.Context, leadID string, from []entity.LeadStatus, to entity.LeadStatus, at time.Time) (*entity.Lead, error) {
	if to == entity.LeadAccepted {
		return nil, entity.ErrInvalidTransition
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[leadID]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	if !slices.Contains(from, l.Status) || !entity.CanTransition(l.Status, to) {
		return nil, entity.ErrInvalidTransition
	}
	l.Status = to
	if to != entity.LeadCompleted {
		l.AcceptedBy = nil
		l.AcceptedAt = nil
	}
	l.UpdatedAt = at
	return cloneLead(l), nil
}

func (s *LeadStore) ReleaseAcceptance(_ context.Context, leadID, freelancerID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[leadID]
	if !ok {
		return entity.ErrLeadNotFound
	}
	if l.Status != entity.LeadAccepted || !l.IsAcceptedBy(freelancerID) {
		return entity.ErrInvalidTransition
	}
	l.Status = entity.LeadPending
	l.AcceptedBy = nil
	l.AcceptedAt = nil
	l.UpdatedAt = at
	return nil
}

func (s *LeadStore) ExpirePending(_ context.Context, cutoff, at time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, l := range s.leads {
		if l.Status == entity.LeadPending && l.CreatedAt.Before(cutoff) {
			l.Status = entity.LeadMissed
			l.UpdatedAt = at
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
