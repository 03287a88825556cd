package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/hirelocal/internal/entity"
)

type pairKey struct {
	freelancerID string
	leadID       string
}

type InteractionStore struct {
	mu   sync.Mutex
	rows map[pairKey]*entity.FreelancerLeadInteraction
}

var _ entity.InteractionRepository = (*InteractionStore)(nil)

func NewInteractionStore() *InteractionStore {
	return &InteractionStore{rows: make(map[pairKey]*entity.FreelancerLeadInteraction)}
}

func cloneInteraction(i *entity.FreelancerLeadInteraction) *entity.FreelancerLeadInteraction {
	c := *i
	return &c
}

func (s *InteractionStore) UpsertNotified(_ context.Context, freelancerID, leadID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := pairKey{freelancerID, leadID}
	if _, ok := s.rows[k]; ok {
		return false, nil
	}
	s.rows[k] = &entity.FreelancerLeadInteraction{
		ID:           uuid.New().String(),
		FreelancerID: freelancerID,
		LeadID:       leadID,
		Status:       entity.InteractionNotified,
		NotifiedAt:   at,
	}
	return true, nil
}

func (s *InteractionStore) MarkViewed(_ context.Context, freelancerID, leadID string, at time.Time) (*entity.FreelancerLeadInteraction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[pairKey{freelancerID, leadID}]
	if !ok {
		return nil, entity.ErrInteractionNotFound
	}
	if row.ViewedAt == nil {
		v := at
		row.ViewedAt = &v
	}
	if row.Status == entity.InteractionNotified {
		row.Status = entity.InteractionViewed
	}
	return cloneInteraction(row), nil
}

func (s *InteractionStore) RecordResponse(_ context.Context, freelancerID, leadID string, outcome entity.InteractionStatus, reason, notes *string, at time.Time) (*entity.FreelancerLeadInteraction, error) {
	if !outcome.Terminal() {
		return nil, entity.ErrInvalidOutcome
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	k := pairKey{freelancerID, leadID}
	row, ok := s.rows[k]
	if !ok {
		row = &entity.FreelancerLeadInteraction{
			ID:           uuid.New().String(),
			FreelancerID: freelancerID,
			LeadID:       leadID,
			NotifiedAt:   at,
		}
		s.rows[k] = row
	} else if row.RespondedAt != nil {
		return nil, entity.ErrAlreadyResponded
	}
	respondedAt := at
	row.Status = outcome
	row.MissedReason = reason
	row.Notes = notes
	row.RespondedAt = &respondedAt
	return cloneInteraction(row), nil
}

func (s *InteractionStore) MarkMissed(_ context.Context, leadID, exceptFreelancerID, reason string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k, row := range s.rows {
		if k.leadID != leadID || k.freelancerID == exceptFreelancerID || row.RespondedAt != nil {
			continue
		}
		r := reason
		respondedAt := at
		row.Status = entity.InteractionMissed
		row.MissedReason = &r
		row.RespondedAt = &respondedAt
		n++
	}
	return n, nil
}

func (s *InteractionStore) Find(_ context.Context, freelancerID, leadID string) (*entity.FreelancerLeadInteraction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[pairKey{freelancerID, leadID}]
	if !ok {
		return nil, entity.ErrInteractionNotFound
	}
	return cloneInteraction(row), nil
}

func (s *InteractionStore) ListByLead(_ context.Context, leadID string) ([]*entity.FreelancerLeadInteraction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.FreelancerLeadInteraction
	for k, row := range s.rows {
		if k.leadID == leadID {
			out = append(out, cloneInteraction(row))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NotifiedAt.Before(out[j].NotifiedAt) })
	return out, nil
}

func (s *InteractionStore) ListByFreelancer(_ context.Context, freelancerID string, limit int) ([]*entity.FreelancerLeadInteraction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.FreelancerLeadInteraction
	for k, row := range s.rows {
		if k.freelancerID == freelancerID {
			out = append(out, cloneInteraction(row))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NotifiedAt.After(out[j].NotifiedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
