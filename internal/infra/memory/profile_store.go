package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xavierca1/hirelocal/internal/entity"
)

// ProfileStore holds freelancer profiles and their subscriptions. Both are written by
// other services; Put* exist for seeding.
type ProfileStore struct {
	mu            sync.Mutex
	profiles      map[string]*entity.FreelancerProfile
	subscriptions map[string]*entity.Subscription
}

var (
	_ entity.FreelancerRepository   = (*ProfileStore)(nil)
	_ entity.SubscriptionRepository = (*ProfileStore)(nil)
)

func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles:      make(map[string]*entity.FreelancerProfile),
		subscriptions: make(map[string]*entity.Subscription),
	}
}

func (s *ProfileStore) PutProfile(p *entity.FreelancerProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *p
	s.profiles[p.ID] = &c
}

func (s *ProfileStore) PutSubscription(sub *entity.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *sub
	s.subscriptions[sub.ID] = &c
}

func (s *ProfileStore) FindByID(_ context.Context, id string) (*entity.FreelancerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, entity.ErrProfileNotFound
	}
	c := *p
	return &c, nil
}

func (s *ProfileStore) FindByUserID(_ context.Context, userID string) (*entity.FreelancerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.UserID == userID {
			c := *p
			return &c, nil
		}
	}
	return nil, entity.ErrProfileNotFound
}

func (s *ProfileStore) FindEligible(_ context.Context, categoryID, areaKey string) ([]*entity.FreelancerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.FreelancerProfile
	for _, p := range s.profiles {
		if p.Matches(categoryID, areaKey) {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *ProfileStore) FindActive(_ context.Context, freelancerID string, typ entity.SubscriptionType, now time.Time) ([]*entity.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Subscription
	for _, sub := range s.subscriptions {
		if sub.FreelancerID == freelancerID && sub.Type == typ && sub.ActiveAt(now) {
			c := *sub
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *ProfileStore) ExpireLapsed(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, sub := range s.subscriptions {
		if sub.Status == entity.SubscriptionActive && !sub.EndDate.After(now) {
			sub.Status = entity.SubscriptionExpired
			sub.UpdatedAt = now
			n++
		}
	}
	return n, nil
}
