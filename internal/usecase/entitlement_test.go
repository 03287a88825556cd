package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/hirelocal/internal/entity"
	"github.com/xavierca1/hirelocal/internal/usecase"
)

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) FindActive(ctx context.Context, freelancerID string, typ entity.SubscriptionType, now time.Time) ([]*entity.Subscription, error) {
	args := m.Called(ctx, freelancerID, typ, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func TestEntitlementChecker_EndDateBoundary(t *testing.T) {
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	tests := []struct {
		name   string
		end    time.Time
		status entity.SubscriptionStatus
		want   bool
	}{
		{"ends one second from now", now.Add(time.Second), entity.SubscriptionActive, true},
		{"ended one second ago", now.Add(-time.Second), entity.SubscriptionActive, false},
		{"ends exactly now", now, entity.SubscriptionActive, false},
		{"cancelled with time left", now.Add(24 * time.Hour), entity.SubscriptionCancelled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := entity.NewSubscription("f1", entity.SubscriptionLead, now.Add(-30*24*time.Hour), 0)
			sub.EndDate = tt.end
			sub.Status = tt.status

			// the repository may hand back a row whose status lags its end date
			repo := new(MockSubscriptionRepository)
			repo.On("FindActive", mock.Anything, "f1", entity.SubscriptionLead, now).
				Return([]*entity.Subscription{sub}, nil)

			ok, err := usecase.NewEntitlementChecker(repo, clock).HasActiveLeadPlan(context.Background(), "f1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			repo.AssertExpectations(t)
		})
	}
}

func TestEntitlementChecker_PicksLongestPlanAndIgnoresOtherTypes(t *testing.T) {
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	short := entity.NewSubscription("f1", entity.SubscriptionLead, now, time.Hour)
	long := entity.NewSubscription("f1", entity.SubscriptionLead, now, 48*time.Hour)
	badge := entity.NewSubscription("f1", entity.SubscriptionBadge, now, 96*time.Hour)

	repo := new(MockSubscriptionRepository)
	repo.On("FindActive", mock.Anything, "f1", entity.SubscriptionLead, now).
		Return([]*entity.Subscription{short, badge, long}, nil)

	plan, err := usecase.NewEntitlementChecker(repo, func() time.Time { return now }).ActiveLeadPlan(context.Background(), "f1")
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, long.ID, plan.ID)
}

func TestEntitlementChecker_StorageFailure(t *testing.T) {
	repo := new(MockSubscriptionRepository)
	repo.On("FindActive", mock.Anything, "f1", entity.SubscriptionLead, mock.Anything).Return(nil, errStorage)

	ok, err := usecase.NewEntitlementChecker(repo, nil).HasActiveLeadPlan(context.Background(), "f1")
	assert.False(t, ok)
	assert.ErrorIs(t, err, errStorage)
}

func TestAcceptLead_EntitlementFailureIsTechnical(t *testing.T) {
	f := newFixture(t)
	caller := f.addFreelancer("f1", "plumbing", "Jaipur", true)
	leadID := f.postLead(t, "plumbing", "Jaipur").Lead.ID

	repo := new(MockSubscriptionRepository)
	repo.On("FindActive", mock.Anything, "f1", entity.SubscriptionLead, f.now).Return(nil, errStorage)
	f.accept.Entitlement = usecase.NewEntitlementChecker(repo, f.clock)

	_, err := f.accept.Execute(context.Background(), caller, leadID)
	require.Error(t, err)
	assert.True(t, usecase.IsTechnicalError(err))

	lead, err := f.leads.FindByID(context.Background(), leadID)
	require.NoError(t, err)
	assert.Equal(t, entity.LeadPending, lead.Status)
}

func TestEntitlementStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.addFreelancer("f1", "plumbing", "Jaipur", true)
	lapsed := f.addFreelancer("f2", "plumbing", "Jaipur", false)
	uc := usecase.NewEntitlementStatusUseCase(f.profiles, f.entitlement)

	got, err := uc.Execute(ctx, owner, "f1")
	require.NoError(t, err)
	assert.True(t, got.HasActivePlan)
	require.NotNil(t, got.EndsAt)
	assert.True(t, got.EndsAt.After(f.now))

	got, err = uc.Execute(ctx, entity.Identity{UserID: "admin", Role: entity.RoleAdmin}, "f2")
	require.NoError(t, err)
	assert.False(t, got.HasActivePlan)
	assert.Nil(t, got.EndsAt)

	_, err = uc.Execute(ctx, lapsed, "f1")
	assert.Equal(t, usecase.CodeForbidden, usecase.DomainCode(err))

	_, err = uc.Execute(ctx, owner, "nobody")
	assert.Equal(t, usecase.CodeNotFound, usecase.DomainCode(err))
}
