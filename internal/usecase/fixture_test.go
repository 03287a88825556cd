package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/hirelocal/internal/entity"
	"github.com/xavierca1/hirelocal/internal/infra/memory"
	"github.com/xavierca1/hirelocal/internal/infra/queue"
	"github.com/xavierca1/hirelocal/internal/infra/realtime"
	"github.com/xavierca1/hirelocal/internal/usecase"
)

var (
	testLog    = slog.New(slog.NewTextHandler(io.Discard, nil))
	errStorage = errors.New("storage unavailable")
)

const customerID = "cust-1"

var customer = entity.Identity{UserID: customerID, Role: entity.RoleCustomer}

// fixture wires the use cases over the memory stores with a pinned clock.
type fixture struct {
	now           time.Time
	leads         *memory.LeadStore
	profiles      *memory.ProfileStore
	interactions  *memory.InteractionStore
	notifications *memory.NotificationStore
	hub           *realtime.Hub
	notices       *MockNoticePublisher

	recorder    *usecase.InteractionRecorder
	dispatcher  *usecase.Dispatcher
	entitlement *usecase.EntitlementChecker
	create      *usecase.CreateLeadUseCase
	accept      *usecase.AcceptLeadUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		now:           time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC),
		leads:         memory.NewLeadStore(),
		profiles:      memory.NewProfileStore(),
		interactions:  memory.NewInteractionStore(),
		notifications: memory.NewNotificationStore(),
		hub:           realtime.NewHub(),
		notices:       new(MockNoticePublisher),
	}
	f.notices.On("PublishCustomerNotice", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.build(f.interactions, f.notifications)
	return f
}

func (f *fixture) clock() time.Time { return f.now }

// build (re)creates the use cases, so a test can swap a repository for a failing one.
func (f *fixture) build(interactions entity.InteractionRepository, notifications entity.NotificationRepository) {
	f.recorder = usecase.NewInteractionRecorder(interactions, f.clock)
	f.dispatcher = usecase.NewDispatcher(notifications, f.hub, testLog)
	f.entitlement = usecase.NewEntitlementChecker(f.profiles, f.clock)
	pipeline := usecase.NewDeliveryPipeline(f.recorder, f.dispatcher, 4, testLog)
	f.create = usecase.NewCreateLeadUseCase(f.leads, usecase.NewMatcher(f.profiles), pipeline, testLog)
	f.accept = usecase.NewAcceptLeadUseCase(f.profiles, f.leads, interactions, f.entitlement,
		f.recorder, f.dispatcher, f.notices, time.Second, f.clock, testLog)
}

// addFreelancer registers an approved, available freelancer. withPlan gives them a lead
// plan running for another 30 days.
func (f *fixture) addFreelancer(id, category, area string, withPlan bool) entity.Identity {
	userID := "user-" + id
	f.profiles.PutProfile(&entity.FreelancerProfile{
		ID:                 id,
		UserID:             userID,
		CategoryID:         category,
		Area:               area,
		VerificationStatus: entity.VerificationApproved,
		IsAvailable:        true,
	})
	if withPlan {
		f.profiles.PutSubscription(entity.NewSubscription(id, entity.SubscriptionLead, f.now.Add(-24*time.Hour), 31*24*time.Hour))
	}
	return entity.Identity{UserID: userID, Role: entity.RoleFreelancer, FreelancerProfileID: id}
}

func (f *fixture) postLead(t *testing.T, category, area string) *usecase.CreateLeadOutput {
	t.Helper()
	out, err := f.create.Execute(context.Background(), customer, usecase.CreateLeadInput{
		CategoryID:   category,
		Title:        "Fix leaking kitchen sink",
		Location:     area,
		MobileNumber: "98765 43210",
		BudgetMin:    500,
		BudgetMax:    1500,
	})
	require.NoError(t, err)
	return out
}

type MockNoticePublisher struct {
	mock.Mock
}

func (m *MockNoticePublisher) PublishCustomerNotice(ctx context.Context, n queue.CustomerNotice) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// MockInteractionRepository is used where a store failure has to be injected.
type MockInteractionRepository struct {
	mock.Mock
}

func (m *MockInteractionRepository) UpsertNotified(ctx context.Context, freelancerID, leadID string, at time.Time) (bool, error) {
	args := m.Called(ctx, freelancerID, leadID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockInteractionRepository) MarkViewed(ctx context.Context, freelancerID, leadID string, at time.Time) (*entity.FreelancerLeadInteraction, error) {
	args := m.Called(ctx, freelancerID, leadID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FreelancerLeadInteraction), args.Error(1)
}

func (m *MockInteractionRepository) RecordResponse(ctx context.Context, freelancerID, leadID string, outcome entity.InteractionStatus, reason, notes *string, at time.Time) (*entity.FreelancerLeadInteraction, error) {
	args := m.Called(ctx, freelancerID, leadID, outcome)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FreelancerLeadInteraction), args.Error(1)
}

func (m *MockInteractionRepository) MarkMissed(ctx context.Context, leadID, exceptFreelancerID, reason string, at time.Time) (int64, error) {
	args := m.Called(ctx, leadID, exceptFreelancerID, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInteractionRepository) Find(ctx context.Context, freelancerID, leadID string) (*entity.FreelancerLeadInteraction, error) {
	args := m.Called(ctx, freelancerID, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FreelancerLeadInteraction), args.Error(1)
}

func (m *MockInteractionRepository) ListByLead(ctx context.Context, leadID string) ([]*entity.FreelancerLeadInteraction, error) {
	args := m.Called(ctx, leadID)
	return args.Get(0).([]*entity.FreelancerLeadInteraction), args.Error(1)
}

func (m *MockInteractionRepository) ListByFreelancer(ctx context.Context, freelancerID string, limit int) ([]*entity.FreelancerLeadInteraction, error) {
	args := m.Called(ctx, freelancerID, limit)
	return args.Get(0).([]*entity.FreelancerLeadInteraction), args.Error(1)
}

// failingNotifications refuses to persist notifications for one user.
type failingNotifications struct {
	*memory.NotificationStore
	failFor string
}

func (f failingNotifications) Create(ctx context.Context, n *entity.Notification) error {
	if n.UserID == f.failFor {
		return errStorage
	}
	return f.NotificationStore.Create(ctx, n)
}
