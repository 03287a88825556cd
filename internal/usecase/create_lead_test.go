package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/hirelocal/internal/entity"
	"github.com/xavierca1/hirelocal/internal/infra/memory"
	"github.com/xavierca1/hirelocal/internal/usecase"
)

type MockFreelancerRepository struct {
	mock.Mock
}

func (m *MockFreelancerRepository) FindByID(ctx context.Context, id string) (*entity.FreelancerProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FreelancerProfile), args.Error(1)
}

func (m *MockFreelancerRepository) FindByUserID(ctx context.Context, userID string) (*entity.FreelancerProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FreelancerProfile), args.Error(1)
}

func (m *MockFreelancerRepository) FindEligible(ctx context.Context, categoryID, areaKey string) ([]*entity.FreelancerProfile, error) {
	args := m.Called(ctx, categoryID, areaKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.FreelancerProfile), args.Error(1)
}

func TestCreateLead_OffersToMatchingFreelancers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addFreelancer("f1", "plumbing", "Jaipur", false)
	f.addFreelancer("f2", "plumbing", "  JAIPUR", true)
	f.addFreelancer("f3", "plumbing", "Delhi", true)
	f.addFreelancer("f4", "painting", "Jaipur", true)
	f.profiles.PutProfile(&entity.FreelancerProfile{
		ID: "f5", UserID: "user-f5", CategoryID: "plumbing", Area: "Jaipur",
		VerificationStatus: entity.VerificationPending, IsAvailable: true,
	})

	live := f.hub.Subscribe("user-f2")
	defer f.hub.Unsubscribe("user-f2", live)

	out := f.postLead(t, "plumbing", "Jaipur ")
	assert.Equal(t, entity.LeadPending, out.Lead.Status)
	assert.Equal(t, customerID, out.Lead.CustomerID)
	assert.Equal(t, usecase.DeliveryReport{Matched: 2, Notified: 2, LiveDelivered: 1}, out.Delivery)

	for _, id := range []string{"f1", "f2"} {
		row, err := f.interactions.Find(ctx, id, out.Lead.ID)
		require.NoError(t, err, id)
		assert.Equal(t, entity.InteractionNotified, row.Status)

		notes, err := f.notifications.ListByUser(ctx, "user-"+id, entity.NotificationFilter{})
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, entity.NotificationNewLead, notes[0].Type)
		require.NotNil(t, notes[0].Link)
		assert.Equal(t, "/leads/"+out.Lead.ID, *notes[0].Link)
	}
	for _, id := range []string{"f3", "f4", "f5"} {
		_, err := f.interactions.Find(ctx, id, out.Lead.ID)
		assert.ErrorIs(t, err, entity.ErrInteractionNotFound, id)
	}

	select {
	case evt := <-live:
		assert.Contains(t, evt, out.Lead.ID)
	case <-time.After(time.Second):
		t.Fatal("no live event for connected freelancer")
	}
}

func TestCreateLead_BlankAreaReachesWholeCategory(t *testing.T) {
	f := newFixture(t)
	f.addFreelancer("f1", "plumbing", "Jaipur", true)
	f.addFreelancer("f2", "plumbing", "Delhi", true)

	out := f.postLead(t, "plumbing", "   ")
	assert.Equal(t, 2, out.Delivery.Notified)
}

func TestCreateLead_NoMatchIsNotAnError(t *testing.T) {
	f := newFixture(t)
	f.addFreelancer("f1", "plumbing", "Delhi", true)

	out := f.postLead(t, "plumbing", "Jaipur")
	assert.Equal(t, usecase.DeliveryReport{}, out.Delivery)

	stored, err := f.leads.FindByID(context.Background(), out.Lead.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LeadPending, stored.Status)
}

func TestCreateLead_OneFailedDeliveryDoesNotStopOthers(t *testing.T) {
	f := newFixture(t)
	f.build(f.interactions, failingNotifications{NotificationStore: f.notifications, failFor: "user-f2"})

	f.addFreelancer("f1", "plumbing", "Jaipur", true)
	f.addFreelancer("f2", "plumbing", "Jaipur", true)
	f.addFreelancer("f3", "plumbing", "Jaipur", true)

	out := f.postLead(t, "plumbing", "Jaipur")
	assert.Equal(t, 3, out.Delivery.Matched)
	assert.Equal(t, 2, out.Delivery.Notified)
	assert.Equal(t, 1, out.Delivery.Failed)

	// the interaction row was written before the notification failed
	row, err := f.interactions.Find(context.Background(), "f2", out.Lead.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InteractionNotified, row.Status)
}

func TestCreateLead_Rejections(t *testing.T) {
	f := newFixture(t)
	valid := usecase.CreateLeadInput{
		CategoryID:   "plumbing",
		Title:        "Fix leaking kitchen sink",
		MobileNumber: "9876543210",
	}

	tests := []struct {
		name   string
		caller entity.Identity
		mutate func(*usecase.CreateLeadInput)
		code   string
	}{
		{"freelancer caller", entity.Identity{UserID: "u", Role: entity.RoleFreelancer, FreelancerProfileID: "f"}, nil, usecase.CodeForbidden},
		{"missing category", customer, func(in *usecase.CreateLeadInput) { in.CategoryID = " " }, usecase.CodeValidation},
		{"short title", customer, func(in *usecase.CreateLeadInput) { in.Title = "Fix" }, usecase.CodeValidation},
		{"bad mobile", customer, func(in *usecase.CreateLeadInput) { in.MobileNumber = "12345" }, usecase.CodeValidation},
		{"inverted budget", customer, func(in *usecase.CreateLeadInput) { in.BudgetMin, in.BudgetMax = 900, 100 }, usecase.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			if tt.mutate != nil {
				tt.mutate(&in)
			}
			_, err := f.create.Execute(context.Background(), tt.caller, in)
			require.Error(t, err)
			assert.Equal(t, tt.code, usecase.DomainCode(err))
		})
	}

	pending, err := f.leads.ListByStatus(context.Background(), entity.LeadPending, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCreateLead_MatchFailureLeavesNothingBehind(t *testing.T) {
	leads := memory.NewLeadStore()
	profiles := new(MockFreelancerRepository)
	profiles.On("FindEligible", mock.Anything, "plumbing", "jaipur").Return(nil, errStorage)

	interactions := memory.NewInteractionStore()
	pipeline := usecase.NewDeliveryPipeline(usecase.NewInteractionRecorder(interactions, nil),
		usecase.NewDispatcher(memory.NewNotificationStore(), nil, testLog), 2, testLog)
	uc := usecase.NewCreateLeadUseCase(leads, usecase.NewMatcher(profiles), pipeline, testLog)

	_, err := uc.Execute(context.Background(), customer, usecase.CreateLeadInput{
		CategoryID:   "plumbing",
		Title:        "Fix leaking kitchen sink",
		Location:     "Jaipur",
		MobileNumber: "+91 98765 43210",
	})
	require.Error(t, err)
	assert.True(t, usecase.IsTechnicalError(err))
	assert.ErrorIs(t, err, errStorage)

	pending, err := leads.ListByStatus(context.Background(), entity.LeadPending, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
	profiles.AssertExpectations(t)
}

func TestValidateCreateLeadInput_MobileFormats(t *testing.T) {
	tests := []struct {
		number string
		valid  bool
	}{
		{"9876543210", true},
		{"+91 98765 43210", true},
		{"09876543210", true},
		{"98765-43210", true},
		{"5876543210", false},
		{"987654321", false},
		{"919876543210999", false},
	}
	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			errs := usecase.ValidateCreateLeadInput(usecase.CreateLeadInput{
				CategoryID:   "plumbing",
				Title:        "Fix leaking kitchen sink",
				MobileNumber: tt.number,
			})
			if tt.valid {
				assert.Empty(t, errs)
			} else {
				require.Len(t, errs, 1)
				assert.Equal(t, "mobile_number", errs[0].Field)
			}
		})
	}
}
