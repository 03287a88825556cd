package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/hirelocal/internal/entity"
	"github.com/xavierca1/hirelocal/internal/usecase"
)

func (f *fixture) getUseCase() *usecase.GetLeadUseCase {
	return usecase.NewGetLeadUseCase(f.leads, f.profiles, f.interactions, f.recorder, testLog)
}

func TestGetLead_FreelancerViewIsRedactedAndRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := f.addFreelancer("f1", "plumbing", "Jaipur", true)
	leadID := f.postLead(t, "plumbing", "Jaipur").Lead.ID

	detail, err := f.getUseCase().Execute(ctx, viewer, leadID)
	require.NoError(t, err)
	assert.True(t, detail.ContactHidden)
	assert.Empty(t, detail.Lead.MobileNumber)
	require.NotNil(t, detail.Interaction)
	assert.Equal(t, entity.InteractionViewed, detail.Interaction.Status)
	firstView := *detail.Interaction.ViewedAt

	f.now = f.now.Add(10 * time.Minute)
	detail, err = f.getUseCase().Execute(ctx, viewer, leadID)
	require.NoError(t, err)
	assert.Equal(t, firstView, *detail.Interaction.ViewedAt)

	stored, err := f.leads.FindByID(ctx, leadID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.MobileNumber, "redaction must not touch the stored lead")
}

func TestGetLead_AcceptorSeesContact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	winner := f.addFreelancer("f1", "plumbing", "Jaipur", true)
	loser := f.addFreelancer("f2", "plumbing", "Jaipur", true)
	leadID := f.postLead(t, "plumbing", "Jaipur").Lead.ID
	_, err := f.accept.Execute(ctx, winner, leadID)
	require.NoError(t, err)

	detail, err := f.getUseCase().Execute(ctx, winner, leadID)
	require.NoError(t, err)
	assert.False(t, detail.ContactHidden)
	assert.Equal(t, "98765 43210", detail.Lead.MobileNumber)

	detail, err = f.getUseCase().Execute(ctx, loser, leadID)
	require.NoError(t, err)
	assert.True(t, detail.ContactHidden)
	assert.Equal(t, entity.InteractionMissed, detail.Interaction.Status)
}

func TestGetLead_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	outsider := f.addFreelancer("f9", "painting", "Jaipur", true)
	leadID := f.postLead(t, "plumbing", "Jaipur").Lead.ID

	detail, err := f.getUseCase().Execute(ctx, customer, leadID)
	require.NoError(t, err)
	assert.NotEmpty(t, detail.Lead.MobileNumber)

	detail, err = f.getUseCase().Execute(ctx, admin, leadID)
	require.NoError(t, err)
	assert.False(t, detail.ContactHidden)

	_, err = f.getUseCase().Execute(ctx, entity.Identity{UserID: "cust-2", Role: entity.RoleCustomer}, leadID)
	assert.Equal(t, usecase.CodeNotFound, usecase.DomainCode(err))

	_, err = f.getUseCase().Execute(ctx, outsider, leadID)
	assert.Equal(t, usecase.CodeForbidden, usecase.DomainCode(err))

	_, err = f.getUseCase().Execute(ctx, admin, "missing")
	assert.Equal(t, usecase.CodeNotFound, usecase.DomainCode(err))
}

func TestGetLead_MatchingButNeverOfferedHasNoInteraction(t *testing.T) {
	f := newFixture(t)
	leadID := f.postLead(t, "plumbing", "Jaipur").Lead.ID
	late := f.addFreelancer("f1", "plumbing", "Jaipur", true)

	detail, err := f.getUseCase().Execute(context.Background(), late, leadID)
	require.NoError(t, err)
	assert.Nil(t, detail.Interaction)
	assert.True(t, detail.ContactHidden)
}

func TestListLeads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.postLead(t, "plumbing", "Jaipur")
	f.postLead(t, "plumbing", "Delhi")
	uc := usecase.NewListLeadsUseCase(f.leads)

	leads, err := uc.Execute(ctx, admin, "", 0)
	require.NoError(t, err)
	assert.Len(t, leads, 2)

	leads, err = uc.Execute(ctx, admin, "pending", 1)
	require.NoError(t, err)
	assert.Len(t, leads, 1)

	_, err = uc.Execute(ctx, admin, "bogus", 0)
	assert.Equal(t, usecase.CodeValidation, usecase.DomainCode(err))

	_, err = uc.Execute(ctx, customer, "", 0)
	assert.Equal(t, usecase.CodeForbidden, usecase.DomainCode(err))
}

func TestInbox(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	me := f.addFreelancer("f1", "plumbing", "Jaipur", true)
	first := f.postLead(t, "plumbing", "Jaipur").Lead.ID
	second := f.postLead(t, "plumbing", "Jaipur").Lead.ID
	f.postLead(t, "painting", "Jaipur")

	items, err := usecase.NewInboxUseCase(f.profiles, f.leads, f.interactions).Execute(ctx, me, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	ids := []string{items[0].Interaction.LeadID, items[1].Interaction.LeadID}
	assert.ElementsMatch(t, []string{first, second}, ids)
	for _, it := range items {
		require.NotNil(t, it.Lead)
		assert.Empty(t, it.Lead.MobileNumber)
	}

	idle := f.addFreelancer("f2", "carpentry", "Jaipur", true)
	items, err = usecase.NewInboxUseCase(f.profiles, f.leads, f.interactions).Execute(ctx, idle, 0)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	_, err = usecase.NewInboxUseCase(f.profiles, f.leads, f.interactions).Execute(ctx, customer, 0)
	assert.Equal(t, usecase.CodeForbidden, usecase.DomainCode(err))
}
