package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sketcher2345/hackathon-platform/models"
)

func strPtr(s string) *string { return &s }

func pendingTeamRegistration(id, hackathonID int) *models.Registration {
	return &models.Registration{
		ID:          id,
		HackathonID: hackathonID,
		TeamName:    strPtr("Bitwise"),
		Status:      models.RegistrationPending,
		Participants: []models.Participant{
			{UserID: 1, User: &models.User{ID: 1, Name: "Ada", Email: "ada@x.dev"}},
			{UserID: 2, User: &models.User{ID: 2, Name: "Bram", Email: "bram@x.dev"}},
		},
	}
}

func newRegistrationServiceForTest(regRepo *fakeRegistrationRepo, teamRepo *fakeTeamRepo, hackRepo *fakeHackathonRepo, notifier *fakeNotifier) (RegistrationService, *fakeHub) {
	hub := &fakeHub{}
	svc := NewRegistrationService(
		&fakeTxManager{}, regRepo, teamRepo, hackRepo, notifier, hub, slog.Default())
	return svc, hub
}

func TestRegistrationService_ListPending_SplitsTeamsAndIndividuals(t *testing.T) {
	individual := &models.Registration{ID: 2, HackathonID: 1, Status: models.RegistrationPending}
	regRepo := newFakeRegistrationRepo(map[int]int{1: 10}, pendingTeamRegistration(1, 1), individual)
	hackRepo := newFakeHackathonRepo(upcomingHackathon(1, 10))
	svc, _ := newRegistrationServiceForTest(regRepo, newFakeTeamRepo(), hackRepo, &fakeNotifier{})

	pending, err := svc.ListPending(context.Background(), 10, 1)
	require.NoError(t, err)
	require.Len(t, pending.Teams, 1)
	require.Len(t, pending.Individuals, 1)
	require.Equal(t, 1, pending.Teams[0].ID)
	require.Equal(t, 2, pending.Individuals[0].ID)
}

func TestRegistrationService_ListPending_UnknownHackathon(t *testing.T) {
	regRepo := newFakeRegistrationRepo(map[int]int{1: 10})
	hackRepo := newFakeHackathonRepo(upcomingHackathon(1, 10))
	svc, _ := newRegistrationServiceForTest(regRepo, newFakeTeamRepo(), hackRepo, &fakeNotifier{})

	_, err := svc.ListPending(context.Background(), 99, 1)
	require.ErrorIs(t, err, ErrHackathonNotFound)
}

func TestRegistrationService_Decide_ApproveTeamCreatesTeamWithMembers(t *testing.T) {
	regRepo := newFakeRegistrationRepo(map[int]int{1: 10}, pendingTeamRegistration(1, 1))
	teamRepo := newFakeTeamRepo()
	hackRepo := newFakeHackathonRepo(upcomingHackathon(1, 10))
	notifier := &fakeNotifier{}
	svc, hub := newRegistrationServiceForTest(regRepo, teamRepo, hackRepo, notifier)

	reg, err := svc.Decide(context.Background(), 10, 1, models.RegistrationApproved)
	require.NoError(t, err)
	require.Equal(t, models.RegistrationApproved, reg.Status)

	require.Len(t, teamRepo.created, 1)
	require.Equal(t, "Bitwise", teamRepo.created[0].Team.Name)
	require.Equal(t, 1, teamRepo.created[0].Team.HackathonID)
	require.ElementsMatch(t, []int{1, 2}, teamRepo.created[0].UserIDs)

	require.Len(t, notifier.sent, 2)
	for _, sent := range notifier.sent {
		require.True(t, sent.Approved)
	}
	require.Contains(t, hub.eventTypes(), "REGISTRATION_DECIDED")
}

func TestRegistrationService_Decide_RejectCreatesNoTeam(t *testing.T) {
	regRepo := newFakeRegistrationRepo(map[int]int{1: 10}, pendingTeamRegistration(1, 1))
	teamRepo := newFakeTeamRepo()
	hackRepo := newFakeHackathonRepo(upcomingHackathon(1, 10))
	notifier := &fakeNotifier{}
	svc, _ := newRegistrationServiceForTest(regRepo, teamRepo, hackRepo, notifier)

	reg, err := svc.Decide(context.Background(), 10, 1, models.RegistrationRejected)
	require.NoError(t, err)
	require.Equal(t, models.RegistrationRejected, reg.Status)
	require.Empty(t, teamRepo.created)

	require.Len(t, notifier.sent, 2)
	for _, sent := range notifier.sent {
		require.False(t, sent.Approved)
	}
}

func TestRegistrationService_Decide_ApproveIndividualCreatesNoTeam(t *testing.T) {
	individual := &models.Registration{
		ID:          3,
		HackathonID: 1,
		Status:      models.RegistrationPending,
		Participants: []models.Participant{
			{UserID: 5, User: &models.User{ID: 5, Name: "Cleo", Email: "cleo@x.dev"}},
		},
	}
	regRepo := newFakeRegistrationRepo(map[int]int{1: 10}, individual)
	teamRepo := newFakeTeamRepo()
	hackRepo := newFakeHackathonRepo(upcomingHackathon(1, 10))
	svc, _ := newRegistrationServiceForTest(regRepo, teamRepo, hackRepo, &fakeNotifier{})

	reg, err := svc.Decide(context.Background(), 10, 3, models.RegistrationApproved)
	require.NoError(t, err)
	require.Equal(t, models.RegistrationApproved, reg.Status)
	require.Empty(t, teamRepo.created)
}

func TestRegistrationService_Decide_InvalidDecision(t *testing.T) {
	regRepo := newFakeRegistrationRepo(map[int]int{1: 10}, pendingTeamRegistration(1, 1))
	hackRepo := newFakeHackathonRepo(upcomingHackathon(1, 10))
	svc, _ := newRegistrationServiceForTest(regRepo, newFakeTeamRepo(), hackRepo, &fakeNotifier{})

	_, err := svc.Decide(context.Background(), 10, 1, models.RegistrationPending)
	require.ErrorIs(t, err, ErrInvalidDecision)

	_, err = svc.Decide(context.Background(), 10, 1, models.RegistrationStatus("MAYBE"))
	require.ErrorIs(t, err, ErrInvalidDecision)
}

func TestRegistrationService_Decide_AlreadyDecided(t *testing.T) {
	decided := pendingTeamRegistration(1, 1)
	decided.Status = models.RegistrationApproved
	regRepo := newFakeRegistrationRepo(map[int]int{1: 10}, decided)
	hackRepo := newFakeHackathonRepo(upcomingHackathon(1, 10))
	svc, _ := newRegistrationServiceForTest(regRepo, newFakeTeamRepo(), hackRepo, &fakeNotifier{})

	_, err := svc.Decide(context.Background(), 10, 1, models.RegistrationRejected)
	require.ErrorIs(t, err, ErrRegistrationAlreadyDecided)
}

func TestRegistrationService_Decide_OtherHostsRegistrationHidden(t *testing.T) {
	regRepo := newFakeRegistrationRepo(map[int]int{1: 10}, pendingTeamRegistration(1, 1))
	hackRepo := newFakeHackathonRepo(upcomingHackathon(1, 10))
	svc, _ := newRegistrationServiceForTest(regRepo, newFakeTeamRepo(), hackRepo, &fakeNotifier{})

	_, err := svc.Decide(context.Background(), 99, 1, models.RegistrationApproved)
	require.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestRegistrationService_Decide_TeamCreateFailureAbortsDecision(t *testing.T) {
	regRepo := newFakeRegistrationRepo(map[int]int{1: 10}, pendingTeamRegistration(1, 1))
	teamRepo := newFakeTeamRepo()
	teamRepo.createErr = errors.New("insert failed")
	hackRepo := newFakeHackathonRepo(upcomingHackathon(1, 10))
	notifier := &fakeNotifier{}
	svc, hub := newRegistrationServiceForTest(regRepo, teamRepo, hackRepo, notifier)

	_, err := svc.Decide(context.Background(), 10, 1, models.RegistrationApproved)
	require.Error(t, err)
	require.Empty(t, notifier.sent)
	require.Empty(t, hub.eventTypes())
}

func TestRegistrationService_Decide_EmailFailureDoesNotFailDecision(t *testing.T) {
	regRepo := newFakeRegistrationRepo(map[int]int{1: 10}, pendingTeamRegistration(1, 1))
	hackRepo := newFakeHackathonRepo(upcomingHackathon(1, 10))
	notifier := &fakeNotifier{sendErr: errors.New("smtp down")}
	svc, _ := newRegistrationServiceForTest(regRepo, newFakeTeamRepo(), hackRepo, notifier)

	reg, err := svc.Decide(context.Background(), 10, 1, models.RegistrationApproved)
	require.NoError(t, err)
	require.Equal(t, models.RegistrationApproved, reg.Status)
}
