package services

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/sketcher2345/hackathon-platform/live"
	"github.com/sketcher2345/hackathon-platform/models"
	"github.com/sketcher2345/hackathon-platform/repositories"
)

const emailSendConcurrency = 4

// PendingRegistrations splits a hackathon's review queue into team and
// individual applications.
type PendingRegistrations struct {
	Teams       []*models.Registration `json:"teams"`
	Individuals []*models.Registration `json:"individuals"`
}

type RegistrationService interface {
	ListPending(ctx context.Context, hostID, hackathonID int) (*PendingRegistrations, error)
	// Decide approves or rejects a pending registration. Approving a team
	// application also creates the team with its members, atomically.
	Decide(ctx context.Context, hostID, registrationID int, decision models.RegistrationStatus) (*models.Registration, error)
}

type registrationService struct {
	tx            repositories.TxManager
	regRepo       repositories.RegistrationRepository
	teamRepo      repositories.TeamRepository
	hackathonRepo repositories.HackathonRepository
	notifier      NotificationSender
	hub           EventBroadcaster
	logger        *slog.Logger
}

func NewRegistrationService(
	tx repositories.TxManager,
	regRepo repositories.RegistrationRepository,
	teamRepo repositories.TeamRepository,
	hackathonRepo repositories.HackathonRepository,
	notifier NotificationSender,
	hub EventBroadcaster,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		tx:            tx,
		regRepo:       regRepo,
		teamRepo:      teamRepo,
		hackathonRepo: hackathonRepo,
		notifier:      notifier,
		hub:           hub,
		logger:        logger,
	}
}

func (s *registrationService) ListPending(ctx context.Context, hostID, hackathonID int) (*PendingRegistrations, error) {
	if _, err := s.hackathonRepo.GetByIDForHost(ctx, nil, hackathonID, hostID); err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return nil, ErrHackathonNotFound
		}
		return nil, err
	}

	pending, err := s.regRepo.ListPendingByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, err
	}

	result := &PendingRegistrations{
		Teams:       make([]*models.Registration, 0),
		Individuals: make([]*models.Registration, 0),
	}
	for _, reg := range pending {
		if reg.IsTeam() {
			result.Teams = append(result.Teams, reg)
		} else {
			result.Individuals = append(result.Individuals, reg)
		}
	}
	return result, nil
}

func (s *registrationService) Decide(ctx context.Context, hostID, registrationID int, decision models.RegistrationStatus) (*models.Registration, error) {
	if decision != models.RegistrationApproved && decision != models.RegistrationRejected {
		return nil, ErrInvalidDecision
	}

	reg, err := s.regRepo.GetByIDForHost(ctx, registrationID, hostID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	if reg.Status != models.RegistrationPending {
		return nil, ErrRegistrationAlreadyDecided
	}

	hackathon, err := s.hackathonRepo.GetByIDForHost(ctx, nil, reg.HackathonID, hostID)
	if err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// Conditional on PENDING: a concurrent decision loses here and the
		// whole transaction rolls back.
		if err := s.regRepo.UpdateStatusFromPending(ctx, exec, reg.ID, decision); err != nil {
			if errors.Is(err, repositories.ErrRegistrationAlreadyDecided) {
				return ErrRegistrationAlreadyDecided
			}
			return err
		}

		if decision == models.RegistrationApproved && reg.IsTeam() {
			team := &models.Team{
				HackathonID: reg.HackathonID,
				Name:        *reg.TeamName,
			}
			if err := s.teamRepo.Create(ctx, exec, team); err != nil {
				return err
			}
			userIDs := make([]int, 0, len(reg.Participants))
			for _, p := range reg.Participants {
				userIDs = append(userIDs, p.UserID)
			}
			return s.teamRepo.CreateMembers(ctx, exec, team.ID, userIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	reg.Status = decision

	s.notifyParticipants(reg, hackathon.Name, decision == models.RegistrationApproved)

	s.hub.BroadcastEvent(live.Event{
		Type:        live.EventRegistrationDecided,
		HackathonID: reg.HackathonID,
		Payload: map[string]interface{}{
			"registration_id": reg.ID,
			"status":          reg.Status,
		},
	})
	return reg, nil
}

// notifyParticipants emails every participant about the outcome. Emails are
// best-effort: a failed send is logged and does not undo the decision.
func (s *registrationService) notifyParticipants(reg *models.Registration, hackathonName string, approved bool) {
	if s.notifier == nil {
		return
	}

	var g errgroup.Group
	g.SetLimit(emailSendConcurrency)

	for _, p := range reg.Participants {
		if p.User == nil {
			continue
		}
		email, name := p.User.Email, p.User.Name
		g.Go(func() error {
			if err := s.notifier.SendRegistrationDecision(email, name, hackathonName, approved); err != nil {
				s.logger.Warn("failed to send registration decision email",
					slog.String("email", email), slog.Any("error", err))
			}
			return nil
		})
	}
	g.Wait()
}
