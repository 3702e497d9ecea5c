package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sketcher2345/hackathon-platform/live"
	"github.com/sketcher2345/hackathon-platform/models"
	"github.com/sketcher2345/hackathon-platform/repositories"
)

type WinnerInput struct {
	TeamID int `json:"team_id"`
	Rank   int `json:"rank"`
}

type WinnerService interface {
	// AnnounceWinners ends the hackathon and replaces the full rank list in a
	// single transaction: every team's rank is cleared first, then the listed
	// winners get theirs. A team id outside the hackathon aborts everything.
	AnnounceWinners(ctx context.Context, hostID, hackathonID int, winners []WinnerInput) error
}

type winnerService struct {
	tx            repositories.TxManager
	hackathonRepo repositories.HackathonRepository
	teamRepo      repositories.TeamRepository
	hub           EventBroadcaster
}

func NewWinnerService(
	tx repositories.TxManager,
	hackathonRepo repositories.HackathonRepository,
	teamRepo repositories.TeamRepository,
	hub EventBroadcaster,
) WinnerService {
	return &winnerService{
		tx:            tx,
		hackathonRepo: hackathonRepo,
		teamRepo:      teamRepo,
		hub:           hub,
	}
}

func (s *winnerService) AnnounceWinners(ctx context.Context, hostID, hackathonID int, winners []WinnerInput) error {
	for _, w := range winners {
		if w.Rank <= 0 {
			return fmt.Errorf("%w: got %d for team %d", ErrInvalidWinnerRank, w.Rank, w.TeamID)
		}
	}

	if _, err := s.hackathonRepo.GetByIDForHost(ctx, nil, hackathonID, hostID); err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return ErrHackathonNotFound
		}
		return err
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.hackathonRepo.SetStatus(ctx, exec, hackathonID, models.StatusEnded); err != nil {
			return err
		}
		if err := s.teamRepo.ResetRanks(ctx, exec, hackathonID); err != nil {
			return err
		}
		for _, w := range winners {
			if err := s.teamRepo.SetRank(ctx, exec, w.TeamID, hackathonID, w.Rank); err != nil {
				if errors.Is(err, repositories.ErrTeamNotFound) {
					return fmt.Errorf("%w: team %d", ErrWinnerTeamInvalid, w.TeamID)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.BroadcastEvent(live.Event{
		Type:        live.EventWinnersAnnounced,
		HackathonID: hackathonID,
		Payload:     map[string]interface{}{"winners": winners},
	})
	return nil
}
