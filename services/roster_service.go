package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sketcher2345/hackathon-platform/live"
	"github.com/sketcher2345/hackathon-platform/models"
	"github.com/sketcher2345/hackathon-platform/repositories"
)

// ImportResult reports what a formed-teams import actually did. Skipped rows
// carry the team name and the reason it could not be created.
type ImportResult struct {
	TeamsCreated int           `json:"teams_created"`
	SkippedTeams []SkippedTeam `json:"skipped_teams"`
}

type SkippedTeam struct {
	TeamName string `json:"team_name"`
	Reason   string `json:"reason"`
}

type RosterService interface {
	// ImportFormedTeams reads a CSV of pre-formed teams and creates each team
	// with its members. A row whose emails cannot all be resolved to existing
	// users is skipped, never aborting the rest of the file.
	ImportFormedTeams(ctx context.Context, hostID, hackathonID int, file io.Reader) (*ImportResult, error)
	ExportSubmissionsCSV(ctx context.Context, hostID, hackathonID int) (string, error)
	ListSubmissionSummaries(ctx context.Context, hostID, hackathonID int) ([]models.SubmissionSummary, error)
}

type rosterService struct {
	tx             repositories.TxManager
	hackathonRepo  repositories.HackathonRepository
	teamRepo       repositories.TeamRepository
	userRepo       repositories.UserRepository
	submissionRepo repositories.SubmissionRepository
	hub            EventBroadcaster
	logger         *slog.Logger
}

func NewRosterService(
	tx repositories.TxManager,
	hackathonRepo repositories.HackathonRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	submissionRepo repositories.SubmissionRepository,
	hub EventBroadcaster,
	logger *slog.Logger,
) RosterService {
	return &rosterService{
		tx:             tx,
		hackathonRepo:  hackathonRepo,
		teamRepo:       teamRepo,
		userRepo:       userRepo,
		submissionRepo: submissionRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *rosterService) ImportFormedTeams(ctx context.Context, hostID, hackathonID int, file io.Reader) (*ImportResult, error) {
	if _, err := s.hackathonRepo.GetByIDForHost(ctx, nil, hackathonID, hostID); err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return nil, ErrHackathonNotFound
		}
		return nil, err
	}

	records, err := parseCSVRecords(file)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"file": err.Error()}}
	}
	if len(records) > 0 {
		if _, ok := records[0]["team_name"]; !ok {
			return nil, &ValidationError{Fields: map[string]string{"file": "missing required column team_name"}}
		}
		if _, ok := records[0]["members_emails"]; !ok {
			return nil, &ValidationError{Fields: map[string]string{"file": "missing required column members_emails"}}
		}
	}

	result := &ImportResult{SkippedTeams: make([]SkippedTeam, 0)}

	for i, record := range records {
		teamName := strings.TrimSpace(record["team_name"])
		if teamName == "" {
			result.SkippedTeams = append(result.SkippedTeams, SkippedTeam{
				TeamName: "(row " + strconv.Itoa(i+2) + ")",
				Reason:   "team_name is empty",
			})
			continue
		}

		emails := splitEmailList(record["members_emails"])
		if len(emails) == 0 {
			result.SkippedTeams = append(result.SkippedTeams, SkippedTeam{
				TeamName: teamName,
				Reason:   "members_emails is empty",
			})
			continue
		}

		users, err := s.userRepo.FindByEmails(ctx, emails)
		if err != nil {
			return nil, err
		}
		if len(users) != len(emails) {
			missing := missingEmails(emails, users)
			s.logger.Warn("skipping team with unresolved member emails",
				slog.String("team", teamName),
				slog.Any("missing", missing))
			result.SkippedTeams = append(result.SkippedTeams, SkippedTeam{
				TeamName: teamName,
				Reason:   "unknown emails: " + strings.Join(missing, ", "),
			})
			continue
		}

		userIDs := make([]int, 0, len(users))
		for _, u := range users {
			userIDs = append(userIDs, u.ID)
		}

		// One transaction per row: a failed team leaves the earlier ones in
		// place and the later ones still get their chance.
		err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			team := &models.Team{HackathonID: hackathonID, Name: teamName}
			if err := s.teamRepo.Create(ctx, exec, team); err != nil {
				return err
			}
			return s.teamRepo.CreateMembers(ctx, exec, team.ID, userIDs)
		})
		if err != nil {
			s.logger.Warn("failed to import team", slog.String("team", teamName), slog.Any("error", err))
			result.SkippedTeams = append(result.SkippedTeams, SkippedTeam{
				TeamName: teamName,
				Reason:   err.Error(),
			})
			continue
		}
		result.TeamsCreated++
	}

	if result.TeamsCreated > 0 {
		s.hub.BroadcastEvent(live.Event{
			Type:        live.EventTeamsImported,
			HackathonID: hackathonID,
			Payload:     map[string]interface{}{"teams_created": result.TeamsCreated},
		})
	}
	return result, nil
}

func missingEmails(requested []string, found []*models.User) []string {
	foundSet := make(map[string]bool, len(found))
	for _, u := range found {
		foundSet[strings.ToLower(u.Email)] = true
	}
	missing := make([]string, 0)
	for _, email := range requested {
		if !foundSet[strings.ToLower(email)] {
			missing = append(missing, email)
		}
	}
	return missing
}

func (s *rosterService) ExportSubmissionsCSV(ctx context.Context, hostID, hackathonID int) (string, error) {
	if _, err := s.hackathonRepo.GetByIDForHost(ctx, nil, hackathonID, hostID); err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return "", ErrHackathonNotFound
		}
		return "", err
	}

	exportRows, err := s.submissionRepo.ListExportRowsByHackathon(ctx, hackathonID, hostID)
	if err != nil {
		return "", err
	}

	header := []string{
		"project_title", "team_name", "github_url", "about_project",
		"problem_statement", "tech_stack", "ai_score", "team_member_emails", "submission_date",
	}
	rows := make([][]string, 0, len(exportRows))
	for _, row := range exportRows {
		aiScore := ""
		if row.AIScore != nil {
			aiScore = strconv.FormatFloat(*row.AIScore, 'f', -1, 64)
		}
		rows = append(rows, []string{
			row.Title,
			row.TeamName,
			row.GithubURL,
			row.About,
			row.Problem,
			strings.Join(row.TechStacks, ", "),
			aiScore,
			strings.Join(row.MemberEmails, ", "),
			row.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	csv, err := unparseCSV(header, rows)
	if err != nil {
		return "", fmt.Errorf("failed to build submissions csv: %w", err)
	}
	return csv, nil
}

func (s *rosterService) ListSubmissionSummaries(ctx context.Context, hostID, hackathonID int) ([]models.SubmissionSummary, error) {
	if _, err := s.hackathonRepo.GetByIDForHost(ctx, nil, hackathonID, hostID); err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return nil, ErrHackathonNotFound
		}
		return nil, err
	}
	return s.submissionRepo.ListSummariesByHackathon(ctx, hackathonID, hostID)
}
