package services

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sketcher2345/hackathon-platform/models"
	"github.com/sketcher2345/hackathon-platform/repositories"
)

func newRosterServiceForTest(hackRepo *fakeHackathonRepo, teamRepo *fakeTeamRepo, userRepo *fakeUserRepo, subRepo *fakeSubmissionRepo) (RosterService, *fakeHub) {
	hub := &fakeHub{}
	svc := NewRosterService(&fakeTxManager{}, hackRepo, teamRepo, userRepo, subRepo, hub, slog.Default())
	return svc, hub
}

func TestRosterService_ImportFormedTeams_SkipsRowsWithUnknownEmails(t *testing.T) {
	hackRepo := newFakeHackathonRepo(upcomingHackathon(1, 10))
	teamRepo := newFakeTeamRepo()
	userRepo := newFakeUserRepo(
		&models.User{ID: 1, Name: "Ada", Email: "ada@x.dev"},
		&models.User{ID: 2, Name: "Bram", Email: "bram@x.dev"},
	)
	svc, hub := newRosterServiceForTest(hackRepo, teamRepo, userRepo, &fakeSubmissionRepo{})

	csv := strings.Join([]string{
		"team_name,members_emails",
		`Alpha,"ada@x.dev, bram@x.dev"`,
		`Beta,"ada@x.dev, ghost@x.dev"`,
	}, "\n")

	result, err := svc.ImportFormedTeams(context.Background(), 10, 1, strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, result.TeamsCreated)
	require.Len(t, result.SkippedTeams, 1)
	require.Equal(t, "Beta", result.SkippedTeams[0].TeamName)
	require.Contains(t, result.SkippedTeams[0].Reason, "ghost@x.dev")

	require.Len(t, teamRepo.created, 1)
	require.Equal(t, "Alpha", teamRepo.created[0].Team.Name)
	require.ElementsMatch(t, []int{1, 2}, teamRepo.created[0].UserIDs)

	require.Contains(t, hub.eventTypes(), "TEAMS_IMPORTED")
}

func TestRosterService_ImportFormedTeams_SkipsBlankRows(t *testing.T) {
	hackRepo := newFakeHackathonRepo(upcomingHackathon(1, 10))
	teamRepo := newFakeTeamRepo()
	userRepo := newFakeUserRepo(&models.User{ID: 1, Name: "Ada", Email: "ada@x.dev"})
	svc, hub := newRosterServiceForTest(hackRepo, teamRepo, userRepo, &fakeSubmissionRepo{})

	csv := strings.Join([]string{
		"team_name,members_emails",
		",ada@x.dev",
		"Solo,",
	}, "\n")

	result, err := svc.ImportFormedTeams(context.Background(), 10, 1, strings.NewReader(csv))
	require.NoError(t, err)
	require.Zero(t, result.TeamsCreated)
	require.Len(t, result.SkippedTeams, 2)
	require.Empty(t, hub.eventTypes())
}

func TestRosterService_ImportFormedTeams_MissingColumns(t *testing.T) {
	hackRepo := newFakeHackathonRepo(upcomingHackathon(1, 10))
	svc, _ := newRosterServiceForTest(hackRepo, newFakeTeamRepo(), newFakeUserRepo(), &fakeSubmissionRepo{})

	csv := "squad,emails\nAlpha,ada@x.dev\n"
	_, err := svc.ImportFormedTeams(context.Background(), 10, 1, strings.NewReader(csv))

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Fields, "file")
}

func TestRosterService_ImportFormedTeams_UnknownHackathon(t *testing.T) {
	hackRepo := newFakeHackathonRepo(upcomingHackathon(1, 10))
	svc, _ := newRosterServiceForTest(hackRepo, newFakeTeamRepo(), newFakeUserRepo(), &fakeSubmissionRepo{})

	_, err := svc.ImportFormedTeams(context.Background(), 99, 1, strings.NewReader("team_name,members_emails\n"))
	require.ErrorIs(t, err, ErrHackathonNotFound)
}

func TestRosterService_ExportSubmissionsCSV(t *testing.T) {
	hackRepo := newFakeHackathonRepo(upcomingHackathon(1, 10))
	score := 87.5
	subRepo := &fakeSubmissionRepo{
		rows: []repositories.SubmissionExportRow{
			{
				Title:        "FlowSync",
				TeamName:     "Bitwise",
				GithubURL:    "https://github.com/bitwise/flowsync",
				About:        "Realtime sync, but simpler",
				Problem:      "Teams lose state across tools",
				TechStacks:   []string{"Go", "Postgres"},
				AIScore:      &score,
				MemberEmails: []string{"ada@x.dev", "bram@x.dev"},
				CreatedAt:    time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			},
		},
	}
	svc, _ := newRosterServiceForTest(hackRepo, newFakeTeamRepo(), newFakeUserRepo(), subRepo)

	csv, err := svc.ExportSubmissionsCSV(context.Background(), 10, 1)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "project_title,team_name,github_url,about_project,problem_statement,tech_stack,ai_score,team_member_emails,submission_date", lines[0])
	require.Contains(t, lines[1], "FlowSync")
	require.Contains(t, lines[1], `"Go, Postgres"`)
	require.Contains(t, lines[1], "87.5")
	require.Contains(t, lines[1], "2026-03-14 09:30:00")
}

func TestRosterService_ExportSubmissionsCSV_EmptyStillHasHeader(t *testing.T) {
	hackRepo := newFakeHackathonRepo(upcomingHackathon(1, 10))
	svc, _ := newRosterServiceForTest(hackRepo, newFakeTeamRepo(), newFakeUserRepo(), &fakeSubmissionRepo{})

	csv, err := svc.ExportSubmissionsCSV(context.Background(), 10, 1)
	require.NoError(t, err)
	require.Equal(t, "project_title,team_name,github_url,about_project,problem_statement,tech_stack,ai_score,team_member_emails,submission_date", strings.TrimSpace(csv))
}

func TestRosterService_ListSubmissionSummaries(t *testing.T) {
	hackRepo := newFakeHackathonRepo(upcomingHackathon(1, 10))
	subRepo := &fakeSubmissionRepo{
		summaries: []models.SubmissionSummary{
			{Title: "FlowSync", TeamID: 1, TeamName: "Bitwise", GithubURL: "https://github.com/bitwise/flowsync"},
		},
	}
	svc, _ := newRosterServiceForTest(hackRepo, newFakeTeamRepo(), newFakeUserRepo(), subRepo)

	summaries, err := svc.ListSubmissionSummaries(context.Background(), 10, 1)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, "Bitwise", summaries[0].TeamName)
}
