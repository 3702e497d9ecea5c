package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sketcher2345/hackathon-platform/live"
	"github.com/sketcher2345/hackathon-platform/models"
	"github.com/sketcher2345/hackathon-platform/repositories"
	"github.com/sketcher2345/hackathon-platform/storage"
)

// EventBroadcaster is the slice of the live hub the services need.
type EventBroadcaster interface {
	BroadcastEvent(event live.Event)
}

type CreateHackathonInput struct {
	Name                 string    `json:"name"`
	Body                 string    `json:"body"`
	TeamSize             int       `json:"team_size"`
	StartDate            time.Time `json:"start_date"`
	DurationHours        int       `json:"duration_hours"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
	SupportEmail         string    `json:"support_email"`
}

// UpdateHackathonInput is a partial update: nil fields stay unchanged.
// Only the fields named here are mutable through the update endpoint.
type UpdateHackathonInput struct {
	Name                 *string    `json:"name"`
	Body                 *string    `json:"body"`
	TeamSize             *int       `json:"team_size"`
	StartDate            *time.Time `json:"start_date"`
	DurationHours        *int       `json:"duration_hours"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	SupportEmail         *string    `json:"support_email"`
}

// RegistrationExport carries the CSV snapshot produced when registration
// closes: one file of approved teams, one of approved individuals.
type RegistrationExport struct {
	TeamsCSV       string `json:"teams_csv"`
	IndividualsCSV string `json:"individuals_csv"`
}

type HackathonService interface {
	Create(ctx context.Context, hostID int, input CreateHackathonInput) (*models.Hackathon, error)
	List(ctx context.Context, hostID int) ([]models.Hackathon, error)
	GetByID(ctx context.Context, hostID, hackathonID int) (*models.Hackathon, error)
	Update(ctx context.Context, hostID, hackathonID int, input UpdateHackathonInput) (*models.Hackathon, error)
	Start(ctx context.Context, hostID, hackathonID int) (*models.Hackathon, error)
	CloseRegistration(ctx context.Context, hostID, hackathonID int) (*RegistrationExport, error)
	UploadLogo(ctx context.Context, hostID, hackathonID int, contentType string, file io.Reader) (string, error)
	UploadBanner(ctx context.Context, hostID, hackathonID int, contentType string, file io.Reader) (string, error)
}

type hackathonService struct {
	tx            repositories.TxManager
	hackathonRepo repositories.HackathonRepository
	teamRepo      repositories.TeamRepository
	regRepo       repositories.RegistrationRepository
	uploader      storage.FileUploader
	hub           EventBroadcaster
	logger        *slog.Logger
}

func NewHackathonService(
	tx repositories.TxManager,
	hackathonRepo repositories.HackathonRepository,
	teamRepo repositories.TeamRepository,
	regRepo repositories.RegistrationRepository,
	uploader storage.FileUploader,
	hub EventBroadcaster,
	logger *slog.Logger,
) HackathonService {
	return &hackathonService{
		tx:            tx,
		hackathonRepo: hackathonRepo,
		teamRepo:      teamRepo,
		regRepo:       regRepo,
		uploader:      uploader,
		hub:           hub,
		logger:        logger,
	}
}

func (s *hackathonService) Create(ctx context.Context, hostID int, input CreateHackathonInput) (*models.Hackathon, error) {
	fields := map[string]string{}
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "must be provided"
	}
	if strings.TrimSpace(input.Body) == "" {
		fields["body"] = "must be provided"
	}
	if input.TeamSize <= 0 {
		fields["team_size"] = "must be a positive integer"
	}
	if input.StartDate.IsZero() {
		fields["start_date"] = "must be provided"
	}
	if input.DurationHours <= 0 {
		fields["duration_hours"] = "must be a positive integer"
	}
	if input.RegistrationDeadline.IsZero() {
		fields["registration_deadline"] = "must be provided"
	}
	if strings.TrimSpace(input.SupportEmail) == "" {
		fields["support_email"] = "must be provided"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hackathon := &models.Hackathon{
		HostID:               hostID,
		Name:                 input.Name,
		Body:                 input.Body,
		TeamSize:             input.TeamSize,
		StartDate:            input.StartDate,
		DurationHours:        input.DurationHours,
		RegistrationDeadline: input.RegistrationDeadline,
		SupportEmail:         input.SupportEmail,
		IsRegistrationOpen:   true,
		Status:               models.StatusUpcoming,
	}

	if err := s.hackathonRepo.Create(ctx, hackathon); err != nil {
		return nil, fmt.Errorf("failed to create hackathon: %w", err)
	}
	return hackathon, nil
}

func (s *hackathonService) List(ctx context.Context, hostID int) ([]models.Hackathon, error) {
	hackathons, err := s.hackathonRepo.ListByHost(ctx, hostID)
	if err != nil {
		return nil, err
	}
	for i := range hackathons {
		s.populateAssetURLs(&hackathons[i])
	}
	return hackathons, nil
}

func (s *hackathonService) GetByID(ctx context.Context, hostID, hackathonID int) (*models.Hackathon, error) {
	hackathon, err := s.hackathonRepo.GetByIDForHost(ctx, nil, hackathonID, hostID)
	if err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return nil, ErrHackathonNotFound
		}
		return nil, err
	}
	s.populateAssetURLs(hackathon)
	return hackathon, nil
}

func (s *hackathonService) Update(ctx context.Context, hostID, hackathonID int, input UpdateHackathonInput) (*models.Hackathon, error) {
	if input.TeamSize != nil && *input.TeamSize <= 0 {
		return nil, &ValidationError{Fields: map[string]string{"team_size": "must be a positive integer"}}
	}
	if input.DurationHours != nil && *input.DurationHours <= 0 {
		return nil, &ValidationError{Fields: map[string]string{"duration_hours": "must be a positive integer"}}
	}

	params := repositories.UpdateHackathonParams{
		Name:                 input.Name,
		Body:                 input.Body,
		TeamSize:             input.TeamSize,
		StartDate:            input.StartDate,
		DurationHours:        input.DurationHours,
		RegistrationDeadline: input.RegistrationDeadline,
		SupportEmail:         input.SupportEmail,
	}

	if err := s.hackathonRepo.UpdateDetails(ctx, hackathonID, hostID, params); err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return nil, ErrHackathonNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, hostID, hackathonID)
}

func (s *hackathonService) Start(ctx context.Context, hostID, hackathonID int) (*models.Hackathon, error) {
	hackathon, err := s.GetByID(ctx, hostID, hackathonID)
	if err != nil {
		return nil, err
	}
	if hackathon.Status != models.StatusUpcoming {
		return nil, fmt.Errorf("%w: cannot start a hackathon that is already %s", ErrHackathonNotUpcoming, hackathon.Status)
	}

	// The conditional update is the real guard: of two concurrent starts
	// only one can match status = UPCOMING.
	if err := s.hackathonRepo.StartIfUpcoming(ctx, hackathonID, hostID, time.Now()); err != nil {
		if errors.Is(err, repositories.ErrHackathonNotUpcoming) {
			return nil, fmt.Errorf("%w: hackathon was started concurrently", ErrHackathonNotUpcoming)
		}
		return nil, err
	}

	started, err := s.GetByID(ctx, hostID, hackathonID)
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastEvent(live.Event{
		Type:        live.EventHackathonStarted,
		HackathonID: hackathonID,
		Payload:     map[string]interface{}{"actual_start_time": started.ActualStartTime},
	})
	return started, nil
}

func (s *hackathonService) CloseRegistration(ctx context.Context, hostID, hackathonID int) (*RegistrationExport, error) {
	var export *RegistrationExport

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.hackathonRepo.CloseRegistration(ctx, exec, hackathonID, hostID); err != nil {
			if errors.Is(err, repositories.ErrHackathonRegistrationClosed) {
				// Zero rows: either the flag is already down or the hackathon
				// is not this host's. Disambiguate with an owned read.
				if _, getErr := s.hackathonRepo.GetByIDForHost(ctx, exec, hackathonID, hostID); getErr != nil {
					return ErrHackathonNotFound
				}
				return ErrRegistrationAlreadyClosed
			}
			return err
		}

		roster, err := s.teamRepo.ListRosterByHackathon(ctx, exec, hackathonID)
		if err != nil {
			return err
		}
		individuals, err := s.regRepo.ListApprovedIndividuals(ctx, exec, hackathonID)
		if err != nil {
			return err
		}

		export, err = buildRegistrationExport(roster, individuals)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastEvent(live.Event{
		Type:        live.EventRegistrationClosed,
		HackathonID: hackathonID,
	})
	return export, nil
}

func buildRegistrationExport(roster []repositories.TeamRosterRow, individuals []*models.Registration) (*RegistrationExport, error) {
	teamRows := make([][]string, 0, len(roster))
	for _, row := range roster {
		teamRows = append(teamRows, []string{
			row.TeamName,
			strings.Join(row.MemberEmails, ", "),
			strings.Join(row.MemberNames, ", "),
		})
	}
	teamsCSV, err := unparseCSV([]string{"team_name", "members_emails", "members_names"}, teamRows)
	if err != nil {
		return nil, err
	}

	individualRows := make([][]string, 0)
	for _, reg := range individuals {
		for _, p := range reg.Participants {
			name, email := "", ""
			if p.User != nil {
				name, email = p.User.Name, p.User.Email
			}
			individualRows = append(individualRows, []string{name, email, p.GithubURL, p.College, p.Year})
		}
	}
	individualsCSV, err := unparseCSV([]string{"name", "email", "github_url", "college", "year"}, individualRows)
	if err != nil {
		return nil, err
	}

	return &RegistrationExport{TeamsCSV: teamsCSV, IndividualsCSV: individualsCSV}, nil
}

func (s *hackathonService) UploadLogo(ctx context.Context, hostID, hackathonID int, contentType string, file io.Reader) (string, error) {
	return s.uploadImage(ctx, hostID, hackathonID, "logo", contentType, file)
}

func (s *hackathonService) UploadBanner(ctx context.Context, hostID, hackathonID int, contentType string, file io.Reader) (string, error) {
	return s.uploadImage(ctx, hostID, hackathonID, "banner", contentType, file)
}

func (s *hackathonService) uploadImage(ctx context.Context, hostID, hackathonID int, slot, contentType string, file io.Reader) (string, error) {
	hackathon, err := s.GetByID(ctx, hostID, hackathonID)
	if err != nil {
		return "", err
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, contentType)
	}

	token, err := randomHex(8)
	if err != nil {
		return "", fmt.Errorf("failed to generate image key: %w", err)
	}
	key := fmt.Sprintf("hackathons/%d/%s_%s%s", hackathonID, slot, token, ext)

	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s image: %w", slot, err)
	}

	var oldKey *string
	if slot == "logo" {
		oldKey = hackathon.LogoKey
		err = s.hackathonRepo.UpdateLogoKey(ctx, hackathonID, &result.Key)
	} else {
		oldKey = hackathon.BannerKey
		err = s.hackathonRepo.UpdateBannerKey(ctx, hackathonID, &result.Key)
	}
	if err != nil {
		return "", err
	}

	// Replacing an image leaves the previous object orphaned; deleting it is
	// best-effort only.
	if oldKey != nil && *oldKey != "" {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.Warn("failed to delete replaced image",
				slog.String("key", *oldKey), slog.Any("error", delErr))
		}
	}

	return result.Location, nil
}

func (s *hackathonService) populateAssetURLs(h *models.Hackathon) {
	if h == nil || s.uploader == nil {
		return
	}
	if h.LogoKey != nil && *h.LogoKey != "" {
		if url := s.uploader.GetPublicURL(*h.LogoKey); url != "" {
			h.LogoURL = &url
		}
	}
	if h.BannerKey != nil && *h.BannerKey != "" {
		if url := s.uploader.GetPublicURL(*h.BannerKey); url != "" {
			h.BannerURL = &url
		}
	}
}

func extensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("could not determine file extension from content type %q", contentType)
	}
}

func randomHex(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
