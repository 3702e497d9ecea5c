package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sketcher2345/hackathon-platform/live"
	"github.com/sketcher2345/hackathon-platform/models"
	"github.com/sketcher2345/hackathon-platform/repositories"
	"github.com/sketcher2345/hackathon-platform/storage"
)

// In-memory doubles for the repository, transaction, upload, notification and
// broadcast dependencies. They keep just enough state to assert outcomes.

type fakeTxManager struct {
	beginErr error
	calls    int
}

func (f *fakeTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.calls++
	if f.beginErr != nil {
		return f.beginErr
	}
	return fn(nil)
}

type fakeHub struct {
	mu     sync.Mutex
	events []live.Event
}

func (f *fakeHub) BroadcastEvent(event live.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeHub) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, 0, len(f.events))
	for _, e := range f.events {
		types = append(types, e.Type)
	}
	return types
}

type sentEmail struct {
	Email    string
	Approved bool
}

type fakeNotifier struct {
	mu      sync.Mutex
	sendErr error
	sent    []sentEmail
}

func (f *fakeNotifier) SendRegistrationDecision(email, name, hackathonName string, approved bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{Email: email, Approved: approved})
	return f.sendErr
}

type fakeHackathonRepo struct {
	hackathons map[int]*models.Hackathon

	closeRegistrationErr error
	setStatusCalls       []models.HackathonStatus
}

func newFakeHackathonRepo(hackathons ...*models.Hackathon) *fakeHackathonRepo {
	repo := &fakeHackathonRepo{hackathons: make(map[int]*models.Hackathon)}
	for _, h := range hackathons {
		repo.hackathons[h.ID] = h
	}
	return repo
}

func (f *fakeHackathonRepo) Create(ctx context.Context, h *models.Hackathon) error {
	h.ID = len(f.hackathons) + 1
	h.CreatedAt = time.Now()
	f.hackathons[h.ID] = h
	return nil
}

func (f *fakeHackathonRepo) GetByIDForHost(ctx context.Context, exec repositories.SQLExecutor, id, hostID int) (*models.Hackathon, error) {
	h, ok := f.hackathons[id]
	if !ok || h.HostID != hostID {
		return nil, repositories.ErrHackathonNotFound
	}
	copied := *h
	return &copied, nil
}

func (f *fakeHackathonRepo) ListByHost(ctx context.Context, hostID int) ([]models.Hackathon, error) {
	result := make([]models.Hackathon, 0)
	for _, h := range f.hackathons {
		if h.HostID == hostID {
			result = append(result, *h)
		}
	}
	return result, nil
}

func (f *fakeHackathonRepo) UpdateDetails(ctx context.Context, id, hostID int, params repositories.UpdateHackathonParams) error {
	h, ok := f.hackathons[id]
	if !ok || h.HostID != hostID {
		return repositories.ErrHackathonNotFound
	}
	if params.Name != nil {
		h.Name = *params.Name
	}
	if params.Body != nil {
		h.Body = *params.Body
	}
	if params.TeamSize != nil {
		h.TeamSize = *params.TeamSize
	}
	if params.StartDate != nil {
		h.StartDate = *params.StartDate
	}
	if params.DurationHours != nil {
		h.DurationHours = *params.DurationHours
	}
	if params.RegistrationDeadline != nil {
		h.RegistrationDeadline = *params.RegistrationDeadline
	}
	if params.SupportEmail != nil {
		h.SupportEmail = *params.SupportEmail
	}
	return nil
}

func (f *fakeHackathonRepo) StartIfUpcoming(ctx context.Context, id, hostID int, startedAt time.Time) error {
	h, ok := f.hackathons[id]
	if !ok || h.HostID != hostID || h.Status != models.StatusUpcoming {
		return repositories.ErrHackathonNotUpcoming
	}
	h.Status = models.StatusLive
	h.ActualStartTime = &startedAt
	return nil
}

func (f *fakeHackathonRepo) CloseRegistration(ctx context.Context, exec repositories.SQLExecutor, id, hostID int) error {
	if f.closeRegistrationErr != nil {
		return f.closeRegistrationErr
	}
	h, ok := f.hackathons[id]
	if !ok || h.HostID != hostID || !h.IsRegistrationOpen {
		return repositories.ErrHackathonRegistrationClosed
	}
	h.IsRegistrationOpen = false
	return nil
}

func (f *fakeHackathonRepo) SetStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.HackathonStatus) error {
	h, ok := f.hackathons[id]
	if !ok {
		return repositories.ErrHackathonNotFound
	}
	h.Status = status
	f.setStatusCalls = append(f.setStatusCalls, status)
	return nil
}

func (f *fakeHackathonRepo) UpdateLogoKey(ctx context.Context, id int, key *string) error {
	h, ok := f.hackathons[id]
	if !ok {
		return repositories.ErrHackathonNotFound
	}
	h.LogoKey = key
	return nil
}

func (f *fakeHackathonRepo) UpdateBannerKey(ctx context.Context, id int, key *string) error {
	h, ok := f.hackathons[id]
	if !ok {
		return repositories.ErrHackathonNotFound
	}
	h.BannerKey = key
	return nil
}

type fakeRegistrationRepo struct {
	registrations map[int]*models.Registration
	hostByHack    map[int]int

	approvedIndividuals []*models.Registration
	updateStatusErr     error
}

func newFakeRegistrationRepo(hostByHack map[int]int, regs ...*models.Registration) *fakeRegistrationRepo {
	repo := &fakeRegistrationRepo{
		registrations: make(map[int]*models.Registration),
		hostByHack:    hostByHack,
	}
	for _, r := range regs {
		repo.registrations[r.ID] = r
	}
	return repo
}

func (f *fakeRegistrationRepo) GetByIDForHost(ctx context.Context, id, hostID int) (*models.Registration, error) {
	reg, ok := f.registrations[id]
	if !ok || f.hostByHack[reg.HackathonID] != hostID {
		return nil, repositories.ErrRegistrationNotFound
	}
	copied := *reg
	return &copied, nil
}

func (f *fakeRegistrationRepo) ListPendingByHackathon(ctx context.Context, hackathonID int) ([]*models.Registration, error) {
	result := make([]*models.Registration, 0)
	for _, r := range f.registrations {
		if r.HackathonID == hackathonID && r.Status == models.RegistrationPending {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeRegistrationRepo) ListApprovedIndividuals(ctx context.Context, exec repositories.SQLExecutor, hackathonID int) ([]*models.Registration, error) {
	return f.approvedIndividuals, nil
}

func (f *fakeRegistrationRepo) UpdateStatusFromPending(ctx context.Context, exec repositories.SQLExecutor, id int, status models.RegistrationStatus) error {
	if f.updateStatusErr != nil {
		return f.updateStatusErr
	}
	reg, ok := f.registrations[id]
	if !ok || reg.Status != models.RegistrationPending {
		return repositories.ErrRegistrationAlreadyDecided
	}
	reg.Status = status
	return nil
}

type createdTeam struct {
	Team    models.Team
	UserIDs []int
}

type fakeTeamRepo struct {
	nextID  int
	created []createdTeam
	roster  []repositories.TeamRosterRow

	createErr        error
	createMembersErr error

	ranks       map[int]int
	validTeams  map[int]int // team id -> hackathon id
	resetCalls  int
	setRankErrs map[int]error
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		nextID:     1,
		ranks:      make(map[int]int),
		validTeams: make(map[int]int),
	}
}

func (f *fakeTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	if f.createErr != nil {
		return f.createErr
	}
	team.ID = f.nextID
	f.nextID++
	f.created = append(f.created, createdTeam{Team: *team})
	f.validTeams[team.ID] = team.HackathonID
	return nil
}

func (f *fakeTeamRepo) CreateMembers(ctx context.Context, exec repositories.SQLExecutor, teamID int, userIDs []int) error {
	if f.createMembersErr != nil {
		return f.createMembersErr
	}
	for i := range f.created {
		if f.created[i].Team.ID == teamID {
			f.created[i].UserIDs = append(f.created[i].UserIDs, userIDs...)
		}
	}
	return nil
}

func (f *fakeTeamRepo) ListRosterByHackathon(ctx context.Context, exec repositories.SQLExecutor, hackathonID int) ([]repositories.TeamRosterRow, error) {
	return f.roster, nil
}

func (f *fakeTeamRepo) ResetRanks(ctx context.Context, exec repositories.SQLExecutor, hackathonID int) error {
	f.resetCalls++
	f.ranks = make(map[int]int)
	return nil
}

func (f *fakeTeamRepo) SetRank(ctx context.Context, exec repositories.SQLExecutor, teamID, hackathonID, rank int) error {
	if err, ok := f.setRankErrs[teamID]; ok {
		return err
	}
	if f.validTeams[teamID] != hackathonID {
		return repositories.ErrTeamNotFound
	}
	f.ranks[teamID] = rank
	return nil
}

type fakeUserRepo struct {
	byEmail map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{byEmail: make(map[string]*models.User)}
	for _, u := range users {
		repo.byEmail[u.Email] = u
	}
	return repo
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) FindByEmails(ctx context.Context, emails []string) ([]*models.User, error) {
	result := make([]*models.User, 0, len(emails))
	for _, email := range emails {
		if u, ok := f.byEmail[email]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

type fakeSubmissionRepo struct {
	rows      []repositories.SubmissionExportRow
	summaries []models.SubmissionSummary
}

func (f *fakeSubmissionRepo) ListExportRowsByHackathon(ctx context.Context, hackathonID, hostID int) ([]repositories.SubmissionExportRow, error) {
	return f.rows, nil
}

func (f *fakeSubmissionRepo) ListSummariesByHackathon(ctx context.Context, hackathonID, hostID int) ([]models.SubmissionSummary, error) {
	return f.summaries, nil
}

type fakeUploader struct {
	uploaded []string
	deleted  []string
}

func (f *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	f.uploaded = append(f.uploaded, key)
	return &storage.UploadResult{Key: key, Location: "https://cdn.example.com/" + key}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}
