package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/sketcher2345/hackathon-platform/models"
	"github.com/sketcher2345/hackathon-platform/repositories"
)

const tokenTTL = 24 * time.Hour

type RegisterHostInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterHostInput) (*models.Host, error)
	// Login verifies credentials and returns the host with a signed bearer
	// token carrying the host id.
	Login(ctx context.Context, input LoginInput) (*models.Host, string, error)
}

type authService struct {
	hostRepo  repositories.HostRepository
	jwtSecret []byte
}

func NewAuthService(hostRepo repositories.HostRepository, jwtSecret []byte) AuthService {
	return &authService{hostRepo: hostRepo, jwtSecret: jwtSecret}
}

func (s *authService) Register(ctx context.Context, input RegisterHostInput) (*models.Host, error) {
	fields := map[string]string{}
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "must be provided"
	}
	if strings.TrimSpace(input.Email) == "" {
		fields["email"] = "must be provided"
	}
	if len(input.Password) < 8 {
		fields["password"] = "must be at least 8 characters"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	host := &models.Host{
		Name:         input.Name,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hash),
	}

	if err := s.hostRepo.Create(ctx, host); err != nil {
		if errors.Is(err, repositories.ErrHostEmailConflict) {
			return nil, ErrAuthEmailTaken
		}
		return nil, err
	}
	return host, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Host, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	host, err := s.hostRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrHostNotFound) {
			return nil, "", ErrAuthInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(host.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", ErrAuthInvalidCredentials
	}

	token, err := s.generateToken(host)
	if err != nil {
		return nil, "", err
	}
	return host, token, nil
}

func (s *authService) generateToken(host *models.Host) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"host_id": host.ID,
		"email":   host.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
