package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vendora-app/vendora/internal/domain/entity"
	"github.com/vendora-app/vendora/internal/domain/errs"
	repo "github.com/vendora-app/vendora/internal/domain/repository"
	"github.com/vendora-app/vendora/pkg/helpers"
	"github.com/vendora-app/vendora/pkg/mailer"
	mailtpl "github.com/vendora-app/vendora/pkg/mailer/templates"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// SessionStore keeps the single active login session of each user.
type SessionStore interface {
	Save(ctx context.Context, userID, sid string, fields map[string]any) error
	Current(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

// JobPublisher enqueues background jobs such as outgoing emails.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type UserService struct {
	Repo     repo.UserRepository
	JWT      *helpers.JWTManager
	Sessions SessionStore
	Jobs     JobPublisher
	Logger   *logrus.Logger
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func NewUserService(users repo.UserRepository, jwt *helpers.JWTManager, sessions SessionStore, jobs JobPublisher, logger *logrus.Logger) *UserService {
	return &UserService{
		Repo:     users,
		JWT:      jwt,
		Sessions: sessions,
		Jobs:     jobs,
		Logger:   logger,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Register creates an account. A duplicate email yields errs.ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, errs.Validation("missing required fields")
	}
	hash, err := helpers.HashPassword(in.Password)
	if errors.Is(err, helpers.ErrPasswordTooLong) {
		return nil, errs.Validation("password must be at most 72 bytes")
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	u := &entity.User{Email: email, Password: hash, Name: name}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}

	if s.Jobs != nil {
		job := mailer.EmailJob{
			To:       u.Email,
			Template: mailtpl.Welcome,
			Data:     mailtpl.NewWelcomeData(u.Name, u.Email),
		}
		if err := s.Jobs.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("enqueue welcome email failed")
		}
	}
	return u, nil
}

// Authenticate validates email/password and returns the user without issuing tokens.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueTokens generates access/refresh tokens bound to a fresh session id and records that session.
func (s *UserService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.tokens(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate tokens failed")
		}
		return TokenPair{}, err
	}
	if s.Sessions != nil {
		fields := map[string]any{"email": u.Email, "name": u.Name}
		if err := s.Sessions.Save(ctx, u.ID, sid, fields); err != nil {
			return TokenPair{}, fmt.Errorf("save session: %w", err)
		}
	}
	return pair, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh rotates the token pair. The refresh token must belong to the user's current session.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return TokenPair{}, "", ErrInvalidCredentials
		}
		return TokenPair{}, "", fmt.Errorf("load user: %w", err)
	}
	if s.Sessions != nil {
		current, err := s.Sessions.Current(ctx, u.ID)
		if err != nil || current == "" || current != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return TokenPair{}, "", err
	}
	return pair, u.ID, nil
}

func (s *UserService) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return errs.ErrUnauthenticated
	}
	if s.Sessions == nil {
		return nil
	}
	return s.Sessions.Delete(ctx, userID)
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	if userID == "" {
		return nil, errs.ErrUnauthenticated
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrUnauthenticated
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) tokens(userID, sid string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}
