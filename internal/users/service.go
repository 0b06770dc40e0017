package users

import (
	"context"
	"errors"

	"meetingbot/internal/auth"

	"github.com/sirupsen/logrus"
)

var (
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrWebUserAlreadyExists = errors.New("web user with this login already exists")
	ErrInvalidCredentials   = errors.New("invalid login or password")
)

// Repo is the storage the service needs; *Repository is the Postgres
// implementation.
type Repo interface {
	ListRecords(ctx context.Context) ([]Record, error)
	GetRecordByUserID(ctx context.Context, userID int64) (*Record, error)
	CreateRecord(ctx context.Context, username string, userID int64, role string) (*Record, error)
	DeleteAllRecords(ctx context.Context) (int, error)
	CreateWebUser(ctx context.Context, login, passwordHash string, email, phone *string) (*WebUser, error)
	GetWebUserByLogin(ctx context.Context, login string) (*WebUser, error)
}

type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListUsers(ctx context.Context) ([]Record, error) {
	return s.repo.ListRecords(ctx)
}

// CreateUser enforces the unique external user id before insert.
func (s *Service) CreateUser(ctx context.Context, username string, userID int64, role string) (*Record, error) {
	existing, err := s.repo.GetRecordByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	return s.repo.CreateRecord(ctx, username, userID, role)
}

func (s *Service) DeleteAllUsers(ctx context.Context) (int, error) {
	return s.repo.DeleteAllRecords(ctx)
}

func (s *Service) RegisterWebUser(ctx context.Context, login, password string, email, phone *string) (*WebUser, error) {
	existing, err := s.repo.GetWebUserByLogin(ctx, login)
	if err != nil {
		logrus.Errorf("Failed to check for existing web user %q: %v", login, err)
		return nil, errors.New("internal error while checking user")
	}
	if existing != nil {
		return nil, ErrWebUserAlreadyExists
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		logrus.Errorf("Failed to hash password for %q: %v", login, err)
		return nil, errors.New("internal error while hashing password")
	}

	return s.repo.CreateWebUser(ctx, login, passwordHash, email, phone)
}

func (s *Service) AuthenticateWebUser(ctx context.Context, login, password string) (*WebUser, error) {
	user, err := s.repo.GetWebUserByLogin(ctx, login)
	if err != nil {
		logrus.Errorf("Failed to fetch web user %q for authentication: %v", login, err)
		return nil, errors.New("internal error during authentication")
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
