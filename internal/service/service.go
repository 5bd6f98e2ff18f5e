package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/Dan9191/auth-service/internal/common"
	"github.com/Dan9191/auth-service/internal/models"
	"github.com/Dan9191/auth-service/internal/repository"
	"github.com/sirupsen/logrus"
)

// Minimum lengths accepted at registration
const (
	MinUsernameLength = 6
	MinPasswordLength = 6
)

// Validation messages returned to clients
const (
	MsgUsernameTooShort = "Username must be longer than 6 characters"
	MsgPasswordTooShort = "Password must be longer than 6 characters"
)

// UserStore is the credential store the service works against
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	SetAdmin(ctx context.Context, username string, admin bool) error
}

// Hasher hashes and checks passwords
type Hasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, hashed string) bool
}

// Service handles business logic
type Service struct {
	repo   UserStore
	hasher Hasher
	log    *logrus.Logger
}

// NewService initializes a new service
func NewService(repo UserStore, hasher Hasher, log *logrus.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, log: log}
}

// ValidateRegistration checks username before password and reports the first failure
func ValidateRegistration(username, password string) error {
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return &common.ValidationError{Message: MsgUsernameTooShort}
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return &common.ValidationError{Message: MsgPasswordTooShort}
	}
	return nil
}

// Register validates input and creates a new non-admin user with a hashed password
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	if err := ValidateRegistration(username, password); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hashed,
		Admin:        false,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			s.log.Infof("Registration rejected, username taken: %s", username)
		} else {
			s.log.Errorf("Failed to create user %s: %v", username, err)
		}
		return nil, &common.StoreError{Op: "create user", Err: err}
	}

	s.log.Infof("User registered: %s", user.Username)
	return user, nil
}

// Verify checks submitted credentials against the store.
// It returns common.ErrNoSuchUser, common.ErrBadPassword, a *common.StoreError,
// or the authenticated user.
func (s *Service) Verify(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.FindUserByUsername(ctx, username)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrNoSuchUser
	}
	if err != nil {
		s.log.Errorf("Failed to look up user %s: %v", username, err)
		return nil, &common.StoreError{Op: "find user", Err: err}
	}

	if !s.hasher.Compare(password, user.PasswordHash) {
		return nil, common.ErrBadPassword
	}

	s.log.Infof("User logged in: %s", user.Username)
	return user, nil
}

// UserByID loads the current record for a session's user identifier
func (s *Service) UserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.FindUserByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrNoSuchUser
	}
	if err != nil {
		return nil, &common.StoreError{Op: "find user by id", Err: err}
	}
	return user, nil
}

// IsAdmin re-reads the user by username and reports its admin flag.
// A user that no longer exists is reported as a store error.
func (s *Service) IsAdmin(ctx context.Context, username string) (bool, error) {
	user, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		return false, &common.StoreError{Op: "find user", Err: err}
	}
	return user.Admin, nil
}

// SetAdmin grants or revokes the admin flag. It is only reachable out of band.
func (s *Service) SetAdmin(ctx context.Context, username string, admin bool) error {
	err := s.repo.SetAdmin(ctx, username, admin)
	if errors.Is(err, common.ErrNotFound) {
		return common.ErrNoSuchUser
	}
	if err != nil {
		return &common.StoreError{Op: "set admin", Err: err}
	}
	s.log.Infof("Admin flag for %s set to %t", username, admin)
	return nil
}
