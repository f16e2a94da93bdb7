// Package account keeps the locally registered users of this device and
// tracks which one is signed in.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	"github.com/Joseda-hg/taskdeck/internal/db"
	"github.com/Joseda-hg/taskdeck/internal/model"
	"github.com/Joseda-hg/taskdeck/internal/store"
)

var (
	ErrEmailTaken      = errors.New("an account with this email already exists")
	ErrNoAccount       = errors.New("no account found with this email")
	ErrInvalidPassword = errors.New("invalid password")
	ErrNotLoggedIn     = errors.New("not logged in")
)

const MinPasswordLength = 6

type Repository interface {
	CreateUser(ctx context.Context, user model.User) error
	UserByEmail(ctx context.Context, email string) (model.User, error)
	UserByID(ctx context.Context, id string) (model.User, error)
	UpdateUser(ctx context.Context, user model.User) error
	DeleteUser(ctx context.Context, id string) error
	SetCurrentUser(ctx context.Context, userID string) error
	ClearCurrentUser(ctx context.Context) error
	CurrentUserID(ctx context.Context) (string, bool, error)
}

type Service struct {
	repo      Repository
	passwords *PasswordManager
	now       func() time.Time
}

type Option func(*Service)

func WithPasswordManager(m *PasswordManager) Option {
	return func(s *Service) { s.passwords = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, passwords: NewPasswordManager(0), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Register creates an account and signs it in.
func (s *Service) Register(ctx context.Context, input RegisterInput) (model.User, error) {
	email := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)

	verr := &store.ValidationError{Fields: map[string]string{}}
	if email == "" {
		verr.Fields["email"] = "Email is required"
	} else if !govalidator.IsEmail(email) {
		verr.Fields["email"] = "Email is invalid"
	}
	if name == "" {
		verr.Fields["name"] = "Name is required"
	}
	if len(input.Password) < MinPasswordLength {
		verr.Fields["password"] = "Password must be at least 6 characters"
	}
	if len(verr.Fields) > 0 {
		return model.User{}, verr
	}

	if _, err := s.repo.UserByEmail(ctx, email); err == nil {
		return model.User{}, ErrEmailTaken
	} else if !errors.Is(err, db.ErrNotFound) {
		return model.User{}, err
	}

	hash, err := s.passwords.HashPassword(input.Password)
	if err != nil {
		return model.User{}, err
	}

	user := model.User{
		ID:           newUserID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, err
	}
	if err := s.repo.SetCurrentUser(ctx, user.ID); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (model.User, error) {
	user, err := s.repo.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, db.ErrNotFound) {
		return model.User{}, ErrNoAccount
	}
	if err != nil {
		return model.User{}, err
	}
	if !s.passwords.VerifyPassword(user.PasswordHash, password) {
		return model.User{}, ErrInvalidPassword
	}
	if err := s.repo.SetCurrentUser(ctx, user.ID); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.repo.ClearCurrentUser(ctx)
}

func (s *Service) CurrentUserID(ctx context.Context) (string, bool, error) {
	return s.repo.CurrentUserID(ctx)
}

// Current returns the signed-in user. A pointer to a vanished account is
// cleared and reported as signed out.
func (s *Service) Current(ctx context.Context) (model.User, bool, error) {
	id, ok, err := s.repo.CurrentUserID(ctx)
	if err != nil || !ok {
		return model.User{}, false, err
	}
	user, err := s.repo.UserByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return model.User{}, false, s.repo.ClearCurrentUser(ctx)
	}
	if err != nil {
		return model.User{}, false, err
	}
	return user, true, nil
}

// RequireCurrent is Current with ErrNotLoggedIn in place of ok=false.
func (s *Service) RequireCurrent(ctx context.Context) (model.User, error) {
	user, ok, err := s.Current(ctx)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, ErrNotLoggedIn
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID, name string) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, store.NewValidationError("name", "Name is required")
	}
	user, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	user.Name = name
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.passwords.VerifyPassword(user.PasswordHash, current) {
		return ErrInvalidPassword
	}
	if len(next) < MinPasswordLength {
		return store.NewValidationError("password", "Password must be at least 6 characters")
	}
	hash, err := s.passwords.HashPassword(next)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.repo.UpdateUser(ctx, user)
}

// DeleteAccount removes the user and everything stored for them once the
// password checks out.
func (s *Service) DeleteAccount(ctx context.Context, userID, password string) error {
	user, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.passwords.VerifyPassword(user.PasswordHash, password) {
		return ErrInvalidPassword
	}
	return s.repo.DeleteUser(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newUserID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "user_" + uuid.NewString()
	}
	return "user_" + id.String()
}
