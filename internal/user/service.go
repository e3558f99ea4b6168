package user

import (
	"context"
	"errors"
	"strings"

	"shokolad-be/internal/logger"
	"shokolad-be/internal/mailer"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, params CreateParams) (*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	UpdateByID(ctx context.Context, id string, params UpdateParams) (*User, error)
	UpdateMe(ctx context.Context, id string, params UpdateParams) (*User, error)
	UpdateStatus(ctx context.Context, id string, active bool) (*User, error)
	Deactivate(ctx context.Context, id string) (*User, error)
	DeleteByID(ctx context.Context, id string) error

	Login(ctx context.Context, email, password string) (*User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*User, *TokenPair, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type service struct {
	repo   Repository
	mailer mailer.Mailer
}

func NewService(repo Repository, mailer mailer.Mailer) Service {
	return &service{repo: repo, mailer: mailer}
}

func (s *service) Create(ctx context.Context, params CreateParams) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.String("email", params.Email),
	)
	log.Info("Create user started")

	if strings.TrimSpace(params.Password) == "" {
		return nil, ErrEmptyPassword
	}
	if params.Role != nil && !ValidRole(*params.Role) {
		return nil, ErrInvalidRole
	}

	// Checked up front for a friendly error; the unique index still backs
	// this up under concurrent inserts.
	if _, err := s.repo.FindByEmail(ctx, params.Email); err == nil {
		log.Warn("Create user rejected: email taken")
		return nil, ErrEmailExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return nil, err
	}
	params.Password = hash

	u, err := s.repo.Insert(ctx, params)
	if err != nil {
		log.Error("failed to insert user", zap.Error(err))
		return nil, err
	}

	log.Info("Create user success", zap.String("user_id", u.ID))
	return u, nil
}

func (s *service) FindAll(ctx context.Context) ([]*User, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) FindByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidUserID
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) UpdateByID(ctx context.Context, id string, params UpdateParams) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidUserID
	}
	if params.Role != nil && !ValidRole(*params.Role) {
		return nil, ErrInvalidRole
	}
	if err := s.hashUpdatePassword(&params); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, id, params)
}

// UpdateMe is the self-service variant: the role field is ignored no matter
// what the caller sends.
func (s *service) UpdateMe(ctx context.Context, id string, params UpdateParams) (*User, error) {
	params.Role = nil
	return s.UpdateByID(ctx, id, params)
}

func (s *service) hashUpdatePassword(params *UpdateParams) error {
	if params.Password == nil {
		return nil
	}
	if strings.TrimSpace(*params.Password) == "" {
		return ErrEmptyPassword
	}
	hash, err := HashPassword(*params.Password)
	if err != nil {
		return err
	}
	params.Password = &hash
	return nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, active bool) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidUserID
	}
	return s.repo.SetActive(ctx, id, active)
}

func (s *service) Deactivate(ctx context.Context, id string) (*User, error) {
	return s.UpdateStatus(ctx, id, false)
}

func (s *service) DeleteByID(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidUserID
	}
	return s.repo.Delete(ctx, id)
}

// Login deliberately reports the same error for an unknown email, a wrong
// password and a deactivated account.
func (s *service) Login(ctx context.Context, email, password string) (*User, *TokenPair, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
		zap.String("email", email),
	)

	u, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		log.Warn("Login failed: unknown email")
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}

	if !u.IsActive || !CheckPasswordHash(password, u.Password) {
		log.Warn("Login failed: bad password or inactive account")
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := GenerateTokenPair(u)
	if err != nil {
		return nil, nil, err
	}

	log.Info("Login success", zap.String("user_id", u.ID))
	return u, pair, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*User, *TokenPair, error) {
	claims, err := ParseJWT(refreshToken)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}
	if claims.Purpose != PurposeRefresh {
		return nil, nil, ErrInvalidToken
	}

	u, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, nil, err
	}
	if !u.IsActive {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := GenerateTokenPair(u)
	if err != nil {
		return nil, nil, err
	}

	return u, pair, nil
}

// ForgotPassword never reveals whether the email is registered.
func (s *service) ForgotPassword(ctx context.Context, email string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ForgotPassword"),
	)

	u, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		log.Info("ForgotPassword for unknown email, nothing sent")
		return nil
	}
	if err != nil {
		return err
	}

	token, err := GenerateResetToken(u)
	if err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, u.Email, token); err != nil {
		log.Error("failed to send reset mail", zap.Error(err))
		return err
	}

	log.Info("ForgotPassword mail sent", zap.String("user_id", u.ID))
	return nil
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return ErrEmptyPassword
	}

	claims, err := ParseJWT(token)
	if err != nil {
		return ErrInvalidToken
	}
	if claims.Purpose != PurposeReset {
		return ErrInvalidToken
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.repo.SetPassword(ctx, claims.Subject, hash)
}
