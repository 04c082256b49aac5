package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/refi-auto/ms-go-accounts/app/dto"
	"github.com/refi-auto/ms-go-accounts/app/entity"
	"github.com/refi-auto/ms-go-accounts/app/repository"
	"github.com/refi-auto/ms-go-accounts/config"
)

var (
	ErrUsernameTaken      = errors.New("a user with that username already exists")
	ErrEmailTaken         = errors.New("a user with that email already exists")
	ErrUserExists         = errors.New("a user with that username or email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordMismatch   = errors.New("current password is incorrect")
	ErrWeakPassword       = errors.New("password does not meet policy requirements")
)

type userRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uint64) (*entity.User, error)
	Delete(ctx context.Context, id uint64) (int64, error)
	UpdatePasswordHash(ctx context.Context, id uint64, passwordHash string) error
}

type revokedTokenRepository interface {
	Add(ctx context.Context, token *entity.RevokedToken) error
}

type UserService struct {
	userRepo    userRepository
	revokedRepo revokedTokenRepository
	tokens      *TokenService
	policy      config.PasswordPolicy
}

func NewUserService(
	userRepo userRepository,
	revokedRepo revokedTokenRepository,
	tokens *TokenService,
	policy config.PasswordPolicy,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		revokedRepo: revokedRepo,
		tokens:      tokens,
		policy:      policy,
	}
}

func (s *UserService) Register(ctx context.Context, firstName, lastName, email, username, password string) (*entity.User, error) {
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	existing, err = s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	if err := s.policy.Validate(password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Concurrent registration lost the race against the unique index.
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and issues a fresh access token plus a refresh
// token. Unknown username and wrong password are indistinguishable to the
// caller.
func (s *UserService) Login(ctx context.Context, username, password string) (*dto.TokenPair, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.tokens.IssueAccessToken(user.ID, true)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout denylists the presented token's jti until its natural expiry.
func (s *UserService) Logout(ctx context.Context, claims *Claims) error {
	return s.revoke(ctx, claims)
}

// Refresh mints a non-fresh access token and denylists the presented refresh
// token, making refresh tokens single-use.
func (s *UserService) Refresh(ctx context.Context, claims *Claims) (string, error) {
	accessToken, err := s.tokens.IssueAccessToken(claims.UserID, false)
	if err != nil {
		return "", err
	}

	if err := s.revoke(ctx, claims); err != nil {
		return "", err
	}

	return accessToken, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint64) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint64) error {
	rowsDeleted, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rowsDeleted == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ChangePassword swaps the stored hash after verifying the current password.
// A failed verification leaves the stored hash untouched.
func (s *UserService) ChangePassword(ctx context.Context, userID uint64, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if !CheckPassword(currentPassword, user.PasswordHash) {
		return ErrPasswordMismatch
	}

	if err := s.policy.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.userRepo.UpdatePasswordHash(ctx, user.ID, passwordHash)
}

func (s *UserService) revoke(ctx context.Context, claims *Claims) error {
	expiresAt := time.Now()
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return s.revokedRepo.Add(ctx, &entity.RevokedToken{
		JTI:       claims.ID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	})
}
