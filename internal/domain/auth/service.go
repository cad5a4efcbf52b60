package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"inkhub/internal/core/apperror"
	appctx "inkhub/internal/core/context"
	"inkhub/internal/data"
	"inkhub/internal/domain/entity"
	"inkhub/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	PasswordMinLength int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		PasswordMinLength: 6,
	}
}

// Service provides login and account credential logic on top of the data
// layer.
type Service struct {
	layer      *data.Layer
	sessions   *SessionManager
	jwtService *JWTService
	config     ServiceConfig

	// onLogin re-arms the reconciler's conflict latch for the new session.
	onLogin func()
}

// NewService creates a new auth service.
func NewService(layer *data.Layer, sessions *SessionManager, jwtService *JWTService, config ServiceConfig) *Service {
	return &Service{
		layer:      layer,
		sessions:   sessions,
		jwtService: jwtService,
		config:     config,
	}
}

// OnLogin registers a hook invoked after each successful login.
func (s *Service) OnLogin(fn func()) {
	s.onLogin = fn
}

// LoginResult carries everything the transport needs after a login.
type LoginResult struct {
	User        entity.User
	AccessToken string
	ExpiresAt   time.Time
}

// Login authenticates credentials, rotates the user's session token, and
// establishes the local session. The token write is awaited before the
// session is considered live, so the reconciler never races a login with a
// stale local token.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = entity.NormalizeUsername(username, username)

	user, ok := s.layer.User(username)
	if !ok {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	if err := s.verifyPassword(ctx, &user, password); err != nil {
		return nil, err
	}

	token := uuid.NewString()
	if err := s.layer.SetSessionToken(ctx, username, token); err != nil {
		return nil, fmt.Errorf("write session token: %w", err)
	}

	s.sessions.Establish(username, token)
	if s.onLogin != nil {
		s.onLogin()
	}

	identity := &appctx.UserContext{
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role,
		Branch:      user.Branch,
		AllBranches: user.Role == entity.RoleAdmin,
	}
	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(identity)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.layer.Audit().Record(appctx.WithUser(ctx, identity),
		entity.ActionCritical, data.ModuleUsers,
		fmt.Sprintf("User logged in: %s", username))
	logger.Info(ctx, "user logged in", "user", username, "role", user.Role)

	user.Password = ""
	return &LoginResult{User: user, AccessToken: accessToken, ExpiresAt: expiresAt}, nil
}

// verifyPassword checks the supplied password against the stored hash.
// Accounts imported from older exports hold plaintext passwords; those are
// accepted once and upgraded to a bcrypt hash in place.
func (s *Service) verifyPassword(ctx context.Context, user *entity.User, password string) error {
	stored := user.Password

	if strings.HasPrefix(stored, "$2") {
		if bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) != nil {
			return apperror.NewUnauthorized("invalid credentials")
		}
		return nil
	}

	if stored == "" || stored != password {
		return apperror.NewUnauthorized("invalid credentials")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err == nil {
		if serr := s.layer.SetPassword(ctx, user.Username, string(hash)); serr != nil {
			logger.Warn(ctx, "legacy password upgrade failed", "user", user.Username, "error", serr)
		}
	}
	return nil
}

// Logout clears the local session. The remote token is left as-is; it only
// changes on the next login.
func (s *Service) Logout(ctx context.Context) {
	if username, _, ok := s.sessions.Current(); ok {
		logger.Info(ctx, "user logged out", "user", username)
	}
	s.sessions.Clear()
}

// ForceLogout is the reconciler's session-conflict hook: the account was
// logged in elsewhere and this session is no longer valid.
func (s *Service) ForceLogout() {
	username, _, ok := s.sessions.Current()
	if !ok {
		return
	}
	s.sessions.Clear()
	logger.Warn(context.Background(), "session superseded by login elsewhere", "user", username)
}

// Register creates an account with a hashed password.
func (s *Service) Register(ctx context.Context, user entity.User, password string) (entity.User, error) {
	if len(password) < s.config.PasswordMinLength {
		return entity.User{}, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return entity.User{}, fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hash)

	created, err := s.layer.CreateUser(ctx, user)
	if err != nil {
		return entity.User{}, err
	}
	created.Password = ""
	return created, nil
}

// ChangePassword verifies the old password and stores a new hash.
func (s *Service) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	username = entity.NormalizeUsername(username, "")
	user, ok := s.layer.User(username)
	if !ok {
		return apperror.NewNotFound(entity.TableUsers, username)
	}
	if err := s.verifyPassword(ctx, &user, oldPassword); err != nil {
		return err
	}
	if len(newPassword) < s.config.PasswordMinLength {
		return apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.layer.SetPassword(ctx, username, string(hash))
}

// Identity validates a bearer token into a session identity.
func (s *Service) Identity(tokenString string) (*appctx.UserContext, error) {
	user, err := s.jwtService.ValidateToken(tokenString)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid or expired token").WithCause(err)
	}
	return user, nil
}
