package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/yukikurage/devboard-api/internal/constants"
	"github.com/yukikurage/devboard-api/internal/metrics"
	"github.com/yukikurage/devboard-api/internal/models"
	"github.com/yukikurage/devboard-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles registration, login and profile management.
type UserService struct {
	userRepo repository.UserRepository
	tokens   *TokenService
	log      zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, tokens *TokenService, log zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		tokens:   tokens,
		log:      log,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a USER account with a hashed password.
func (s *UserService) Register(input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" {
		return nil, validationError("username is required")
	}
	if email == "" {
		return nil, validationError("email is required")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, validationError("password must be at least %d characters", constants.MinPasswordLength)
	}

	if taken, err := s.userRepo.ExistsByUsername(username); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if taken {
		return nil, ErrUsernameTaken
	}
	if taken, err := s.userRepo.ExistsByEmail(email); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
	}

	// the unique indexes catch registrations racing past the checks above
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info().Uint64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// AuthResult is a freshly issued token and the user it belongs to.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

// Authenticate verifies credentials and issues a bearer token.
func (s *UserService) Authenticate(input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.FindByUsername(strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.LoginAttemptsTotal.WithLabelValues("unknown_user").Inc()
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("bad_password").Inc()
		s.log.Warn().Str("username", user.Username).Msg("login rejected: wrong password")
		return nil, ErrWrongPassword
	}

	token, expiresAt, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: *user}, nil
}

// ProfileUpdate lists the self-service profile fields. Nil leaves a field unchanged.
type ProfileUpdate struct {
	Email    *string
	Nickname *string
	Avatar   *string
}

// UpdateProfile applies a partial profile update. Username, password and role are never touched.
func (s *UserService) UpdateProfile(userID uint64, input ProfileUpdate) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			return nil, validationError("email cannot be empty")
		}
		if email != user.Email {
			existing, err := s.userRepo.FindByEmail(email)
			switch {
			case err == nil && existing.ID != user.ID:
				return nil, ErrEmailTaken
			case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			user.Email = email
		}
	}
	if input.Nickname != nil {
		if utf8.RuneCountInString(*input.Nickname) > constants.MaxNicknameLength {
			return nil, validationError("nickname must be at most %d characters", constants.MaxNicknameLength)
		}
		user.Nickname = *input.Nickname
	}
	if input.Avatar != nil {
		if utf8.RuneCountInString(*input.Avatar) > constants.MaxAvatarLength {
			return nil, validationError("avatar must be at most %d characters", constants.MaxAvatarLength)
		}
		user.Avatar = *input.Avatar
	}

	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// GetUserByUsername retrieves a user by username.
func (s *UserService) GetUserByUsername(username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// ListUsers returns every user.
func (s *UserService) ListUsers() ([]models.User, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// VerifyToken resolves a bearer token to the current user record.
func (s *UserService) VerifyToken(token string) (*models.User, error) {
	username, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// token for a user that no longer exists
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}
