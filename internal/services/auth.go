package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"eventbooking/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	userRepo     domain.UserRepository
	roleRepo     domain.RoleRepository
	hasher       domain.PasswordHasher
	issuer       domain.TokenIssuer
	emailService domain.EmailService
	tokenExpiry  time.Duration
	logger       *slog.Logger
}

// NewAuthService creates an AuthService. emailService may be nil.
func NewAuthService(userRepo domain.UserRepository,
	roleRepo domain.RoleRepository,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
	emailService domain.EmailService,
	tokenExpiry time.Duration,
	logger *slog.Logger,
) domain.AuthService {
	return &authService{
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		hasher:       hasher,
		issuer:       issuer,
		emailService: emailService,
		tokenExpiry:  tokenExpiry,
		logger:       logger,
	}
}

// Register creates a user with the "user" role. Admins are provisioned out of band.
func (s *authService) Register(ctx context.Context, email, password, username string) (*domain.User, error) {
	user, err := s.createUser(ctx, email, password, username)
	if err != nil {
		return nil, err
	}
	if s.emailService != nil {
		if err := s.emailService.SendWelcome(ctx, &domain.WelcomeEmailData{Email: user.Email, Username: user.Username}); err != nil {
			s.logger.WarnContext(ctx, "send welcome email failed", "user_id", user.ID, "err", err)
		}
	}
	return user, nil
}

// EnsureAdmin is used at startup to provision the operator account.
func (s *authService) EnsureAdmin(ctx context.Context, email, password, username string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if user, err = s.createUser(ctx, email, password, username); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, storageErr("get user", err)
	}

	role, err := s.roleRepo.GetByCode(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, storageErr(fmt.Sprintf("get role %q", domain.RoleAdmin), err)
	}
	if err := s.userRepo.AssignRole(ctx, user.ID, role.ID); err != nil {
		return nil, storageErr("assign role", err)
	}
	if !slices.Contains(user.Roles, role.Code) {
		user.Roles = append(user.Roles, role.Code)
	}
	return user, nil
}

func (s *authService) createUser(ctx context.Context, email, password, username string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)
	if !emailRegexp.MatchString(email) {
		return nil, domain.InvalidInputf("invalid email format")
	}
	if len(password) < minPasswordLen {
		return nil, domain.InvalidInputf("password must be at least %d characters", minPasswordLen)
	}
	if username == "" {
		return nil, domain.InvalidInputf("username is required")
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.NewUser(email, username, hash, salt, now, now)
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storageErr("create user", err)
	}

	role, err := s.roleRepo.GetByCode(ctx, domain.RoleUser)
	if err != nil {
		return nil, storageErr(fmt.Sprintf("get role %q", domain.RoleUser), err)
	}
	if err := s.userRepo.AssignRole(ctx, user.ID, role.ID); err != nil {
		return nil, storageErr("assign role", err)
	}
	user.Roles = []string{role.Code}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, storageErr("get user", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	codes, err := s.roleRepo.CodesByUserID(ctx, user.ID)
	if err != nil {
		return "", nil, storageErr("load roles", err)
	}
	user.Roles = codes

	token, err := s.issuer.Issue(user.ID, user.Email, codes, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}
