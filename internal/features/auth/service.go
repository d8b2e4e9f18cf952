package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-agrofleet/internal/config"
	"go-agrofleet/internal/middleware"
	"go-agrofleet/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*Account, error)
	Login(ctx context.Context, email, password string) (string, *Account, error)
}

type AuthServiceImpl struct {
	Repo     AccountRepository
	Logger   *zap.Logger
	tokenTTL time.Duration
	cost     int
}

func NewAuthService(repo AccountRepository, cfg *config.Config, logger *zap.Logger) AuthService {
	return &AuthServiceImpl{
		Repo:     repo,
		Logger:   logger,
		tokenTTL: cfg.TokenTTL,
		cost:     bcrypt.DefaultCost,
	}
}

var knownRoles = map[string]bool{
	middleware.RoleAdmin:    true,
	middleware.RoleMechanic: true,
	middleware.RoleOperator: true,
}

func (s *AuthServiceImpl) Register(ctx context.Context, req RegisterRequest) (*Account, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{middleware.RoleOperator}
	}
	for _, r := range roles {
		if !knownRoles[r] {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, r)
		}
	}

	existing, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	account := &Account{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Roles:        roles,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.Logger.Info("account registered", zap.String("user_id", account.ID), zap.Strings("roles", roles))
	return account, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *Account, error) {
	account, err := s.Repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", nil, err
	}
	if account == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if account.Status != StatusActive {
		return "", nil, ErrAccountInactive
	}

	token, err := utils.GenerateToken(account.ID, account.Roles, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
