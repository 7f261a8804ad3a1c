package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/repository"
	"toko-kelontong-pos/internal/session"
	"toko-kelontong-pos/pkg/jwt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventPublisher pushes a JSON event to one tenant's live clients.
type EventPublisher interface {
	Publish(tenantID uuid.UUID, v interface{})
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Signup(ctx context.Context, req *SignupRequest) (*LoginResponse, error)
	Logout(ctx context.Context, who session.Principal) error
	ValidateToken(ctx context.Context, token string) (*TokenValidationResponse, error)
	Heartbeat(ctx context.Context, who session.Principal) error
	ChangePassword(ctx context.Context, who session.Principal, req *ChangePasswordRequest) error
	Me(ctx context.Context, who session.Principal) (*model.UserResponse, error)
}

type LoginResponse struct {
	Token    string             `json:"token"`
	User     model.UserResponse `json:"user"`
	Redirect string             `json:"redirect"`
}

type TokenValidationResponse struct {
	User         model.UserResponse `json:"user"`
	TenantName   string             `json:"tenant_name,omitempty"`
	TenantStatus model.TenantStatus `json:"tenant_status,omitempty"`
	Redirect     string             `json:"redirect"`
}

// SignupRequest registers a new store together with its owner account.
type SignupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FullName  string `json:"full_name" validate:"required"`
	StoreName string `json:"store_name"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type authService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	tenants  repository.TenantRepository
	tokens   *jwt.Manager
	resolver *session.Resolver
	events   EventPublisher
	log      *zap.Logger
}

func NewAuthService(db *gorm.DB, userRepo repository.UserRepository, tenants repository.TenantRepository, tokens *jwt.Manager, resolver *session.Resolver, events EventPublisher, log *zap.Logger) AuthService {
	return &authService{
		db:       db,
		userRepo: userRepo,
		tenants:  tenants,
		tokens:   tokens,
		resolver: resolver,
		events:   events,
		log:      log,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// A deactivated store cannot sign in at all.
	if user.Role != model.RoleSuperAdmin && user.TenantID != nil {
		tenant, err := s.tenants.FindByID(ctx, *user.TenantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, session.ErrTenantMissing
			}
			return nil, err
		}
		if !tenant.IsActive() {
			return nil, session.ErrTenantInactive
		}
	}

	// Single session: a new token version invalidates every older token.
	now := time.Now()
	user.TokenVersion = uuid.NewString()
	user.LastSeenAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.FullName, user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Info("user signed in", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return &LoginResponse{
		Token:    token,
		User:     user.ToResponse(),
		Redirect: session.LandingRoute(user.Role),
	}, nil
}

func (s *authService) Signup(ctx context.Context, req *SignupRequest) (*LoginResponse, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := validate(req); err != nil {
		return nil, err
	}
	storeName := strings.TrimSpace(req.StoreName)
	if storeName == "" {
		storeName = "Toko " + req.FullName
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserRepo(tx)
		if _, err := users.FindByEmail(ctx, req.Email); err == nil {
			return ErrEmailExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		tenant := &model.Tenant{Name: storeName, Status: model.TenantActive}
		if err := repository.NewTenantRepo(tx).Create(ctx, tenant); err != nil {
			return err
		}
		owner := &model.User{
			Email:    req.Email,
			FullName: req.FullName,
			Role:     model.RoleOwner,
			TenantID: &tenant.ID,
			IsActive: true,
		}
		owner.CreatedBy = "signup"
		if err := owner.SetPassword(req.Password); err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		return users.Create(ctx, owner)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("store registered", zap.String("email", req.Email), zap.String("store", storeName))
	return s.Login(ctx, req.Email, req.Password)
}

func (s *authService) Logout(ctx context.Context, who session.Principal) error {
	return session.SignOut(ctx, s.userRepo, who.UserID)
}

func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenValidationResponse, error) {
	res := s.resolver.Resolve(ctx, token)
	if !res.Admitted() {
		return nil, res.Err
	}
	p := res.Principal
	return &TokenValidationResponse{
		User:         principalResponse(*p),
		TenantName:   p.TenantName,
		TenantStatus: p.TenantStatus,
		Redirect:     session.LandingRoute(p.Role),
	}, nil
}

func (s *authService) Heartbeat(ctx context.Context, who session.Principal) error {
	if err := s.userRepo.UpdateLastSeen(ctx, who.UserID); err != nil {
		return err
	}
	if s.events != nil && who.TenantID != nil {
		s.events.Publish(*who.TenantID, map[string]interface{}{
			"type":         "user_status_update",
			"user_id":      who.UserID.String(),
			"status":       "online",
			"last_seen_at": time.Now(),
		})
	}
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, who session.Principal, req *ChangePasswordRequest) error {
	if err := validate(req); err != nil {
		return err
	}
	user, err := s.userRepo.FindByID(ctx, who.UserID)
	if err != nil {
		return ErrUserNotFound
	}
	if !user.CheckPassword(req.OldPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, user.Password)
}

func (s *authService) Me(ctx context.Context, who session.Principal) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, who.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}

func principalResponse(p session.Principal) model.UserResponse {
	return model.UserResponse{
		ID:       p.UserID,
		Email:    p.Email,
		FullName: p.Name,
		Role:     p.Role,
		TenantID: p.TenantID,
		IsActive: true,
	}
}
