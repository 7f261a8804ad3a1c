package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/repository"
	"toko-kelontong-pos/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService manages the cashier accounts of an owner's store.
type UserService interface {
	ListCashiers(ctx context.Context, who session.Principal) ([]model.UserResponse, error)
	CreateCashier(ctx context.Context, who session.Principal, req *CreateCashierRequest) (*model.UserResponse, error)
	DeleteCashier(ctx context.Context, who session.Principal, id uuid.UUID) error
	UpdateProfile(ctx context.Context, who session.Principal, req *UpdateProfileRequest) (*model.UserResponse, error)
}

type CreateCashierRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type userService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, log *zap.Logger) UserService {
	return &userService{userRepo: userRepo, log: log}
}

func (s *userService) ListCashiers(ctx context.Context, who session.Principal) ([]model.UserResponse, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByTenantAndRole(ctx, tenantID, model.RoleKasir)
	if err != nil {
		return nil, err
	}
	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) CreateCashier(ctx context.Context, who session.Principal, req *CreateCashierRequest) (*model.UserResponse, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := validate(req); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &model.User{
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     model.RoleKasir,
		TenantID: &tenantID,
		IsActive: true,
	}
	user.CreatedBy = who.UserID.String()
	user.UpdatedBy = who.UserID.String()
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("cashier created", zap.String("user_id", user.ID.String()), zap.String("tenant_id", tenantID.String()))
	resp := user.ToResponse()
	return &resp, nil
}

// DeleteCashier only removes kasir accounts of the caller's own store.
func (s *userService) DeleteCashier(ctx context.Context, who session.Principal, id uuid.UUID) error {
	tenantID, err := who.Tenant()
	if err != nil {
		return err
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if user.TenantID == nil || *user.TenantID != tenantID {
		return ErrNotFound
	}
	if user.Role != model.RoleKasir {
		return ErrForbidden
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("cashier deleted", zap.String("user_id", id.String()))
	return nil
}

func (s *userService) UpdateProfile(ctx context.Context, who session.Principal, req *UpdateProfileRequest) (*model.UserResponse, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validate(req); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, who.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user.FullName = req.FullName
	user.Phone = req.Phone
	user.Address = req.Address
	user.UpdatedBy = who.UserID.String()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

// EnsureSuperAdmin creates the platform admin account when no user holds the
// email yet. It reports whether an account was created.
func EnsureSuperAdmin(ctx context.Context, users repository.UserRepository, email, password string) (bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := users.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	admin := &model.User{
		Email:    email,
		FullName: "Super Admin",
		Role:     model.RoleSuperAdmin,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(password); err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}
	if err := users.Create(ctx, admin); err != nil {
		return false, err
	}
	return true, nil
}

// ResetPassword sets a new password by email and ends the user's sessions.
func ResetPassword(ctx context.Context, users repository.UserRepository, email, password string) error {
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	user, err := users.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := user.SetPassword(password); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := users.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return err
	}
	return session.SignOut(ctx, users, user.ID)
}
