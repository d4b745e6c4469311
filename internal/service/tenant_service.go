package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type RegisterTenantRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactEmail  string `json:"contact_email" binding:"required,email"`
	AdminUsername string `json:"admin_username" binding:"required"`
	AdminEmail    string `json:"admin_email" binding:"required,email"`
	AdminPassword string `json:"admin_password" binding:"required,min=6"`
}

type UpdateTenantRequest struct {
	ContactEmail *string `json:"contact_email"`
	LogoPath     *string `json:"logo_path"`
	IsActive     *bool   `json:"is_active"`
}

type TenantResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at"`
}

// --- Interface ---

type TenantService interface {
	// RegisterTenant creates a tenant and its first admin user atomically.
	RegisterTenant(ctx context.Context, req RegisterTenantRequest) (TenantResponse, error)
	GetTenant(ctx context.Context, id uuid.UUID) (TenantResponse, error)
	ListTenants(ctx context.Context) ([]TenantResponse, error)
	UpdateTenant(ctx context.Context, id uuid.UUID, req UpdateTenantRequest) (TenantResponse, error)
}

type tenantService struct {
	tenantRepo repository.TenantRepository
	userRepo   repository.UserRepository
	txManager  repository.TransactionManager
}

func NewTenantService(
	tenantRepo repository.TenantRepository,
	userRepo repository.UserRepository,
	txManager repository.TransactionManager,
) TenantService {
	return &tenantService{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		txManager:  txManager,
	}
}

// --- Implementation ---

func (s *tenantService) RegisterTenant(ctx context.Context, req RegisterTenantRequest) (TenantResponse, error) {
	if _, err := s.tenantRepo.FindByName(ctx, req.Name); err == nil {
		return TenantResponse{}, fmt.Errorf("tenant name '%s' is already taken", req.Name)
	}
	if _, err := s.userRepo.GetByEmail(ctx, req.AdminEmail); err == nil {
		return TenantResponse{}, fmt.Errorf("email already exists")
	}
	if _, err := s.userRepo.GetByUsername(ctx, req.AdminUsername); err == nil {
		return TenantResponse{}, fmt.Errorf("username already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return TenantResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	tenant := model.Tenant{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		IsActive:     true,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tenantRepo.Create(txCtx, &tenant); err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		admin := model.User{
			TenantID: tenant.ID,
			Username: req.AdminUsername,
			Email:    req.AdminEmail,
			Password: string(hashed),
			Role:     "admin",
		}
		if err := s.userRepo.Create(txCtx, &admin); err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
		return nil
	})
	if err != nil {
		return TenantResponse{}, err
	}

	return toTenantResponse(&tenant), nil
}

func (s *tenantService) GetTenant(ctx context.Context, id uuid.UUID) (TenantResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return TenantResponse{}, fmt.Errorf("tenant not found: %w", err)
	}
	return toTenantResponse(tenant), nil
}

func (s *tenantService) ListTenants(ctx context.Context) ([]TenantResponse, error) {
	tenants, err := s.tenantRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tenants: %w", err)
	}

	result := make([]TenantResponse, 0, len(tenants))
	for i := range tenants {
		result = append(result, toTenantResponse(&tenants[i]))
	}
	return result, nil
}

func (s *tenantService) UpdateTenant(ctx context.Context, id uuid.UUID, req UpdateTenantRequest) (TenantResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return TenantResponse{}, fmt.Errorf("tenant not found: %w", err)
	}

	if req.ContactEmail != nil {
		tenant.ContactEmail = *req.ContactEmail
	}
	if req.LogoPath != nil {
		tenant.LogoPath = *req.LogoPath
	}
	if req.IsActive != nil {
		tenant.IsActive = *req.IsActive
	}

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return TenantResponse{}, fmt.Errorf("failed to update tenant: %w", err)
	}
	return toTenantResponse(tenant), nil
}

// --- Mapping ---

func toTenantResponse(t *model.Tenant) TenantResponse {
	return TenantResponse{
		ID:           t.ID.String(),
		Name:         t.Name,
		ContactEmail: t.ContactEmail,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
	}
}
