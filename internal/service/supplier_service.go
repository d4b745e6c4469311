package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateSupplierRequest struct {
	CompanyName   string `json:"company_name" binding:"required"`
	TaxCode       string `json:"tax_code"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email" binding:"omitempty,email"`
	Address       string `json:"address"`
}

type UpdateSupplierRequest struct {
	CompanyName   *string `json:"company_name"`
	TaxCode       *string `json:"tax_code"`
	ContactPerson *string `json:"contact_person"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	IsActive      *bool   `json:"is_active"`
}

type SupplierResponse struct {
	ID            string `json:"id"`
	CompanyName   string `json:"company_name"`
	TaxCode       string `json:"tax_code"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
}

type CreateSupplyRequest struct {
	SupplierID string `json:"supplier_id"`
	Name       string `json:"name" binding:"required"`
	Reference  string `json:"reference"`
	Unit       string `json:"unit"`
}

type SupplyResponse struct {
	ID           string  `json:"id"`
	SupplierID   *string `json:"supplier_id"`
	SupplierName string  `json:"supplier_name,omitempty"`
	Name         string  `json:"name"`
	Reference    string  `json:"reference"`
	Unit         string  `json:"unit"`
	IsActive     bool    `json:"is_active"`
}

// --- Interface ---

type SupplierService interface {
	CreateSupplier(ctx context.Context, tenantID uuid.UUID, req CreateSupplierRequest) (SupplierResponse, error)
	GetSupplier(ctx context.Context, tenantID uuid.UUID, id string) (SupplierResponse, error)
	ListSuppliers(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]SupplierResponse, int64, error)
	UpdateSupplier(ctx context.Context, tenantID uuid.UUID, id string, req UpdateSupplierRequest) (SupplierResponse, error)
	DeleteSupplier(ctx context.Context, tenantID uuid.UUID, id string) error

	CreateSupply(ctx context.Context, tenantID uuid.UUID, req CreateSupplyRequest) (SupplyResponse, error)
	ListSupplies(ctx context.Context, tenantID uuid.UUID, supplierID string, page, limit int) ([]SupplyResponse, int64, error)
	DeactivateSupply(ctx context.Context, tenantID uuid.UUID, id string) error
}

type supplierService struct {
	supplierRepo repository.SupplierRepository
}

func NewSupplierService(supplierRepo repository.SupplierRepository) SupplierService {
	return &supplierService{supplierRepo: supplierRepo}
}

// --- Implementation ---

func (s *supplierService) CreateSupplier(ctx context.Context, tenantID uuid.UUID, req CreateSupplierRequest) (SupplierResponse, error) {
	supplier := model.Supplier{
		TenantID:      tenantID,
		CompanyName:   req.CompanyName,
		TaxCode:       req.TaxCode,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		IsActive:      true,
	}
	if err := s.supplierRepo.Create(ctx, &supplier); err != nil {
		return SupplierResponse{}, fmt.Errorf("failed to create supplier: %w", err)
	}
	return toSupplierResponse(&supplier), nil
}

func (s *supplierService) GetSupplier(ctx context.Context, tenantID uuid.UUID, id string) (SupplierResponse, error) {
	supplierID, err := uuid.Parse(id)
	if err != nil {
		return SupplierResponse{}, fmt.Errorf("invalid supplier id: %w", err)
	}

	supplier, err := s.supplierRepo.FindByID(ctx, tenantID, supplierID)
	if err != nil {
		return SupplierResponse{}, fmt.Errorf("supplier not found: %w", err)
	}
	return toSupplierResponse(supplier), nil
}

func (s *supplierService) ListSuppliers(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]SupplierResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	suppliers, total, err := s.supplierRepo.List(ctx, tenantID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch suppliers: %w", err)
	}

	result := make([]SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		result = append(result, toSupplierResponse(&suppliers[i]))
	}
	return result, total, nil
}

func (s *supplierService) UpdateSupplier(ctx context.Context, tenantID uuid.UUID, id string, req UpdateSupplierRequest) (SupplierResponse, error) {
	supplierID, err := uuid.Parse(id)
	if err != nil {
		return SupplierResponse{}, fmt.Errorf("invalid supplier id: %w", err)
	}

	supplier, err := s.supplierRepo.FindByID(ctx, tenantID, supplierID)
	if err != nil {
		return SupplierResponse{}, fmt.Errorf("supplier not found: %w", err)
	}

	if req.CompanyName != nil {
		supplier.CompanyName = *req.CompanyName
	}
	if req.TaxCode != nil {
		supplier.TaxCode = *req.TaxCode
	}
	if req.ContactPerson != nil {
		supplier.ContactPerson = *req.ContactPerson
	}
	if req.Phone != nil {
		supplier.Phone = *req.Phone
	}
	if req.Email != nil {
		supplier.Email = *req.Email
	}
	if req.Address != nil {
		supplier.Address = *req.Address
	}
	if req.IsActive != nil {
		supplier.IsActive = *req.IsActive
	}

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return SupplierResponse{}, fmt.Errorf("failed to update supplier: %w", err)
	}
	return toSupplierResponse(supplier), nil
}

func (s *supplierService) DeleteSupplier(ctx context.Context, tenantID uuid.UUID, id string) error {
	supplierID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid supplier id: %w", err)
	}
	return s.supplierRepo.Delete(ctx, tenantID, supplierID)
}

func (s *supplierService) CreateSupply(ctx context.Context, tenantID uuid.UUID, req CreateSupplyRequest) (SupplyResponse, error) {
	var supplierID *uuid.UUID
	if req.SupplierID != "" {
		parsed, err := uuid.Parse(req.SupplierID)
		if err != nil {
			return SupplyResponse{}, fmt.Errorf("invalid supplier_id: %w", err)
		}
		if _, err := s.supplierRepo.FindByID(ctx, tenantID, parsed); err != nil {
			return SupplyResponse{}, fmt.Errorf("supplier not found: %w", err)
		}
		supplierID = &parsed
	}

	unit := req.Unit
	if unit == "" {
		unit = "unit"
	}

	supply := model.Supply{
		TenantID:   tenantID,
		SupplierID: supplierID,
		Name:       req.Name,
		Reference:  req.Reference,
		Unit:       unit,
		IsActive:   true,
	}
	if err := s.supplierRepo.CreateSupply(ctx, &supply); err != nil {
		return SupplyResponse{}, fmt.Errorf("failed to create supply: %w", err)
	}
	return toSupplyResponse(&supply), nil
}

func (s *supplierService) ListSupplies(ctx context.Context, tenantID uuid.UUID, supplierID string, page, limit int) ([]SupplyResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	supplies, total, err := s.supplierRepo.ListSupplies(ctx, tenantID, supplierID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch supplies: %w", err)
	}

	result := make([]SupplyResponse, 0, len(supplies))
	for i := range supplies {
		result = append(result, toSupplyResponse(&supplies[i]))
	}
	return result, total, nil
}

func (s *supplierService) DeactivateSupply(ctx context.Context, tenantID uuid.UUID, id string) error {
	supplyID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid supply id: %w", err)
	}

	supply, err := s.supplierRepo.FindSupplyByID(ctx, tenantID, supplyID)
	if err != nil {
		return fmt.Errorf("supply not found: %w", err)
	}

	supply.IsActive = false
	if err := s.supplierRepo.UpdateSupply(ctx, supply); err != nil {
		return fmt.Errorf("failed to deactivate supply: %w", err)
	}
	return nil
}

// --- Mapping ---

func toSupplierResponse(sp *model.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            sp.ID.String(),
		CompanyName:   sp.CompanyName,
		TaxCode:       sp.TaxCode,
		ContactPerson: sp.ContactPerson,
		Phone:         sp.Phone,
		Email:         sp.Email,
		Address:       sp.Address,
		IsActive:      sp.IsActive,
		CreatedAt:     sp.CreatedAt.Format(time.RFC3339),
	}
}

func toSupplyResponse(sp *model.Supply) SupplyResponse {
	resp := SupplyResponse{
		ID:        sp.ID.String(),
		Name:      sp.Name,
		Reference: sp.Reference,
		Unit:      sp.Unit,
		IsActive:  sp.IsActive,
	}
	if sp.SupplierID != nil {
		s := sp.SupplierID.String()
		resp.SupplierID = &s
	}
	if sp.Supplier != nil {
		resp.SupplierName = sp.Supplier.CompanyName
	}
	return resp
}
