package services

import (
	"coldchain/internal/apperrors"
	"coldchain/internal/models"
	"coldchain/internal/repository"

	"github.com/shopspring/decimal"
)

type CreateProductInput struct {
	SiteID              uint            `json:"site_id"`
	ColdRoomID          uint            `json:"cold_room_id" binding:"required"`
	Name                string          `json:"name" binding:"required"`
	SellingPricePerUnit decimal.Decimal `json:"selling_price_per_unit" binding:"required"`
	ActorID             uint            `json:"actor_id"`
}

// ProductService covers product registration and lookup. Quantities are
// never touched here; all balance changes go through the stock ledger.
type ProductService interface {
	Create(input CreateProductInput) (*models.Product, error)
	GetByID(siteID, id uint) (*models.Product, error)
	GetBySite(siteID uint) ([]models.Product, error)
	Delete(siteID, id uint) error
}

type productService struct {
	productRepo  repository.ProductRepository
	coldRoomRepo repository.ColdRoomRepository
	audit        AuditRecorder
}

func NewProductService(
	productRepo repository.ProductRepository,
	coldRoomRepo repository.ColdRoomRepository,
	audit AuditRecorder,
) ProductService {
	return &productService{productRepo: productRepo, coldRoomRepo: coldRoomRepo, audit: audit}
}

func (s *productService) Create(input CreateProductInput) (*models.Product, error) {
	if input.SellingPricePerUnit.LessThan(decimal.Zero) {
		return nil, apperrors.BadRequest("selling price cannot be negative")
	}
	if _, err := s.coldRoomRepo.GetByID(input.SiteID, input.ColdRoomID); err != nil {
		return nil, notFoundOr(err, "cold room %d not found", input.ColdRoomID)
	}

	product := &models.Product{
		SiteID:              input.SiteID,
		ColdRoomID:          input.ColdRoomID,
		Name:                input.Name,
		QuantityOnHandKg:    decimal.Zero,
		SellingPricePerUnit: input.SellingPricePerUnit,
		Status:              models.ProductOutOfStock,
		CreatedBy:           input.ActorID,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	s.audit.Record(input.ActorID, "product.create", "Product", product.ID, product.Name)
	return product, nil
}

func (s *productService) GetByID(siteID, id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(siteID, id)
	if err != nil {
		return nil, notFoundOr(err, "product %d not found", id)
	}
	return product, nil
}

func (s *productService) GetBySite(siteID uint) ([]models.Product, error) {
	return s.productRepo.GetBySite(siteID)
}

func (s *productService) Delete(siteID, id uint) error {
	product, err := s.productRepo.GetByID(siteID, id)
	if err != nil {
		return notFoundOr(err, "product %d not found", id)
	}
	if !product.QuantityOnHandKg.IsZero() {
		return apperrors.BadRequest("product %d still has stock on hand", id)
	}
	return s.productRepo.Delete(siteID, id)
}
