package services

import (
	"coldchain/internal/apperrors"
	"coldchain/internal/models"
	"coldchain/internal/repository"

	"github.com/shopspring/decimal"
)

type RegisterAssetInput struct {
	SiteID       uint             `json:"site_id"`
	AssetType    models.AssetType `json:"asset_type" binding:"required"`
	SerialNumber string           `json:"serial_number"`
	PlateNumber  string           `json:"plate_number"`
	CapacityKg   decimal.Decimal  `json:"capacity_kg"`
	ActorID      uint             `json:"actor_id"`
}

type CreateColdRoomInput struct {
	SiteID          uint            `json:"site_id"`
	Name            string          `json:"name" binding:"required"`
	TotalCapacityKg decimal.Decimal `json:"total_capacity_kg" binding:"required"`
	ActorID         uint            `json:"actor_id"`
}

// SiteService handles site and asset registration. Operational state of
// assets after registration belongs to the availability tracker.
type SiteService interface {
	CreateSite(site *models.Site) error
	GetSite(id uint) (*models.Site, error)
	GetAllSites() ([]models.Site, error)
	CreateColdRoom(input CreateColdRoomInput) (*models.ColdRoom, error)
	ListColdRooms(siteID uint) ([]models.ColdRoom, error)
	RegisterAsset(input RegisterAssetInput) (models.RentableAsset, error)
}

type siteService struct {
	siteRepo     repository.SiteRepository
	coldRoomRepo repository.ColdRoomRepository
	assetRepo    repository.AssetRepository
	audit        AuditRecorder
}

func NewSiteService(
	siteRepo repository.SiteRepository,
	coldRoomRepo repository.ColdRoomRepository,
	assetRepo repository.AssetRepository,
	audit AuditRecorder,
) SiteService {
	return &siteService{
		siteRepo:     siteRepo,
		coldRoomRepo: coldRoomRepo,
		assetRepo:    assetRepo,
		audit:        audit,
	}
}

func (s *siteService) CreateSite(site *models.Site) error {
	if site.Name == "" {
		return apperrors.BadRequest("site name is required")
	}
	site.IsActive = true
	return s.siteRepo.Create(site)
}

func (s *siteService) GetSite(id uint) (*models.Site, error) {
	site, err := s.siteRepo.GetByID(id)
	if err != nil {
		return nil, notFoundOr(err, "site %d not found", id)
	}
	return site, nil
}

func (s *siteService) GetAllSites() ([]models.Site, error) {
	return s.siteRepo.GetAll()
}

func (s *siteService) CreateColdRoom(input CreateColdRoomInput) (*models.ColdRoom, error) {
	if input.TotalCapacityKg.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.BadRequest("total capacity must be positive")
	}
	if _, err := s.siteRepo.GetByID(input.SiteID); err != nil {
		return nil, notFoundOr(err, "site %d not found", input.SiteID)
	}

	room := &models.ColdRoom{
		SiteID:          input.SiteID,
		Name:            input.Name,
		TotalCapacityKg: input.TotalCapacityKg,
		UsedCapacityKg:  decimal.Zero,
		Status:          models.AssetAvailable,
	}
	if err := s.coldRoomRepo.Create(room); err != nil {
		return nil, err
	}
	s.audit.Record(input.ActorID, "cold_room.create", "ColdRoom", room.ID, room.Name)
	return room, nil
}

func (s *siteService) ListColdRooms(siteID uint) ([]models.ColdRoom, error) {
	return s.coldRoomRepo.GetBySite(siteID)
}

func (s *siteService) RegisterAsset(input RegisterAssetInput) (models.RentableAsset, error) {
	if _, err := s.siteRepo.GetByID(input.SiteID); err != nil {
		return nil, notFoundOr(err, "site %d not found", input.SiteID)
	}

	var asset models.RentableAsset
	switch input.AssetType {
	case models.AssetColdBox:
		if input.SerialNumber == "" {
			return nil, apperrors.BadRequest("serial number is required for cold boxes")
		}
		asset = &models.ColdBox{
			SiteID:       input.SiteID,
			SerialNumber: input.SerialNumber,
			CapacityKg:   input.CapacityKg,
			Status:       models.AssetAvailable,
		}
	case models.AssetColdPlate:
		if input.SerialNumber == "" {
			return nil, apperrors.BadRequest("serial number is required for cold plates")
		}
		asset = &models.ColdPlate{
			SiteID:       input.SiteID,
			SerialNumber: input.SerialNumber,
			Status:       models.AssetAvailable,
		}
	case models.AssetTricycle:
		if input.PlateNumber == "" {
			return nil, apperrors.BadRequest("plate number is required for tricycles")
		}
		asset = &models.Tricycle{
			SiteID:      input.SiteID,
			PlateNumber: input.PlateNumber,
			Status:      models.AssetAvailable,
		}
	case models.AssetColdRoom:
		return nil, apperrors.BadRequest("cold rooms are registered through the cold room endpoint")
	default:
		return nil, apperrors.BadRequest("unknown asset type %q", input.AssetType)
	}

	if err := s.assetRepo.Create(asset); err != nil {
		return nil, err
	}
	s.audit.Record(input.ActorID, "asset.register", string(input.AssetType), asset.GetID(), "")
	return asset, nil
}
