package services

import (
	"fmt"
	"time"

	"coldchain/internal/apperrors"
	"coldchain/internal/models"
	"coldchain/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderItemInput struct {
	ProductID  uint            `json:"product_id" binding:"required"`
	QuantityKg decimal.Decimal `json:"quantity_kg" binding:"required"`
}

type CreateOrderInput struct {
	ClientID uint             `json:"client_id" binding:"required"`
	SiteID   uint             `json:"site_id"`
	ActorID  uint             `json:"actor_id"`
	Items    []OrderItemInput `json:"items" binding:"required,min=1"`
}

type ApproveOrderResult struct {
	Order   *models.Order   `json:"order"`
	Invoice *models.Invoice `json:"invoice"`
}

type OrderService interface {
	Create(input CreateOrderInput) (*models.Order, error)
	// Approve reserves stock for every line, moves the order to APPROVED
	// and generates its invoice, all in one transaction. A failure
	// anywhere aborts the whole approval; no partial reservation survives.
	Approve(orderID, siteID, approverID uint) (*ApproveOrderResult, error)
	Reject(orderID, siteID uint, reason string, actorID uint) (*models.Order, error)
	// MarkInvoiced records that an approved order's invoice was issued
	// through the standalone invoicing path.
	MarkInvoiced(orderID, siteID, actorID uint) (*models.Order, error)
	Complete(orderID, siteID, actorID uint) (*models.Order, error)
	Delete(orderID, siteID uint) error
	GetByID(siteID, id uint) (*models.Order, error)
	GetBySite(siteID uint) ([]models.Order, error)
}

type orderService struct {
	db          TxRunner
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	ledger      StockLedger
	invoices    InvoiceService
	audit       AuditRecorder
}

func NewOrderService(
	db TxRunner,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	ledger StockLedger,
	invoices InvoiceService,
	audit AuditRecorder,
) OrderService {
	return &orderService{
		db:          db,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		ledger:      ledger,
		invoices:    invoices,
		audit:       audit,
	}
}

func (s *orderService) Create(input CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.BadRequest("order must have at least one item")
	}

	// Repeated product ids collapse into a single line with the summed
	// quantity, so the stock check sees the full requested amount.
	quantities := make(map[uint]decimal.Decimal, len(input.Items))
	ids := make([]uint, 0, len(input.Items))
	for _, item := range input.Items {
		if !item.QuantityKg.IsPositive() {
			return nil, apperrors.BadRequest("quantity for product %d must be positive", item.ProductID)
		}
		if _, ok := quantities[item.ProductID]; !ok {
			ids = append(ids, item.ProductID)
		}
		quantities[item.ProductID] = quantities[item.ProductID].Add(item.QuantityKg)
	}

	products, err := s.productRepo.GetByIDs(input.SiteID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(ids))
	for _, id := range ids {
		product, ok := byID[id]
		if !ok {
			return nil, apperrors.BadRequest("product %d not found", id)
		}
		quantity := quantities[id]
		if quantity.GreaterThan(product.QuantityOnHandKg) {
			return nil, apperrors.BadRequest("requested %s kg of product %d but only %s kg available",
				quantity, product.ID, product.QuantityOnHandKg)
		}
		subtotal := product.SellingPricePerUnit.Mul(quantity)
		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			QuantityKg:  quantity,
			UnitPrice:   product.SellingPricePerUnit,
			Subtotal:    subtotal,
		})
		total = total.Add(subtotal)
	}

	order := &models.Order{
		ClientID:    input.ClientID,
		SiteID:      input.SiteID,
		TotalAmount: total,
		Status:      models.OrderRequested,
		Items:       items,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}
	s.audit.Record(input.ActorID, "order.create", "Order", order.ID,
		fmt.Sprintf("client=%d total=%s items=%d", order.ClientID, order.TotalAmount, len(order.Items)))
	return order, nil
}

func (s *orderService) Approve(orderID, siteID, approverID uint) (*ApproveOrderResult, error) {
	var order *models.Order
	var invoice *models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		order, txErr = s.orderRepo.GetByIDForUpdate(tx, siteID, orderID)
		if txErr != nil {
			return notFoundOr(txErr, "order %d not found", orderID)
		}
		if !models.CanTransitionOrder(order.Status, models.OrderApproved) {
			return apperrors.InvalidTransition("order %d cannot move from %s to %s", order.ID, order.Status, models.OrderApproved)
		}

		for _, item := range order.Items {
			if _, txErr = s.ledger.RecordMovement(tx, MovementInput{
				ProductID:  item.ProductID,
				QuantityKg: item.QuantityKg,
				Direction:  models.MovementOut,
				Reason:     fmt.Sprintf("order #%d approval", order.ID),
				ActorID:    approverID,
			}); txErr != nil {
				return txErr
			}
		}

		now := time.Now()
		order.Status = models.OrderApproved
		order.ApprovedBy = &approverID
		order.ApprovedAt = &now
		if txErr = s.orderRepo.Save(tx, order); txErr != nil {
			return txErr
		}

		invoice, txErr = s.invoices.Generate(tx, GenerateInvoiceInput{
			SourceType: models.InvoiceSourceOrder,
			SourceID:   order.ID,
			ActorID:    approverID,
		})
		return txErr
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(approverID, "order.approve", "Order", order.ID, invoice.InvoiceNumber)
	return &ApproveOrderResult{Order: order, Invoice: invoice}, nil
}

func (s *orderService) Reject(orderID, siteID uint, reason string, actorID uint) (*models.Order, error) {
	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		order, txErr = s.orderRepo.GetByIDForUpdate(tx, siteID, orderID)
		if txErr != nil {
			return notFoundOr(txErr, "order %d not found", orderID)
		}
		if !models.CanTransitionOrder(order.Status, models.OrderRejected) {
			return apperrors.InvalidTransition("order %d cannot move from %s to %s", order.ID, order.Status, models.OrderRejected)
		}
		now := time.Now()
		order.Status = models.OrderRejected
		order.RejectionReason = reason
		order.RejectedAt = &now
		return s.orderRepo.Save(tx, order)
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(actorID, "order.reject", "Order", order.ID, reason)
	return order, nil
}

func (s *orderService) MarkInvoiced(orderID, siteID, actorID uint) (*models.Order, error) {
	return s.transition(orderID, siteID, actorID, models.OrderInvoiced, "order.invoiced")
}

func (s *orderService) Complete(orderID, siteID, actorID uint) (*models.Order, error) {
	return s.transition(orderID, siteID, actorID, models.OrderCompleted, "order.complete")
}

func (s *orderService) transition(orderID, siteID, actorID uint, to models.OrderStatus, action string) (*models.Order, error) {
	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		order, txErr = s.orderRepo.GetByIDForUpdate(tx, siteID, orderID)
		if txErr != nil {
			return notFoundOr(txErr, "order %d not found", orderID)
		}
		if !models.CanTransitionOrder(order.Status, to) {
			return apperrors.InvalidTransition("order %d cannot move from %s to %s", order.ID, order.Status, to)
		}
		order.Status = to
		return s.orderRepo.Save(tx, order)
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(actorID, action, "Order", order.ID, string(to))
	return order, nil
}

func (s *orderService) Delete(orderID, siteID uint) error {
	order, err := s.orderRepo.GetByID(siteID, orderID)
	if err != nil {
		return notFoundOr(err, "order %d not found", orderID)
	}
	if order.Status != models.OrderRequested {
		return apperrors.BadRequest("only requested orders can be deleted")
	}
	return s.orderRepo.Delete(siteID, orderID)
}

func (s *orderService) GetByID(siteID, id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(siteID, id)
	if err != nil {
		return nil, notFoundOr(err, "order %d not found", id)
	}
	return order, nil
}

func (s *orderService) GetBySite(siteID uint) ([]models.Order, error) {
	return s.orderRepo.GetBySite(siteID)
}
