package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/trendora/storefront-api/internal/events"
	"github.com/trendora/storefront-api/internal/models"
	"github.com/trendora/storefront-api/internal/repository"
)

// OrderService implements checkout and the order lifecycle. Stock is
// reserved at creation through conditional decrements, so two concurrent
// checkouts cannot both claim the last units.
type OrderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	cartRepo      repository.CartRepository
	notifications *NotificationService
	publisher     *events.Publisher
	logger        *logrus.Entry
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	notifications *NotificationService,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		cartRepo:      cartRepo,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger.WithField("component", "services.order"),
	}
}

// Create places an order. Every line's stock is decremented up front; if
// any line fails, the decrements already taken are rolled back and the
// order is not created.
func (s *OrderService) Create(ctx context.Context, user *models.User, req *models.CreateOrderRequest) (*models.Order, error) {
	if len(req.OrderItems) == 0 {
		return nil, NewValidationError("No order items")
	}

	type reservation struct {
		productID uuid.UUID
		quantity  int
	}
	var reserved []reservation

	release := func() {
		for _, r := range reserved {
			if err := s.productRepo.RestoreStock(ctx, r.productID, r.quantity); err != nil {
				s.logger.WithError(err).WithField("product_id", r.productID).Error("Failed to restore stock after aborted order")
			}
		}
	}

	var orderItems []models.OrderItem
	var itemsPrice float64
	for _, line := range req.OrderItems {
		productID, err := uuid.Parse(line.Product)
		if err != nil {
			release()
			return nil, NewValidationError("invalid product id")
		}
		product, err := s.productRepo.GetByID(ctx, productID)
		if err != nil {
			release()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewNotFoundError("Product")
			}
			return nil, err
		}

		ok, err := s.productRepo.DecrementStock(ctx, productID, line.Quantity)
		if err != nil {
			release()
			return nil, err
		}
		if !ok {
			release()
			return nil, NewStockError(product.Name, product.CountInStock)
		}
		reserved = append(reserved, reservation{productID: productID, quantity: line.Quantity})

		price := product.EffectivePrice()
		itemsPrice += price * float64(line.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			ProductID: productID,
			Name:      product.Name,
			Image:     product.Image,
			Price:     price,
			Quantity:  line.Quantity,
		})
	}

	order := &models.Order{
		UserID:          user.ID,
		Items:           orderItems,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      itemsPrice,
		TaxPrice:        req.TaxPrice,
		ShippingPrice:   req.ShippingPrice,
		TotalPrice:      itemsPrice + req.TaxPrice + req.ShippingPrice,
		Status:          models.OrderStatusCreated,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		release()
		return nil, err
	}

	// Checkout empties the user's cart; a failure here is not fatal.
	if cart, err := s.cartRepo.GetByUserID(ctx, user.ID); err == nil {
		if err := s.cartRepo.ClearItems(ctx, cart.ID); err != nil {
			s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to clear cart after checkout")
		}
	}

	s.notifications.SendOrderConfirmation(user, order)
	s.publisher.Publish(ctx, events.SubjectOrderCreated, map[string]interface{}{
		"order_id": order.ID.String(),
		"user_id":  user.ID.String(),
		"total":    order.TotalPrice,
	})

	return order, nil
}

// Get returns one order. Customers see only their own; admins see all.
func (s *OrderService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Order")
		}
		return nil, err
	}
	if order.UserID != actor.ID && !actor.IsAdmin {
		return nil, NewForbiddenError("Not authorized to view this order")
	}
	return order, nil
}

// ListMine returns the caller's order history, newest first.
func (s *OrderService) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// List returns the paginated admin order listing, optionally by status.
func (s *OrderService) List(ctx context.Context, status string, page, pageSize int) (*models.OrderListResponse, error) {
	orders, total, err := s.orderRepo.List(ctx, status, page, pageSize)
	if err != nil {
		return nil, err
	}
	page, pageSize = models.NormalizePage(page, pageSize)
	if orders == nil {
		orders = []models.Order{}
	}
	return &models.OrderListResponse{
		Orders: orders,
		Page:   page,
		Pages:  models.PageCount(total, pageSize),
		Total:  total,
	}, nil
}

// Pay records a payment confirmation on the order.
func (s *OrderService) Pay(ctx context.Context, actor *models.User, id uuid.UUID, req *models.PayOrderRequest) (*models.Order, error) {
	order, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if order.IsPaid {
		return nil, NewValidationError("Order is already paid")
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, NewValidationError("Cannot pay a cancelled order")
	}

	now := time.Now()
	order.IsPaid = true
	order.PaidAt = &now
	order.Status = models.OrderStatusPaid
	order.PaymentResult = &models.PaymentResult{
		Reference:    req.Reference,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.EmailAddress,
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Deliver marks a paid order as delivered. Admin only.
func (s *OrderService) Deliver(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Order")
		}
		return nil, err
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, NewValidationError("Cannot deliver a cancelled order")
	}
	if !order.IsPaid {
		return nil, NewValidationError("Order must be paid before delivery")
	}
	if order.IsDelivered {
		return nil, NewValidationError("Order is already delivered")
	}

	now := time.Now()
	order.IsDelivered = true
	order.DeliveredAt = &now
	order.Status = models.OrderStatusDelivered

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.SubjectOrderDelivered, map[string]interface{}{
		"order_id": order.ID.String(),
		"user_id":  order.UserID.String(),
	})
	return order, nil
}

// Cancel cancels an undelivered order and returns its quantities to stock.
func (s *OrderService) Cancel(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Order, error) {
	order, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if order.IsDelivered {
		return nil, NewValidationError("Cannot cancel a delivered order")
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, NewValidationError("Order is already cancelled")
	}

	for _, item := range order.Items {
		if err := s.productRepo.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.WithError(err).WithField("product_id", item.ProductID).Error("Failed to restore stock for cancelled order")
		}
	}

	now := time.Now()
	order.Status = models.OrderStatusCancelled
	order.CancelledAt = &now
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	if order.User != nil {
		s.notifications.SendOrderCancelled(order.User, order)
	}
	s.publisher.Publish(ctx, events.SubjectOrderCancelled, map[string]interface{}{
		"order_id": order.ID.String(),
		"user_id":  order.UserID.String(),
	})
	return order, nil
}

// UpdateStatus is the admin status overwrite. The value is stored as given;
// it does not touch the paid/delivered flags or stock.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Order")
		}
		return nil, err
	}
	order.Status = status
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}
