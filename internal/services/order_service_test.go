package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendora/storefront-api/internal/models"
)

type orderTestEnv struct {
	svc         *OrderService
	orderRepo   *fakeOrderRepo
	cartRepo    *fakeCartRepo
	productRepo *fakeProductRepo
}

func newOrderTestEnv(t *testing.T, products ...*models.Product) *orderTestEnv {
	t.Helper()
	productRepo := newFakeProductRepo(products...)
	cartRepo := newFakeCartRepo(productRepo)
	orderRepo := newFakeOrderRepo()
	svc := NewOrderService(orderRepo, productRepo, cartRepo, newTestNotifications(t), nil, testLogger())
	return &orderTestEnv{svc: svc, orderRepo: orderRepo, cartRepo: cartRepo, productRepo: productRepo}
}

func testCustomer() *models.User {
	return &models.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"}
}

func orderLine(productID uuid.UUID, quantity int) models.CreateOrderItem {
	return models.CreateOrderItem{Product: productID.String(), Quantity: quantity}
}

func TestOrderService_CreateReservesStock(t *testing.T) {
	product := &models.Product{Name: "Headphones", Price: 50, CountInStock: 3}
	env := newOrderTestEnv(t, product)
	user := testCustomer()

	order, err := env.svc.Create(context.Background(), user, &models.CreateOrderRequest{
		OrderItems:    []models.CreateOrderItem{orderLine(product.ID, 3)},
		TaxPrice:      10,
		ShippingPrice: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusCreated, order.Status)
	assert.Equal(t, 150.0, order.ItemsPrice)
	assert.Equal(t, 165.0, order.TotalPrice)
	assert.Equal(t, 0, product.CountInStock)
	assert.Equal(t, 3, product.SalesCount)
}

func TestOrderService_CreateRejectsInsufficientStock(t *testing.T) {
	product := &models.Product{Name: "Headphones", Price: 50, CountInStock: 3}
	env := newOrderTestEnv(t, product)

	_, err := env.svc.Create(context.Background(), testCustomer(), &models.CreateOrderRequest{
		OrderItems: []models.CreateOrderItem{orderLine(product.ID, 4)},
	})
	_, ok := IsStockError(err)
	require.True(t, ok, "expected a stock error, got %v", err)
	assert.Equal(t, 3, product.CountInStock)
	assert.Empty(t, env.orderRepo.orders)
}

func TestOrderService_CreateRollsBackPriorReservations(t *testing.T) {
	p1 := &models.Product{Name: "Keyboard", Price: 40, CountInStock: 5}
	p2 := &models.Product{Name: "Mouse", Price: 20, CountInStock: 1}
	env := newOrderTestEnv(t, p1, p2)

	_, err := env.svc.Create(context.Background(), testCustomer(), &models.CreateOrderRequest{
		OrderItems: []models.CreateOrderItem{
			orderLine(p1.ID, 2),
			orderLine(p2.ID, 3),
		},
	})
	_, ok := IsStockError(err)
	require.True(t, ok, "expected a stock error, got %v", err)

	// The first line's reservation must have been released.
	assert.Equal(t, 5, p1.CountInStock)
	assert.Equal(t, 0, p1.SalesCount)
	assert.Equal(t, 1, p2.CountInStock)
	assert.Empty(t, env.orderRepo.orders)
}

func TestOrderService_CreateRejectsEmptyItems(t *testing.T) {
	env := newOrderTestEnv(t)

	_, err := env.svc.Create(context.Background(), testCustomer(), &models.CreateOrderRequest{})
	_, ok := IsValidationError(err)
	assert.True(t, ok, "expected a validation error, got %v", err)
}

func TestOrderService_CreateSnapshotsSalePrice(t *testing.T) {
	product := &models.Product{Name: "Boots", Price: 120, IsOnSale: true, SalePrice: 90, CountInStock: 2}
	env := newOrderTestEnv(t, product)

	order, err := env.svc.Create(context.Background(), testCustomer(), &models.CreateOrderRequest{
		OrderItems: []models.CreateOrderItem{orderLine(product.ID, 2)},
	})
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, 90.0, order.Items[0].Price)
	assert.Equal(t, 180.0, order.ItemsPrice)
}

func TestOrderService_CreateClearsCart(t *testing.T) {
	product := &models.Product{Name: "Candle", Price: 10, CountInStock: 9}
	env := newOrderTestEnv(t, product)
	user := testCustomer()
	ctx := context.Background()

	cartSvc := NewCartService(env.cartRepo, env.productRepo, testLogger())
	_, _, err := cartSvc.AddItem(ctx, &user.ID, nil, addRequest(product.ID, 2))
	require.NoError(t, err)

	_, err = env.svc.Create(ctx, user, &models.CreateOrderRequest{
		OrderItems: []models.CreateOrderItem{orderLine(product.ID, 2)},
	})
	require.NoError(t, err)

	cart, err := env.cartRepo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestOrderService_GetEnforcesOwnership(t *testing.T) {
	product := &models.Product{Name: "Vase", Price: 30, CountInStock: 5}
	env := newOrderTestEnv(t, product)
	owner := testCustomer()
	ctx := context.Background()

	order, err := env.svc.Create(ctx, owner, &models.CreateOrderRequest{
		OrderItems: []models.CreateOrderItem{orderLine(product.ID, 1)},
	})
	require.NoError(t, err)

	stranger := &models.User{ID: uuid.New(), Email: "other@example.com"}
	_, err = env.svc.Get(ctx, stranger, order.ID)
	_, ok := IsForbiddenError(err)
	assert.True(t, ok, "expected a forbidden error, got %v", err)

	admin := &models.User{ID: uuid.New(), Email: "admin@example.com", IsAdmin: true}
	got, err := env.svc.Get(ctx, admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestOrderService_PayLifecycle(t *testing.T) {
	product := &models.Product{Name: "Table", Price: 200, CountInStock: 2}
	env := newOrderTestEnv(t, product)
	user := testCustomer()
	ctx := context.Background()

	order, err := env.svc.Create(ctx, user, &models.CreateOrderRequest{
		OrderItems: []models.CreateOrderItem{orderLine(product.ID, 1)},
	})
	require.NoError(t, err)

	paid, err := env.svc.Pay(ctx, user, order.ID, &models.PayOrderRequest{
		Reference: "pay_123",
		Status:    "COMPLETED",
	})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.NotNil(t, paid.PaidAt)
	assert.Equal(t, models.OrderStatusPaid, paid.Status)
	require.NotNil(t, paid.PaymentResult)
	assert.Equal(t, "pay_123", paid.PaymentResult.Reference)

	_, err = env.svc.Pay(ctx, user, order.ID, &models.PayOrderRequest{})
	_, ok := IsValidationError(err)
	assert.True(t, ok, "paying twice should fail, got %v", err)
}

func TestOrderService_DeliverRequiresPayment(t *testing.T) {
	product := &models.Product{Name: "Chair", Price: 80, CountInStock: 4}
	env := newOrderTestEnv(t, product)
	user := testCustomer()
	ctx := context.Background()

	order, err := env.svc.Create(ctx, user, &models.CreateOrderRequest{
		OrderItems: []models.CreateOrderItem{orderLine(product.ID, 1)},
	})
	require.NoError(t, err)

	_, err = env.svc.Deliver(ctx, order.ID)
	_, ok := IsValidationError(err)
	require.True(t, ok, "delivering an unpaid order should fail, got %v", err)

	_, err = env.svc.Pay(ctx, user, order.ID, &models.PayOrderRequest{})
	require.NoError(t, err)

	delivered, err := env.svc.Deliver(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	assert.Equal(t, models.OrderStatusDelivered, delivered.Status)

	_, err = env.svc.Deliver(ctx, order.ID)
	_, ok = IsValidationError(err)
	assert.True(t, ok, "delivering twice should fail, got %v", err)
}

func TestOrderService_CancelRestoresStock(t *testing.T) {
	product := &models.Product{Name: "Rug", Price: 55, CountInStock: 5}
	env := newOrderTestEnv(t, product)
	user := testCustomer()
	ctx := context.Background()

	order, err := env.svc.Create(ctx, user, &models.CreateOrderRequest{
		OrderItems: []models.CreateOrderItem{orderLine(product.ID, 2)},
	})
	require.NoError(t, err)
	require.Equal(t, 3, product.CountInStock)

	cancelled, err := env.svc.Cancel(ctx, user, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 5, product.CountInStock)

	_, err = env.svc.Cancel(ctx, user, order.ID)
	_, ok := IsValidationError(err)
	assert.True(t, ok, "cancelling twice should fail, got %v", err)
}

func TestOrderService_CancelDeliveredOrderFails(t *testing.T) {
	product := &models.Product{Name: "Mirror", Price: 45, CountInStock: 3}
	env := newOrderTestEnv(t, product)
	user := testCustomer()
	ctx := context.Background()

	order, err := env.svc.Create(ctx, user, &models.CreateOrderRequest{
		OrderItems: []models.CreateOrderItem{orderLine(product.ID, 1)},
	})
	require.NoError(t, err)
	_, err = env.svc.Pay(ctx, user, order.ID, &models.PayOrderRequest{})
	require.NoError(t, err)
	_, err = env.svc.Deliver(ctx, order.ID)
	require.NoError(t, err)

	_, err = env.svc.Cancel(ctx, user, order.ID)
	_, ok := IsValidationError(err)
	assert.True(t, ok, "cancelling a delivered order should fail, got %v", err)
	assert.Equal(t, 2, product.CountInStock)
}

func TestOrderService_UpdateStatusOverwrites(t *testing.T) {
	product := &models.Product{Name: "Clock", Price: 25, CountInStock: 2}
	env := newOrderTestEnv(t, product)
	user := testCustomer()
	ctx := context.Background()

	order, err := env.svc.Create(ctx, user, &models.CreateOrderRequest{
		OrderItems: []models.CreateOrderItem{orderLine(product.ID, 1)},
	})
	require.NoError(t, err)

	updated, err := env.svc.UpdateStatus(ctx, order.ID, "On Hold")
	require.NoError(t, err)
	assert.Equal(t, "On Hold", updated.Status)
	assert.False(t, updated.IsPaid)
}
