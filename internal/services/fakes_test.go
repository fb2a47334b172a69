package services

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/trendora/storefront-api/internal/mailer"
	"github.com/trendora/storefront-api/internal/models"
	"github.com/trendora/storefront-api/internal/templates"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type noopProvider struct{}

func (noopProvider) Send(ctx context.Context, message *mailer.Message) error { return nil }
func (noopProvider) GetName() string                                         { return "noop" }

// newTestNotifications builds a real notification service backed by a
// swallow-everything mail provider. The dispatcher is drained on cleanup.
func newTestNotifications(t *testing.T) *NotificationService {
	t.Helper()
	renderer, err := templates.NewRenderer()
	if err != nil {
		t.Fatalf("failed to build renderer: %v", err)
	}
	dispatcher := mailer.NewDispatcher(noopProvider{}, testLogger())
	t.Cleanup(dispatcher.Close)
	return NewNotificationService(dispatcher, renderer, testLogger(), "http://localhost:3000", "admin@trendora.dev")
}

// fakeProductRepo is an in-memory ProductRepository. Only the methods the
// cart, order and review services touch carry real behavior.
type fakeProductRepo struct {
	products map[uuid.UUID]*models.Product
}

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[uuid.UUID]*models.Product)}
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		repo.products[p.ID] = p
	}
	return repo
}

func (r *fakeProductRepo) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *models.Product) error {
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) ListFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) ListNewest(ctx context.Context, limit int) ([]models.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) ListBestSellers(ctx context.Context, limit int) ([]models.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) ListByCategory(ctx context.Context, categoryID uuid.UUID, page, pageSize int) ([]models.Product, int64, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) Search(ctx context.Context, keyword string, page, pageSize int) ([]models.Product, int64, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	product, ok := r.products[id]
	if !ok || product.CountInStock < quantity {
		return false, nil
	}
	product.CountInStock -= quantity
	product.SalesCount += quantity
	return true, nil
}

func (r *fakeProductRepo) RestoreStock(ctx context.Context, id uuid.UUID, quantity int) error {
	product, ok := r.products[id]
	if !ok {
		return nil
	}
	product.CountInStock += quantity
	product.SalesCount -= quantity
	if product.SalesCount < 0 {
		product.SalesCount = 0
	}
	return nil
}

// fakeCartRepo is an in-memory CartRepository. Loads hydrate Item.Product
// from the product fake the same way the real repository preloads it.
type fakeCartRepo struct {
	products *fakeProductRepo
	carts    map[uuid.UUID]*models.Cart
	items    []*models.CartItem
}

func newFakeCartRepo(products *fakeProductRepo) *fakeCartRepo {
	return &fakeCartRepo{
		products: products,
		carts:    make(map[uuid.UUID]*models.Cart),
	}
}

func (r *fakeCartRepo) Create(ctx context.Context, cart *models.Cart) error {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	r.carts[cart.ID] = cart
	return nil
}

func (r *fakeCartRepo) load(cart *models.Cart) *models.Cart {
	loaded := &models.Cart{ID: cart.ID, UserID: cart.UserID}
	for _, item := range r.items {
		if item.CartID != cart.ID {
			continue
		}
		line := *item
		if product, ok := r.products.products[item.ProductID]; ok {
			line.Product = *product
		}
		loaded.Items = append(loaded.Items, line)
	}
	return loaded
}

func (r *fakeCartRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	cart, ok := r.carts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.load(cart), nil
}

func (r *fakeCartRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	for _, cart := range r.carts {
		if cart.UserID != nil && *cart.UserID == userID {
			return r.load(cart), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCartRepo) GetGuestByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	cart, ok := r.carts[id]
	if !ok || cart.UserID != nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.load(cart), nil
}

func (r *fakeCartRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.carts, id)
	return nil
}

func (r *fakeCartRepo) GetItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	for _, item := range r.items {
		if item.CartID == cartID && item.ProductID == productID {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCartRepo) GetItemByID(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	for _, item := range r.items {
		if item.CartID == cartID && item.ID == itemID {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCartRepo) AddItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items = append(r.items, item)
	return nil
}

func (r *fakeCartRepo) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	for _, item := range r.items {
		if item.ID == itemID {
			item.Quantity = quantity
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeCartRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	kept := r.items[:0]
	for _, item := range r.items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	r.items = kept
	return nil
}

func (r *fakeCartRepo) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	kept := r.items[:0]
	for _, item := range r.items {
		if item.CartID != cartID {
			kept = append(kept, item)
		}
	}
	r.items = kept
	return nil
}

func (r *fakeCartRepo) Merge(ctx context.Context, guestCartID, userCartID uuid.UUID) error {
	for _, guestItem := range r.items {
		if guestItem.CartID != guestCartID {
			continue
		}
		existing, err := r.GetItem(ctx, userCartID, guestItem.ProductID)
		if err == nil {
			existing.Quantity += guestItem.Quantity
			continue
		}
		line := &models.CartItem{
			ID:        uuid.New(),
			CartID:    userCartID,
			ProductID: guestItem.ProductID,
			Quantity:  guestItem.Quantity,
		}
		r.items = append(r.items, line)
	}
	if err := r.ClearItems(ctx, guestCartID); err != nil {
		return err
	}
	return r.Delete(ctx, guestCartID)
}

// fakeOrderRepo is an in-memory OrderRepository.
type fakeOrderRepo struct {
	orders map[uuid.UUID]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, order *models.Order) error {
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (r *fakeOrderRepo) List(ctx context.Context, status string, page, pageSize int) ([]models.Order, int64, error) {
	var orders []models.Order
	for _, order := range r.orders {
		if status == "" || order.Status == status {
			orders = append(orders, *order)
		}
	}
	return orders, int64(len(orders)), nil
}

// fakeReviewRepo is an in-memory ReviewRepository. RecalculateProductRating
// mirrors the real single-statement recompute against the product fake.
type fakeReviewRepo struct {
	products *fakeProductRepo
	reviews  map[uuid.UUID]*models.Review
	recalcs  int
}

func newFakeReviewRepo(products *fakeProductRepo) *fakeReviewRepo {
	return &fakeReviewRepo{
		products: products,
		reviews:  make(map[uuid.UUID]*models.Review),
	}
}

func (r *fakeReviewRepo) Create(ctx context.Context, review *models.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	r.reviews[review.ID] = review
	return nil
}

func (r *fakeReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	review, ok := r.reviews[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return review, nil
}

func (r *fakeReviewRepo) GetByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*models.Review, error) {
	for _, review := range r.reviews {
		if review.UserID == userID && review.ProductID == productID {
			return review, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeReviewRepo) Update(ctx context.Context, review *models.Review) error {
	r.reviews[review.ID] = review
	return nil
}

func (r *fakeReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.reviews, id)
	return nil
}

func (r *fakeReviewRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	for _, review := range r.reviews {
		if review.ProductID == productID {
			reviews = append(reviews, *review)
		}
	}
	return reviews, nil
}

func (r *fakeReviewRepo) List(ctx context.Context, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	for _, review := range r.reviews {
		reviews = append(reviews, *review)
	}
	return reviews, int64(len(reviews)), nil
}

func (r *fakeReviewRepo) RecalculateProductRating(ctx context.Context, productID uuid.UUID) error {
	r.recalcs++
	product, ok := r.products.products[productID]
	if !ok {
		return nil
	}
	var sum, count int
	for _, review := range r.reviews {
		if review.ProductID == productID {
			sum += review.Rating
			count++
		}
	}
	if count == 0 {
		product.Rating = 0
		product.NumReviews = 0
		return nil
	}
	product.Rating = float64(sum) / float64(count)
	product.NumReviews = count
	return nil
}
