package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/trendora/storefront-api/internal/models"
)

const (
	// TTL for cached hot lists (featured, new arrivals, best sellers)
	hotListTTL = 5 * time.Minute

	keyFeatured    = "catalog:featured"
	keyNewArrivals = "catalog:new"
	keyBestSellers = "catalog:bestsellers"
)

// CatalogCache caches the homepage hot lists in Redis. It degrades
// gracefully: with a nil client every Get is a miss and every Set a no-op,
// so the API works without Redis.
type CatalogCache struct {
	client *redis.Client
	logger *logrus.Entry
}

// NewCatalogCache creates a catalog cache. client may be nil.
func NewCatalogCache(client *redis.Client, logger *logrus.Logger) *CatalogCache {
	return &CatalogCache{
		client: client,
		logger: logger.WithField("component", "cache.catalog"),
	}
}

func (c *CatalogCache) enabled() bool {
	return c != nil && c.client != nil
}

func (c *CatalogCache) get(ctx context.Context, key string) ([]models.Product, bool) {
	if !c.enabled() {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
		}
		return nil, false
	}
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache entry corrupt, dropping")
		c.client.Del(ctx, key)
		return nil, false
	}
	return products, true
}

func (c *CatalogCache) set(ctx context.Context, key string, products []models.Product) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, hotListTTL).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

// GetFeatured returns the cached featured list, if present.
func (c *CatalogCache) GetFeatured(ctx context.Context) ([]models.Product, bool) {
	return c.get(ctx, keyFeatured)
}

// SetFeatured caches the featured list.
func (c *CatalogCache) SetFeatured(ctx context.Context, products []models.Product) {
	c.set(ctx, keyFeatured, products)
}

// GetNewArrivals returns the cached new-arrivals list, if present.
func (c *CatalogCache) GetNewArrivals(ctx context.Context) ([]models.Product, bool) {
	return c.get(ctx, keyNewArrivals)
}

// SetNewArrivals caches the new-arrivals list.
func (c *CatalogCache) SetNewArrivals(ctx context.Context, products []models.Product) {
	c.set(ctx, keyNewArrivals, products)
}

// GetBestSellers returns the cached best-sellers list, if present.
func (c *CatalogCache) GetBestSellers(ctx context.Context) ([]models.Product, bool) {
	return c.get(ctx, keyBestSellers)
}

// SetBestSellers caches the best-sellers list.
func (c *CatalogCache) SetBestSellers(ctx context.Context, products []models.Product) {
	c.set(ctx, keyBestSellers, products)
}

// Invalidate drops every hot list. Called after any catalog mutation.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.client.Del(ctx, keyFeatured, keyNewArrivals, keyBestSellers).Err(); err != nil {
		c.logger.WithError(err).Warn("Cache invalidation failed")
	}
}
