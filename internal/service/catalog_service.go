package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lumiere-backend/internal/models"
	"lumiere-backend/internal/redisclient"
	"lumiere-backend/internal/store"
	"lumiere-backend/internal/util"

	"go.uber.org/zap"
)

// FeaturedLimit is the fixed cap on the featured subset.
const FeaturedLimit = 6

// CatalogService serves read-only product and category views
type CatalogService struct {
	store       *store.Store
	redis       *redisclient.Client
	featuredTTL time.Duration
	logger      *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store, redis *redisclient.Client, featuredTTL time.Duration) *CatalogService {
	return &CatalogService{
		store:       store,
		redis:       redis,
		featuredTTL: featuredTTL,
		logger:      util.GetLogger(),
	}
}

// ListProducts retrieves active products matching the filter
func (cs *CatalogService) ListProducts(ctx context.Context, filter store.ProductFilter) ([]models.ProductWithCategory, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	products, err := cs.store.ListProducts(ctx, filter)
	if err != nil {
		return nil, Internal(err)
	}
	return products, nil
}

// GetFeatured retrieves the featured subset, served from the Redis cache
// when warm. Cache failures degrade to a database read, never to an error.
func (cs *CatalogService) GetFeatured(ctx context.Context) ([]models.ProductWithCategory, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetFeatured")
	defer span.End()

	if cs.redis != nil {
		payload, err := cs.redis.GetFeaturedProducts(ctx)
		if err != nil {
			cs.logger.Warn("Featured cache read failed", zap.Error(err))
		} else if payload != nil {
			var products []models.ProductWithCategory
			if err := json.Unmarshal(payload, &products); err == nil {
				util.FeaturedCacheHitsTotal.Inc()
				return products, nil
			}
			cs.logger.Warn("Featured cache payload invalid, refreshing", zap.Error(err))
		}
	}

	util.FeaturedCacheMissesTotal.Inc()
	products, err := cs.store.GetFeaturedProducts(ctx, FeaturedLimit)
	if err != nil {
		return nil, Internal(err)
	}

	if cs.redis != nil {
		if payload, err := json.Marshal(products); err == nil {
			if err := cs.redis.SetFeaturedProducts(ctx, payload, cs.featuredTTL); err != nil {
				cs.logger.Warn("Featured cache write failed", zap.Error(err))
			}
		}
	}

	return products, nil
}

// GetProduct retrieves a single product with its category
func (cs *CatalogService) GetProduct(ctx context.Context, id int64) (*models.ProductWithCategory, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProduct")
	defer span.End()

	product, err := cs.store.GetProductByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFound("product not found")
	}
	if err != nil {
		return nil, Internal(err)
	}
	return product, nil
}

// ListCategories retrieves all categories
func (cs *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := cs.store.GetCategories(ctx)
	if err != nil {
		return nil, Internal(err)
	}
	return categories, nil
}
