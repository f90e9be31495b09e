// Package menu implements the shared menu catalog. Reads go through an
// optional Redis cache; the relational store remains the source of truth
// and the catalog degrades to plain reads when the cache is absent or
// unreachable.
package menu

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pizza-service/internal/common/logger"
	"pizza-service/internal/common/metrics"
	"pizza-service/internal/models"
)

const (
	storeName    = "menu"
	menuCacheKey = "menu:items"
	menuCacheTTL = 5 * time.Minute
)

type Catalog struct {
	db    *sql.DB
	cache *redis.Client
	log   logger.Logger
}

// NewCatalog creates the menu catalog. cache may be nil.
func NewCatalog(db *sql.DB, cache *redis.Client, log logger.Logger) *Catalog {
	return &Catalog{
		db:    db,
		cache: cache,
		log:   log.WithFields(map[string]interface{}{"store": storeName}),
	}
}

// GetMenu returns all menu items in insertion order.
func (c *Catalog) GetMenu(ctx context.Context) (_ []models.MenuItem, err error) {
	start := time.Now()
	defer func() { metrics.Record(storeName, "get_menu", start, err) }()

	if items, ok := c.cachedMenu(ctx); ok {
		return items, nil
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, title, description, image, price FROM menu_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select menu: %w", err)
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		var item models.MenuItem
		if err = rows.Scan(&item.ID, &item.Title, &item.Description, &item.Image, &item.Price); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	c.storeCachedMenu(ctx, items)
	return items, nil
}

// AddMenuItem inserts a new item and returns it with the generated id. The
// cached menu is invalidated so the next read sees the new item.
func (c *Catalog) AddMenuItem(ctx context.Context, item models.MenuItem) (_ models.MenuItem, err error) {
	start := time.Now()
	defer func() { metrics.Record(storeName, "add_menu_item", start, err) }()

	err = c.db.QueryRowContext(ctx, `
		INSERT INTO menu_items (title, description, image, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		item.Title, item.Description, item.Image, item.Price).Scan(&item.ID)
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("insert menu item: %w", err)
	}

	if c.cache != nil {
		if delErr := c.cache.Del(ctx, menuCacheKey).Err(); delErr != nil {
			c.log.Warn("menu cache invalidation failed", map[string]interface{}{"error": delErr})
		}
	}

	c.log.Info("menu item added", map[string]interface{}{"menuId": item.ID, "title": item.Title})
	return item, nil
}

func (c *Catalog) cachedMenu(ctx context.Context) ([]models.MenuItem, bool) {
	if c.cache == nil {
		return nil, false
	}

	raw, err := c.cache.Get(ctx, menuCacheKey).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("menu cache read failed", map[string]interface{}{"error": err})
		}
		return nil, false
	}

	var items []models.MenuItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false
	}
	return items, true
}

func (c *Catalog) storeCachedMenu(ctx context.Context, items []models.MenuItem) {
	if c.cache == nil {
		return
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, menuCacheKey, raw, menuCacheTTL).Err(); err != nil {
		c.log.Warn("menu cache write failed", map[string]interface{}{"error": err})
	}
}
