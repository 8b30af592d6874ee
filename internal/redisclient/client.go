package redisclient

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/adjust_stock.lua
var adjustStockScript string

// Client caches storefront stock levels. The cache is advisory: Postgres
// stays the source of truth and every caller must tolerate a miss.
type Client struct {
	rdb          *redis.Client
	adjustScript *redis.Script
}

// NewClient creates a new Redis client with the stock script loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:          rdb,
		adjustScript: redis.NewScript(adjustStockScript),
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func stockKey(productID int64) string {
	return fmt.Sprintf("stock:%d", productID)
}

// SetStock caches the stock level and reorder level for a product
func (c *Client) SetStock(ctx context.Context, productID int64, quantity, reorderLevel int) error {
	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, stockKey(productID), "quantity", quantity)
	pipe.HSet(ctx, stockKey(productID), "reorder_level", reorderLevel)

	_, err := pipe.Exec(ctx)
	return err
}

// AdjustStock atomically shifts the cached quantity by delta using a Lua
// script. Returns false on a cache miss; the caller should re-sync from
// the database.
func (c *Client) AdjustStock(ctx context.Context, productID int64, delta int) (bool, error) {
	result, err := c.adjustScript.Run(ctx, c.rdb, []string{stockKey(productID)}, delta).Result()
	if err != nil {
		return false, fmt.Errorf("adjust stock script failed: %w", err)
	}

	n, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected script result type")
	}

	return n >= 0, nil
}

// GetStock retrieves the cached stock level for a product
func (c *Client) GetStock(ctx context.Context, productID int64) (quantity, reorderLevel int, err error) {
	result, err := c.rdb.HGetAll(ctx, stockKey(productID)).Result()
	if err != nil {
		return 0, 0, err
	}

	if len(result) == 0 {
		return 0, 0, fmt.Errorf("stock not cached for product %d", productID)
	}

	quantity, _ = strconv.Atoi(result["quantity"])
	reorderLevel, _ = strconv.Atoi(result["reorder_level"])
	return quantity, reorderLevel, nil
}

// DeleteStock drops a product from the cache (deactivation)
func (c *Client) DeleteStock(ctx context.Context, productID int64) error {
	return c.rdb.Del(ctx, stockKey(productID)).Err()
}
