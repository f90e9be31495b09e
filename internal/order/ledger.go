// Package order implements the diner order ledger: creation with line-item
// price snapshots and paginated retrieval, plus the best-effort factory
// notification.
package order

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pizza-service/internal/common/database"
	"pizza-service/internal/common/logger"
	"pizza-service/internal/common/metrics"
	"pizza-service/internal/models"
)

const storeName = "order"

type Ledger struct {
	db       *sql.DB
	factory  *FactoryClient
	pageSize int
	log      logger.Logger
}

// NewLedger creates the order ledger. factory may be nil, in which case
// orders are persisted without fulfillment notification.
func NewLedger(db *sql.DB, factory *FactoryClient, pageSize int, log logger.Logger) *Ledger {
	return &Ledger{
		db:       db,
		factory:  factory,
		pageSize: pageSize,
		log:      log.WithFields(map[string]interface{}{"store": storeName}),
	}
}

// GetOrders returns one fixed-size page of the diner's orders, most recent
// first, each expanded with its line items. page is 1-based. There is no
// more-results flag; a short page signals the end of the data.
func (l *Ledger) GetOrders(ctx context.Context, userID int64, page int) (_ []models.Order, err error) {
	start := time.Now()
	defer func() { metrics.Record(storeName, "get_orders", start, err) }()

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, franchise_id, store_id, created_at
		FROM orders WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		userID, l.pageSize, database.Offset(page, l.pageSize))
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err = rows.Scan(&o.ID, &o.FranchiseID, &o.StoreID, &o.Date); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.DinerID = userID
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if orders[i].Items, err = l.orderItems(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// AddDinerOrder persists the order header and one row per item. Each item
// snapshots the menu item's current price at insert time; a menu id that
// does not resolve fails the operation. The factory notification runs after
// the writes and its outcome is returned as auxiliary metadata without ever
// rolling the order back.
func (l *Ledger) AddDinerOrder(ctx context.Context, diner models.User, order models.Order) (_ models.Order, _ *FulfillmentResult, err error) {
	start := time.Now()
	defer func() { metrics.Record(storeName, "add_diner_order", start, err) }()

	order.DinerID = diner.ID
	order.Date = time.Now().UTC()

	err = l.db.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, franchise_id, store_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		diner.ID, order.FranchiseID, order.StoreID, order.Date).Scan(&order.ID)
	if err != nil {
		return models.Order{}, nil, fmt.Errorf("insert order: %w", err)
	}

	for i, item := range order.Items {
		var menuID int64
		if menuID, err = database.GetID(ctx, l.db, "id", item.MenuID, "menu_items"); err != nil {
			return models.Order{}, nil, err
		}

		var price int64
		if err = l.db.QueryRowContext(ctx, `
			SELECT price FROM menu_items WHERE id = $1`,
			menuID).Scan(&price); err != nil {
			return models.Order{}, nil, fmt.Errorf("snapshot price: %w", err)
		}

		if _, err = l.db.ExecContext(ctx, `
			INSERT INTO order_items (order_id, menu_id, description, price)
			VALUES ($1, $2, $3, $4)`,
			order.ID, menuID, item.Description, price); err != nil {
			return models.Order{}, nil, fmt.Errorf("insert order item: %w", err)
		}
		order.Items[i].Price = price
	}

	l.log.Info("order created", map[string]interface{}{
		"orderId": order.ID,
		"dinerId": diner.ID,
		"items":   len(order.Items),
	})

	var result *FulfillmentResult
	if l.factory != nil {
		result = l.factory.Fulfill(ctx, diner, order)
	}
	return order, result, nil
}

func (l *Ledger) orderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, menu_id, description, price
		FROM order_items WHERE order_id = $1
		ORDER BY id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.MenuID, &item.Description, &item.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
