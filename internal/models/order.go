package models

import "time"

// Order is a diner order placed against a store.
type Order struct {
	ID          int64       `json:"id"`
	DinerID     int64       `json:"dinerId,omitempty"`
	FranchiseID int64       `json:"franchiseId"`
	StoreID     int64       `json:"storeId"`
	Date        time.Time   `json:"date"`
	Items       []OrderItem `json:"items"`
}

// OrderItem is a line item. Description and Price are snapshots captured at
// order time, independent of later menu changes.
type OrderItem struct {
	ID          int64  `json:"id,omitempty"`
	MenuID      int64  `json:"menuId"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}
