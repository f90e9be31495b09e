package models

// MenuItem is a shared menu entry. Price is in the smallest currency unit.
type MenuItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Price       int64  `json:"price"`
}
