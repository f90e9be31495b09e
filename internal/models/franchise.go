package models

// Franchise groups stores under a set of admin users.
type Franchise struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Admins []User  `json:"admins,omitempty"`
	Stores []Store `json:"stores"`
}

// Store belongs to a franchise. TotalRevenue is derived from order item
// prices at read time and never persisted.
type Store struct {
	ID           int64  `json:"id"`
	FranchiseID  int64  `json:"franchiseId,omitempty"`
	Name         string `json:"name"`
	TotalRevenue int64  `json:"totalRevenue,omitempty"`
}
