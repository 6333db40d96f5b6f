package catalog

import "time"

// Category groups products into an optional parent/child hierarchy.
type Category struct {
	ID        int64
	Name      string
	ParentID  *int64
	CreatedAt time.Time
}

// Product is a sellable catalog item.
type Product struct {
	ID         int64
	CategoryID *int64
	Name       string
	Title      string
	Price      int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
