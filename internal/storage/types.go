package storage

import "time"

// Row is one result row keyed by column name.
type Row = map[string]any

// Result is an executed statement and its rows.
type Result struct {
	SQL  string `json:"sql"`
	Rows []Row  `json:"result"`
}

// Customer is a stored customer record.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCustomer holds the fields supplied when creating a customer.
type NewCustomer struct {
	Name  string
	Email string
	Phone *string
}
