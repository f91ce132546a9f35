package customers

import "time"

// Customer is a CRM customer record. Email is unique across customers.
type Customer struct {
	ID          int64
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	CompanyName string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
