package model

import "time"

// Account is a tenant/customer of the MSP.
type Account struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type Contact struct {
	ID        int64  `json:"id"`
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// Tech is a staff member tickets can be assigned to.
type Tech struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Asset struct {
	ID        int64  `json:"id"`
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
	AssetType string `json:"asset_type"`
	Serial    string `json:"serial,omitempty"`
}

type Project struct {
	ID        int64  `json:"id"`
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
}

type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Format    string    `json:"format,omitempty"` // "markdown" or "html"
	Category  string    `json:"category,omitempty"`
	Public    bool      `json:"public"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is the authenticated operator returned by /auth/login.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
