package models

import "time"

// Collection names. The stored key is "<prefix>_<collection>".
const (
	CollectionUsers      = "users"
	CollectionCategories = "categories"
	CollectionProducts   = "products"
	CollectionClients    = "clients"
	CollectionOrders     = "orders"
	CollectionInvoices   = "invoices"
)

// User is an account of the admin panel. Password is kept as entered unless
// password hashing is enabled.
type User struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	Name          string `json:"name"`
	CreatedAt     string `json:"createdAt"`
	CreatedByID   *int64 `json:"createdById"`
	CreatedByName string `json:"createdByName"`
}

// Public returns a copy of the user safe to send over the wire.
func (u User) Public() User {
	u.Password = ""
	return u
}

// IsAdmin reports whether the user holds the Admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Category groups products. ProductCount is derived from the products
// collection and only accurate right after a recount.
type Category struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ProductCount int    `json:"productCount"`
}

// Product references its category by id; Category holds the display name
// resolved at read time.
type Product struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
	CategoryID int64   `json:"categoryId,omitempty"`
	Category   string  `json:"category"`
	Image      string  `json:"image"`
	UserID     *int64  `json:"userId"`
	UserName   string  `json:"userName"`
}

type Client struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	AssignedUserID   *int64 `json:"assignedUserId"`
	AssignedUserName string `json:"assignedUserName"`
}

// OrderLine is one product entry of an order. Price is the unit price at
// the time the order was written.
type OrderLine struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order total is computed when the order is written and never re-derived
// from its lines afterwards.
type Order struct {
	ID               int64       `json:"id"`
	ClientID         int64       `json:"clientId"`
	ClientName       string      `json:"clientName"`
	Products         []OrderLine `json:"products"`
	Total            float64     `json:"total"`
	Status           string      `json:"status"`
	Date             string      `json:"date"`
	AssignedUserID   *int64      `json:"assignedUserId"`
	AssignedUserName string      `json:"assignedUserName"`
}

type Invoice struct {
	ID               int64   `json:"id"`
	OrderID          int64   `json:"orderId"`
	ClientName       string  `json:"clientName"`
	AssignedUserID   *int64  `json:"assignedUserId"`
	AssignedUserName string  `json:"assignedUserName"`
	Amount           float64 `json:"amount"`
	Date             string  `json:"date"`
	Status           string  `json:"status"`
}

// Session is the snapshot of the logged in user. It is not re-validated
// against the users collection while it exists.
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

// Roles
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Order statuses
const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
)

// Invoice statuses
const (
	InvoiceStatusPaid      = "Paid"
	InvoiceStatusPending   = "Pending"
	InvoiceStatusCancelled = "Cancelled"
)

// Themes
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// DateLayout is the calendar date format used by orders and invoices.
const DateLayout = "2006-01-02"

var (
	ValidRoles = map[string]bool{
		RoleAdmin: true,
		RoleUser:  true,
	}

	ValidOrderStatuses = map[string]bool{
		OrderStatusPending:    true,
		OrderStatusProcessing: true,
		OrderStatusShipped:    true,
		OrderStatusDelivered:  true,
		OrderStatusCancelled:  true,
	}

	ValidInvoiceStatuses = map[string]bool{
		InvoiceStatusPaid:      true,
		InvoiceStatusPending:   true,
		InvoiceStatusCancelled: true,
	}
)
