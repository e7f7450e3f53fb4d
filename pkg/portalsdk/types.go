package portalsdk

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// Roles
// ============================================================================

// Role is the closed set of portal roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleClient   Role = "client"
)

// Valid reports whether r is one of the known portal roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleClient:
		return true
	}
	return false
}

// User is the authenticated principal derived from a login response.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse is the token endpoint response. Besides the SimpleJWT token
// pair the API includes the authenticated user's identity so the client
// never has to decode the access token to know who logged in.
type TokenResponse struct {
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// User returns the principal carried in the token response.
func (t *TokenResponse) User() User {
	return User{ID: t.ID, Username: t.Username, Role: t.Role}
}

// ============================================================================
// Wire Date
// ============================================================================

const dateLayout = "2006-01-02"

// Date is a calendar date as the API serializes it (YYYY-MM-DD, no time
// component). The zero value marshals to null.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("portalsdk: invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// ============================================================================
// Pagination
// ============================================================================

// Page is the API's pagination envelope. Next and Previous are absolute URLs
// to be fetched directly (see FollowPage), never recomposed from page
// numbers.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasNext reports whether the server advertised a following page.
func (p *Page[T]) HasNext() bool { return p != nil && p.Next != nil && *p.Next != "" }

// HasPrevious reports whether the server advertised a preceding page.
func (p *Page[T]) HasPrevious() bool { return p != nil && p.Previous != nil && *p.Previous != "" }

// ListOptions are the pagination parameters shared by every list endpoint.
type ListOptions struct {
	Page     int
	PageSize int
}

// ============================================================================
// Accounts
// ============================================================================

// ClientAccount is an accounting client of the firm as the clients resource
// renders it: identity plus the billing summary columns shown on the client
// list.
type ClientAccount struct {
	ID          int64           `json:"id"`
	RazonSocial string          `json:"razon_social"`
	CUIT        string          `json:"cuit"`
	Celular     int64           `json:"celular"`
	Email       string          `json:"email"`
	Deuda       decimal.Decimal `json:"deuda"`
	Importe     decimal.Decimal `json:"importe"`
	Pago        PagoStatus      `json:"pago"`
	MedioPago   string          `json:"medio_pago"`
}

// PagoStatus is a client's aggregate payment standing.
type PagoStatus string

const (
	PagoPagado    PagoStatus = "Pagado"
	PagoPendiente PagoStatus = "Pendiente"
	PagoAtrasado  PagoStatus = "Atrasado"
)

// Employee is a portal user with the employee role. Employees are soft
// deleted: IsActive flips to false instead of the row going away.
type Employee struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
	CUIT      string `json:"cuit"`
	Celular   int64  `json:"celular"`
	IsActive  bool   `json:"is_active"`
}

// Profile is the caller's own account as served by the profile resource.
type Profile struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Role        Role   `json:"role"`
	RazonSocial string `json:"razon_social"`
	CUIT        string `json:"cuit"`
	Celular     int64  `json:"celular"`
	IsActive    bool   `json:"is_active"`
}

// ============================================================================
// Honorarios & Payments
// ============================================================================

// HonorarioStatus is server-derived from amount vs paid amount and due date;
// the client renders it but never computes it.
type HonorarioStatus string

const (
	HonorarioPendiente HonorarioStatus = "pendiente"
	HonorarioPagado    HonorarioStatus = "pagado"
	HonorarioVencido   HonorarioStatus = "vencido"
)

// Honorario is a billed professional-fee invoice issued to a client.
type Honorario struct {
	ID         int64           `json:"id"`
	Date       Date            `json:"date"`
	Title      string          `json:"title"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	Status     HonorarioStatus `json:"status"`
	UserID     int64           `json:"user"`
	File       string          `json:"honorario"`
}

// Outstanding is the amount still owed on the invoice.
func (h *Honorario) Outstanding() decimal.Decimal {
	return h.Amount.Sub(h.PaidAmount)
}

// PaymentMethod is the closed set of accepted payment methods.
type PaymentMethod string

const (
	MethodTransferencia PaymentMethod = "transferencia"
	MethodEfectivo      PaymentMethod = "efectivo"
	MethodCheque        PaymentMethod = "cheque"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodTransferencia, MethodEfectivo, MethodCheque:
		return true
	}
	return false
}

// Payment records money received against an honorario.
type Payment struct {
	ID            int64           `json:"id"`
	HonorarioID   int64           `json:"honorario"`
	UserID        int64           `json:"user"`
	PaymentDate   Date            `json:"payment_date"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	TicketPDF     string          `json:"ticket_pdf"`
}

// ============================================================================
// Documents
// ============================================================================

// Document is a filed document attached to a user.
type Document struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user"`
	Type   string `json:"type"`
	Date   Date   `json:"date"`
	File   string `json:"file"`
}
