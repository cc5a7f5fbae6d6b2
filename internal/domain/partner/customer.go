package partner

import (
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Contact is a phone/whatsapp pair attached to a customer
type Contact struct {
	Phone    string `json:"phone"`
	Whatsapp string `json:"whatsapp"`
}

// Comment is an append-only timestamped note
type Comment struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Customer represents a shop/buyer in the partner context.
// Ref is the human-readable external identity; see the sequence package for
// its construction. Dues caches the finalAmount of the customer's latest
// order (positive means the customer owes).
type Customer struct {
	shared.BaseAggregateRoot
	Ref      string          `gorm:"type:varchar(120);not null;uniqueIndex"`
	Name     string          `gorm:"type:varchar(200)"`
	ShopName string          `gorm:"type:varchar(200);not null"`
	Address  string          `gorm:"type:text"`
	Town     string          `gorm:"type:varchar(100)"`
	State    string          `gorm:"type:varchar(100)"`
	Pincode  string          `gorm:"type:varchar(20)"`
	Contacts []Contact       `gorm:"type:jsonb;serializer:json"`
	Dues     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Comments []Comment       `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a customer with its allocated external reference.
// A display name or a shop name must be present; the reference was derived
// from them and must never be minted from an empty pair.
func NewCustomer(ref, name, shopName string) (*Customer, error) {
	if ref == "" {
		return nil, shared.NewDomainError("INVALID_REF", "Customer reference cannot be empty")
	}
	if name == "" && shopName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer needs a name or a shop name")
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Ref:               ref,
		Name:              name,
		ShopName:          shopName,
		Contacts:          []Contact{},
		Dues:              decimal.Zero,
		Comments:          []Comment{},
	}, nil
}

// DisplayName prefers the personal name, falling back to the shop name
func (c *Customer) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ShopName
}

// SetAddress sets the customer's location fields
func (c *Customer) SetAddress(address, town, state, pincode string) {
	c.Address = address
	c.Town = town
	c.State = state
	c.Pincode = pincode
	c.Touch()
	c.IncrementVersion()
}

// SetContacts replaces the customer's contact list
func (c *Customer) SetContacts(contacts []Contact) {
	if contacts == nil {
		contacts = []Contact{}
	}
	c.Contacts = contacts
	c.Touch()
	c.IncrementVersion()
}

// AppendComments appends timestamped notes; existing comments are never
// rewritten
func (c *Customer) AppendComments(texts []string) {
	now := time.Now()
	for _, text := range texts {
		if text == "" {
			continue
		}
		c.Comments = append(c.Comments, Comment{Text: text, CreatedAt: now})
	}
	c.Touch()
	c.IncrementVersion()
}

// SetDues replaces the cached outstanding figure with the latest order's
// final amount. The cache is replaced, never accumulated.
func (c *Customer) SetDues(finalAmount decimal.Decimal) {
	c.Dues = finalAmount
	c.Touch()
	c.IncrementVersion()
}
