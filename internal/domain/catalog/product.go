package catalog

import (
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product represents a catalog entry. Ref is the numeric-as-string external
// identity allocated from the current numeric maximum, so references are
// never reused after a deletion.
type Product struct {
	shared.BaseAggregateRoot
	Ref         string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description []string        `gorm:"type:jsonb;serializer:json"`
	Features    []string        `gorm:"type:jsonb;serializer:json"`
	Usage       []string        `gorm:"type:jsonb;serializer:json"`
	Precautions []string        `gorm:"type:jsonb;serializer:json"`
	Notes       []string        `gorm:"type:jsonb;serializer:json"`
	Images      []string        `gorm:"type:jsonb;serializer:json"`
	Weight      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Unit        string          `gorm:"type:varchar(20)"`
	MRP         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SellingRate decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a product with its allocated external reference
func NewProduct(ref, name string) (*Product, error) {
	if ref == "" {
		return nil, shared.NewDomainError("INVALID_REF", "Product reference cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Ref:               ref,
		Name:              name,
		Description:       []string{},
		Features:          []string{},
		Usage:             []string{},
		Precautions:       []string{},
		Notes:             []string{},
		Images:            []string{},
		Weight:            decimal.Zero,
		MRP:               decimal.Zero,
		SellingRate:       decimal.Zero,
	}, nil
}

// SetPricing sets MRP and selling rate
func (p *Product) SetPricing(mrp, sellingRate decimal.Decimal) error {
	if mrp.IsNegative() || sellingRate.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	p.MRP = mrp
	p.SellingRate = sellingRate
	p.Touch()
	p.IncrementVersion()
	return nil
}

// SetWeight sets the unit weight and its unit of measure
func (p *Product) SetWeight(weight decimal.Decimal, unit string) error {
	if weight.IsNegative() {
		return shared.NewDomainError("INVALID_WEIGHT", "Weight cannot be negative")
	}
	p.Weight = weight
	p.Unit = unit
	p.Touch()
	p.IncrementVersion()
	return nil
}

// SetDetails replaces the descriptive entry lists
func (p *Product) SetDetails(description, features, usage, precautions, notes []string) {
	p.Description = orEmpty(description)
	p.Features = orEmpty(features)
	p.Usage = orEmpty(usage)
	p.Precautions = orEmpty(precautions)
	p.Notes = orEmpty(notes)
	p.Touch()
	p.IncrementVersion()
}

// SetImages replaces the image URL list
func (p *Product) SetImages(images []string) {
	p.Images = orEmpty(images)
	p.Touch()
	p.IncrementVersion()
}

func orEmpty(entries []string) []string {
	if entries == nil {
		return []string{}
	}
	return entries
}
