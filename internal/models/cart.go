package models

import (
	"math"
	"time"

	"scango/internal/apperrors"

	"github.com/shopspring/decimal"
)

// CartStatus is the lifecycle state of a cart.
type CartStatus string

const (
	CartActive    CartStatus = "active"
	CartPending   CartStatus = "pending"
	CartCompleted CartStatus = "completed"
	CartCancelled CartStatus = "cancelled"
)

var cartTransitions = map[CartStatus][]CartStatus{
	CartActive:  {CartPending},
	CartPending: {CartActive, CartCompleted, CartCancelled},
}

// Terminal reports whether no transition leaves s.
func (s CartStatus) Terminal() bool {
	return s == CartCompleted || s == CartCancelled
}

// CanTransitionTo reports whether s -> next is a legal cart transition.
func (s CartStatus) CanTransitionTo(next CartStatus) bool {
	for _, allowed := range cartTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is one of the known statuses.
func (s CartStatus) Valid() bool {
	switch s {
	case CartActive, CartPending, CartCompleted, CartCancelled:
		return true
	}
	return false
}

// CartItem is a line in a cart. Product is a snapshot taken when the line was created.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity" validate:"gte=1"`
}

// LineTotal is price × quantity for the line.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is a per-user shopping session.
type Cart struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"required"`
	UserID      string          `json:"user_id" gorm:"index;type:varchar(36);not null" validate:"required"`
	Items       []CartItem      `json:"items" gorm:"serializer:json;type:text" validate:"omitempty,dive"`
	TotalPrice  decimal.Decimal `json:"total_price" gorm:"type:decimal(10,2);not null" validate:"gte=0,lt=100000000"`
	Status      CartStatus      `json:"status" gorm:"index;type:varchar(16);not null" validate:"required,oneof=active pending completed cancelled"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// NewCart returns an empty active cart for userID.
func NewCart(id, userID string, now time.Time) *Cart {
	return &Cart{
		ID:         id,
		UserID:     userID,
		Items:      []CartItem{},
		TotalPrice: decimal.Zero,
		Status:     CartActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ComputeTotal sums price × quantity over all lines.
func (c *Cart) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Recalculate resets TotalPrice from the lines.
func (c *Cart) Recalculate() {
	c.TotalPrice = c.ComputeTotal()
}

// IndexOf returns the position of the line for productID, or -1.
func (c *Cart) IndexOf(productID string) int {
	for i, item := range c.Items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Quantity returns the quantity of productID in the cart.
func (c *Cart) Quantity(productID string) int {
	if i := c.IndexOf(productID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

// AddProduct adds one unit of p. The cart is left unchanged when the add would
// exceed p's stock.
func (c *Cart) AddProduct(p Product) error {
	current := c.Quantity(p.ID)
	if p.Stock != nil && current+1 > *p.Stock {
		return &apperrors.StockLimitError{ProductID: p.ID, ProductName: p.Name, Available: *p.Stock}
	}
	if i := c.IndexOf(p.ID); i >= 0 {
		c.Items[i].Quantity++
	} else {
		c.Items = append(c.Items, CartItem{Product: p, Quantity: 1})
	}
	c.Recalculate()
	return nil
}

// ChangeQuantity adds delta to the line for productID. A line that drops to
// zero or below is removed.
func (c *Cart) ChangeQuantity(productID string, delta int) error {
	i := c.IndexOf(productID)
	if i < 0 {
		return apperrors.NotFound("cart item", productID)
	}
	if delta > 0 && c.Items[i].Quantity > math.MaxInt-delta {
		return apperrors.Invalid("delta", "quantity too large")
	}
	return c.SetQuantity(productID, c.Items[i].Quantity+delta)
}

// SetQuantity sets the line for productID to quantity, removing it when
// quantity <= 0.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	i := c.IndexOf(productID)
	if i < 0 {
		return apperrors.NotFound("cart item", productID)
	}
	if quantity <= 0 {
		c.Items = append(c.Items[:i:i], c.Items[i+1:]...)
	} else {
		c.Items[i].Quantity = quantity
	}
	c.Recalculate()
	return nil
}

// RemoveItem drops the line for productID.
func (c *Cart) RemoveItem(productID string) error {
	return c.SetQuantity(productID, 0)
}

// RequiredAge is the highest age restriction across the cart's lines.
func (c *Cart) RequiredAge() int {
	required := 0
	for _, item := range c.Items {
		if age := item.Product.RequiredAge(); age > required {
			required = age
		}
	}
	return required
}

// RestrictedItems returns the lines that carry an age restriction.
func (c *Cart) RestrictedItems() []CartItem {
	var out []CartItem
	for _, item := range c.Items {
		if item.Product.RequiredAge() > 0 {
			out = append(out, item)
		}
	}
	return out
}

// TransitionTo moves the cart to next if the state machine allows it.
func (c *Cart) TransitionTo(next CartStatus, now time.Time) error {
	if !c.Status.CanTransitionTo(next) {
		return &apperrors.TransitionError{From: string(c.Status), To: string(next)}
	}
	if c.Status == CartActive && next == CartPending && len(c.Items) == 0 {
		return apperrors.ErrEmptyCart
	}
	c.Status = next
	c.UpdatedAt = now
	if next == CartCompleted {
		c.CompletedAt = &now
	}
	return nil
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = make([]CartItem, len(c.Items))
	copy(cp.Items, c.Items)
	if c.CompletedAt != nil {
		t := *c.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}
