// Package cart builds priced order lines from catalog products and hands
// the result to an order creator.
package cart

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fekuna/omnipos-ordering-service/internal/apperror"
	"github.com/fekuna/omnipos-ordering-service/internal/model"
	"github.com/shopspring/decimal"
)

type Mode string

const (
	// ModeWaiter is staff ordering on behalf of a table.
	ModeWaiter   Mode = "waiter"
	ModeCustomer Mode = "customer"
)

func (m Mode) Valid() bool {
	return m == ModeWaiter || m == ModeCustomer
}

// ProductRef is the part of a product a line keeps.
type ProductRef struct {
	ID    int64           `json:"id"`
	Name  string          `json:"nombre"`
	Price decimal.Decimal `json:"precio"`
	Image *string         `json:"imagen,omitempty"`
}

type VariantRef struct {
	ID    int64           `json:"id"`
	Name  string          `json:"nombre"`
	Price decimal.Decimal `json:"precio"`
}

type Line struct {
	Product   ProductRef      `json:"producto"`
	Variant   *VariantRef     `json:"variante,omitempty"`
	Quantity  int             `json:"cantidad"`
	Notes     string          `json:"notas"`
	UnitPrice decimal.Decimal `json:"precioCalculado"`
}

// Subtotal is UnitPrice × Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l Line) matches(productID int64, v *model.ProductVariant) bool {
	if l.Product.ID != productID {
		return false
	}
	if v == nil || l.Variant == nil {
		return v == nil && l.Variant == nil
	}
	return l.Variant.ID == v.ID
}

func (l Line) sameItem(o Line) bool {
	if l.Product.ID != o.Product.ID {
		return false
	}
	if l.Variant == nil || o.Variant == nil {
		return l.Variant == nil && o.Variant == nil
	}
	return l.Variant.ID == o.Variant.ID
}

// OrderCreator persists a submission as an order.
type OrderCreator interface {
	CreateOrder(ctx context.Context, sub *model.OrderSubmission) (*model.Order, error)
}

// Cart is one session's order in progress. Its methods are safe for
// concurrent use.
type Cart struct {
	ID        string    `json:"id"`
	Mode      Mode      `json:"modo"`
	Lines     []Line    `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	mu         sync.Mutex
	submitting bool
}

func New(id string, mode Mode) *Cart {
	now := time.Now()
	return &Cart{ID: id, Mode: mode, Lines: []Line{}, CreatedAt: now, UpdatedAt: now}
}

// AddLine adds one unit of product (and variant, if any) and returns the
// index of the line it landed on. A line with the same product and variant
// is incremented instead of duplicated.
func (c *Cart) AddLine(p *model.Product, v *model.ProductVariant) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.touch()

	for i := range c.Lines {
		if c.Lines[i].matches(p.ID, v) {
			c.Lines[i].Quantity++
			return i
		}
	}

	line := Line{
		Product:   ProductRef{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image},
		Quantity:  1,
		UnitPrice: p.Price,
	}
	if v != nil {
		line.Variant = &VariantRef{ID: v.ID, Name: v.Name, Price: v.Price}
		line.UnitPrice = v.Price
	}
	c.Lines = append(c.Lines, line)
	return len(c.Lines) - 1
}

// RemoveLine deletes the line at index. Out of range is a no-op.
func (c *Cart) RemoveLine(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.Lines) {
		return
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
	c.touch()
}

// UpdateQuantity adds delta to the line's quantity, never going below 1.
func (c *Cart) UpdateQuantity(index, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.Lines) {
		return
	}
	q := c.Lines[index].Quantity + delta
	if q < 1 {
		q = 1
	}
	c.Lines[index].Quantity = q
	c.touch()
}

func (c *Cart) SetNotes(index int, notes string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.Lines) {
		return
	}
	c.Lines[index].Notes = notes
	c.touch()
}

// Total is recomputed from the lines on every call.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// View is the cart as the UI renders it.
type View struct {
	ID        string          `json:"id"`
	Mode      Mode            `json:"modo"`
	Items     []Line          `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"totalItems"`
}

func (c *Cart) View() View {
	lines := c.Snapshot()
	return View{ID: c.ID, Mode: c.Mode, Items: lines, Total: c.Total(), ItemCount: c.ItemCount()}
}

// Snapshot returns a copy of the lines.
func (c *Cart) Snapshot() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line{}, c.Lines...)
}

// BuildSubmission validates the cart and returns an order payload. The cart
// is not modified.
func (c *Cart) BuildSubmission(customerName, orderType string, paymentMethod *string) (*model.OrderSubmission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buildSubmission(customerName, orderType, paymentMethod)
}

func (c *Cart) buildSubmission(customerName, orderType string, paymentMethod *string) (*model.OrderSubmission, error) {
	name := strings.TrimSpace(customerName)
	if name == "" {
		if c.Mode == ModeCustomer {
			return nil, &apperror.Error{
				Kind:      apperror.KindValidation,
				MessageID: "OwnNameRequired",
				Err:       ErrCustomerNameRequired,
			}
		}
		return nil, ErrCustomerNameRequired
	}
	if len(c.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	if strings.TrimSpace(orderType) == "" {
		orderType = model.OrderTypeLocal
	}
	if paymentMethod != nil && strings.TrimSpace(*paymentMethod) == "" {
		paymentMethod = nil
	}

	sub := &model.OrderSubmission{
		CustomerName:  name,
		OrderType:     orderType,
		PaymentMethod: paymentMethod,
		Items:         make([]model.SubmissionItem, 0, len(c.Lines)),
	}
	for _, l := range c.Lines {
		item := model.SubmissionItem{
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
			Notes:     l.Notes,
			UnitPrice: l.UnitPrice,
		}
		if l.Variant != nil {
			vid, vname := l.Variant.ID, l.Variant.Name
			item.VariantID, item.VariantName = &vid, &vname
		}
		sub.Items = append(sub.Items, item)
	}
	return sub, nil
}

// Submit hands the cart to creator. Only one submit may be in flight; the
// lines are cleared only after creator succeeds.
func (c *Cart) Submit(ctx context.Context, customerName, orderType string, paymentMethod *string, creator OrderCreator) (*model.Order, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	sub, err := c.buildSubmission(customerName, orderType, paymentMethod)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.submitting = true
	c.mu.Unlock()

	order, err := creator.CreateOrder(ctx, sub)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		if apperror.KindOf(err) != apperror.KindInternal {
			return nil, err
		}
		return nil, apperror.Wrap(apperror.KindInternal, "OrderSubmitFailed", err)
	}
	c.Lines = []Line{}
	c.touch()
	return order, nil
}

// Settle takes the quantities of submitted off the cart. Lines added or
// incremented after the submission was built are kept.
func (c *Cart) Settle(submitted []Line) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range submitted {
		for i := range c.Lines {
			if c.Lines[i].sameItem(s) {
				c.Lines[i].Quantity -= s.Quantity
				break
			}
		}
	}
	kept := make([]Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l.Quantity > 0 {
			kept = append(kept, l)
		}
	}
	c.Lines = kept
	c.touch()
}

func (c *Cart) inFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

func (c *Cart) touch() { c.UpdatedAt = time.Now() }

// SelectVariant resolves the variant a line should use. Inactive variants
// are hidden from the menu, so the default for a nil id is the first variant
// the customer can actually see: the first active one in list order.
// Products without active variants sell at base price (nil).
func SelectVariant(p *model.Product, variantID *int64) (*model.ProductVariant, error) {
	active := p.ActiveVariants()
	if len(active) == 0 {
		if variantID != nil {
			return nil, ErrVariantNotFound
		}
		return nil, nil
	}
	if variantID == nil {
		return &active[0], nil
	}
	for i := range active {
		if active[i].ID == *variantID {
			return &active[i], nil
		}
	}
	return nil, ErrVariantNotFound
}
