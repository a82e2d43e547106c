package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-ordering-service/internal/apperror"
	"github.com/fekuna/omnipos-ordering-service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func cafe() *model.Product {
	return &model.Product{
		ID:    1,
		Name:  "Café",
		Price: dec("20"),
		Variants: []model.ProductVariant{
			{ID: 10, ProductID: 1, Name: "Chico", Price: dec("25"), IsActive: true},
			{ID: 11, ProductID: 1, Name: "Grande", Price: dec("35"), IsActive: true},
			{ID: 12, ProductID: 1, Name: "Temporada", Price: dec("40"), IsActive: false},
		},
	}
}

func pan() *model.Product {
	return &model.Product{ID: 2, Name: "Pan dulce", Price: dec("12.50")}
}

type fakeCreator struct {
	calls int
	got   *model.OrderSubmission
	err   error
	block chan struct{}
}

func (f *fakeCreator) CreateOrder(_ context.Context, sub *model.OrderSubmission) (*model.Order, error) {
	f.calls++
	f.got = sub
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return &model.Order{ID: 99, CustomerName: sub.CustomerName}, nil
}

func TestAddLine_SamePairMerges(t *testing.T) {
	c := New("c1", ModeCustomer)
	grande := &cafe().Variants[1]

	for i := 0; i < 4; i++ {
		c.AddLine(cafe(), grande)
	}

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 4, c.Lines[0].Quantity)
	assert.Equal(t, 4, c.ItemCount())
}

func TestAddLine_VariantPresenceMustMatch(t *testing.T) {
	c := New("c1", ModeCustomer)
	p := cafe()

	assert.Equal(t, 0, c.AddLine(p, nil))
	assert.Equal(t, 1, c.AddLine(p, &p.Variants[0]))
	assert.Equal(t, 2, c.AddLine(p, &p.Variants[1]))
	assert.Equal(t, 1, c.AddLine(p, &p.Variants[0]))
	assert.Equal(t, 0, c.AddLine(p, nil))

	require.Len(t, c.Lines, 3)
	assert.Equal(t, []int{2, 2, 1}, []int{c.Lines[0].Quantity, c.Lines[1].Quantity, c.Lines[2].Quantity})
}

func TestAddLine_Pricing(t *testing.T) {
	c := New("c1", ModeCustomer)
	p := cafe()

	c.AddLine(pan(), nil)
	c.AddLine(p, &p.Variants[1])

	assert.True(t, dec("12.50").Equal(c.Lines[0].UnitPrice), "no variant: base price")
	assert.Nil(t, c.Lines[0].Variant)
	assert.True(t, dec("35").Equal(c.Lines[1].UnitPrice), "variant price wins")
	assert.Equal(t, "Grande", c.Lines[1].Variant.Name)
	assert.Equal(t, "", c.Lines[1].Notes)
}

func TestTotal_AndRemoveLine(t *testing.T) {
	c := New("c1", ModeCustomer)
	p := cafe()
	c.AddLine(pan(), nil)
	c.AddLine(pan(), nil)
	c.AddLine(p, &p.Variants[0])

	assert.True(t, dec("50").Equal(c.Total()), "12.50*2 + 25")

	before := c.Total()
	sub := c.Lines[0].Subtotal()
	c.RemoveLine(0)
	assert.True(t, before.Sub(sub).Equal(c.Total()))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "Café", c.Lines[0].Product.Name)
}

func TestOutOfRangeIsNoop(t *testing.T) {
	c := New("c1", ModeCustomer)
	c.AddLine(pan(), nil)

	c.RemoveLine(5)
	c.RemoveLine(-1)
	c.UpdateQuantity(3, 10)
	c.SetNotes(-2, "x")

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 1, c.Lines[0].Quantity)
	assert.Equal(t, "", c.Lines[0].Notes)
}

func TestUpdateQuantity_FloorsAtOne(t *testing.T) {
	c := New("c1", ModeCustomer)
	for i := 0; i < 3; i++ {
		c.AddLine(pan(), nil)
	}

	c.UpdateQuantity(0, -1000)
	assert.Equal(t, 1, c.Lines[0].Quantity)

	c.UpdateQuantity(0, 2)
	assert.Equal(t, 3, c.Lines[0].Quantity)
}

func TestBuildSubmission(t *testing.T) {
	c := New("c1", ModeWaiter)
	p := cafe()
	c.AddLine(p, &p.Variants[0])
	c.AddLine(pan(), nil)
	c.SetNotes(1, "tibio")
	empty := ""

	sub, err := c.BuildSubmission("  Ana ", "", &empty)
	require.NoError(t, err)

	assert.Equal(t, "Ana", sub.CustomerName)
	assert.Equal(t, model.OrderTypeLocal, sub.OrderType)
	assert.Nil(t, sub.PaymentMethod)
	require.Len(t, sub.Items, 2)
	assert.Equal(t, int64(10), *sub.Items[0].VariantID)
	assert.Equal(t, "Chico", *sub.Items[0].VariantName)
	assert.True(t, dec("25").Equal(sub.Items[0].UnitPrice))
	assert.Nil(t, sub.Items[1].VariantID)
	assert.Equal(t, "tibio", sub.Items[1].Notes)
	assert.Len(t, c.Lines, 2, "building does not clear")
}

func TestBuildSubmission_Rejections(t *testing.T) {
	waiter := New("w", ModeWaiter)
	waiter.AddLine(pan(), nil)

	_, err := waiter.BuildSubmission("   ", "LOCAL", nil)
	assert.ErrorIs(t, err, ErrCustomerNameRequired)
	id, _ := apperror.MessageOf(err, "")
	assert.Equal(t, "CustomerNameRequired", id)

	customer := New("c", ModeCustomer)
	customer.AddLine(pan(), nil)
	_, err = customer.BuildSubmission("", "LOCAL", nil)
	assert.ErrorIs(t, err, ErrCustomerNameRequired)
	id, _ = apperror.MessageOf(err, "")
	assert.Equal(t, "OwnNameRequired", id)

	_, err = New("e", ModeCustomer).BuildSubmission("Ana", "LOCAL", nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmit_EmptyNameDoesNotCallCreator(t *testing.T) {
	c := New("c1", ModeWaiter)
	c.AddLine(pan(), nil)
	c.AddLine(pan(), nil)
	creator := &fakeCreator{}

	_, err := c.Submit(context.Background(), " \t", "LOCAL", nil, creator)

	assert.ErrorIs(t, err, ErrCustomerNameRequired)
	assert.Equal(t, 0, creator.calls)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.False(t, c.inFlight())
}

func TestSubmit_SuccessClears(t *testing.T) {
	c := New("c1", ModeCustomer)
	c.AddLine(pan(), nil)
	cash := "Efectivo"
	creator := &fakeCreator{}

	order, err := c.Submit(context.Background(), "Luis", "LOCAL", &cash, creator)

	require.NoError(t, err)
	assert.Equal(t, int64(99), order.ID)
	assert.Equal(t, "Efectivo", *creator.got.PaymentMethod)
	assert.Empty(t, c.Lines)
	assert.True(t, c.Total().IsZero())
}

func TestSubmit_FailurePreservesLines(t *testing.T) {
	c := New("c1", ModeCustomer)
	c.AddLine(pan(), nil)
	creator := &fakeCreator{err: errors.New("db down")}

	_, err := c.Submit(context.Background(), "Luis", "LOCAL", nil, creator)

	require.Error(t, err)
	id, _ := apperror.MessageOf(err, "")
	assert.Equal(t, "OrderSubmitFailed", id)
	assert.Len(t, c.Lines, 1)
	assert.False(t, c.inFlight(), "retry allowed")

	creator.err = nil
	_, err = c.Submit(context.Background(), "Luis", "LOCAL", nil, creator)
	require.NoError(t, err)
	assert.Equal(t, 2, creator.calls)
}

func TestSubmit_ValidationErrorFromCreatorPassesThrough(t *testing.T) {
	c := New("c1", ModeCustomer)
	c.AddLine(pan(), nil)
	invalid := apperror.New(apperror.KindValidation, "InvalidPaymentMethod", "bad method")

	_, err := c.Submit(context.Background(), "Luis", "LOCAL", nil, &fakeCreator{err: invalid})

	assert.ErrorIs(t, err, invalid)
	assert.Len(t, c.Lines, 1)
}

func TestSubmit_RejectsWhileInFlight(t *testing.T) {
	c := New("c1", ModeCustomer)
	c.AddLine(pan(), nil)
	creator := &fakeCreator{block: make(chan struct{})}

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), "Luis", "LOCAL", nil, creator)
		done <- err
	}()
	require.Eventually(t, c.inFlight, time.Second, time.Millisecond)

	_, err := c.Submit(context.Background(), "Luis", "LOCAL", nil, &fakeCreator{})
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(creator.block)
	require.NoError(t, <-done)
	assert.Empty(t, c.Snapshot())
}

func TestSelectVariant(t *testing.T) {
	ten, twelve, missing := int64(10), int64(12), int64(77)

	tests := []struct {
		name    string
		product *model.Product
		id      *int64
		want    *int64
		wantErr error
	}{
		{"no variants, no id", pan(), nil, nil, nil},
		{"no variants, id given", pan(), &ten, nil, ErrVariantNotFound},
		{"default is first active", cafe(), nil, &ten, nil},
		{"explicit id", cafe(), &ten, &ten, nil},
		{"inactive id", cafe(), &twelve, nil, ErrVariantNotFound},
		{"unknown id", cafe(), &missing, nil, ErrVariantNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := SelectVariant(tt.product, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, v)
				return
			}
			require.NotNil(t, v)
			assert.Equal(t, *tt.want, v.ID)
		})
	}
}

func TestSelectVariant_AllInactiveSellsAtBase(t *testing.T) {
	p := cafe()
	for i := range p.Variants {
		p.Variants[i].IsActive = false
	}

	v, err := SelectVariant(p, nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSettle_KeepsLinesNotSubmitted(t *testing.T) {
	c := New("c1", ModeWaiter)
	chico := &cafe().Variants[0]
	c.AddLine(pan(), nil)
	c.AddLine(cafe(), chico)
	submitted := c.Snapshot()

	// edits from another tab while the order was being created
	c.AddLine(pan(), nil)
	c.AddLine(cafe(), &cafe().Variants[1])

	c.Settle(submitted)

	lines := c.Snapshot()
	require.Len(t, lines, 2)
	assert.Equal(t, "Pan dulce", lines[0].Product.Name)
	assert.Equal(t, 1, lines[0].Quantity, "only the submitted unit is taken off")
	assert.Equal(t, "Grande", lines[1].Variant.Name)
}

func TestSettle_EverythingSubmitted(t *testing.T) {
	c := New("c1", ModeCustomer)
	c.AddLine(pan(), nil)
	c.AddLine(pan(), nil)
	submitted := c.Snapshot()
	c.UpdateQuantity(0, -1)

	c.Settle(submitted)

	assert.NotNil(t, c.Lines)
	assert.Empty(t, c.Lines)
	assert.True(t, c.Total().IsZero())
}
