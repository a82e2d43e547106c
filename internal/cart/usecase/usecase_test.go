package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-ordering-service/internal/cart"
	"github.com/fekuna/omnipos-ordering-service/internal/cart/dto"
	"github.com/fekuna/omnipos-ordering-service/internal/cart/repository"
	"github.com/fekuna/omnipos-ordering-service/internal/model"
	"github.com/fekuna/omnipos-ordering-service/internal/product"
	"github.com/fekuna/omnipos-ordering-service/pkg/cache"
	"github.com/fekuna/omnipos-ordering-service/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog map[int64]*model.Product

func (f fakeCatalog) GetProduct(_ context.Context, id int64) (*model.Product, error) {
	p, ok := f[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

type fakeOrders struct {
	calls    int
	err      error
	got      *model.OrderSubmission
	deadline time.Time
	during   func(ctx context.Context)
}

func (f *fakeOrders) CreateOrder(ctx context.Context, sub *model.OrderSubmission) (*model.Order, error) {
	f.calls++
	f.got = sub
	f.deadline, _ = ctx.Deadline()
	if f.during != nil {
		f.during(ctx)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &model.Order{ID: 501, CustomerName: sub.CustomerName, Status: model.OrderStatusPending}, nil
}

type fixture struct {
	uc     cart.UseCase
	orders *fakeOrders
	mr     *miniredis.Miniredis
}

func setup(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	catalog := fakeCatalog{
		1: {ID: 1, Name: "Café", Price: decimal.NewFromInt(20), Variants: []model.ProductVariant{
			{ID: 10, ProductID: 1, Name: "Chico", Price: decimal.NewFromInt(25), IsActive: true},
			{ID: 11, ProductID: 1, Name: "Grande", Price: decimal.NewFromInt(35), IsActive: true},
		}},
		2: {ID: 2, Name: "Pan dulce", Price: decimal.NewFromInt(12)},
	}
	repo := repository.NewRedisRepository(client)
	orders := &fakeOrders{}
	uc := NewCartUseCase(repo, catalog, orders, cache.Wrap(client), Options{
		SessionTTL:    time.Hour,
		SubmitLockTTL: 10 * time.Second,
	}, logger.NewNop())

	return &fixture{uc: uc, orders: orders, mr: mr}
}

func (f *fixture) open(t *testing.T, mode string) string {
	t.Helper()
	c, err := f.uc.OpenCart(context.Background(), &dto.OpenCartInput{Mode: mode})
	require.NoError(t, err)
	return c.ID
}

func (f *fixture) add(t *testing.T, id string, productID int64, variantID *int64) *cart.Cart {
	t.Helper()
	c, _, err := f.uc.AddItem(context.Background(), id, &dto.AddItemInput{ProductID: productID, VariantID: variantID})
	require.NoError(t, err)
	return c
}

func TestOpenCart(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	c, err := f.uc.OpenCart(ctx, &dto.OpenCartInput{Mode: "Waiter"})
	require.NoError(t, err)
	assert.Equal(t, cart.ModeWaiter, c.Mode)
	assert.Equal(t, time.Hour, f.mr.TTL("carritos:"+c.ID))

	c, err = f.uc.OpenCart(ctx, &dto.OpenCartInput{})
	require.NoError(t, err)
	assert.Equal(t, cart.ModeCustomer, c.Mode)

	_, err = f.uc.OpenCart(ctx, &dto.OpenCartInput{Mode: "kiosk"})
	assert.ErrorIs(t, err, cart.ErrInvalidMode)
}

func TestAddItem_SelectsVariant(t *testing.T) {
	f := setup(t)
	id := f.open(t, "customer")
	grande := int64(11)

	f.add(t, id, 1, nil)
	f.add(t, id, 1, &grande)
	c, line, err := f.uc.AddItem(context.Background(), id, &dto.AddItemInput{ProductID: 1})
	require.NoError(t, err)

	require.Len(t, c.Lines, 2)
	assert.Equal(t, "Chico", line.Variant.Name, "first active variant by default")
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, decimal.NewFromInt(85).Equal(c.Total()), "25*2 + 35")
}

func TestAddItem_Errors(t *testing.T) {
	f := setup(t)
	id := f.open(t, "customer")
	unknown := int64(999)

	_, _, err := f.uc.AddItem(context.Background(), id, &dto.AddItemInput{ProductID: 42})
	assert.ErrorIs(t, err, product.ErrNotFound)

	_, _, err = f.uc.AddItem(context.Background(), id, &dto.AddItemInput{ProductID: 1, VariantID: &unknown})
	assert.ErrorIs(t, err, cart.ErrVariantNotFound)

	_, _, err = f.uc.AddItem(context.Background(), "missing", &dto.AddItemInput{ProductID: 2})
	assert.ErrorIs(t, err, cart.ErrNotFound)
}

func TestUpdateAndRemoveItem(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.open(t, "waiter")
	f.add(t, id, 2, nil)
	f.add(t, id, 1, nil)

	delta, notes := 4, "bien caliente"
	c, err := f.uc.UpdateItem(ctx, id, 0, &dto.UpdateItemInput{Delta: &delta, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, 5, c.Lines[0].Quantity)
	assert.Equal(t, "bien caliente", c.Lines[0].Notes)

	minus := -100
	c, err = f.uc.UpdateItem(ctx, id, 0, &dto.UpdateItemInput{Delta: &minus})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Lines[0].Quantity)

	_, err = f.uc.UpdateItem(ctx, id, 7, &dto.UpdateItemInput{Delta: &delta})
	assert.ErrorIs(t, err, cart.ErrInvalidIndex)

	c, err = f.uc.RemoveItem(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "Café", c.Lines[0].Product.Name)
}

func TestSubmit_ClearsStoredCart(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.open(t, "customer")
	f.add(t, id, 2, nil)

	order, err := f.uc.Submit(ctx, id, &dto.SubmitInput{CustomerName: "Dani"})
	require.NoError(t, err)
	assert.Equal(t, int64(501), order.ID)

	c, err := f.uc.GetCart(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
	assert.False(t, f.mr.Exists(submitLockPrefix+id), "lock released")
}

func TestSubmit_LockHeldIsConflict(t *testing.T) {
	f := setup(t)
	id := f.open(t, "customer")
	f.add(t, id, 2, nil)
	require.NoError(t, f.mr.Set(submitLockPrefix+id, "someone-else"))

	_, err := f.uc.Submit(context.Background(), id, &dto.SubmitInput{CustomerName: "Dani"})

	assert.ErrorIs(t, err, cart.ErrSubmissionInFlight)
	assert.Equal(t, 0, f.orders.calls)
	v, _ := f.mr.Get(submitLockPrefix + id)
	assert.Equal(t, "someone-else", v, "foreign lock left alone")
}

func TestSubmit_RejectedNameKeepsCart(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.open(t, "waiter")
	f.add(t, id, 2, nil)
	f.add(t, id, 2, nil)

	_, err := f.uc.Submit(ctx, id, &dto.SubmitInput{CustomerName: "   "})

	assert.ErrorIs(t, err, cart.ErrCustomerNameRequired)
	assert.Equal(t, 0, f.orders.calls)
	c, _ := f.uc.GetCart(ctx, id)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
}

func TestSubmit_CreatorFailureKeepsCart(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.open(t, "customer")
	f.add(t, id, 2, nil)
	f.orders.err = errors.New("connection refused")

	_, err := f.uc.Submit(ctx, id, &dto.SubmitInput{CustomerName: "Dani"})
	require.Error(t, err)

	c, _ := f.uc.GetCart(ctx, id)
	assert.Len(t, c.Lines, 1)
	assert.False(t, f.mr.Exists(submitLockPrefix+id))

	f.orders.err = nil
	_, err = f.uc.Submit(ctx, id, &dto.SubmitInput{CustomerName: "Dani"})
	assert.NoError(t, err, "retry after failure")
}

func TestDiscardCart(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.open(t, "customer")

	require.NoError(t, f.uc.DiscardCart(ctx, id))
	_, err := f.uc.GetCart(ctx, id)
	assert.ErrorIs(t, err, cart.ErrNotFound)
	assert.ErrorIs(t, f.uc.DiscardCart(ctx, id), cart.ErrNotFound)
}

func TestSubmit_KeepsEditsMadeWhileInFlight(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.open(t, "waiter")
	f.add(t, id, 2, nil)

	f.orders.during = func(context.Context) {
		f.add(t, id, 1, nil)
		f.add(t, id, 2, nil)
	}

	_, err := f.uc.Submit(ctx, id, &dto.SubmitInput{CustomerName: "Mesa 4"})
	require.NoError(t, err)
	require.Len(t, f.orders.got.Items, 1)

	c, err := f.uc.GetCart(ctx, id)
	require.NoError(t, err)
	require.Len(t, c.Lines, 2)
	assert.Equal(t, "Pan dulce", c.Lines[0].Product.Name)
	assert.Equal(t, 1, c.Lines[0].Quantity)
	assert.Equal(t, "Chico", c.Lines[1].Variant.Name)
}

func TestSubmit_OrderCreationBoundedByLockTTL(t *testing.T) {
	f := setup(t)
	id := f.open(t, "customer")
	f.add(t, id, 2, nil)

	before := time.Now()
	_, err := f.uc.Submit(context.Background(), id, &dto.SubmitInput{CustomerName: "Dani"})
	require.NoError(t, err)

	require.False(t, f.orders.deadline.IsZero(), "creator gets a deadline")
	assert.True(t, f.orders.deadline.Before(before.Add(10*time.Second)), "deadline inside the lock TTL")
	assert.WithinDuration(t, before.Add(8*time.Second), f.orders.deadline, time.Second)
}
