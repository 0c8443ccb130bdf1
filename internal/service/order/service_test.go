package order

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simple-store/internal/domain"
	orderrepo "simple-store/internal/repository/order"
)

type stubCatalog struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	err      error
	calls    int
	lastIDs  []int64
}

func (c *stubCatalog) FindByIDs(_ context.Context, ids []int64) ([]domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.lastIDs = append([]int64(nil), ids...)
	if c.err != nil {
		return nil, c.err
	}
	var out []domain.Product
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// memStore keeps committed orders in memory; a transaction's writes become
// visible only on Commit.
type memStore struct {
	mu        sync.Mutex
	nextOrder int64
	nextItem  int64
	orders    map[int64]domain.Order
	items     map[int64][]domain.OrderItem
	products  map[int64]domain.Product
	begins    int
	rollbacks int
	beginErr  error
	itemsErr  error
	commitErr error
	usernames map[int64]string
}

func newMemStore(products map[int64]domain.Product) *memStore {
	return &memStore{
		orders:    map[int64]domain.Order{},
		items:     map[int64][]domain.OrderItem{},
		products:  products,
		usernames: map[int64]string{1: "testuser"},
	}
}

func (m *memStore) Begin(_ context.Context) (orderrepo.Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.begins++
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	return &memTx{store: m}, nil
}

func (m *memStore) GetReceipt(_ context.Context, orderID int64) (*domain.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	rec := &domain.Receipt{Order: o, Username: m.usernames[o.UserID]}
	for _, it := range m.items[orderID] {
		p := m.products[it.ProductID]
		rec.Items = append(rec.Items, domain.ReceiptItem{
			OrderItem:          it,
			ProductName:        p.Name,
			ProductDescription: p.Description,
			ProductImageURL:    p.ImageURL,
		})
	}
	return rec, nil
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *memStore) itemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, items := range m.items {
		n += len(items)
	}
	return n
}

type memTx struct {
	store  *memStore
	order  *domain.Order
	items  []domain.OrderItem
	closed bool
}

func (t *memTx) CreateOrder(_ context.Context, o domain.Order) (*domain.Order, error) {
	t.store.mu.Lock()
	t.store.nextOrder++
	o.ID = t.store.nextOrder
	t.store.mu.Unlock()
	o.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t.order = &o
	return &o, nil
}

func (t *memTx) CreateItems(_ context.Context, items []domain.OrderItem) ([]domain.OrderItem, error) {
	if t.store.itemsErr != nil {
		return nil, t.store.itemsErr
	}
	out := make([]domain.OrderItem, 0, len(items))
	t.store.mu.Lock()
	for _, it := range items {
		t.store.nextItem++
		it.ID = t.store.nextItem
		out = append(out, it)
	}
	t.store.mu.Unlock()
	t.items = append(t.items, out...)
	return out, nil
}

func (t *memTx) Commit(_ context.Context) error {
	if t.store.commitErr != nil {
		return t.store.commitErr
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.orders[t.order.ID] = *t.order
	t.store.items[t.order.ID] = t.items
	t.closed = true
	return nil
}

func (t *memTx) Rollback(_ context.Context) error {
	if t.closed {
		return nil
	}
	t.store.mu.Lock()
	t.store.rollbacks++
	t.store.mu.Unlock()
	t.closed = true
	return nil
}

type recordingPublisher struct {
	placed []domain.PlacedOrder
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, placed domain.PlacedOrder) error {
	p.placed = append(p.placed, placed)
	return p.err
}

func sampleProducts() map[int64]domain.Product {
	return map[int64]domain.Product{
		1: {ID: 1, Name: "Wireless Headphones", Price: decimal.RequireFromString("49.99")},
		2: {ID: 2, Name: "Smartwatch", Price: decimal.RequireFromString("199.50")},
		3: {ID: 3, Name: "Portable Bluetooth Speaker", Price: decimal.RequireFromString("89.99")},
	}
}

func newTestService(pub publisher) (*Service, *stubCatalog, *memStore) {
	products := sampleProducts()
	cat := &stubCatalog{products: products}
	store := newMemStore(products)
	return New(cat, store, pub, nil), cat, store
}

func TestPlace_PersistsOrderWithSnapshotPrices(t *testing.T) {
	pub := &recordingPublisher{}
	svc, cat, store := newTestService(pub)

	id, err := svc.Place(context.Background(), 1, []domain.CartLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 3, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, 1, cat.calls)
	assert.Equal(t, []int64{1, 3}, cat.lastIDs)

	rec, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "189.97", rec.Order.TotalPrice.StringFixed(2))
	assert.Equal(t, "testuser", rec.Username)
	require.Len(t, rec.Items, 2)
	assert.Equal(t, int64(1), rec.Items[0].ProductID)
	assert.Equal(t, 2, rec.Items[0].Quantity)
	assert.Equal(t, "49.99", rec.Items[0].Price.StringFixed(2))
	assert.Equal(t, int64(3), rec.Items[1].ProductID)
	assert.Equal(t, "89.99", rec.Items[1].Price.StringFixed(2))

	sum := decimal.Zero
	for _, it := range rec.Items {
		sum = sum.Add(it.LineTotal())
	}
	assert.True(t, sum.Equal(rec.Order.TotalPrice))

	require.Len(t, pub.placed, 1)
	assert.Equal(t, id, pub.placed[0].Order.ID)
	assert.Len(t, pub.placed[0].Items, 2)

	assert.Equal(t, 1, store.orderCount())
	assert.Equal(t, 2, store.itemCount())
	assert.Zero(t, store.rollbacks)
}

func TestPlace_UnknownProductOpensNoTransaction(t *testing.T) {
	svc, _, store := newTestService(nil)

	_, err := svc.Place(context.Background(), 1, []domain.CartLine{
		{ProductID: 1, Quantity: 1},
		{ProductID: 999, Quantity: 1},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	var notFound *domain.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, int64(999), notFound.ProductID)
	assert.Contains(t, err.Error(), "999")

	assert.Zero(t, store.begins)
	assert.Zero(t, store.orderCount())
}

func TestPlace_RejectsInvalidInputBeforeAnyRead(t *testing.T) {
	cases := []struct {
		name   string
		userID int64
		cart   []domain.CartLine
		want   error
	}{
		{name: "empty cart", userID: 1, cart: nil, want: domain.ErrEmptyCart},
		{name: "missing user", userID: 0, cart: []domain.CartLine{{ProductID: 1, Quantity: 1}}, want: domain.ErrInvalidUser},
		{name: "zero quantity", userID: 1, cart: []domain.CartLine{{ProductID: 1, Quantity: 0}}, want: domain.ErrInvalidQuantity},
		{name: "quantity above column range", userID: 1, cart: []domain.CartLine{{ProductID: 1, Quantity: math.MaxInt32 + 1}}, want: domain.ErrInvalidQuantity},
		{name: "merged quantity above column range", userID: 1, cart: []domain.CartLine{{ProductID: 1, Quantity: math.MaxInt32}, {ProductID: 1, Quantity: 1}}, want: domain.ErrInvalidQuantity},
		{name: "negative quantity", userID: 1, cart: []domain.CartLine{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: -1}}, want: domain.ErrInvalidQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, cat, store := newTestService(nil)
			_, err := svc.Place(context.Background(), tc.userID, tc.cart)
			assert.ErrorIs(t, err, tc.want)
			assert.Zero(t, cat.calls)
			assert.Zero(t, store.begins)
		})
	}
}

func TestPlace_ItemFailureRollsBackOrder(t *testing.T) {
	svc, _, store := newTestService(nil)
	store.itemsErr = errors.Join(domain.ErrConstraintViolation, errors.New("insert order_item: fk"))

	_, err := svc.Place(context.Background(), 1, []domain.CartLine{{ProductID: 2, Quantity: 1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
	assert.Equal(t, 1, store.rollbacks)
	assert.Zero(t, store.orderCount())
	assert.Zero(t, store.itemCount())
}

func TestPlace_CommitFailureReturnsError(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _, store := newTestService(pub)
	store.commitErr = domain.ErrStorageUnavailable

	_, err := svc.Place(context.Background(), 1, []domain.CartLine{{ProductID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Equal(t, 1, store.rollbacks)
	assert.Zero(t, store.orderCount())
	assert.Empty(t, pub.placed)
}

func TestPlace_BeginFailure(t *testing.T) {
	svc, _, store := newTestService(nil)
	store.beginErr = domain.ErrStorageUnavailable

	_, err := svc.Place(context.Background(), 1, []domain.CartLine{{ProductID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Zero(t, store.rollbacks)
}

func TestPlace_CatalogFailure(t *testing.T) {
	svc, cat, store := newTestService(nil)
	cat.err = domain.ErrStorageUnavailable

	_, err := svc.Place(context.Background(), 1, []domain.CartLine{{ProductID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Zero(t, store.begins)
}

func TestPlace_MergesDuplicateLines(t *testing.T) {
	svc, cat, _ := newTestService(nil)

	id, err := svc.Place(context.Background(), 1, []domain.CartLine{
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 1},
		{ProductID: 1, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, cat.lastIDs)

	rec, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, rec.Items, 2)
	assert.Equal(t, 3, rec.Items[0].Quantity)
	assert.Equal(t, 1, rec.Items[1].Quantity)
	assert.Equal(t, "349.47", rec.Order.TotalPrice.StringFixed(2))
}

func TestPlace_PublishFailureKeepsOrder(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc, _, store := newTestService(pub)

	id, err := svc.Place(context.Background(), 1, []domain.CartLine{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, 1, store.orderCount())
}

func TestPlace_IndependentOrders(t *testing.T) {
	svc, cat, store := newTestService(nil)
	cart := []domain.CartLine{{ProductID: 1, Quantity: 1}}

	var wg sync.WaitGroup
	ids := make([]int64, 8)
	errs := make([]error, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = svc.Place(context.Background(), 1, cart)
		}(i)
	}
	wg.Wait()

	seen := map[int64]bool{}
	for i := range ids {
		require.NoError(t, errs[i])
		assert.False(t, seen[ids[i]], "duplicate order id %d", ids[i])
		seen[ids[i]] = true
	}
	assert.Equal(t, 8, store.orderCount())
	assert.Equal(t, 8, cat.calls)
}

func TestGet_IsStableAndIgnoresPriceChanges(t *testing.T) {
	svc, cat, _ := newTestService(nil)

	id, err := svc.Place(context.Background(), 1, []domain.CartLine{{ProductID: 2, Quantity: 1}})
	require.NoError(t, err)

	first, err := svc.Get(context.Background(), id)
	require.NoError(t, err)

	p := cat.products[2]
	p.Price = decimal.RequireFromString("10.00")
	cat.products[2] = p

	second, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "199.50", second.Items[0].Price.StringFixed(2))
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _ := newTestService(nil)

	_, err := svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
