package service

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/bookstore/internal/apperr"
	"github.com/d60-Lab/bookstore/internal/model"
	"github.com/d60-Lab/bookstore/internal/repository"
	"github.com/d60-Lab/bookstore/internal/testutil"
)

type orderFixture struct {
	db    *gorm.DB
	repos *repository.Repos
	svc   OrderService
	user  *model.User
	addr  *model.UserAddress
}

func newOrderFixture(t *testing.T) *orderFixture {
	db := testutil.NewDB(t)
	repos := repository.NewRepos(db)
	user := testutil.SeedUser(t, db, "buyer")
	return &orderFixture{
		db:    db,
		repos: repos,
		svc:   NewOrderService(repos, repository.NewUnitOfWork(db)),
		user:  user,
		addr:  testutil.SeedAddress(t, db, user.ID, true),
	}
}

func (f *orderFixture) stock(t *testing.T, bookID int64) int {
	n, err := f.repos.Inventory.Stock(context.Background(), bookID)
	require.NoError(t, err)
	return n
}

func (f *orderFixture) request(items ...OrderItemRequest) CreateOrderRequest {
	return CreateOrderRequest{AddressID: f.addr.ID, PaymentMethod: "ALIPAY", Items: items}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateThenCancelRestoresStock(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	book := testutil.SeedBook(t, f.db, "go", "20.00", 5, 1)

	order, err := f.svc.CreateOrder(ctx, f.user.ID, f.request(OrderItemRequest{BookID: book.ID, Quantity: 2}))
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(dec("40.00")), "total %s", order.TotalAmount)
	assert.True(t, order.FinalAmount.Equal(order.TotalAmount))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "go", order.Items[0].BookTitle)
	require.NotNil(t, order.Address)
	assert.Equal(t, "Alice", order.Address.Name)
	assert.Equal(t, 3, f.stock(t, book.ID))

	cancelled, err := f.svc.CancelOrder(ctx, f.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 5, f.stock(t, book.ID))

	b, err := f.repos.Books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, b.SalesVolume)
}

func TestOrderNoFormat(t *testing.T) {
	f := newOrderFixture(t)
	book := testutil.SeedBook(t, f.db, "fmt", "9.90", 5, 1)

	order, err := f.svc.CreateOrder(context.Background(), f.user.ID, f.request(OrderItemRequest{BookID: book.ID, Quantity: 1}))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ORD\d{14}[0-9A-F]{8}$`), order.OrderNo)
}

func TestTotalIsSnapshotOfUnitPrices(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	a := testutil.SeedBook(t, f.db, "a", "12.50", 10, 1)
	b := testutil.SeedBook(t, f.db, "b", "0.99", 10, 1)

	order, err := f.svc.CreateOrder(ctx, f.user.ID, f.request(
		OrderItemRequest{BookID: a.ID, Quantity: 3},
		OrderItemRequest{BookID: b.ID, Quantity: 5},
	))
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(dec("42.45")), "total %s", order.TotalAmount)

	require.NoError(t, f.repos.Books.UpdateSellingPrice(ctx, a.ID, dec("99.00")))

	got, err := f.svc.GetOrder(ctx, f.user.ID, order.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.Equal(dec("42.45")))
	require.Len(t, got.Items, 2)
	assert.True(t, got.Items[0].UnitPrice.Equal(dec("12.50")))

	sum := decimal.Zero
	for _, it := range got.Items {
		sum = sum.Add(it.Subtotal())
	}
	assert.True(t, sum.Equal(got.TotalAmount))
	require.Len(t, got.Events, 1)
	assert.Equal(t, model.OrderStatusPending, got.Events[0].ToStatus)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newOrderFixture(t)
	book := testutil.SeedBook(t, f.db, "v", "10.00", 100, 1)
	one := OrderItemRequest{BookID: book.ID, Quantity: 1}

	eleven := make([]OrderItemRequest, 11)
	for i := range eleven {
		eleven[i] = OrderItemRequest{BookID: int64(i + 1), Quantity: 1}
	}

	cases := []struct {
		name string
		req  CreateOrderRequest
	}{
		{"no items", f.request()},
		{"too many lines", f.request(eleven...)},
		{"zero quantity", f.request(OrderItemRequest{BookID: book.ID, Quantity: 0})},
		{"quantity above five", f.request(OrderItemRequest{BookID: book.ID, Quantity: 6})},
		{"duplicate book", f.request(one, one)},
		{"missing address", CreateOrderRequest{PaymentMethod: "ALIPAY", Items: []OrderItemRequest{one}}},
		{"blank payment method", CreateOrderRequest{AddressID: f.addr.ID, PaymentMethod: "  ", Items: []OrderItemRequest{one}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateOrder(context.Background(), f.user.ID, tc.req)
			assert.True(t, apperr.Is(err, apperr.KindBadRequest), "got %v", err)
		})
	}
	assert.Equal(t, 100, f.stock(t, book.ID))
}

func TestFailedCreateLeavesNoTrace(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	plenty := testutil.SeedBook(t, f.db, "plenty", "10.00", 10, 1)
	scarce := testutil.SeedBook(t, f.db, "scarce", "10.00", 1, 1)

	_, err := f.svc.CreateOrder(ctx, f.user.ID, f.request(
		OrderItemRequest{BookID: plenty.ID, Quantity: 2},
		OrderItemRequest{BookID: scarce.ID, Quantity: 2},
	))
	assert.True(t, apperr.Is(err, apperr.KindBadRequest), "got %v", err)

	_, err = f.svc.CreateOrder(ctx, f.user.ID, f.request(
		OrderItemRequest{BookID: plenty.ID, Quantity: 1},
		OrderItemRequest{BookID: 9999, Quantity: 1},
	))
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)

	n, err := f.repos.Orders.CountByUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 10, f.stock(t, plenty.ID))
	assert.Equal(t, 1, f.stock(t, scarce.ID))

	var items int64
	require.NoError(t, f.db.Table("order_items").Count(&items).Error)
	assert.Zero(t, items)
}

func TestCreateOrderRejectsForeignAddress(t *testing.T) {
	f := newOrderFixture(t)
	other := testutil.SeedUser(t, f.db, "other")
	foreign := testutil.SeedAddress(t, f.db, other.ID, true)
	book := testutil.SeedBook(t, f.db, "x", "10.00", 3, 1)

	req := f.request(OrderItemRequest{BookID: book.ID, Quantity: 1})
	req.AddressID = foreign.ID
	_, err := f.svc.CreateOrder(context.Background(), f.user.ID, req)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)
	assert.Equal(t, 3, f.stock(t, book.ID))
}

func TestStateMachine(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	book := testutil.SeedBook(t, f.db, "sm", "10.00", 5, 1)

	order, err := f.svc.CreateOrder(ctx, f.user.ID, f.request(OrderItemRequest{BookID: book.ID, Quantity: 1}))
	require.NoError(t, err)

	status := func() model.OrderStatus {
		o, err := f.svc.GetOrder(ctx, f.user.ID, order.ID)
		require.NoError(t, err)
		return o.Status
	}

	_, err = f.svc.ConfirmReceipt(ctx, f.user.ID, order.ID)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	_, err = f.svc.ShipOrder(ctx, order.ID)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	assert.Equal(t, model.OrderStatusPending, status())

	paid, err := f.svc.PayOrder(ctx, f.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, paid.Status)

	_, err = f.svc.PayOrder(ctx, f.user.ID, order.ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	assert.Contains(t, err.Error(), "PAID")
	assert.Contains(t, err.Error(), "PENDING")

	_, err = f.svc.CancelOrder(ctx, f.user.ID, order.ID)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	assert.Equal(t, model.OrderStatusPaid, status())
	assert.Equal(t, 4, f.stock(t, book.ID))

	shipped, err := f.svc.ShipOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, shipped.Status)

	done, err := f.svc.ConfirmReceipt(ctx, f.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCompleted, done.Status)

	_, err = f.svc.CancelOrder(ctx, f.user.ID, order.ID)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	assert.Equal(t, model.OrderStatusCompleted, status())

	got, err := f.svc.GetOrder(ctx, f.user.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Events, 4)
	assert.Equal(t, model.OrderStatusShipped, got.Events[3].FromStatus)
	assert.Equal(t, model.OrderStatusCompleted, got.Events[3].ToStatus)
}

func TestOrdersAreScopedToOwner(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	other := testutil.SeedUser(t, f.db, "intruder")
	book := testutil.SeedBook(t, f.db, "own", "10.00", 5, 1)

	order, err := f.svc.CreateOrder(ctx, f.user.ID, f.request(OrderItemRequest{BookID: book.ID, Quantity: 1}))
	require.NoError(t, err)

	_, err = f.svc.GetOrder(ctx, other.ID, order.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = f.svc.CancelOrder(ctx, other.ID, order.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = f.svc.PayOrder(ctx, f.user.ID, 424242)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, 4, f.stock(t, book.ID))
}

func TestConcurrentOrdersForLastCopy(t *testing.T) {
	f := newOrderFixture(t)
	book := testutil.SeedBook(t, f.db, "last", "30.00", 1, 1)

	second := testutil.SeedUser(t, f.db, "rival")
	secondAddr := testutil.SeedAddress(t, f.db, second.ID, true)

	type buyer struct {
		userID, addrID int64
	}
	buyers := []buyer{{f.user.ID, f.addr.ID}, {second.ID, secondAddr.ID}}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
		ok   int
	)
	for _, b := range buyers {
		wg.Add(1)
		go func(b buyer) {
			defer wg.Done()
			_, err := f.svc.CreateOrder(context.Background(), b.userID, CreateOrderRequest{
				AddressID:     b.addrID,
				PaymentMethod: "WECHAT",
				Items:         []OrderItemRequest{{BookID: book.ID, Quantity: 1}},
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			ok++
		}(b)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	require.Len(t, errs, 1)
	assert.True(t, apperr.Is(errs[0], apperr.KindBadRequest), "got %v", errs[0])
	assert.Equal(t, 0, f.stock(t, book.ID))
}

// lostRaceInventory 模拟快照之后库存被其他事务抢走：对 lose 的扣减不生效
type lostRaceInventory struct {
	repository.InventoryRepository
	lose int64
}

func (r lostRaceInventory) Decrease(ctx context.Context, bookID int64, qty int) (int64, error) {
	if bookID == r.lose {
		return 0, nil
	}
	return r.InventoryRepository.Decrease(ctx, bookID, qty)
}

type lostRaceUoW struct {
	inner repository.UnitOfWork
	lose  int64
}

func (u lostRaceUoW) Do(ctx context.Context, fn func(tx *repository.Repos) error) error {
	return u.inner.Do(ctx, func(tx *repository.Repos) error {
		tx.Inventory = lostRaceInventory{InventoryRepository: tx.Inventory, lose: u.lose}
		return fn(tx)
	})
}

func TestStockConflictOnWriteRollsBackEverything(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	first := testutil.SeedBook(t, f.db, "first", "10.00", 5, 1)
	last := testutil.SeedBook(t, f.db, "last", "12.00", 5, 1)

	svc := NewOrderService(f.repos, lostRaceUoW{inner: repository.NewUnitOfWork(f.db), lose: last.ID})
	_, err := svc.CreateOrder(ctx, f.user.ID, f.request(
		OrderItemRequest{BookID: first.ID, Quantity: 2},
		OrderItemRequest{BookID: last.ID, Quantity: 1},
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrStockConflict)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	for _, table := range []string{"orders", "order_items", "order_events"} {
		var n int64
		require.NoError(t, f.db.Table(table).Count(&n).Error)
		assert.Zero(t, n, table)
	}
	assert.Equal(t, 5, f.stock(t, first.ID))
	assert.Equal(t, 5, f.stock(t, last.ID))
}

func TestListOrdersStatusFilter(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	book := testutil.SeedBook(t, f.db, "list", "5.00", 20, 1)

	var ids []int64
	for i := 0; i < 3; i++ {
		o, err := f.svc.CreateOrder(ctx, f.user.ID, f.request(OrderItemRequest{BookID: book.ID, Quantity: 1}))
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}
	_, err := f.svc.PayOrder(ctx, f.user.ID, ids[0])
	require.NoError(t, err)

	cases := []struct {
		status string
		want   int64
	}{
		{"", 3},
		{"all", 3},
		{"ALL", 3},
		{"paid", 1},
		{"Pending", 2},
		{"PENDING", 2},
		{"shipped", 0},
		{"bogus", 0},
	}
	for _, tc := range cases {
		page, err := f.svc.ListOrders(ctx, f.user.ID, tc.status, 1, 10)
		require.NoError(t, err, tc.status)
		assert.Equal(t, tc.want, page.Total, tc.status)
		assert.Len(t, page.Items, int(tc.want), tc.status)
	}

	page, err := f.svc.ListOrders(ctx, f.user.ID, "", 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, ids[2], page.Items[0].ID, "newest first")
	assert.Len(t, page.Items[0].Items, 1)

	_, err = f.svc.ListOrders(ctx, f.user.ID, "", 0, 10)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	_, err = f.svc.ListOrders(ctx, f.user.ID, "", 1, 51)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}
