package synchronizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"order-ledger/internal/features/orders/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var base = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fakeChannel delivers events synchronously to the registered handlers.
type fakeChannel struct {
	mu         sync.Mutex
	handlers   map[string]func(json.RawMessage)
	connected  bool
	connectErr error
	emitted    []string
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{handlers: make(map[string]func(json.RawMessage))}
}

func (f *fakeChannel) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = f.connectErr == nil
	return f.connectErr
}

func (f *fakeChannel) On(event string, handler func(json.RawMessage)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[event] = handler
}

func (f *fakeChannel) Emit(event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emitted = append(f.emitted, event)
	return nil
}

func (f *fakeChannel) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	return nil
}

func (f *fakeChannel) push(t *testing.T, event string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	f.pushRaw(event, raw)
}

func (f *fakeChannel) pushRaw(event string, raw []byte) {
	f.mu.Lock()
	h := f.handlers[event]
	f.mu.Unlock()
	if h != nil {
		h(raw)
	}
}

type stockCall struct {
	productID, variantID string
	newStock             int
}

type fakeStock struct {
	calls []stockCall
	err   error
}

func (f *fakeStock) HandleStockChange(ctx context.Context, productID, variantID string, newStock int) error {
	f.calls = append(f.calls, stockCall{productID, variantID, newStock})
	return f.err
}

type panickyStock struct{}

func (panickyStock) HandleStockChange(ctx context.Context, productID, variantID string, newStock int) error {
	panic("stock store corrupted")
}

func newTestSync(t *testing.T, opts ...Option) (*Synchronizer, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	n := 0
	defaults := []Option{
		WithLogger(zap.New(core)),
		WithClock(func() time.Time { return base }),
		WithRefGenerator(func() string { n++; return fmt.Sprintf("%03d", n) }),
	}
	return New(append(defaults, opts...)...), logs
}

func confirmedOrder(id string, total string, status domain.OrderStatus) domain.Order {
	o := domain.Order{
		ID:             id,
		Status:         status,
		Items:          []domain.LineItem{{ProductID: "p-" + id, Quantity: 1, UnitPrice: dec(total)}},
		SubtotalAmount: dec(total),
		TotalAmount:    dec(total),
		CreatedAt:      base,
	}
	o.Recalculate()
	return o
}

func ids(orders []domain.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func TestLocalCreate_InsertsProvisionalAtHead(t *testing.T) {
	s, _ := newTestSync(t)
	s.Hydrate([]domain.Order{confirmedOrder("ord-1", "100", domain.OrderStatusReceived)})

	ref, o := s.LocalCreate(confirmedOrder("", "250", ""))

	assert.Equal(t, "tmp_001", ref)
	assert.Equal(t, ref, o.ID)
	assert.Equal(t, domain.OrderStatusReceived, o.Status)
	assert.Equal(t, []string{"tmp_001", "ord-1"}, ids(s.List()))

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.IsType(t, Provisional{}, entries[0])
	assert.IsType(t, Confirmed{}, entries[1])

	got, ok := s.Get(ref)
	require.True(t, ok)
	assert.True(t, got.TotalAmount.Equal(dec("250")))
}

func TestTotals_ExcludeProvisional(t *testing.T) {
	s, _ := newTestSync(t)
	s.Hydrate([]domain.Order{
		confirmedOrder("ord-1", "100", domain.OrderStatusReceived),
		confirmedOrder("ord-2", "50.50", domain.OrderStatusDelivered),
	})
	s.LocalCreate(confirmedOrder("", "999", ""))

	totals := s.Totals()

	assert.Equal(t, 2, totals.Orders)
	assert.Equal(t, 1, totals.Provisional)
	assert.True(t, totals.Total.Equal(dec("150.50")), "got %s", totals.Total)
	assert.True(t, totals.Pending.Equal(dec("150.50")))
	assert.True(t, totals.Paid.IsZero())
}

func TestAcknowledge_ReplacesProvisionalInPlace(t *testing.T) {
	s, _ := newTestSync(t)
	s.Hydrate([]domain.Order{confirmedOrder("ord-1", "100", domain.OrderStatusReceived)})
	ref, _ := s.LocalCreate(confirmedOrder("", "250", ""))
	s.LocalCreate(confirmedOrder("", "75", ""))

	outcome := s.Acknowledge(ref, confirmedOrder("ord-9", "250", domain.OrderStatusReceived))

	assert.Equal(t, OutcomeReconciled, outcome)
	assert.Equal(t, []string{"tmp_002", "ord-9", "ord-1"}, ids(s.List()))
	_, ok := s.Get(ref)
	assert.False(t, ok)
	assert.Equal(t, 2, s.Totals().Orders)
}

func TestRemoteNewOrder_DuplicateIsIgnored(t *testing.T) {
	s, _ := newTestSync(t)
	summary := domain.NewOrderSummary{ID: "ord-7", CustomerName: "Asha", TotalAmount: dec("420"), Source: "app"}

	assert.Equal(t, OutcomeInserted, s.ApplyRemoteNewOrder(summary))
	assert.Equal(t, OutcomeDuplicate, s.ApplyRemoteNewOrder(summary))

	orders := s.List()
	require.Len(t, orders, 1)
	assert.Equal(t, "Asha", orders[0].CustomerName)
	assert.Equal(t, domain.OrderStatusReceived, orders[0].Status)
	assert.True(t, orders[0].SubtotalAmount.Equal(dec("420")))
	assert.True(t, orders[0].PendingAmount.Equal(dec("420")))
}

func TestRemoteNewOrder_ReconcilesEchoedClientRef(t *testing.T) {
	s, _ := newTestSync(t)
	ref, local := s.LocalCreate(confirmedOrder("", "250", ""))

	outcome := s.ApplyRemoteNewOrder(domain.NewOrderSummary{ID: "ord-3", TotalAmount: dec("250"), ClientRef: ref})
	require.Equal(t, OutcomeReconciled, outcome)

	got, ok := s.Get("ord-3")
	require.True(t, ok)
	assert.Equal(t, local.Items, got.Items)

	// The REST acknowledgement arriving afterwards merges instead of duplicating.
	assert.Equal(t, OutcomeApplied, s.Acknowledge(ref, confirmedOrder("ord-3", "250", domain.OrderStatusReceived)))
	assert.Len(t, s.List(), 1)
	assert.Equal(t, 0, s.Totals().Provisional)
}

func TestAcknowledge_DeduplicatesEntryInsertedByPush(t *testing.T) {
	s, _ := newTestSync(t)
	ref, _ := s.LocalCreate(confirmedOrder("", "250", ""))
	// Push arrived without the client reference.
	s.ApplyRemoteNewOrder(domain.NewOrderSummary{ID: "ord-3", TotalAmount: dec("250")})
	require.Len(t, s.List(), 2)

	assert.Equal(t, OutcomeReconciled, s.Acknowledge(ref, confirmedOrder("ord-3", "250", domain.OrderStatusReceived)))
	assert.Equal(t, []string{"ord-3"}, ids(s.List()))
}

func TestAcknowledge_UnknownRefInserts(t *testing.T) {
	s, _ := newTestSync(t)
	assert.Equal(t, OutcomeInserted, s.Acknowledge("tmp_x", confirmedOrder("ord-1", "10", domain.OrderStatusReceived)))
	assert.Len(t, s.List(), 1)
}

func TestRemoteStatus_OutOfOrderNeverRegresses(t *testing.T) {
	s, logs := newTestSync(t)
	s.Hydrate([]domain.Order{confirmedOrder("ord-1", "100", domain.OrderStatusReceived)})

	assert.Equal(t, OutcomeApplied, s.ApplyRemoteStatusChange(domain.OrderUpdateEvent{OrderID: "ord-1", Status: domain.OrderStatusDelivered, UpdatedAt: base.Add(2 * time.Hour)}))
	assert.Equal(t, OutcomeTerminal, s.ApplyRemoteStatusChange(domain.OrderUpdateEvent{OrderID: "ord-1", Status: domain.OrderStatusProcessing, UpdatedAt: base.Add(time.Hour)}))

	got, _ := s.Get("ord-1")
	assert.Equal(t, domain.OrderStatusDelivered, got.Status)

	stale := logs.FilterMessage("Dropping stale order update").All()
	require.Len(t, stale, 1)
	assert.Contains(t, stale[0].ContextMap()["error"], "terminal")
}

func TestRemoteStatus_RegressionDropped(t *testing.T) {
	s, logs := newTestSync(t)
	s.Hydrate([]domain.Order{confirmedOrder("ord-1", "100", domain.OrderStatusReceived)})

	s.ApplyRemoteStatusChange(domain.OrderUpdateEvent{OrderID: "ord-1", Status: domain.OrderStatusPacked})
	outcome := s.ApplyRemoteStatusChange(domain.OrderUpdateEvent{OrderID: "ord-1", Status: domain.OrderStatusProcessing})

	assert.Equal(t, OutcomeStale, outcome)
	got, _ := s.Get("ord-1")
	assert.Equal(t, domain.OrderStatusPacked, got.Status)
	assert.Equal(t, 1, logs.FilterMessage("Dropping stale order update").Len())
}

func TestRemoteStatus_OlderTimestampDropped(t *testing.T) {
	s, _ := newTestSync(t)
	s.Hydrate([]domain.Order{confirmedOrder("ord-1", "100", domain.OrderStatusReceived)})

	s.ApplyRemoteStatusChange(domain.OrderUpdateEvent{OrderID: "ord-1", Status: domain.OrderStatusProcessing, UpdatedAt: base.Add(30 * time.Minute)})
	outcome := s.ApplyRemoteStatusChange(domain.OrderUpdateEvent{OrderID: "ord-1", Status: domain.OrderStatusPacked, UpdatedAt: base.Add(10 * time.Minute)})

	assert.Equal(t, OutcomeStale, outcome)
	got, _ := s.Get("ord-1")
	assert.Equal(t, domain.OrderStatusProcessing, got.Status)
	assert.Equal(t, base.Add(30*time.Minute), got.UpdatedAt)
}

func TestRemoteStatus_TerminalAbsorbs(t *testing.T) {
	s, _ := newTestSync(t)
	s.Hydrate([]domain.Order{confirmedOrder("ord-1", "100", domain.OrderStatusCancelled)})

	assert.Equal(t, OutcomeTerminal, s.ApplyRemoteStatusChange(domain.OrderUpdateEvent{OrderID: "ord-1", Status: domain.OrderStatusDelivered}))
	assert.Equal(t, OutcomeDuplicate, s.ApplyRemoteStatusChange(domain.OrderUpdateEvent{OrderID: "ord-1", Status: domain.OrderStatusCancelled}))

	got, _ := s.Get("ord-1")
	assert.Equal(t, domain.OrderStatusCancelled, got.Status)
}

func TestRemoteStatus_UnknownOrderAndStatus(t *testing.T) {
	s, _ := newTestSync(t)
	s.Hydrate([]domain.Order{confirmedOrder("ord-1", "100", domain.OrderStatusReceived)})

	assert.Equal(t, OutcomeUnknown, s.ApplyRemoteStatusChange(domain.OrderUpdateEvent{OrderID: "missing", Status: domain.OrderStatusPacked}))
	assert.Equal(t, OutcomeInvalid, s.ApplyRemoteStatusChange(domain.OrderUpdateEvent{OrderID: "ord-1", Status: "teleported"}))
	assert.Len(t, s.List(), 1)
}

func TestLocalUpdate_Status(t *testing.T) {
	s, _ := newTestSync(t)
	s.Hydrate([]domain.Order{confirmedOrder("ord-1", "100", domain.OrderStatusPacked)})

	back := domain.OrderStatusProcessing
	o, outcome, err := s.LocalUpdate("ord-1", Patch{Status: &back})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	assert.Equal(t, domain.OrderStatusProcessing, o.Status)

	_, outcome, err = s.LocalUpdate("ord-1", Patch{Status: &back})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)

	cancelled := domain.OrderStatusCancelled
	_, _, err = s.LocalUpdate("ord-1", Patch{Status: &cancelled})
	require.NoError(t, err)

	received := domain.OrderStatusReceived
	o, outcome, err = s.LocalUpdate("ord-1", Patch{Status: &received})
	require.NoError(t, err)
	assert.Equal(t, OutcomeTerminal, outcome)
	assert.Equal(t, domain.OrderStatusCancelled, o.Status)

	bogus := domain.OrderStatus("lost")
	_, _, err = s.LocalUpdate("ord-1", Patch{Status: &bogus})
	assert.True(t, domain.IsValidation(err))

	_, _, err = s.LocalUpdate("missing", Patch{Status: &received})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestLocalUpdate_OrderKeepsIdentity(t *testing.T) {
	s, _ := newTestSync(t)
	s.Hydrate([]domain.Order{confirmedOrder("ord-1", "100", domain.OrderStatusPacked)})

	changed := confirmedOrder("ignored", "100", domain.OrderStatusReceived)
	changed.PaidAmount = dec("40")

	o, outcome, err := s.LocalUpdate("ord-1", Patch{Order: &changed})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	assert.Equal(t, "ord-1", o.ID)
	assert.Equal(t, domain.OrderStatusPacked, o.Status)
	assert.True(t, o.PendingAmount.Equal(dec("60")))
	assert.Equal(t, domain.PaymentStatusPartial, o.PaymentStatus)
}

func TestLocalUpdate_TerminalKeepsFinancialPatch(t *testing.T) {
	s, _ := newTestSync(t)
	s.Hydrate([]domain.Order{confirmedOrder("ord-1", "100", domain.OrderStatusDelivered)})

	changed := confirmedOrder("ord-1", "100", domain.OrderStatusDelivered)
	changed.PaidAmount = dec("100")
	received := domain.OrderStatusReceived

	o, outcome, err := s.LocalUpdate("ord-1", Patch{Order: &changed, Status: &received})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	assert.Equal(t, domain.OrderStatusDelivered, o.Status)
	assert.True(t, o.PaidAmount.Equal(dec("100")))

	got, _ := s.Get("ord-1")
	assert.Equal(t, domain.PaymentStatusPaid, got.PaymentStatus)
}

func TestMutate(t *testing.T) {
	s, _ := newTestSync(t)
	s.Hydrate([]domain.Order{confirmedOrder("ord-1", "100", domain.OrderStatusPacked)})

	t.Run("Applied", func(t *testing.T) {
		c, err := s.Mutate("ord-1", func(current domain.Order) (*domain.Order, error) {
			current.PaidAmount = current.PaidAmount.Add(dec("30"))
			current.Status = domain.OrderStatusReceived
			return &current, nil
		})
		require.NoError(t, err)
		assert.True(t, c.Applied)
		assert.True(t, c.Prev.PaidAmount.IsZero())
		assert.True(t, c.Order.PendingAmount.Equal(dec("70")))
		assert.Equal(t, domain.OrderStatusPacked, c.Order.Status)
	})

	t.Run("NilLeavesOrder", func(t *testing.T) {
		c, err := s.Mutate("ord-1", func(current domain.Order) (*domain.Order, error) { return nil, nil })
		require.NoError(t, err)
		assert.False(t, c.Applied)
		assert.True(t, c.Order.PaidAmount.Equal(dec("30")))
		assert.NoError(t, s.Rollback(c))
	})

	t.Run("ErrorLeavesOrder", func(t *testing.T) {
		_, err := s.Mutate("ord-1", func(current domain.Order) (*domain.Order, error) {
			return nil, domain.NewValidationError("amount", "too much")
		})
		assert.True(t, domain.IsValidation(err))
		got, _ := s.Get("ord-1")
		assert.True(t, got.PaidAmount.Equal(dec("30")))
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := s.Mutate("missing", func(current domain.Order) (*domain.Order, error) { return &current, nil })
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestMutate_ConcurrentPaymentsAreSerialized(t *testing.T) {
	s, _ := newTestSync(t)
	s.Hydrate([]domain.Order{confirmedOrder("ord-1", "100", domain.OrderStatusReceived)})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Mutate("ord-1", func(current domain.Order) (*domain.Order, error) {
				current.PaymentRecords = append(current.PaymentRecords, domain.PaymentRecord{ID: fmt.Sprintf("pay_%d", i), Amount: dec("1")})
				current.PaidAmount = current.PaidAmount.Add(dec("1"))
				return &current, nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, _ := s.Get("ord-1")
	assert.Len(t, got.PaymentRecords, 100)
	assert.True(t, got.PaidAmount.Equal(dec("100")))
}

func TestRollback(t *testing.T) {
	pay := func(s *Synchronizer, amount string) Change {
		c, err := s.Mutate("ord-1", func(current domain.Order) (*domain.Order, error) {
			current.PaidAmount = current.PaidAmount.Add(dec(amount))
			return &current, nil
		})
		require.NoError(t, err)
		return c
	}

	t.Run("RestoresPrevious", func(t *testing.T) {
		s, _ := newTestSync(t)
		s.Hydrate([]domain.Order{confirmedOrder("ord-1", "100", domain.OrderStatusReceived)})

		c := pay(s, "100")
		packed := domain.OrderStatusPacked
		_, _, err := s.LocalUpdate("ord-1", Patch{Status: &packed})
		require.NoError(t, err)

		require.NoError(t, s.Rollback(c))
		got, _ := s.Get("ord-1")
		assert.True(t, got.PaidAmount.IsZero())
		assert.Equal(t, domain.OrderStatusPacked, got.Status)
	})

	t.Run("KeepsLaterChange", func(t *testing.T) {
		s, _ := newTestSync(t)
		s.Hydrate([]domain.Order{confirmedOrder("ord-1", "100", domain.OrderStatusReceived)})

		first := pay(s, "10")
		pay(s, "20")

		assert.ErrorIs(t, s.Rollback(first), ErrConcurrentChange)
		got, _ := s.Get("ord-1")
		assert.True(t, got.PaidAmount.Equal(dec("30")))
	})

	t.Run("Unknown", func(t *testing.T) {
		s, _ := newTestSync(t)
		c := Change{Applied: true, Order: domain.Order{ID: "missing"}}
		assert.ErrorIs(t, s.Rollback(c), domain.ErrOrderNotFound)
	})
}

func TestRestoreStatus(t *testing.T) {
	s, _ := newTestSync(t)
	s.Hydrate([]domain.Order{confirmedOrder("ord-1", "100", domain.OrderStatusPacked)})

	cancelled := domain.OrderStatusCancelled
	_, _, err := s.LocalUpdate("ord-1", Patch{Status: &cancelled})
	require.NoError(t, err)

	require.NoError(t, s.RestoreStatus("ord-1", domain.OrderStatusPacked, domain.OrderStatusCancelled))
	got, _ := s.Get("ord-1")
	assert.Equal(t, domain.OrderStatusPacked, got.Status)

	assert.ErrorIs(t, s.RestoreStatus("ord-1", domain.OrderStatusReceived, domain.OrderStatusCancelled), ErrConcurrentChange)
	assert.ErrorIs(t, s.RestoreStatus("missing", domain.OrderStatusReceived, domain.OrderStatusPacked), domain.ErrOrderNotFound)
}

func TestConfirmLocalAndDiscard(t *testing.T) {
	s, _ := newTestSync(t)
	keep, _ := s.LocalCreate(confirmedOrder("", "80", ""))
	drop, _ := s.LocalCreate(confirmedOrder("", "20", ""))

	o, err := s.ConfirmLocal(keep)
	require.NoError(t, err)
	assert.Equal(t, keep, o.ID)
	require.NoError(t, s.Discard(drop))

	entries := s.Entries()
	require.Len(t, entries, 1)
	c, ok := entries[0].(Confirmed)
	require.True(t, ok)
	assert.True(t, c.LocalOnly)
	assert.True(t, s.IsLocal(keep))
	assert.True(t, s.Totals().Total.Equal(dec("80")))

	assert.ErrorIs(t, s.Discard(drop), domain.ErrProvisionalNotFound)
	_, err = s.ConfirmLocal("tmp_nope")
	assert.ErrorIs(t, err, domain.ErrProvisionalNotFound)

	// Local-only orders survive a rehydration.
	s.Hydrate([]domain.Order{confirmedOrder("ord-1", "10", domain.OrderStatusReceived)})
	assert.Equal(t, []string{keep, "ord-1"}, ids(s.List()))
	assert.False(t, s.IsLocal("ord-1"))
	assert.False(t, s.IsLocal("missing"))
}

func TestHydrate_KeepsProvisionalAndDeduplicates(t *testing.T) {
	s, _ := newTestSync(t)
	ref, _ := s.LocalCreate(confirmedOrder("", "80", ""))

	s.Hydrate([]domain.Order{
		confirmedOrder("ord-2", "10", domain.OrderStatusReceived),
		confirmedOrder("ord-2", "10", domain.OrderStatusReceived),
		confirmedOrder("ord-1", "20", ""),
	})

	assert.Equal(t, []string{ref, "ord-2", "ord-1"}, ids(s.List()))
	got, _ := s.Get("ord-1")
	assert.Equal(t, domain.OrderStatusReceived, got.Status)
}

func TestBind_AppliesEventsFromChannel(t *testing.T) {
	stock := &fakeStock{}
	s, logs := newTestSync(t, WithStockListener(stock))
	ch := newFakeChannel()

	require.NoError(t, s.Bind(context.Background(), ch))
	assert.True(t, ch.connected)

	newOrder := domain.NewOrderEvent{Order: domain.NewOrderSummary{ID: "ord-5", CustomerName: "Ravi", TotalAmount: dec("300")}}
	ch.push(t, domain.EventNewOrder, newOrder)
	ch.push(t, domain.EventNewOrder, newOrder)
	ch.push(t, domain.EventOrderUpdate, domain.OrderUpdateEvent{OrderID: "ord-5", Status: domain.OrderStatusDelivered, UpdatedAt: base.Add(time.Hour)})
	ch.push(t, domain.EventOrderUpdate, domain.OrderUpdateEvent{OrderID: "ord-5", Status: domain.OrderStatusProcessing, UpdatedAt: base.Add(time.Minute)})
	ch.push(t, domain.EventStockUpdate, domain.StockUpdateEvent{ProductID: "mango", VariantID: "1kg", NewStock: 2})
	ch.pushRaw(domain.EventOrderUpdate, []byte(`{"orderId":`))

	orders := s.List()
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderStatusDelivered, orders[0].Status)
	assert.Equal(t, []stockCall{{"mango", "1kg", 2}}, stock.calls)
	assert.Equal(t, 1, logs.FilterMessage("Malformed order_update payload").Len())
}

func TestBind_RecoversFromHandlerPanic(t *testing.T) {
	s, logs := newTestSync(t, WithStockListener(panickyStock{}))
	ch := newFakeChannel()
	require.NoError(t, s.Bind(context.Background(), ch))

	assert.NotPanics(t, func() {
		ch.push(t, domain.EventStockUpdate, domain.StockUpdateEvent{ProductID: "mango", NewStock: 1})
	})
	assert.Equal(t, 1, logs.FilterMessage("Push event handler panicked").Len())

	ch.push(t, domain.EventNewOrder, domain.NewOrderEvent{Order: domain.NewOrderSummary{ID: "ord-1", TotalAmount: dec("10")}})
	assert.Len(t, s.List(), 1)
}

func TestHydrate_ClampsServerOrdersWhenStrict(t *testing.T) {
	domain.SetStrictInvariants(true)
	defer domain.SetStrictInvariants(false)

	s, _ := newTestSync(t)
	overpaid := domain.Order{ID: "ord-1", SubtotalAmount: dec("50"), TotalAmount: dec("50"), PaidAmount: dec("80")}

	assert.NotPanics(t, func() { s.Hydrate([]domain.Order{overpaid}) })
	got, ok := s.Get("ord-1")
	require.True(t, ok)
	assert.True(t, got.PaidAmount.Equal(dec("50")))
	assert.True(t, got.PendingAmount.IsZero())
}

func TestBind_PropagatesConnectError(t *testing.T) {
	s, _ := newTestSync(t)
	ch := newFakeChannel()
	ch.connectErr = errors.New("dial refused")

	assert.EqualError(t, s.Bind(context.Background(), ch), "dial refused")
}

func TestApplyRemoteStockChange(t *testing.T) {
	s, _ := newTestSync(t)
	assert.NoError(t, s.ApplyRemoteStockChange(context.Background(), domain.StockUpdateEvent{ProductID: "p"}))

	failing := &fakeStock{err: errors.New("redis down")}
	s, _ = newTestSync(t, WithStockListener(failing))
	assert.EqualError(t, s.ApplyRemoteStockChange(context.Background(), domain.StockUpdateEvent{ProductID: "p"}), "redis down")
}

func TestConcurrentDuplicateDelivery(t *testing.T) {
	s, _ := newTestSync(t)

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.ApplyRemoteNewOrder(domain.NewOrderSummary{ID: fmt.Sprintf("ord-%d", i), TotalAmount: dec("10")})
				s.ApplyRemoteStatusChange(domain.OrderUpdateEvent{OrderID: fmt.Sprintf("ord-%d", i), Status: domain.OrderStatusPacked})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, s.List(), 50)
	totals := s.Totals()
	assert.Equal(t, 50, totals.Orders)
	assert.True(t, totals.Total.Equal(dec("500")))
}
