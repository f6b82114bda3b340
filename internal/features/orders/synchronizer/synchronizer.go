// Package synchronizer keeps the console's order list consistent with the server.
// Local mutations and push events funnel through one Synchronizer, which applies
// them idempotently: order id is the deduplication key, terminal statuses absorb
// later updates, and events older than what was already applied are dropped.
package synchronizer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"order-ledger/internal/core/logger"
	"order-ledger/internal/core/metrics"
	"order-ledger/internal/features/orders/domain"
	"order-ledger/internal/features/orders/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProvisionalPrefix marks client references minted for orders the server has not acknowledged.
const ProvisionalPrefix = "tmp_"

// ErrConcurrentChange is returned by rollbacks when the order changed again after the
// change being undone.
var ErrConcurrentChange = errors.New("synchronizer: order changed concurrently")

// Outcome describes what an operation did to the synchronized state.
type Outcome string

const (
	OutcomeApplied    Outcome = "applied"
	OutcomeInserted   Outcome = "inserted"
	OutcomeReconciled Outcome = "reconciled"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeStale      Outcome = "stale"
	OutcomeTerminal   Outcome = "terminal_noop"
	OutcomeUnknown    Outcome = "unknown_order"
	OutcomeInvalid    Outcome = "invalid"
)

// StockListener receives stock changes pushed by the server.
type StockListener interface {
	HandleStockChange(ctx context.Context, productID, variantID string, newStock int) error
}

// Patch is a local change to an order. Nil fields are left alone.
type Patch struct {
	// Order replaces the financial state (items, amounts, records). ID and Status are kept.
	Order *domain.Order
	// Status moves the order to a new status.
	Status *domain.OrderStatus
}

type entry struct {
	state State
	// statusAt is the timestamp of the last status change applied.
	statusAt time.Time
	// rev counts replacements of the financial state.
	rev uint64
}

// Change is a financial mutation applied by Mutate.
type Change struct {
	// Prev is the order as Mutate found it.
	Prev domain.Order
	// Order is the stored result, equal to Prev when nothing changed.
	Order domain.Order
	// Applied reports whether the order was changed.
	Applied bool
	rev     uint64
}

// Synchronizer owns the order list. All methods are safe for concurrent use.
type Synchronizer struct {
	mu sync.RWMutex
	// entries is newest first.
	entries []*entry
	byID    map[string]*entry
	byRef   map[string]*entry

	stock  StockListener
	log    *zap.Logger
	now    func() time.Time
	newRef func() string
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger overrides the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Synchronizer) { s.log = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.now = now }
}

// WithRefGenerator overrides client reference generation. The prefix is added by the synchronizer.
func WithRefGenerator(gen func() string) Option {
	return func(s *Synchronizer) { s.newRef = gen }
}

// WithStockListener forwards stock_update events to l.
func WithStockListener(l StockListener) Option {
	return func(s *Synchronizer) { s.stock = l }
}

// New creates an empty Synchronizer.
func New(opts ...Option) *Synchronizer {
	s := &Synchronizer{
		byID:   make(map[string]*entry),
		byRef:  make(map[string]*entry),
		log:    logger.Named("synchronizer"),
		now:    time.Now,
		newRef: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate replaces the confirmed orders with the server's list. Provisional and
// local-only orders survive and stay at the head.
func (s *Synchronizer) Hydrate(orders []domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]*entry, 0, len(orders))
	s.byID = make(map[string]*entry, len(orders))
	for _, e := range s.entries {
		switch st := e.state.(type) {
		case Provisional:
			kept = append(kept, e)
		case Confirmed:
			if st.LocalOnly {
				kept = append(kept, e)
				s.byID[st.Order.ID] = e
			}
		}
	}

	for _, o := range orders {
		if _, dup := s.byID[o.ID]; dup || o.ID == "" {
			continue
		}
		o = o.Clone()
		if !o.Status.Valid() {
			o.Status = domain.OrderStatusReceived
		}
		o.Reconcile()
		e := &entry{state: Confirmed{Order: o}, statusAt: o.UpdatedAt}
		kept = append(kept, e)
		s.byID[o.ID] = e
	}
	s.entries = kept

	s.log.Info("Orders hydrated", zap.Int("confirmed", len(s.byID)), zap.Int("provisional", len(s.byRef)))
}

// LocalCreate inserts a provisional order at the head and returns its client reference.
// The order's ID is set to the reference until the server acknowledges it.
func (s *Synchronizer) LocalCreate(order domain.Order) (string, domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref := ProvisionalPrefix + s.newRef()
	order = order.Clone()
	order.ID = ref
	if !order.Status.Valid() {
		order.Status = domain.OrderStatusReceived
	}
	now := s.now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	order.Recalculate()

	e := &entry{state: Provisional{ClientRef: ref, Order: order}, statusAt: now}
	s.byRef[ref] = e
	s.prepend(e)
	return ref, order.Clone()
}

// Acknowledge swaps a provisional order for the server's confirmed version in place.
// When a new_order event already reconciled it, the server copy is merged instead.
func (s *Synchronizer) Acknowledge(clientRef string, confirmed domain.Order) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	confirmed = confirmed.Clone()
	if !confirmed.Status.Valid() {
		confirmed.Status = domain.OrderStatusReceived
	}
	confirmed.Reconcile()

	if e, ok := s.byRef[clientRef]; ok {
		delete(s.byRef, clientRef)
		if other, dup := s.byID[confirmed.ID]; dup && other != e {
			s.remove(other)
		}
		e.state = Confirmed{Order: confirmed}
		e.statusAt = s.now()
		e.rev++
		s.byID[confirmed.ID] = e
		return s.count("acknowledge", OutcomeReconciled)
	}

	if e, ok := s.byID[confirmed.ID]; ok {
		current := orderOf(e.state)
		if current.Status.IsTerminal() || current.Status.Rank() > confirmed.Status.Rank() {
			confirmed.Status = current.Status
		}
		e.state = Confirmed{Order: confirmed}
		e.rev++
		return s.count("acknowledge", OutcomeApplied)
	}

	e := &entry{state: Confirmed{Order: confirmed}, statusAt: s.now()}
	s.byID[confirmed.ID] = e
	s.prepend(e)
	return s.count("acknowledge", OutcomeInserted)
}

// ConfirmLocal keeps a provisional order as a local-only confirmed order. Used when the
// server is unreachable so the operator's work is not lost.
func (s *Synchronizer) ConfirmLocal(clientRef string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byRef[clientRef]
	if !ok {
		return domain.Order{}, domain.ErrProvisionalNotFound
	}
	delete(s.byRef, clientRef)
	o := orderOf(e.state)
	e.state = Confirmed{Order: o, LocalOnly: true}
	s.byID[o.ID] = e
	return o.Clone(), nil
}

// Discard removes a provisional order the server rejected.
func (s *Synchronizer) Discard(clientRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byRef[clientRef]
	if !ok {
		return domain.ErrProvisionalNotFound
	}
	delete(s.byRef, clientRef)
	s.remove(e)
	return nil
}

// LocalUpdate applies an operator change and returns the resulting order. Local status
// changes may move backwards, but never out of a terminal status. A financial patch is
// applied even when the status part is ignored.
func (s *Synchronizer) LocalUpdate(id string, patch Patch) (domain.Order, Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(id)
	if e == nil {
		return domain.Order{}, OutcomeUnknown, domain.ErrOrderNotFound
	}
	current := orderOf(e.state)
	next := current.Clone()
	now := s.now()
	outcome := OutcomeApplied
	changed := false

	if patch.Status != nil {
		status := *patch.Status
		switch {
		case !status.Valid():
			return current.Clone(), OutcomeInvalid, domain.NewValidationError("status", "unknown order status %q", status)
		case status == current.Status:
			outcome = OutcomeDuplicate
		case current.Status.IsTerminal():
			s.log.Info("Ignoring status change on terminal order",
				zap.String("order_id", id),
				zap.String("status", string(current.Status)),
				zap.String("requested", string(status)),
			)
			outcome = OutcomeTerminal
		default:
			next.Status = status
			next.UpdatedAt = now
			e.statusAt = now
			changed = true
		}
	}

	if patch.Order != nil {
		next = withFinancials(next, *patch.Order, now)
		e.rev++
		outcome = OutcomeApplied
		changed = true
	}

	if !changed {
		return current.Clone(), s.count("local_update", outcome), nil
	}
	e.state = withOrder(e.state, next)
	return next.Clone(), s.count("local_update", outcome), nil
}

// Mutate runs fn on the current order under the write lock and stores the order it
// returns as the new financial state. A nil result leaves the order untouched. Concurrent
// mutations of one order are serialized, so none of them works from a stale copy.
func (s *Synchronizer) Mutate(id string, fn func(current domain.Order) (*domain.Order, error)) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(id)
	if e == nil {
		return Change{}, domain.ErrOrderNotFound
	}
	current := orderOf(e.state)

	out, err := fn(current.Clone())
	if err != nil {
		return Change{}, err
	}
	if out == nil {
		return Change{Prev: current.Clone(), Order: current.Clone(), rev: e.rev}, nil
	}

	next := withFinancials(current, *out, s.now())
	e.rev++
	e.state = withOrder(e.state, next)
	s.count("local_update", OutcomeApplied)
	return Change{Prev: current.Clone(), Order: next.Clone(), Applied: true, rev: e.rev}, nil
}

// Rollback undoes a change the server rejected. When the order's financial state was
// replaced again after c, the newer state stays and ErrConcurrentChange is returned.
func (s *Synchronizer) Rollback(c Change) error {
	if !c.Applied {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(c.Order.ID)
	if e == nil {
		return domain.ErrOrderNotFound
	}
	if e.rev != c.rev {
		return ErrConcurrentChange
	}
	e.state = withOrder(e.state, withFinancials(orderOf(e.state), c.Prev, s.now()))
	e.rev++
	return nil
}

// RestoreStatus moves an order back from to, undoing a local status change the server
// rejected. Terminal statuses can be left this way. When the status is no longer to,
// nothing changes and ErrConcurrentChange is returned.
func (s *Synchronizer) RestoreStatus(id string, from, to domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(id)
	if e == nil {
		return domain.ErrOrderNotFound
	}
	current := orderOf(e.state)
	if current.Status != to {
		return ErrConcurrentChange
	}
	next := current.Clone()
	next.Status = from
	next.UpdatedAt = s.now()
	e.statusAt = next.UpdatedAt
	e.state = withOrder(e.state, next)
	return nil
}

// ApplyRemoteNewOrder inserts an order announced by the server. A summary whose id is
// already present is a duplicate; one echoing a provisional client reference replaces it.
func (s *Synchronizer) ApplyRemoteNewOrder(summary domain.NewOrderSummary) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if summary.ID == "" {
		return s.count(domain.EventNewOrder, OutcomeInvalid)
	}
	if _, ok := s.byID[summary.ID]; ok {
		return s.count(domain.EventNewOrder, OutcomeDuplicate)
	}

	if e, ok := s.byRef[summary.ClientRef]; ok && summary.ClientRef != "" {
		delete(s.byRef, summary.ClientRef)
		o := orderOf(e.state)
		o.ID = summary.ID
		if summary.CustomerName != "" {
			o.CustomerName = summary.CustomerName
		}
		e.state = Confirmed{Order: o}
		s.byID[o.ID] = e
		return s.count(domain.EventNewOrder, OutcomeReconciled)
	}

	createdAt := summary.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	o := domain.NewOrderFromSummary(summary.ID, summary.CustomerName, summary.Source, summary.TotalAmount, createdAt)
	e := &entry{state: Confirmed{Order: o}, statusAt: createdAt}
	s.byID[o.ID] = e
	s.prepend(e)
	return s.count(domain.EventNewOrder, OutcomeInserted)
}

// ApplyRemoteStatusChange applies an order_update event. Events that would regress the
// status or that are older than the last applied change are dropped.
func (s *Synchronizer) ApplyRemoteStatusChange(ev domain.OrderUpdateEvent) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !ev.Status.Valid() {
		s.log.Warn("Dropping order update with unknown status",
			zap.String("order_id", ev.OrderID),
			zap.String("status", string(ev.Status)),
		)
		return s.count(domain.EventOrderUpdate, OutcomeInvalid)
	}

	e, ok := s.byID[ev.OrderID]
	if !ok {
		s.log.Debug("Order update for unknown order", zap.String("order_id", ev.OrderID))
		return s.count(domain.EventOrderUpdate, OutcomeUnknown)
	}
	current := orderOf(e.state)

	if ev.Status == current.Status {
		return s.count(domain.EventOrderUpdate, OutcomeDuplicate)
	}
	if current.Status.IsTerminal() {
		s.logStale(current, ev, "order is in a terminal status")
		return s.count(domain.EventOrderUpdate, OutcomeTerminal)
	}
	if !ev.UpdatedAt.IsZero() && ev.UpdatedAt.Before(e.statusAt) {
		s.logStale(current, ev, "older than last applied change")
		return s.count(domain.EventOrderUpdate, OutcomeStale)
	}
	if ev.Status.Rank() < current.Status.Rank() {
		s.logStale(current, ev, "status would regress")
		return s.count(domain.EventOrderUpdate, OutcomeStale)
	}

	next := current.Clone()
	next.Status = ev.Status
	next.UpdatedAt = s.now()
	if !ev.UpdatedAt.IsZero() {
		e.statusAt = ev.UpdatedAt
		next.UpdatedAt = ev.UpdatedAt
	}
	e.state = withOrder(e.state, next)
	return s.count(domain.EventOrderUpdate, OutcomeApplied)
}

// ApplyRemoteStockChange forwards a stock_update event to the stock listener.
func (s *Synchronizer) ApplyRemoteStockChange(ctx context.Context, ev domain.StockUpdateEvent) error {
	if s.stock == nil {
		s.count(domain.EventStockUpdate, OutcomeUnknown)
		return nil
	}
	if err := s.stock.HandleStockChange(ctx, ev.ProductID, ev.VariantID, ev.NewStock); err != nil {
		s.count(domain.EventStockUpdate, OutcomeInvalid)
		return err
	}
	s.count(domain.EventStockUpdate, OutcomeApplied)
	return nil
}

// Bind subscribes the synchronizer to the push channel's events and connects it.
func (s *Synchronizer) Bind(ctx context.Context, ch ports.PushChannel) error {
	ch.On(domain.EventNewOrder, s.guarded(domain.EventNewOrder, func(payload json.RawMessage) {
		var ev domain.NewOrderEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			s.log.Warn("Malformed new_order payload", zap.Error(err))
			return
		}
		s.ApplyRemoteNewOrder(ev.Order)
	}))
	ch.On(domain.EventOrderUpdate, s.guarded(domain.EventOrderUpdate, func(payload json.RawMessage) {
		var ev domain.OrderUpdateEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			s.log.Warn("Malformed order_update payload", zap.Error(err))
			return
		}
		s.ApplyRemoteStatusChange(ev)
	}))
	ch.On(domain.EventStockUpdate, s.guarded(domain.EventStockUpdate, func(payload json.RawMessage) {
		var ev domain.StockUpdateEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			s.log.Warn("Malformed stock_update payload", zap.Error(err))
			return
		}
		if err := s.ApplyRemoteStockChange(ctx, ev); err != nil {
			s.log.Error("Failed to handle stock update",
				zap.String("product_id", ev.ProductID),
				zap.String("variant_id", ev.VariantID),
				zap.Error(err),
			)
		}
	}))
	return ch.Connect(ctx)
}

// guarded keeps a failing event handler from taking down the push read loop.
func (s *Synchronizer) guarded(event string, fn func(json.RawMessage)) func(json.RawMessage) {
	return func(payload json.RawMessage) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("Push event handler panicked",
					zap.String("event", event),
					zap.Any("panic", r),
					zap.Stack("stack"),
				)
				s.count(event, OutcomeInvalid)
			}
		}()
		fn(payload)
	}
}

// Get returns an order by id or by provisional client reference.
func (s *Synchronizer) Get(id string) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.lookup(id)
	if e == nil {
		return domain.Order{}, false
	}
	return orderOf(e.state).Clone(), true
}

// IsLocal reports whether an order exists only on this console: provisional, or confirmed offline.
func (s *Synchronizer) IsLocal(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.lookup(id)
	if e == nil {
		return false
	}
	switch st := e.state.(type) {
	case Provisional:
		return true
	case Confirmed:
		return st.LocalOnly
	}
	return false
}

// List returns all orders, newest first, provisional ones included.
func (s *Synchronizer) List() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, orderOf(e.state).Clone())
	}
	return out
}

// Entries returns a snapshot of the tagged entries, newest first.
func (s *Synchronizer) Entries() []State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]State, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, withOrder(e.state, orderOf(e.state).Clone()))
	}
	return out
}

// Totals sums the money fields of confirmed orders. Provisional orders are only counted.
func (s *Synchronizer) Totals() domain.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t domain.Totals
	for _, e := range s.entries {
		c, ok := e.state.(Confirmed)
		if !ok {
			t.Provisional++
			continue
		}
		t.Orders++
		t.Total = t.Total.Add(c.Order.TotalAmount)
		t.Paid = t.Paid.Add(c.Order.PaidAmount)
		t.Pending = t.Pending.Add(c.Order.PendingAmount)
		t.Refunded = t.Refunded.Add(c.Order.RefundedAmount)
		t.Net = t.Net.Add(c.Order.NetAmount)
	}
	return t
}

func (s *Synchronizer) lookup(id string) *entry {
	if e, ok := s.byID[id]; ok {
		return e
	}
	return s.byRef[id]
}

func (s *Synchronizer) prepend(e *entry) {
	s.entries = append(s.entries, nil)
	copy(s.entries[1:], s.entries)
	s.entries[0] = e
}

func (s *Synchronizer) remove(target *entry) {
	for i, e := range s.entries {
		if e == target {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	if c, ok := target.state.(Confirmed); ok && s.byID[c.Order.ID] == target {
		delete(s.byID, c.Order.ID)
	}
}

// withFinancials takes the financial state of src onto base, keeping base's identity and status.
func withFinancials(base, src domain.Order, now time.Time) domain.Order {
	next := src.Clone()
	next.ID = base.ID
	next.Status = base.Status
	next.CreatedAt = base.CreatedAt
	next.UpdatedAt = now
	next.Recalculate()
	return next
}

func (s *Synchronizer) logStale(current domain.Order, ev domain.OrderUpdateEvent, reason string) {
	err := &domain.StaleEventError{
		OrderID:  current.ID,
		Current:  current.Status,
		Incoming: ev.Status,
		Reason:   reason,
	}
	s.log.Warn("Dropping stale order update",
		zap.String("order_id", ev.OrderID),
		zap.Time("event_at", ev.UpdatedAt),
		zap.Error(err),
	)
}

func (s *Synchronizer) count(event string, outcome Outcome) Outcome {
	metrics.SyncEvent(event, string(outcome))
	return outcome
}
