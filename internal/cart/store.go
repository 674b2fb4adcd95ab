package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/storefront-cart/internal/coupons"
	"github.com/angelmondragon/storefront-cart/pkg/logger"
	"github.com/angelmondragon/storefront-cart/pkg/metrics"
	"github.com/google/uuid"
)

// CurrencySymbol prefixes amounts in shopper-facing messages.
const CurrencySymbol = "৳"

const (
	msgCouponEmpty    = "Please enter a coupon code"
	msgCouponInvalid  = "Invalid coupon code"
	msgCouponShipping = "Free shipping applied!"
)

// CouponResult reports the outcome of ApplyCoupon for display.
type CouponResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Options configures a Store. Zero values fall back to defaults.
type Options struct {
	Coupons *coupons.Table
	// Shipping defaults to DefaultShippingPolicy when nil.
	Shipping    *ShippingPolicy
	Logger      *logger.Logger
	Metrics     *metrics.CartMetrics
	IDGenerator func() string
	SessionID   string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Store owns the cart state. All mutations go through its methods and each
// call is atomic with respect to the others.
type Store struct {
	mu     sync.Mutex
	state  State
	closed bool

	coupons  *coupons.Table
	shipping ShippingPolicy
	newID    func() string
	logg     *logger.Logger
	logCtx   context.Context
	metrics  *metrics.CartMetrics
	writer   *syncer
}

// New builds an empty store with no persistence.
func New(opts Options) *Store {
	return newStore(opts)
}

// Open rehydrates a store from repo and mirrors every later mutation back
// to it. A failed or empty load starts from the empty state.
func Open(ctx context.Context, repo Repository, opts Options) *Store {
	s := newStore(opts)
	if repo == nil {
		return s
	}

	loadCtx := ctx
	if opts.ReadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, opts.ReadTimeout)
		defer cancel()
	}

	start := time.Now()
	loaded, err := repo.Load(loadCtx)
	s.metrics.ObservePersist("load", time.Since(start))
	switch {
	case err != nil:
		s.metrics.IncPersistFailure("load")
		s.logg.WarnErr(s.logCtx, "cart.rehydrate_failed", err)
	case loaded != nil:
		s.state = normalizeState(*loaded, s.coupons, s.newID)
		s.logg.Debug(s.logCtx, "cart.rehydrated")
	}

	s.writer = newSyncer(s.logCtx, repo, opts.WriteTimeout, s.logg, s.metrics)
	return s
}

func newStore(opts Options) *Store {
	s := &Store{
		state:    EmptyState(),
		coupons:  opts.Coupons,
		shipping: DefaultShippingPolicy(),
		newID:    opts.IDGenerator,
		logg:     opts.Logger,
		metrics:  opts.Metrics,
	}
	if s.coupons == nil {
		s.coupons = coupons.Default()
	}
	if opts.Shipping != nil {
		s.shipping = *opts.Shipping
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	s.logCtx = context.Background()
	if opts.SessionID != "" {
		s.logCtx = s.logg.WithSessionID(s.logCtx, opts.SessionID)
	}
	return s
}

// commit must be called with mu held after a state change.
func (s *Store) commit(op string) {
	s.metrics.IncMutation(op)
	if s.writer != nil && !s.closed {
		s.writer.enqueue(s.state.Clone())
	}
}

// AddItem adds quantity units of product (and variant, if any). An existing
// line for the same product and variant is incremented instead of duplicated.
// Non-positive quantities and prices outside MaxUnitPrice are ignored, and
// a line never exceeds MaxLineQuantity.
func (s *Store) AddItem(product Product, quantity int, variant *Variant) CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 || !withinPriceBounds(product, variant) {
		return CartItem{}
	}

	item := CartItem{
		ProductID: product.ID,
		Quantity:  clampQuantity(quantity),
		Product:   product,
	}
	if variant != nil {
		variantID := variant.ID
		v := *variant
		item.VariantID = &variantID
		item.Variant = &v
	}
	item = cloneItem(item)

	if idx := indexByKey(s.state.Items, keyOf(item)); idx >= 0 {
		s.state.Items[idx].Quantity = clampQuantity(s.state.Items[idx].Quantity + item.Quantity)
		s.commit("add_item")
		return cloneItem(s.state.Items[idx])
	}

	item.ID = s.newID()
	s.state.Items = append(s.state.Items, item)
	s.commit("add_item")
	return cloneItem(item)
}

// RemoveItem deletes the line with itemID. Unknown ids are ignored.
func (s *Store) RemoveItem(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeItemLocked(itemID)
}

func (s *Store) removeItemLocked(itemID string) {
	idx := indexByID(s.state.Items, itemID)
	if idx < 0 {
		return
	}
	s.state.Items = removeAt(s.state.Items, idx)
	s.commit("remove_item")
}

// UpdateQuantity sets the quantity of a line; zero or less removes it and
// anything above MaxLineQuantity is clamped.
func (s *Store) UpdateQuantity(itemID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeItemLocked(itemID)
		return
	}
	idx := indexByID(s.state.Items, itemID)
	if idx < 0 {
		return
	}
	s.state.Items[idx].Quantity = clampQuantity(quantity)
	s.commit("update_quantity")
}

// SaveForLater moves a line to the saved collection, merging with a saved
// line for the same product and variant.
func (s *Store) SaveForLater(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexByID(s.state.Items, itemID)
	if idx < 0 {
		return
	}
	item := s.state.Items[idx]
	s.state.Items = removeAt(s.state.Items, idx)

	if existing := indexByKey(s.state.SavedItems, keyOf(item)); existing >= 0 {
		s.state.SavedItems[existing].Quantity = clampQuantity(s.state.SavedItems[existing].Quantity + item.Quantity)
	} else {
		s.state.SavedItems = append(s.state.SavedItems, item)
	}
	s.commit("save_for_later")
}

// MoveToCart moves a saved line back to the cart, merging with a cart line
// for the same product and variant. New cart lines get a fresh id.
func (s *Store) MoveToCart(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexByID(s.state.SavedItems, itemID)
	if idx < 0 {
		return
	}
	item := s.state.SavedItems[idx]
	s.state.SavedItems = removeAt(s.state.SavedItems, idx)

	if existing := indexByKey(s.state.Items, keyOf(item)); existing >= 0 {
		s.state.Items[existing].Quantity = clampQuantity(s.state.Items[existing].Quantity + item.Quantity)
	} else {
		item.ID = s.newID()
		s.state.Items = append(s.state.Items, item)
	}
	s.commit("move_to_cart")
}

// RemoveSavedItem deletes a saved line. Unknown ids are ignored.
func (s *Store) RemoveSavedItem(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexByID(s.state.SavedItems, itemID)
	if idx < 0 {
		return
	}
	s.state.SavedItems = removeAt(s.state.SavedItems, idx)
	s.commit("remove_saved_item")
}

// ClearCart empties the cart and drops the coupon. Saved items are kept.
func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Items = []CartItem{}
	s.state.CouponCode = nil
	s.commit("clear_cart")
}

// ApplyCoupon validates code against the rule table and the current
// subtotal. It is the only way a coupon becomes active.
func (s *Store) ApplyCoupon(code string) CouponResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := coupons.Normalize(code)
	if normalized == "" {
		s.metrics.IncCoupon("empty")
		return CouponResult{Message: msgCouponEmpty}
	}

	rule, ok := s.coupons.Lookup(normalized)
	if !ok {
		s.metrics.IncCoupon("invalid")
		return CouponResult{Message: msgCouponInvalid, Code: normalized}
	}

	if !rule.Eligible(Subtotal(s.state.Items)) {
		s.metrics.IncCoupon("ineligible")
		return CouponResult{
			Message: fmt.Sprintf("Minimum order of %s%d required for this coupon", CurrencySymbol, rule.MinSubtotal),
			Code:    rule.Code,
		}
	}

	applied := rule.Code
	s.state.CouponCode = &applied
	s.metrics.IncCoupon("applied")
	s.commit("apply_coupon")

	if rule.Type == coupons.TypeShipping {
		return CouponResult{Success: true, Message: msgCouponShipping, Code: rule.Code}
	}
	return CouponResult{Success: true, Message: fmt.Sprintf("Coupon %s applied!", rule.Code), Code: rule.Code}
}

// RemoveCoupon clears the active coupon.
func (s *Store) RemoveCoupon() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.CouponCode == nil {
		return
	}
	s.state.CouponCode = nil
	s.commit("remove_coupon")
}

// activeRuleLocked resolves the stored code; eligibility is left to pricing.
func (s *Store) activeRuleLocked() *coupons.Rule {
	if s.state.CouponCode == nil {
		return nil
	}
	rule, ok := s.coupons.Lookup(*s.state.CouponCode)
	if !ok {
		return nil
	}
	return &rule
}

// Summary computes every derived total from the current state.
func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summarize(s.state.Items, s.activeRuleLocked(), s.shipping)
}

// Subtotal returns the sum of line totals.
func (s *Store) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Subtotal(s.state.Items)
}

// Discount returns the active coupon's discount, zero without one.
func (s *Store) Discount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return DiscountFor(Subtotal(s.state.Items), s.activeRuleLocked())
}

// Shipping returns the shipping fee for the current subtotal.
func (s *Store) Shipping() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ShippingFor(Subtotal(s.state.Items), s.activeRuleLocked(), s.shipping)
}

// Total returns the discounted subtotal, floored at zero, plus shipping.
func (s *Store) Total() int64 {
	return s.Summary().Total
}

// ItemCount is the sum of quantities across cart lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ItemCount(s.state.Items)
}

// State returns a deep copy of the current triple.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Snapshot returns the state and its summary from the same instant.
func (s *Store) Snapshot() (State, Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone(), Summarize(s.state.Items, s.activeRuleLocked(), s.shipping)
}

// Items returns a copy of the cart lines.
func (s *Store) Items() []CartItem {
	return s.State().Items
}

// SavedItems returns a copy of the saved-for-later lines.
func (s *Store) SavedItems() []SavedItem {
	return s.State().SavedItems
}

// CouponCode returns the active code, if any.
func (s *Store) CouponCode() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CouponCode == nil {
		return "", false
	}
	return *s.state.CouponCode, true
}

// Close stops background persistence after writing the latest state.
// Mutations after Close still apply in memory but are not persisted.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	w := s.writer
	if w != nil {
		w.stop()
	}
	s.mu.Unlock()

	if w == nil {
		return nil
	}
	return w.wait(ctx)
}
