package lookup

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/omniretail-ai/support-engine/internal/observability"
	"github.com/omniretail-ai/support-engine/internal/render"
	"github.com/omniretail-ai/support-engine/internal/storage"
)

// Texts for business not-found outcomes, distinct from backend errors.
const (
	textOrderNotFound  = "No se encontró el pedido."
	textOrderNoAddress = "El pedido no tiene dirección de entrega asociada."
)

// Service executes the point-lookup procedures against the store and the
// in-memory snapshot.
type Service struct {
	store  storage.Store
	logger *observability.Logger

	snap    atomic.Pointer[Snapshot]
	buildMu sync.Mutex
}

// NewService creates a lookup service. The snapshot builds lazily on the
// first snapshot-dependent operation, or eagerly via Warm.
func NewService(store storage.Store, logger *observability.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.WithComponent("lookup"),
	}
}

// Warm builds the snapshot now. Safe to call concurrently; only one build
// runs at a time.
func (s *Service) Warm(ctx context.Context) (*Snapshot, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	if snap := s.snap.Load(); snap != nil {
		return snap, nil
	}
	return s.rebuildLocked(ctx)
}

// Rebuild scans the store again and atomically publishes a fresh snapshot.
func (s *Service) Rebuild(ctx context.Context) (*Snapshot, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	return s.rebuildLocked(ctx)
}

func (s *Service) rebuildLocked(ctx context.Context) (*Snapshot, error) {
	snap, err := BuildSnapshot(ctx, s.store, s.logger)
	if err != nil {
		return nil, err
	}
	s.snap.Store(snap)
	return snap, nil
}

// Snapshot returns the current snapshot, or nil when none has been built.
func (s *Service) Snapshot() *Snapshot {
	return s.snap.Load()
}

func (s *Service) snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := s.snap.Load(); snap != nil {
		return snap, nil
	}
	return s.Warm(ctx)
}

// ProductSearch performs fuzzy product-name search over the snapshot.
// Pass 1 requires every token (AND); an empty pass 1 with multiple tokens
// falls back to any-token matching (OR).
func (s *Service) ProductSearch(ctx context.Context, name string) (string, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return "", err
	}

	tokens := strings.Fields(Normalize(name))

	var matches []storage.Record
	for _, e := range snap.Products {
		if matchesAll(e.SearchKey, tokens) {
			matches = append(matches, e.Record)
		}
	}
	if len(matches) == 0 && len(tokens) > 1 {
		for _, e := range snap.Products {
			if matchesAny(e.SearchKey, tokens) {
				matches = append(matches, e.Record)
			}
		}
	}

	return render.Table(matches, []string{
		"product_id", "name", "price", "active", "available_qty",
		"stock_qty", "reserved_qty", "restock_date", "brand_name",
		"category_name", "warranty_months", "return_days", "free_shipping",
	}), nil
}

// CustomerByDNI resolves a customer through the secondary index, then
// assembles the profile and email rows under the resolved partition.
func (s *Service) CustomerByDNI(ctx context.Context, dni string) (string, error) {
	hits, err := s.store.QueryIndex(ctx, storage.GSIDni+strings.TrimSpace(dni), storage.QueryOptions{})
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return render.NoResults, nil
	}

	customerPK := hits[0].PK()
	profile, err := s.store.Query(ctx, customerPK, storage.QueryOptions{SortKeyPrefix: storage.SKProfile})
	if err != nil {
		return "", err
	}
	emails, err := s.store.Query(ctx, customerPK, storage.QueryOptions{SortKeyPrefix: storage.SKEmail})
	if err != nil {
		return "", err
	}

	return render.Table(append(profile, emails...), []string{
		"entity", "customer_id", "dni", "name", "last_name1", "last_name2",
		"phone", "account_status", "is_premium", "email", "email_type",
	}), nil
}

// CustomerByPhone searches the snapshot by phone number. The query matches
// when its digit form is contained in the stored digit form, or when the raw
// trimmed query is a substring of the raw stored value.
func (s *Service) CustomerByPhone(ctx context.Context, phone string) (string, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return "", err
	}

	raw := strings.TrimSpace(phone)
	digits := PhoneDigits(phone)

	var matches []storage.Record
	for _, e := range snap.Customers {
		stored := e.Record.Str("phone")
		if strings.Contains(PhoneDigits(stored), digits) || strings.Contains(stored, raw) {
			matches = append(matches, e.Record)
		}
	}

	return render.Table(matches, customerColumns), nil
}

// CustomerByName performs fuzzy full-name search over the snapshot. Pass 1
// requires every token; the fallback tolerates one missing token.
func (s *Service) CustomerByName(ctx context.Context, name string) (string, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return "", err
	}

	tokens := strings.Fields(Normalize(name))

	var matches []storage.Record
	for _, e := range snap.Customers {
		if matchesAll(e.SearchKey, tokens) {
			matches = append(matches, e.Record)
		}
	}
	if len(matches) == 0 && len(tokens) > 1 {
		for _, e := range snap.Customers {
			if countMatches(e.SearchKey, tokens) >= len(tokens)-1 {
				matches = append(matches, e.Record)
			}
		}
	}

	return render.Table(matches, customerColumns), nil
}

var customerColumns = []string{
	"customer_id", "dni", "name", "last_name1", "last_name2",
	"phone", "account_status", "is_premium",
}

// Orders lists a customer's orders, most recent first (sort-key descending
// as a proxy for recency), capped at 20.
func (s *Service) Orders(ctx context.Context, customerID string) (string, error) {
	items, err := s.store.Query(ctx, storage.PKCustomer+strings.TrimSpace(customerID), storage.QueryOptions{
		SortKeyPrefix: storage.SKOrder,
		Limit:         20,
	})
	if err != nil {
		return "", err
	}

	sort.Slice(items, func(i, j int) bool { return items[i].SK() > items[j].SK() })

	return render.Table(items, []string{
		"order_id", "order_date", "status", "total_amount", "payment_method",
	}), nil
}

// OrderDetail assembles the full order view: metadata, line items,
// shipments, and the 10 most recent tracking events, each as its own
// labeled section. Empty sections are omitted.
func (s *Service) OrderDetail(ctx context.Context, orderID string) (string, error) {
	items, err := s.store.Query(ctx, storage.PKOrder+strings.TrimSpace(orderID), storage.QueryOptions{Limit: 100})
	if err != nil {
		return "", err
	}

	var meta, orderItems, shipments, tracking []storage.Record
	for _, rec := range items {
		switch {
		case rec.SK() == storage.SKMeta:
			meta = append(meta, rec)
		case rec.Entity() == storage.EntityOrderItem:
			orderItems = append(orderItems, rec)
		case rec.Entity() == storage.EntityShipment:
			shipments = append(shipments, rec)
		case rec.Entity() == storage.EntityTracking:
			tracking = append(tracking, rec)
		}
	}

	var parts []string

	if len(meta) > 0 {
		parts = append(parts, "PEDIDO:", render.Table(meta, []string{
			"order_id", "customer_id", "status", "order_date", "total_amount",
			"subtotal", "shipping_cost", "tax", "total_discount_amount",
			"payment_method", "delivery_method",
		}))
	}

	if len(orderItems) > 0 {
		parts = append(parts, "\nITEMS:", render.Table(orderItems, []string{
			"product_name", "qty", "unit_price", "discount_per_unit",
			"item_status", "return_deadline", "warranty_expires_at",
			"warranty_months", "return_days", "is_final_sale",
		}))
	}

	if len(shipments) > 0 {
		parts = append(parts, "\nENVÍOS:", render.Table(shipments, []string{
			"shipment_id", "carrier", "tracking_number", "shipment_status",
			"shipped_date", "estimated_delivery_date", "actual_delivery_date",
			"delivery_attempts",
		}))
	}

	if len(tracking) > 0 {
		sort.Slice(tracking, func(i, j int) bool {
			return tracking[i].Str("timestamp") > tracking[j].Str("timestamp")
		})
		if len(tracking) > 10 {
			tracking = tracking[:10]
		}
		parts = append(parts, "\nTRACKING:", render.Table(tracking, []string{
			"timestamp", "status", "location",
		}))
	}

	if len(parts) == 0 {
		return render.NoResults, nil
	}

	return strings.Join(parts, "\n"), nil
}

// OrderAddress resolves the delivery address of an order through a two-hop
// lookup: order metadata yields customer and address IDs, then the exact
// address record. When the exact address is gone it falls back to every
// address under the customer.
func (s *Service) OrderAddress(ctx context.Context, orderID string) (string, error) {
	meta, err := s.store.Query(ctx, storage.PKOrder+strings.TrimSpace(orderID), storage.QueryOptions{
		SortKeyPrefix: storage.SKMeta,
	})
	if err != nil {
		return "", err
	}
	if len(meta) == 0 {
		return textOrderNotFound, nil
	}

	customerID := meta[0].Str("customer_id")
	addressID := meta[0].Str("address_id")
	if customerID == "" || addressID == "" {
		return textOrderNoAddress, nil
	}

	items, err := s.store.Query(ctx, storage.PKCustomer+customerID, storage.QueryOptions{
		SortKeyPrefix: storage.SKAddr + addressID,
	})
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		items, err = s.store.Query(ctx, storage.PKCustomer+customerID, storage.QueryOptions{
			SortKeyPrefix: storage.SKAddr,
		})
		if err != nil {
			return "", err
		}
	}

	return render.Table(items, []string{
		"address_line1", "address_line2", "city", "department",
		"postal_code", "country", "delivery_notes", "landmark",
		"address_type", "is_default",
	}), nil
}

// CustomerProfile assembles the full customer view: profile, emails,
// addresses, and cards, each as its own labeled section.
func (s *Service) CustomerProfile(ctx context.Context, customerID string) (string, error) {
	items, err := s.store.Query(ctx, storage.PKCustomer+strings.TrimSpace(customerID), storage.QueryOptions{Limit: 50})
	if err != nil {
		return "", err
	}

	var profile, emails, addresses, cards []storage.Record
	for _, rec := range items {
		switch {
		case rec.SK() == storage.SKProfile:
			profile = append(profile, rec)
		case rec.Entity() == storage.EntityEmail:
			emails = append(emails, rec)
		case rec.Entity() == storage.EntityAddress:
			addresses = append(addresses, rec)
		case rec.Entity() == storage.EntityCard:
			cards = append(cards, rec)
		}
	}

	var parts []string

	if len(profile) > 0 {
		parts = append(parts, "CLIENTE:", render.Table(profile, []string{
			"customer_id", "dni", "name", "last_name1", "last_name2",
			"phone", "birthday", "account_status", "is_premium", "registration_date",
		}))
	}

	if len(emails) > 0 {
		parts = append(parts, "\nEMAILS:", render.Table(emails, []string{
			"email", "email_type", "is_primary", "is_verified",
		}))
	}

	if len(addresses) > 0 {
		parts = append(parts, "\nDIRECCIONES:", render.Table(addresses, []string{
			"address_id", "address_line1", "city", "department", "address_type", "is_default",
		}))
	}

	if len(cards) > 0 {
		parts = append(parts, "\nTARJETAS:", render.Table(cards, []string{
			"card_id", "card_type", "bank", "last_four", "is_primary",
		}))
	}

	if len(parts) == 0 {
		return render.NoResults, nil
	}

	return strings.Join(parts, "\n"), nil
}

// Tickets lists a customer's support tickets.
func (s *Service) Tickets(ctx context.Context, customerID string) (string, error) {
	items, err := s.store.Query(ctx, storage.PKCustomer+strings.TrimSpace(customerID), storage.QueryOptions{
		SortKeyPrefix: storage.SKTicket,
	})
	if err != nil {
		return "", err
	}

	return render.Table(items, []string{
		"ticket_id", "order_id", "subject", "category",
		"status", "priority", "created_at",
	}), nil
}

// PromotionInfo fetches a promotion's profile record.
func (s *Service) PromotionInfo(ctx context.Context, promotionID string) (string, error) {
	items, err := s.store.Query(ctx, storage.PKPromo+strings.TrimSpace(promotionID), storage.QueryOptions{
		SortKeyPrefix: storage.SKProfile,
	})
	if err != nil {
		return "", err
	}

	return render.Table(items, []string{
		"promotion_id", "promotion_name", "promotion_type",
		"discount_type", "discount_value", "min_purchase_amount",
		"start_date", "end_date", "active", "requires_premium",
	}), nil
}

// ProductsByCategory lists products in a category via the secondary index.
func (s *Service) ProductsByCategory(ctx context.Context, categoryID string) (string, error) {
	items, err := s.store.QueryIndex(ctx, storage.GSICat+strings.TrimSpace(categoryID), storage.QueryOptions{Limit: 30})
	if err != nil {
		return "", err
	}

	return render.Table(items, []string{
		"product_id", "name", "price", "brand_name",
		"available_qty", "active", "warranty_months",
	}), nil
}
