package lookup

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniretail-ai/support-engine/internal/observability"
	"github.com/omniretail-ai/support-engine/internal/render"
	"github.com/omniretail-ai/support-engine/internal/storage"
)

func testStore() *storage.MemoryStore {
	store := storage.NewMemoryStore()

	store.PutAll(
		storage.Record{
			"pk": "PRODUCT#P1", "sk": "PROFILE", "entity": "product",
			"product_id": "P1", "name": "LG Monitor 24", "price": 450.0,
			"stock_qty": 10.0, "reserved_qty": 3.0,
			"gsi1pk": "CAT#C1", "gsi1sk": "PRODUCT#P1",
		},
		storage.Record{
			"pk": "PRODUCT#P2", "sk": "PROFILE", "entity": "product",
			"product_id": "P2", "name": "LG Monitor 27", "price": 600.0,
			"stock_qty": 5.0, "reserved_qty": 5.0,
			"gsi1pk": "CAT#C1", "gsi1sk": "PRODUCT#P2",
		},
		storage.Record{
			"pk": "PRODUCT#P3", "sk": "PROFILE", "entity": "product",
			"product_id": "P3", "name": "Samsung TV", "price": 1200.0,
			"stock_qty": 2.0, "reserved_qty": 0.0,
			"gsi1pk": "CAT#C2", "gsi1sk": "PRODUCT#P3",
		},
		storage.Record{
			"pk": "CUSTOMER#C100", "sk": "PROFILE", "entity": "customer",
			"customer_id": "C100", "dni": "12345678",
			"name": "María José", "last_name1": "Gutiérrez", "last_name2": "Muñoz",
			"phone":  "+57 300 123 4567",
			"gsi1pk": "DNI#12345678", "gsi1sk": "CUSTOMER#C100",
		},
		storage.Record{
			"pk": "CUSTOMER#C100", "sk": "EMAIL#1", "entity": "email",
			"email": "maria@example.com", "email_type": "personal",
		},
		storage.Record{
			"pk": "CUSTOMER#C100", "sk": "ADDR#A1", "entity": "address",
			"address_id": "A1", "address_line1": "Calle 10 #5-20", "city": "Popayán",
		},
		storage.Record{
			"pk": "CUSTOMER#C100", "sk": "ORDER#O1", "entity": "order",
			"order_id": "O1", "order_date": "2026-01-10", "status": "delivered",
		},
		storage.Record{
			"pk": "CUSTOMER#C100", "sk": "ORDER#O2", "entity": "order",
			"order_id": "O2", "order_date": "2026-02-15", "status": "shipped",
		},
		storage.Record{
			"pk": "CUSTOMER#C100", "sk": "TICKET#T1", "entity": "ticket",
			"ticket_id": "T1", "subject": "Pantalla rota", "status": "open", "priority": "high",
		},
		storage.Record{
			"pk": "ORDER#O1", "sk": "META", "entity": "order",
			"order_id": "O1", "customer_id": "C100", "address_id": "A1",
			"status": "delivered", "total_amount": 450.0,
		},
		storage.Record{
			"pk": "ORDER#O1", "sk": "ITEM#1", "entity": "order_item",
			"product_name": "LG Monitor 24", "qty": 1.0, "unit_price": 450.0,
		},
		storage.Record{
			"pk": "ORDER#O1", "sk": "ITEM#2", "entity": "order_item",
			"product_name": "Cable HDMI", "qty": 2.0, "unit_price": 15.0,
		},
		storage.Record{
			"pk": "ORDER#O1", "sk": "SHIP#1", "entity": "shipment",
			"shipment_id": "S1", "carrier": "Servientrega", "shipment_status": "delivered",
		},
		storage.Record{
			"pk": "PROMO#PR1", "sk": "PROFILE", "entity": "promotion",
			"promotion_id": "PR1", "promotion_name": "Black Friday", "active": true,
		},
	)

	return store
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(testStore(), observability.Discard())
	_, err := svc.Warm(context.Background())
	require.NoError(t, err)
	return svc
}

func TestProductSearch_AndSemantics(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.ProductSearch(context.Background(), "lg monitor")
	require.NoError(t, err)

	assert.Contains(t, out, "LG Monitor 24")
	assert.Contains(t, out, "LG Monitor 27")
	assert.NotContains(t, out, "Samsung TV")
}

func TestProductSearch_OrFallback(t *testing.T) {
	svc := newTestService(t)

	// AND yields nothing; multi-token query falls back to OR and recalls all.
	out, err := svc.ProductSearch(context.Background(), "monitor samsung")
	require.NoError(t, err)

	assert.Contains(t, out, "LG Monitor 24")
	assert.Contains(t, out, "LG Monitor 27")
	assert.Contains(t, out, "Samsung TV")
}

func TestProductSearch_SingleTokenNoFallback(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.ProductSearch(context.Background(), "proyector")
	require.NoError(t, err)

	assert.Equal(t, render.NoResults, out)
}

func TestProductSearch_AvailableQty(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.ProductSearch(context.Background(), "monitor 24")
	require.NoError(t, err)

	// stock 10 minus reserved 3
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], " | 7 | ")
}

func TestCustomerByPhone(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name  string
		query string
		found bool
	}{
		{"digits without country code", "3001234567", true},
		{"partial number", "1234567", true},
		{"formatted query", "300 123 4567", true},
		{"wrong number", "3119999999", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := svc.CustomerByPhone(context.Background(), tc.query)
			require.NoError(t, err)
			if tc.found {
				assert.Contains(t, out, "María José")
			} else {
				assert.Equal(t, render.NoResults, out)
			}
		})
	}
}

func TestCustomerByName_TypoTolerance(t *testing.T) {
	svc := newTestService(t)

	// Two of three tokens match; the n-1 tier tolerates the miss.
	out, err := svc.CustomerByName(context.Background(), "maria gutierrez lopez")
	require.NoError(t, err)
	assert.Contains(t, out, "María José")

	// Diacritics in the query fold away.
	out, err = svc.CustomerByName(context.Background(), "María Gutiérrez")
	require.NoError(t, err)
	assert.Contains(t, out, "12345678")
}

func TestCustomerByDNI(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.CustomerByDNI(context.Background(), "12345678")
	require.NoError(t, err)
	assert.Contains(t, out, "María José")
	assert.Contains(t, out, "maria@example.com")

	out, err = svc.CustomerByDNI(context.Background(), "99999999")
	require.NoError(t, err)
	assert.Equal(t, render.NoResults, out)
}

func TestOrders_SortedDescending(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.Orders(context.Background(), "C100")
	require.NoError(t, err)

	// Most recent order first (sort-key descending).
	assert.Less(t, strings.Index(out, "O2"), strings.Index(out, "O1"))
}

func TestOrderDetail_Sections(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.OrderDetail(context.Background(), "O1")
	require.NoError(t, err)

	// Three labeled sections in order; the empty tracking section is omitted.
	assert.Contains(t, out, "PEDIDO:")
	assert.Contains(t, out, "ITEMS:")
	assert.Contains(t, out, "ENVÍOS:")
	assert.NotContains(t, out, "TRACKING:")

	assert.Less(t, strings.Index(out, "PEDIDO:"), strings.Index(out, "ITEMS:"))
	assert.Less(t, strings.Index(out, "ITEMS:"), strings.Index(out, "ENVÍOS:"))

	assert.Contains(t, out, "Cable HDMI")
}

func TestOrderDetail_TrackingCapped(t *testing.T) {
	store := testStore()
	for i := 0; i < 15; i++ {
		store.Put(storage.Record{
			"pk": "ORDER#O1", "sk": "TRACK#" + string(rune('a'+i)), "entity": "tracking",
			"timestamp": "2026-02-0" + string(rune('1'+i%9)), "status": "in_transit", "location": "CD Bogotá",
		})
	}

	svc := NewService(store, observability.Discard())
	out, err := svc.OrderDetail(context.Background(), "O1")
	require.NoError(t, err)

	assert.Contains(t, out, "TRACKING:")
	tracking := out[strings.Index(out, "TRACKING:"):]
	// header + at most 10 events
	assert.LessOrEqual(t, strings.Count(tracking, "En tránsito"), 10)
}

func TestOrderDetail_Empty(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.OrderDetail(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Equal(t, render.NoResults, out)
}

func TestOrderAddress(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.OrderAddress(context.Background(), "O1")
	require.NoError(t, err)
	assert.Contains(t, out, "Calle 10 #5-20")

	out, err = svc.OrderAddress(context.Background(), "MISSING")
	require.NoError(t, err)
	assert.Equal(t, textOrderNotFound, out)
}

func TestOrderAddress_NoAddressAssociated(t *testing.T) {
	store := testStore()
	store.Put(storage.Record{
		"pk": "ORDER#O9", "sk": "META", "entity": "order",
		"order_id": "O9", "customer_id": "C100",
	})

	svc := NewService(store, observability.Discard())
	out, err := svc.OrderAddress(context.Background(), "O9")
	require.NoError(t, err)
	assert.Equal(t, textOrderNoAddress, out)
}

func TestCustomerProfile_Sections(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.CustomerProfile(context.Background(), "C100")
	require.NoError(t, err)

	assert.Contains(t, out, "CLIENTE:")
	assert.Contains(t, out, "EMAILS:")
	assert.Contains(t, out, "DIRECCIONES:")
	assert.NotContains(t, out, "TARJETAS:")
}

func TestTicketsAndPromotion(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.Tickets(context.Background(), "C100")
	require.NoError(t, err)
	assert.Contains(t, out, "Pantalla rota")
	assert.Contains(t, out, "Alta")

	out, err = svc.PromotionInfo(context.Background(), "PR1")
	require.NoError(t, err)
	assert.Contains(t, out, "Black Friday")
}

func TestProductsByCategory(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.ProductsByCategory(context.Background(), "C1")
	require.NoError(t, err)
	assert.Contains(t, out, "LG Monitor 24")
	assert.Contains(t, out, "LG Monitor 27")
	assert.NotContains(t, out, "Samsung TV")
}
