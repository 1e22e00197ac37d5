// Package storage provides the wide-column record model and store adapters
// for the support engine.
package storage

import (
	"math"
	"strconv"
)

// Key attribute names of the single-table layout.
const (
	AttrPK     = "pk"
	AttrSK     = "sk"
	AttrGSI1PK = "gsi1pk"
	AttrGSI1SK = "gsi1sk"
	AttrEntity = "entity"
)

// Partition and sort key prefixes.
const (
	PKCustomer = "CUSTOMER#"
	PKOrder    = "ORDER#"
	PKPromo    = "PROMO#"
	GSIDni     = "DNI#"
	GSICat     = "CAT#"

	SKProfile = "PROFILE"
	SKMeta    = "META"
	SKOrder   = "ORDER#"
	SKAddr    = "ADDR#"
	SKEmail   = "EMAIL#"
	SKTicket  = "TICKET#"
	SKCard    = "CARD#"
)

// EntityType discriminates the kind of row stored under a composite key.
type EntityType string

const (
	EntityCustomer  EntityType = "customer"
	EntityProduct   EntityType = "product"
	EntityOrder     EntityType = "order"
	EntityOrderItem EntityType = "order_item"
	EntityShipment  EntityType = "shipment"
	EntityTracking  EntityType = "tracking"
	EntityAddress   EntityType = "address"
	EntityCard      EntityType = "card"
	EntityEmail     EntityType = "email"
	EntityTicket    EntityType = "ticket"
	EntityPromotion EntityType = "promotion"
)

// Record is one physical row: attribute name to scalar value
// (string, float64, bool, or nil).
type Record map[string]interface{}

// PK returns the partition key.
func (r Record) PK() string { return r.Str(AttrPK) }

// SK returns the sort key.
func (r Record) SK() string { return r.Str(AttrSK) }

// Entity returns the entity discriminant.
func (r Record) Entity() EntityType { return EntityType(r.Str(AttrEntity)) }

// Str returns the named attribute as a string, or "" when absent or not a string.
func (r Record) Str(name string) string {
	if v, ok := r[name].(string); ok {
		return v
	}
	return ""
}

// Int returns the named attribute coerced to int, or 0 when it cannot be coerced.
func (r Record) Int(name string) int {
	switch v := r[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

// FormatScalar renders a scalar attribute value for display. Numeric values
// that are mathematically integral render without a fractional part; nil
// renders as the empty string.
func FormatScalar(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return ""
	}
}
