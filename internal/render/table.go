// Package render converts typed records into localized tabular text.
// Pure functions, no I/O.
package render

import (
	"strings"

	"github.com/omniretail-ai/support-engine/internal/storage"
)

// NoResults is the text returned for an empty result set.
const NoResults = "Sin resultados (0 filas)."

// MaxRows caps the number of data rows rendered per table. Rows beyond the
// cap are silently dropped.
const MaxRows = 20

// columnLabels maps internal field names to Spanish display labels.
var columnLabels = map[string]string{
	"customer_id":             "id_cliente",
	"product_id":              "id_producto",
	"order_id":                "id_pedido",
	"order_date":              "fecha_pedido",
	"item_id":                 "id_item",
	"ticket_id":               "id_ticket",
	"promotion_id":            "id_promo",
	"stock_id":                "id_stock",
	"dni":                     "cedula",
	"name":                    "nombre",
	"last_name1":              "apellido1",
	"last_name2":              "apellido2",
	"phone":                   "telefono",
	"account_status":          "estado_cuenta",
	"is_premium":              "premium",
	"email":                   "correo",
	"email_type":              "tipo_correo",
	"is_primary":              "principal",
	"price":                   "precio",
	"active":                  "activo",
	"available_qty":           "disponible",
	"stock_qty":               "stock",
	"reserved_qty":            "reservado",
	"restock_date":            "fecha_restock",
	"brand_name":              "marca",
	"category_name":           "categoria",
	"warranty_months":         "garantia_meses",
	"return_days":             "dias_devolucion",
	"free_shipping":           "envio_gratis",
	"is_final_sale":           "venta_final",
	"status":                  "estado",
	"total_amount":            "total",
	"subtotal":                "subtotal",
	"payment_method":          "metodo_pago",
	"delivery_method":         "metodo_envio",
	"item_status":             "estado_item",
	"qty":                     "cantidad",
	"unit_price":              "precio_unitario",
	"discount_per_unit":       "descuento_unidad",
	"warranty_expires_at":     "vence_garantia",
	"return_deadline":         "limite_devolucion",
	"carrier":                 "transportadora",
	"tracking_number":         "guia",
	"shipment_status":         "estado_envio",
	"estimated_delivery_date": "entrega_estimada",
	"address_line1":           "direccion",
	"city":                    "ciudad",
	"department":              "departamento",
	"address_type":            "tipo_direccion",
	"is_default":              "principal",
	"card_type":               "tipo_tarjeta",
	"bank":                    "banco",
	"last_four":               "ultimos_4",
	"subject":                 "asunto",
	"category":                "categoria",
	"priority":                "prioridad",
	"promotion_name":          "nombre_promo",
	"promotion_type":          "tipo_promo",
	"discount_value":          "descuento",
	"start_date":              "inicio",
	"end_date":                "fin",
	"timestamp":               "fecha_hora",
	"location":                "ubicacion",
	"entity":                  "tipo",
	"specifications":          "especificaciones",
	"description":             "descripcion",
}

// valueTranslations maps enumerated system values to Spanish display text,
// keyed by lowercased/trimmed value.
var valueTranslations = map[string]string{
	"true": "Sí", "false": "No",
	"active": "Activo", "inactive": "Inactivo", "suspended": "Suspendido",
	"pending": "Pendiente", "preparing": "En preparación",
	"shipped": "Enviado", "in_transit": "En tránsito",
	"out_for_delivery": "En camino", "delivered": "Entregado",
	"cancelled": "Cancelado", "returned": "Devuelto",
	"refunded": "Reembolsado", "replaced": "Reemplazado",
	"personal": "Personal", "work": "Trabajo", "other": "Otro",
	"home_delivery": "Domicilio", "store_pickup": "Recoge en tienda",
	"credit_card": "Tarjeta crédito", "debit_card": "Tarjeta débito",
	"cash_on_delivery": "Contra entrega", "bank_transfer": "Transferencia",
	"open": "Abierto", "closed": "Cerrado", "resolved": "Resuelto",
	"in_progress": "En progreso",
	"low": "Baja", "medium": "Media", "high": "Alta",
	"customer": "Cliente", "product": "Producto", "order": "Pedido",
	"email": "Correo", "address": "Dirección",
}

// Label returns the localized header label for a field name, falling back to
// the raw name when no localization entry exists.
func Label(field string) string {
	if label, ok := columnLabels[field]; ok {
		return label
	}
	return field
}

// TranslateValue maps an enumerated system value to its Spanish display
// text. Unmatched values pass through unchanged.
func TranslateValue(v string) string {
	if translated, ok := valueTranslations[strings.ToLower(strings.TrimSpace(v))]; ok {
		return translated
	}
	return v
}

// Table renders records as pipe-delimited text with a localized header row.
// Empty input renders the no-results text. Missing attributes render as
// empty strings.
func Table(records []storage.Record, columns []string) string {
	if len(records) == 0 {
		return NoResults
	}

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = Label(col)
	}

	lines := []string{strings.Join(headers, " | ")}
	for i, rec := range records {
		if i >= MaxRows {
			break
		}
		values := make([]string, len(columns))
		for j, col := range columns {
			values[j] = TranslateValue(storage.FormatScalar(rec[col]))
		}
		lines = append(lines, strings.Join(values, " | "))
	}

	return strings.Join(lines, "\n")
}
