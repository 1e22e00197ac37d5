package lookup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/omniretail-ai/support-engine/internal/observability"
)

// Op is an operation code of the lookup surface.
type Op string

// The closed set of operation codes, in display order.
const (
	OpProducto      Op = "PRODUCTO"
	OpClienteDNI    Op = "CLIENTE_DNI"
	OpClientePhone  Op = "CLIENTE_PHONE"
	OpClienteNombre Op = "CLIENTE_NOMBRE"
	OpPedidos       Op = "PEDIDOS"
	OpDetallePedido Op = "DETALLE_PEDIDO"
	OpDireccion     Op = "DIRECCION_PEDIDO"
	OpPerfilCliente Op = "PERFIL_CLIENTE"
	OpTickets       Op = "TICKETS"
	OpPromocion     Op = "PROMOCION"
	OpProductosCat  Op = "PRODUCTOS_CAT"
)

// Ops lists every operation code in declaration order.
var Ops = []Op{
	OpProducto, OpClienteDNI, OpClientePhone, OpClienteNombre,
	OpPedidos, OpDetallePedido, OpDireccion, OpPerfilCliente,
	OpTickets, OpPromocion, OpProductosCat,
}

// OpHint returns a short description of the value an operation expects.
func OpHint(op Op) string {
	switch op {
	case OpProducto:
		return "nombre del producto"
	case OpClienteDNI:
		return "cédula"
	case OpClientePhone:
		return "teléfono"
	case OpClienteNombre:
		return "nombre del cliente"
	case OpPedidos, OpPerfilCliente, OpTickets:
		return "customer_id"
	case OpDetallePedido, OpDireccion:
		return "order_id"
	case OpPromocion:
		return "promotion_id"
	case OpProductosCat:
		return "category_id"
	}
	return "valor"
}

func opList() string {
	names := make([]string, len(Ops))
	for i, op := range Ops {
		names[i] = string(op)
	}
	return strings.Join(names, ", ")
}

// Dispatcher parses "OPERACION:valor" requests and routes them to the
// matching lookup procedure. Every outcome is user-facing text; no error
// escapes past this boundary.
type Dispatcher struct {
	service *Service
	logger  *observability.Logger
}

// NewDispatcher creates a dispatcher over the lookup service.
func NewDispatcher(service *Service, logger *observability.Logger) *Dispatcher {
	return &Dispatcher{
		service: service,
		logger:  logger.WithComponent("dispatcher"),
	}
}

// Dispatch executes one lookup request. The result carries a trailing
// wall-clock latency annotation; callers must treat it as cosmetic.
func (d *Dispatcher) Dispatch(ctx context.Context, raw string) string {
	started := time.Now()

	idx := strings.Index(raw, ":")
	if idx < 0 {
		return fmt.Sprintf("❌ Formato inválido. Use OPERACION:valor. Operaciones: %s", opList())
	}

	op := Op(strings.ToUpper(strings.TrimSpace(raw[:idx])))
	value := strings.TrimSpace(raw[idx+1:])

	if value == "" {
		return "❌ El valor no puede estar vacío."
	}

	var (
		result string
		err    error
	)

	switch op {
	case OpProducto:
		result, err = d.service.ProductSearch(ctx, value)
	case OpClienteDNI:
		result, err = d.service.CustomerByDNI(ctx, value)
	case OpClientePhone:
		result, err = d.service.CustomerByPhone(ctx, value)
	case OpClienteNombre:
		result, err = d.service.CustomerByName(ctx, value)
	case OpPedidos:
		result, err = d.service.Orders(ctx, value)
	case OpDetallePedido:
		result, err = d.service.OrderDetail(ctx, value)
	case OpDireccion:
		result, err = d.service.OrderAddress(ctx, value)
	case OpPerfilCliente:
		result, err = d.service.CustomerProfile(ctx, value)
	case OpTickets:
		result, err = d.service.Tickets(ctx, value)
	case OpPromocion:
		result, err = d.service.PromotionInfo(ctx, value)
	case OpProductosCat:
		result, err = d.service.ProductsByCategory(ctx, value)
	default:
		return fmt.Sprintf("❌ Operación desconocida: '%s'. Disponibles: %s", op, opList())
	}

	if err != nil {
		d.logger.Error().Err(err).Str("op", string(op)).Msg("Lookup failed")
		return fmt.Sprintf("Error en consulta DynamoDB: %v", err)
	}

	elapsed := time.Since(started)
	d.logger.Debug().Str("op", string(op)).Dur("elapsed", elapsed).Msg("Lookup served")

	return fmt.Sprintf("%s\n\n[DynamoDB: %dms]", result, elapsed.Milliseconds())
}
