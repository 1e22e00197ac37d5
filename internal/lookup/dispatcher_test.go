package lookup

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omniretail-ai/support-engine/internal/observability"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	return NewDispatcher(newTestService(t), observability.Discard())
}

func TestDispatch_MissingColon(t *testing.T) {
	d := newTestDispatcher(t)

	out := d.Dispatch(context.Background(), "PRODUCTO monitor")
	assert.True(t, strings.HasPrefix(out, "❌ Formato inválido."))
	assert.Contains(t, out, "PRODUCTO, CLIENTE_DNI, CLIENTE_PHONE")
}

func TestDispatch_EmptyValue(t *testing.T) {
	d := newTestDispatcher(t)

	out := d.Dispatch(context.Background(), "PRODUCTO:   ")
	assert.Equal(t, "❌ El valor no puede estar vacío.", out)
}

func TestDispatch_UnknownOperation(t *testing.T) {
	d := newTestDispatcher(t)

	out := d.Dispatch(context.Background(), "INVENTARIO:algo")
	assert.Contains(t, out, "❌ Operación desconocida: 'INVENTARIO'.")
	assert.Contains(t, out, "Disponibles: PRODUCTO,")
}

func TestDispatch_OperationCaseInsensitive(t *testing.T) {
	d := newTestDispatcher(t)

	out := d.Dispatch(context.Background(), "  producto : monitor lg ")
	assert.Contains(t, out, "LG Monitor 24")
}

func TestDispatch_LatencyAnnotation(t *testing.T) {
	d := newTestDispatcher(t)

	out := d.Dispatch(context.Background(), "CLIENTE_DNI:12345678")
	assert.Contains(t, out, "María José")
	assert.Regexp(t, `\n\n\[DynamoDB: \d+ms\]$`, out)
}

func TestDispatch_ValueWithColons(t *testing.T) {
	d := newTestDispatcher(t)

	// Only the first colon separates the operation from the value.
	out := d.Dispatch(context.Background(), "PRODUCTO:monitor lg: edición 24")
	assert.NotContains(t, out, "❌")
}

func TestDispatch_AllOpsNeverPanic(t *testing.T) {
	d := newTestDispatcher(t)

	for _, op := range Ops {
		out := d.Dispatch(context.Background(), string(op)+":valor-de-prueba")
		assert.NotEmpty(t, out, "op %s", op)
		assert.NotContains(t, out, "❌ Operación desconocida", "op %s", op)
	}
}
