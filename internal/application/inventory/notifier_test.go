package inventory

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukamart/inventory/internal/domain/inventory"
)

type failingNotifier struct{ calls int }

func (n *failingNotifier) NotifyLowStock(context.Context, inventory.LowStockEvent) error {
	n.calls++
	return errors.New("broker unavailable")
}

func TestNotifiers_FanOut(t *testing.T) {
	failing := &failingNotifier{}
	recording := &recordingNotifier{}
	ns := Notifiers{failing, recording}

	err := ns.NotifyLowStock(context.Background(), inventory.LowStockEvent{ProductID: 3})
	require.Error(t, err)
	assert.Equal(t, 1, failing.calls)
	assert.Len(t, recording.lowStockEvents(), 1, "前一个失败不影响后续通知")

	// 只有实现了RestockObserver的Notifier会收到回调
	require.NoError(t, ns.NotifyRestocked(context.Background(), 3))
	assert.Equal(t, []uint{3}, recording.restocked)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(zerolog.New(&buf))

	require.NoError(t, n.NotifyLowStock(context.Background(), inventory.LowStockEvent{
		ProductID: 42, Quantity: 5, Reserved: 2, Available: 3, ReorderLevel: 10, ReorderQuantity: 50,
	}))
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"product_id":42`)
	assert.Contains(t, buf.String(), `"available":3`)
}
