package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/firefinancialservices/plugin-woocommerce/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newReconciler(orders *fakeOrders, settings *fakeSettings, p *fakeProvider, stock *fakeStock, carts *fakeCart) *ReconcileService {
	return NewReconcileService(orders, stock, carts, settings, clientFor(p), "https://shop.example.com", zap.NewNop())
}

func TestHandleCallbackStatusMapping(t *testing.T) {
	tests := []struct {
		name          string
		paymentStatus string
		orderStatus   string // configured target status
		initialStatus string
		wantStatus    string
		wantReceived  bool
	}{
		{"authorised to processing", domain.PaymentStatusAuthorised, domain.OrderStatusProcessing, domain.OrderStatusPending, domain.OrderStatusProcessing, true},
		{"authorised to on-hold", domain.PaymentStatusAuthorised, domain.OrderStatusOnHold, domain.OrderStatusPending, domain.OrderStatusOnHold, true},
		{"paid always processing", domain.PaymentStatusPaid, domain.OrderStatusOnHold, domain.OrderStatusPending, domain.OrderStatusProcessing, true},
		{"not authorised fails", domain.PaymentStatusNotAuthorised, domain.OrderStatusProcessing, domain.OrderStatusPending, domain.OrderStatusFailed, false},
		{"unknown status fails", "SOMETHING_NEW", domain.OrderStatusProcessing, domain.OrderStatusPending, domain.OrderStatusFailed, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			orders := newFakeOrders(testOrder(100, "EUR", 12.34, tc.initialStatus))
			p := &fakeProvider{paymentStatuses: map[string]string{"uuid-1": tc.paymentStatus}}
			settings := testSettings()
			settings.set.OrderStatus = tc.orderStatus
			svc := newReconciler(orders, settings, p, &fakeStock{}, &fakeCart{})

			res, err := svc.HandleCallback(context.Background(), 100, "uuid-1")
			require.NoError(t, err)

			assert.Equal(t, tc.wantStatus, orders.orders[100].Status)
			assert.Equal(t, tc.wantStatus, res.OrderStatus)
			assert.Equal(t, "uuid-1", orders.meta[100][domain.MetaPaymentUUID])
			require.Len(t, orders.notes[100], 1)
			if tc.wantReceived {
				assert.Equal(t, "https://shop.example.com/checkout/order-received/100", res.RedirectURL)
			} else {
				assert.Equal(t, "https://shop.example.com/checkout/cancel-order/100", res.RedirectURL)
			}
		})
	}
}

func TestHandleCallbackMissingUUIDIsNoOp(t *testing.T) {
	orders := newFakeOrders(testOrder(1, "EUR", 5, domain.OrderStatusPending))
	svc := newReconciler(orders, testSettings(), &fakeProvider{}, &fakeStock{}, &fakeCart{})

	_, err := svc.HandleCallback(context.Background(), 1, "")
	require.ErrorIs(t, err, ErrMalformedCallback)
	assert.Equal(t, domain.OrderStatusPending, orders.orders[1].Status)
	assert.Empty(t, orders.meta[1])
	assert.Empty(t, orders.notes[1])
}

func TestHandleCallbackUnknownOrderIsNoOp(t *testing.T) {
	svc := newReconciler(newFakeOrders(), testSettings(), &fakeProvider{}, &fakeStock{}, &fakeCart{})
	_, err := svc.HandleCallback(context.Background(), 999, "uuid-1")
	require.ErrorIs(t, err, ErrMalformedCallback)
}

func TestHandleCallbackTerminalOrderUnchanged(t *testing.T) {
	for _, status := range []string{domain.OrderStatusCompleted, domain.OrderStatusFailed} {
		t.Run(status, func(t *testing.T) {
			orders := newFakeOrders(testOrder(2, "EUR", 5, status))
			p := &fakeProvider{paymentStatuses: map[string]string{"uuid-2": domain.PaymentStatusPaid}}
			stock := &fakeStock{}
			svc := newReconciler(orders, testSettings(), p, stock, &fakeCart{})

			res, err := svc.HandleCallback(context.Background(), 2, "uuid-2")
			require.NoError(t, err)

			assert.Equal(t, status, orders.orders[2].Status)
			assert.Equal(t, status, res.OrderStatus)
			assert.Zero(t, p.tokenCalls, "terminal orders must not hit the provider")
			assert.Empty(t, stock.reduced)
			assert.Empty(t, orders.notes[2])
		})
	}
}

func TestHandleCallbackLookupFailureFailsOrder(t *testing.T) {
	tests := []struct {
		name string
		p    *fakeProvider
	}{
		{"token failure", &fakeProvider{tokenErr: errors.New("auth down")}},
		{"status lookup failure", &fakeProvider{paymentErr: errors.New("timeout")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			orders := newFakeOrders(testOrder(3, "EUR", 5, domain.OrderStatusPending))
			svc := newReconciler(orders, testSettings(), tc.p, &fakeStock{}, &fakeCart{})

			res, err := svc.HandleCallback(context.Background(), 3, "uuid-3")
			require.NoError(t, err)

			assert.Equal(t, domain.OrderStatusFailed, orders.orders[3].Status)
			assert.Equal(t, domain.OrderStatusFailed, res.OrderStatus)
			assert.Equal(t, "uuid-3", orders.meta[3][domain.MetaPaymentUUID], "uuid is recorded even when the lookup fails")
			require.Len(t, orders.notes[3], 1)
			assert.Contains(t, orders.notes[3][0], "UNKNOWN")
		})
	}
}

func TestHandleCallbackSuccessSideEffects(t *testing.T) {
	order := testOrder(4, "GBP", 25, domain.OrderStatusPending)
	orders := newFakeOrders(order)
	p := &fakeProvider{paymentStatuses: map[string]string{"uuid-4": domain.PaymentStatusAuthorised}}
	stock := &fakeStock{}
	carts := &fakeCart{}
	svc := newReconciler(orders, testSettings(), p, stock, carts)

	_, err := svc.HandleCallback(context.Background(), 4, "uuid-4")
	require.NoError(t, err)

	assert.Equal(t, []uint{4}, stock.reduced)
	assert.Equal(t, []string{"buyer@example.com"}, carts.cleared)
	assert.Equal(t, "yes", orders.meta[4][domain.MetaStockReduced])
}

func TestHandleCallbackDuplicateReducesStockOnce(t *testing.T) {
	orders := newFakeOrders(testOrder(5, "EUR", 25, domain.OrderStatusPending))
	p := &fakeProvider{paymentStatuses: map[string]string{"uuid-5": domain.PaymentStatusAuthorised}}
	stock := &fakeStock{}
	svc := newReconciler(orders, testSettings(), p, stock, &fakeCart{})

	_, err := svc.HandleCallback(context.Background(), 5, "uuid-5")
	require.NoError(t, err)
	_, err = svc.HandleCallback(context.Background(), 5, "uuid-5")
	require.NoError(t, err)

	assert.Equal(t, []uint{5}, stock.reduced, "stock is decremented exactly once")
	assert.Equal(t, domain.OrderStatusProcessing, orders.orders[5].Status)
}

func TestHandleCallbackNoteRecordsStatus(t *testing.T) {
	orders := newFakeOrders(testOrder(6, "EUR", 9, domain.OrderStatusPending))
	p := &fakeProvider{paymentStatuses: map[string]string{"uuid-6": domain.PaymentStatusNotAuthorised}}
	svc := newReconciler(orders, testSettings(), p, &fakeStock{}, &fakeCart{})

	_, err := svc.HandleCallback(context.Background(), 6, "uuid-6")
	require.NoError(t, err)
	require.Len(t, orders.notes[6], 1)
	assert.Equal(t, "Fire OB Online Banking payment is NOT_AUTHORISED! Payment Uuid: uuid-6", orders.notes[6][0])
}

// Full round trip for one order: checkout, callback, then the paid sweep.
func TestOrderLifecycleCheckoutCallbackSweep(t *testing.T) {
	orders := newFakeOrders(testOrder(100, "EUR", 12.34, domain.OrderStatusPending))
	p := &fakeProvider{
		createdCode:     "code-100",
		paymentStatuses: map[string]string{"uuid-100": domain.PaymentStatusAuthorised},
	}
	settings := testSettings()
	stock := &fakeStock{}

	checkout := newCheckout(orders, settings, p)
	url, err := checkout.BeginPayment(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, "https://payments-preprod.fire.com/code-100", url)
	assert.Equal(t, domain.OrderStatusPending, orders.orders[100].Status)

	reconciler := newReconciler(orders, settings, p, stock, &fakeCart{})
	res, err := reconciler.HandleCallback(context.Background(), 100, "uuid-100")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, res.OrderStatus)
	assert.Equal(t, []uint{100}, stock.reduced)

	p.paymentStatuses["uuid-100"] = domain.PaymentStatusPaid
	poll := NewPollService(orders, settings, clientFor(p), time.Second, zap.NewNop())
	poll.SweepPaid(context.Background())
	assert.Equal(t, domain.OrderStatusCompleted, orders.orders[100].Status)
}
