package service

import (
	"context"
	"errors"
	"testing"

	"github.com/firefinancialservices/plugin-woocommerce/internal/domain"
	"github.com/firefinancialservices/plugin-woocommerce/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOrder(id uint, currency string, total float64, status string) *models.Order {
	return &models.Order{
		ID:              id,
		Currency:        currency,
		TotalAmount:     total,
		Status:          status,
		BillingEmail:    "buyer@example.com",
		BillingAddress1: "1 Main St",
		BillingCity:     "Dublin",
		BillingCountry:  "IE",
		Items: []models.OrderItem{
			{Name: "Blue Hoodie", Quantity: 1, Price: total},
		},
	}
}

func newCheckout(orders *fakeOrders, settings *fakeSettings, p *fakeProvider) *CheckoutService {
	return NewCheckoutService(orders, settings, clientFor(p), "https://shop.example.com", "Test Shop", zap.NewNop())
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1234), MinorUnits(12.34))
	assert.Equal(t, int64(10), MinorUnits(0.1))
	assert.Equal(t, int64(2999), MinorUnits(29.99))
	assert.Equal(t, int64(0), MinorUnits(0))
}

func TestBeginPaymentCreatesRequestAndPersistsCode(t *testing.T) {
	orders := newFakeOrders(testOrder(42, "EUR", 12.34, domain.OrderStatusPending))
	p := &fakeProvider{createdCode: "abc123"}
	svc := newCheckout(orders, testSettings(), p)

	url, err := svc.BeginPayment(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, "https://payments-preprod.fire.com/abc123", url)
	assert.Equal(t, "abc123", orders.meta[42][domain.MetaPaymentCode])
	assert.Equal(t, domain.OrderStatusPending, orders.orders[42].Status)

	req := p.lastRequest
	assert.Equal(t, "1519", req.IcanTo)
	assert.Equal(t, "EUR", req.Currency)
	assert.Equal(t, int64(1234), req.Amount)
	assert.Equal(t, "WooCommerce Order: 42", req.MyRef)
	assert.Equal(t, "Blue Hoodie", req.Description)
	assert.Equal(t, "https://shop.example.com/wc-api/fob?oid=42", req.ReturnURL)
	assert.Equal(t, "buyer@example.com", req.CustomerNumber)
}

func TestBeginPaymentRoutesGBPToGBPAccount(t *testing.T) {
	orders := newFakeOrders(testOrder(7, "GBP", 50.00, domain.OrderStatusPending))
	p := &fakeProvider{createdCode: "gbp01"}
	svc := newCheckout(orders, testSettings(), p)

	_, err := svc.BeginPayment(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "1520", p.lastRequest.IcanTo)
}

func TestBeginPaymentRejectsUnsupportedCurrency(t *testing.T) {
	orders := newFakeOrders(testOrder(7, "USD", 50.00, domain.OrderStatusPending))
	p := &fakeProvider{createdCode: "never"}
	svc := newCheckout(orders, testSettings(), p)

	_, err := svc.BeginPayment(context.Background(), 7)
	require.ErrorIs(t, err, ErrCurrencyNotSupported)
	assert.Zero(t, p.tokenCalls, "provider must not be called for an unsupported currency")
	assert.Empty(t, orders.meta[7])
}

func TestBeginPaymentRejectsDisabledGateway(t *testing.T) {
	orders := newFakeOrders(testOrder(7, "EUR", 50.00, domain.OrderStatusPending))
	settings := testSettings()
	settings.set.Enabled = false
	svc := newCheckout(orders, settings, &fakeProvider{})

	_, err := svc.BeginPayment(context.Background(), 7)
	require.ErrorIs(t, err, ErrGatewayDisabled)
}

func TestBeginPaymentTokenFailureLeavesOrderUntouched(t *testing.T) {
	order := testOrder(9, "EUR", 10.00, domain.OrderStatusPending)
	orders := newFakeOrders(order)
	p := &fakeProvider{tokenErr: errors.New("auth down")}
	svc := newCheckout(orders, testSettings(), p)

	_, err := svc.BeginPayment(context.Background(), 9)
	require.Error(t, err)
	assert.Zero(t, p.createCalls)
	assert.Empty(t, orders.meta[9])
	assert.Equal(t, domain.OrderStatusPending, orders.orders[9].Status)
}

func TestBeginPaymentCreateFailureLeavesOrderUntouched(t *testing.T) {
	orders := newFakeOrders(testOrder(9, "EUR", 10.00, domain.OrderStatusPending))
	p := &fakeProvider{createErr: errors.New("api down")}
	svc := newCheckout(orders, testSettings(), p)

	_, err := svc.BeginPayment(context.Background(), 9)
	require.Error(t, err)
	assert.Empty(t, orders.meta[9])
}

func TestBeginPaymentUnknownOrder(t *testing.T) {
	svc := newCheckout(newFakeOrders(), testSettings(), &fakeProvider{})
	_, err := svc.BeginPayment(context.Background(), 404)
	require.Error(t, err)
}

func TestDescribeItemsMultiLine(t *testing.T) {
	order := testOrder(3, "EUR", 30.00, domain.OrderStatusPending)
	order.Items = append(order.Items, models.OrderItem{Name: "Red Scarf", Quantity: 1, Price: 15})
	orders := newFakeOrders(order)
	p := &fakeProvider{createdCode: "multi"}
	svc := newCheckout(orders, testSettings(), p)

	_, err := svc.BeginPayment(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "2 Items - Test Shop", p.lastRequest.Description)
}

func TestBeginPaymentRetryOverwritesCode(t *testing.T) {
	orders := newFakeOrders(testOrder(5, "EUR", 20.00, domain.OrderStatusPending))
	p := &fakeProvider{createdCode: "first"}
	svc := newCheckout(orders, testSettings(), p)

	_, err := svc.BeginPayment(context.Background(), 5)
	require.NoError(t, err)

	p.createdCode = "second"
	_, err = svc.BeginPayment(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "second", orders.meta[5][domain.MetaPaymentCode])
	assert.Equal(t, 2, p.tokenCalls, "a fresh token is fetched per attempt")
}
