package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/firefinancialservices/plugin-woocommerce/internal/domain"
	"github.com/firefinancialservices/plugin-woocommerce/internal/models"
	"github.com/firefinancialservices/plugin-woocommerce/pkg/fire"

	"go.uber.org/zap"
)

var (
	ErrGatewayDisabled      = errors.New("gateway is disabled")
	ErrCurrencyNotSupported = errors.New("currency not supported by gateway")
)

// CheckoutService converts an order into a Fire payment request and hands
// back the hosted payment page URL.
type CheckoutService struct {
	orders        OrderStore
	settings      SettingsSource
	client        ClientFunc
	publicBaseURL string
	storeName     string
	log           *zap.Logger
}

func NewCheckoutService(orders OrderStore, settings SettingsSource, client ClientFunc, publicBaseURL, storeName string, log *zap.Logger) *CheckoutService {
	return &CheckoutService{
		orders:        orders,
		settings:      settings,
		client:        client,
		publicBaseURL: publicBaseURL,
		storeName:     storeName,
		log:           log,
	}
}

// MinorUnits converts a decimal amount to integer minor currency units.
func MinorUnits(total float64) int64 {
	return int64(math.Round(total * 100))
}

// BeginPayment creates a payment request for the order and returns the
// hosted payment page URL. The payment code is persisted before the caller
// redirects, so the poll sweep can recover the order even if the payer never
// returns. On any provider failure the order keeps its pre-payment state and
// can be retried.
func (s *CheckoutService) BeginPayment(ctx context.Context, orderID uint) (string, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return "", err
	}
	set, err := s.settings.Current()
	if err != nil {
		return "", err
	}
	if !set.Enabled {
		return "", ErrGatewayDisabled
	}
	icanTo, ok := set.AccountFor(order.Currency)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrCurrencyNotSupported, order.Currency)
	}

	cl := s.client(set)
	token, err := cl.GetAccessToken(ctx)
	if err != nil {
		return "", err
	}
	code, err := cl.CreatePaymentRequest(ctx, fire.PaymentRequest{
		IcanTo:               icanTo,
		Currency:             order.Currency,
		Amount:               MinorUnits(order.TotalAmount),
		MyRef:                fmt.Sprintf("WooCommerce Order: %d", order.ID),
		Description:          s.describeItems(order),
		ReturnURL:            fmt.Sprintf("%s/wc-api/fob?oid=%d", s.publicBaseURL, order.ID),
		OrderID:              fmt.Sprintf("%d", order.ID),
		CustomerNumber:       order.BillingEmail,
		DeliveryAddressLine1: order.BillingAddress1,
		DeliveryCity:         order.BillingCity,
		DeliveryCountry:      order.BillingCountry,
	}, token)
	if err != nil {
		return "", err
	}

	if err := s.orders.SetMeta(order.ID, domain.MetaPaymentCode, code); err != nil {
		return "", err
	}
	if err := s.orders.SetStatus(order.ID, domain.OrderStatusPending); err != nil {
		return "", err
	}
	s.log.Info("payment request created",
		zap.Uint("order_id", order.ID),
		zap.String("payment_code", code),
		zap.String("currency", order.Currency))
	return cl.PaymentURL(code), nil
}

func (s *CheckoutService) describeItems(order *models.Order) string {
	if len(order.Items) == 1 {
		return order.Items[0].Name
	}
	return fmt.Sprintf("%d Items - %s", len(order.Items), s.storeName)
}
