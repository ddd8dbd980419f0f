package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/firefinancialservices/plugin-woocommerce/internal/domain"
	"github.com/firefinancialservices/plugin-woocommerce/internal/models"

	"go.uber.org/zap"
)

// ErrMalformedCallback means the provider's return trip was missing a
// required parameter or referenced no known order. Malformed callbacks cause
// no state change.
var ErrMalformedCallback = errors.New("malformed callback")

// CallbackResult is the outcome of one callback reconciliation.
type CallbackResult struct {
	RedirectURL string
	OrderStatus string
}

// ReconcileService handles the provider's synchronous return trip and
// converts the payment-level status into an order transition plus side
// effects. It is convergent with the poll sweeps: applying either, or both
// in any order, leaves the order in the same final state.
type ReconcileService struct {
	orders        OrderStore
	stock         StockStore
	carts         CartStore
	settings      SettingsSource
	client        ClientFunc
	publicBaseURL string
	log           *zap.Logger
}

func NewReconcileService(orders OrderStore, stock StockStore, carts CartStore, settings SettingsSource, client ClientFunc, publicBaseURL string, log *zap.Logger) *ReconcileService {
	return &ReconcileService{
		orders:        orders,
		stock:         stock,
		carts:         carts,
		settings:      settings,
		client:        client,
		publicBaseURL: publicBaseURL,
		log:           log,
	}
}

// HandleCallback reconciles one callback and returns where to send the payer.
// Unknown and unlookupable statuses are treated as failure, never left
// pending. A pass over an order already in a terminal status changes nothing.
func (s *ReconcileService) HandleCallback(ctx context.Context, orderID uint, paymentUUID string) (CallbackResult, error) {
	if paymentUUID == "" {
		return CallbackResult{}, ErrMalformedCallback
	}
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		// no such order: foreign or malformed callback, take no action
		return CallbackResult{}, fmt.Errorf("%w: order %d not found", ErrMalformedCallback, orderID)
	}
	if domain.IsTerminal(order.Status) {
		url := s.cancelURL(order.ID)
		if order.Status == domain.OrderStatusCompleted {
			url = s.receivedURL(order.ID)
		}
		return CallbackResult{RedirectURL: url, OrderStatus: order.Status}, nil
	}

	set, err := s.settings.Current()
	if err != nil {
		return CallbackResult{}, err
	}
	cl := s.client(set)

	status := ""
	token, err := cl.GetAccessToken(ctx)
	if err != nil {
		s.log.Warn("callback: token fetch failed", zap.Uint("order_id", order.ID), zap.Error(err))
	} else if status, err = cl.GetPaymentStatus(ctx, paymentUUID, token); err != nil {
		s.log.Warn("callback: payment status lookup failed", zap.Uint("order_id", order.ID), zap.Error(err))
		status = ""
	}

	// bookkeeping happens before branching, whatever the status
	if err := s.orders.SetMeta(order.ID, domain.MetaPaymentUUID, paymentUUID); err != nil {
		return CallbackResult{}, err
	}
	note := fmt.Sprintf("Fire OB Online Banking payment is %s! Payment Uuid: %s", noteStatus(status), paymentUUID)
	if err := s.orders.AddNote(order.ID, note); err != nil {
		s.log.Warn("callback: order note failed", zap.Uint("order_id", order.ID), zap.Error(err))
	}

	switch status {
	case domain.PaymentStatusAuthorised:
		target := set.OrderStatus
		if target != domain.OrderStatusProcessing && target != domain.OrderStatusOnHold {
			target = domain.OrderStatusProcessing
		}
		return s.succeed(order, target)
	case domain.PaymentStatusPaid:
		return s.succeed(order, domain.OrderStatusProcessing)
	default:
		// NOT_AUTHORISED and everything unknown
		return s.fail(order)
	}
}

func (s *ReconcileService) succeed(order *models.Order, target string) (CallbackResult, error) {
	applied, err := s.orders.UpdateStatusIf(order.ID, order.Status, target)
	if err != nil {
		return CallbackResult{}, err
	}
	if applied {
		if err := s.confirmSideEffects(order); err != nil {
			s.log.Error("callback: side effects failed", zap.Uint("order_id", order.ID), zap.Error(err))
		}
		s.log.Info("payment confirmed",
			zap.Uint("order_id", order.ID),
			zap.String("status", target))
	}
	return CallbackResult{RedirectURL: s.receivedURL(order.ID), OrderStatus: target}, nil
}

func (s *ReconcileService) fail(order *models.Order) (CallbackResult, error) {
	if _, err := s.orders.UpdateStatusIf(order.ID, order.Status, domain.OrderStatusFailed); err != nil {
		return CallbackResult{}, err
	}
	s.log.Info("payment failed", zap.Uint("order_id", order.ID))
	return CallbackResult{RedirectURL: s.cancelURL(order.ID), OrderStatus: domain.OrderStatusFailed}, nil
}

// confirmSideEffects reduces stock once per order and clears the payer's
// cart. The stock-reduced flag keeps a duplicated callback from decrementing
// twice.
func (s *ReconcileService) confirmSideEffects(order *models.Order) error {
	reduced, err := s.orders.GetMeta(order.ID, domain.MetaStockReduced)
	if err != nil {
		return err
	}
	if reduced != "yes" {
		if err := s.stock.ReduceStockForOrder(order); err != nil {
			return err
		}
		if err := s.orders.SetMeta(order.ID, domain.MetaStockReduced, "yes"); err != nil {
			return err
		}
	}
	return s.carts.ClearForCustomer(order.BillingEmail)
}

func (s *ReconcileService) receivedURL(orderID uint) string {
	return fmt.Sprintf("%s/checkout/order-received/%d", s.publicBaseURL, orderID)
}

func (s *ReconcileService) cancelURL(orderID uint) string {
	return fmt.Sprintf("%s/checkout/cancel-order/%d", s.publicBaseURL, orderID)
}

func noteStatus(status string) string {
	if status == "" {
		return "UNKNOWN"
	}
	return status
}
