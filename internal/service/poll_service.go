package service

import (
	"context"
	"time"

	"github.com/firefinancialservices/plugin-woocommerce/internal/domain"

	"go.uber.org/zap"
)

// PollService is the scheduled fallback path: it re-queries the provider for
// orders stuck in ambiguous states and converges them to the same terminal
// state a callback would have produced. Each sweep is idempotent and safe to
// run concurrently with the callback reconciler.
type PollService struct {
	orders      OrderStore
	settings    SettingsSource
	client      ClientFunc
	callTimeout time.Duration
	log         *zap.Logger
}

func NewPollService(orders OrderStore, settings SettingsSource, client ClientFunc, callTimeout time.Duration, log *zap.Logger) *PollService {
	return &PollService{
		orders:      orders,
		settings:    settings,
		client:      client,
		callTimeout: callTimeout,
		log:         log,
	}
}

// SweepPaid promotes processing orders whose payment reports PAID to
// completed. It only ever promotes; every other status leaves the order
// untouched. A failed lookup skips the order until the next sweep.
func (s *PollService) SweepPaid(ctx context.Context) {
	cands, err := s.orders.PaidCandidates()
	if err != nil {
		s.log.Error("sweep paid: candidate query failed", zap.Error(err))
		return
	}
	set, err := s.settings.Current()
	if err != nil {
		s.log.Error("sweep paid: settings load failed", zap.Error(err))
		return
	}
	cl := s.client(set)
	for _, cand := range cands {
		status, err := s.paymentStatus(ctx, cl, cand.MetaValue)
		if err != nil {
			s.log.Warn("sweep paid: lookup failed", zap.Uint("order_id", cand.OrderID), zap.Error(err))
			continue
		}
		if status != domain.PaymentStatusPaid {
			continue
		}
		applied, err := s.orders.UpdateStatusIf(cand.OrderID, domain.OrderStatusProcessing, domain.OrderStatusCompleted)
		if err != nil {
			s.log.Warn("sweep paid: status update failed", zap.Uint("order_id", cand.OrderID), zap.Error(err))
			continue
		}
		if applied {
			s.log.Info("order completed by sweep", zap.Uint("order_id", cand.OrderID))
		}
	}
}

// SweepPending handles orders whose callback never arrived: pending orders
// that carry only a payment code. ACTIVE requests are promoted to the
// configured status and the discovered payment uuid is persisted so the paid
// sweep can finish the job; EXPIRED and CLOSED fail the order; anything else
// stays pending for the next sweep.
func (s *PollService) SweepPending(ctx context.Context) {
	cands, err := s.orders.PendingCandidates()
	if err != nil {
		s.log.Error("sweep pending: candidate query failed", zap.Error(err))
		return
	}
	set, err := s.settings.Current()
	if err != nil {
		s.log.Error("sweep pending: settings load failed", zap.Error(err))
		return
	}
	cl := s.client(set)
	target := set.OrderStatus
	if target != domain.OrderStatusProcessing && target != domain.OrderStatusOnHold {
		target = domain.OrderStatusProcessing
	}
	for _, cand := range cands {
		status, err := s.requestStatus(ctx, cl, cand.MetaValue)
		if err != nil {
			s.log.Warn("sweep pending: lookup failed", zap.Uint("order_id", cand.OrderID), zap.Error(err))
			continue
		}
		switch status {
		case domain.RequestStatusActive:
			uuid, err := s.requestPaymentUUID(ctx, cl, cand.MetaValue)
			if err != nil {
				s.log.Warn("sweep pending: payment list failed", zap.Uint("order_id", cand.OrderID), zap.Error(err))
				continue
			}
			applied, err := s.orders.UpdateStatusIf(cand.OrderID, domain.OrderStatusPending, target)
			if err != nil {
				s.log.Warn("sweep pending: status update failed", zap.Uint("order_id", cand.OrderID), zap.Error(err))
				continue
			}
			if err := s.orders.SetMeta(cand.OrderID, domain.MetaPaymentUUID, uuid); err != nil {
				s.log.Warn("sweep pending: meta update failed", zap.Uint("order_id", cand.OrderID), zap.Error(err))
				continue
			}
			if applied {
				s.log.Info("pending order recovered by sweep",
					zap.Uint("order_id", cand.OrderID),
					zap.String("status", target))
			}
		case domain.RequestStatusExpired, domain.RequestStatusClosed:
			if _, err := s.orders.UpdateStatusIf(cand.OrderID, domain.OrderStatusPending, domain.OrderStatusFailed); err != nil {
				s.log.Warn("sweep pending: status update failed", zap.Uint("order_id", cand.OrderID), zap.Error(err))
			}
		default:
			// unknown request status: leave for the next sweep
		}
	}
}

// Each provider call gets its own deadline so one slow response cannot stall
// the whole sweep.
func (s *PollService) paymentStatus(ctx context.Context, cl ProviderClient, paymentUUID string) (string, error) {
	token, err := s.freshToken(ctx, cl)
	if err != nil {
		return "", err
	}
	cctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return cl.GetPaymentStatus(cctx, paymentUUID, token)
}

func (s *PollService) requestStatus(ctx context.Context, cl ProviderClient, code string) (string, error) {
	token, err := s.freshToken(ctx, cl)
	if err != nil {
		return "", err
	}
	cctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return cl.GetRequestStatus(cctx, code, token)
}

func (s *PollService) requestPaymentUUID(ctx context.Context, cl ProviderClient, code string) (string, error) {
	token, err := s.freshToken(ctx, cl)
	if err != nil {
		return "", err
	}
	cctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return cl.FirstPaymentUUID(cctx, code, token)
}

func (s *PollService) freshToken(ctx context.Context, cl ProviderClient) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return cl.GetAccessToken(cctx)
}
