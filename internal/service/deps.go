package service

import (
	"context"

	"github.com/firefinancialservices/plugin-woocommerce/internal/gateway"
	"github.com/firefinancialservices/plugin-woocommerce/internal/models"
	"github.com/firefinancialservices/plugin-woocommerce/internal/repository"
	"github.com/firefinancialservices/plugin-woocommerce/pkg/fire"
)

// ProviderClient is the slice of the Fire API the reconciliation services
// use.
type ProviderClient interface {
	GetAccessToken(ctx context.Context) (string, error)
	CreatePaymentRequest(ctx context.Context, pr fire.PaymentRequest, token string) (string, error)
	GetPaymentStatus(ctx context.Context, paymentUUID, token string) (string, error)
	GetRequestStatus(ctx context.Context, code, token string) (string, error)
	FirstPaymentUUID(ctx context.Context, code, token string) (string, error)
	PaymentURL(code string) string
}

// ClientFunc builds a provider client for the current gateway settings.
// Settings are admin-editable at runtime, so the client is constructed per
// operation rather than held.
type ClientFunc func(gateway.Settings) ProviderClient

// FireClient is the production ClientFunc.
func FireClient(s gateway.Settings) ProviderClient {
	return fire.NewClient(fire.Config{
		ClientID:     s.ClientID,
		ClientKey:    s.ClientKey,
		RefreshToken: s.RefreshToken,
		Sandbox:      s.Sandbox,
	})
}

// SettingsSource yields the current gateway settings.
type SettingsSource interface {
	Current() (gateway.Settings, error)
}

// OrderStore is the narrow slice of the platform's order storage the
// reconciliation core reads and mutates.
type OrderStore interface {
	GetByID(id uint) (*models.Order, error)
	SetStatus(orderID uint, status string) error
	UpdateStatusIf(orderID uint, from, to string) (bool, error)
	SetMeta(orderID uint, key, value string) error
	GetMeta(orderID uint, key string) (string, error)
	AddNote(orderID uint, note string) error
	PaidCandidates() ([]repository.SweepCandidate, error)
	PendingCandidates() ([]repository.SweepCandidate, error)
}

type StockStore interface {
	ReduceStockForOrder(order *models.Order) error
}

type CartStore interface {
	ClearForCustomer(email string) error
}
