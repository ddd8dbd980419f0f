package gateway

import (
	"fmt"

	"github.com/firefinancialservices/plugin-woocommerce/config"
	"github.com/firefinancialservices/plugin-woocommerce/internal/domain"
	"github.com/firefinancialservices/plugin-woocommerce/internal/models"
)

// Setting-store keys for the gateway options.
const (
	KeyEnabled      = "fireob_enabled"
	KeyTitle        = "fireob_title"
	KeyDescription  = "fireob_description"
	KeyTestmode     = "fireob_testmode"
	KeyClientID     = "fireob_client_id"
	KeyClientKey    = "fireob_client_key"
	KeyRefreshToken = "fireob_refresh_token"
	KeyIcanToEUR    = "fireob_icanTo_EUR"
	KeyIcanToGBP    = "fireob_icanTo_GBP"
	KeyOrderStatus  = "fireob_order_status"
)

// Settings is the explicit gateway configuration, read from the settings
// store and passed into components as a value rather than held as ambient
// instance state.
type Settings struct {
	Enabled      bool
	Title        string
	Description  string
	Sandbox      bool
	ClientID     string
	ClientKey    string
	RefreshToken string
	IcanToEUR    string
	IcanToGBP    string
	OrderStatus  string // processing | on-hold, applied on AUTHORISED/ACTIVE
}

// AccountFor returns the destination account for a currency. The gateway
// only supports GBP and EUR.
func (s Settings) AccountFor(currency string) (string, bool) {
	switch currency {
	case "GBP":
		return s.IcanToGBP, true
	case "EUR":
		return s.IcanToEUR, true
	}
	return "", false
}

// Defaults builds the values seeded into the settings store on first start.
func Defaults(cfg *config.GatewayConfig) map[string]string {
	testmode := "yes"
	if !cfg.Testmode {
		testmode = "no"
	}
	return map[string]string{
		KeyEnabled:      "yes",
		KeyTitle:        "Payment By Fire Open Banking Gateway",
		KeyDescription:  "Pay directly from your bank account via Open Banking",
		KeyTestmode:     testmode,
		KeyClientID:     cfg.ClientID,
		KeyClientKey:    cfg.ClientKey,
		KeyRefreshToken: cfg.RefreshToken,
		KeyIcanToEUR:    "1519",
		KeyIcanToGBP:    "1520",
		KeyOrderStatus:  domain.OrderStatusProcessing,
	}
}

// SettingStore is the slice of the settings storage the gateway needs.
type SettingStore interface {
	GetAll() ([]models.SystemSetting, error)
	Set(key, value string) error
}

type Service struct {
	settings SettingStore
}

func NewService(settings SettingStore) *Service {
	return &Service{settings: settings}
}

// Current reads the gateway settings from the store. Reading per operation
// keeps admin edits effective without a restart.
func (s *Service) Current() (Settings, error) {
	all, err := s.settings.GetAll()
	if err != nil {
		return Settings{}, err
	}
	values := make(map[string]string, len(all))
	for _, item := range all {
		values[item.Key] = item.Value
	}
	return Settings{
		Enabled:      values[KeyEnabled] == "yes",
		Title:        values[KeyTitle],
		Description:  values[KeyDescription],
		Sandbox:      values[KeyTestmode] == "yes",
		ClientID:     values[KeyClientID],
		ClientKey:    values[KeyClientKey],
		RefreshToken: values[KeyRefreshToken],
		IcanToEUR:    values[KeyIcanToEUR],
		IcanToGBP:    values[KeyIcanToGBP],
		OrderStatus:  values[KeyOrderStatus],
	}, nil
}

// Update validates and persists a partial set of gateway options.
func (s *Service) Update(values map[string]string) error {
	for key, value := range values {
		switch key {
		case KeyEnabled, KeyTestmode:
			if value != "yes" && value != "no" {
				return fmt.Errorf("%s must be yes or no", key)
			}
		case KeyOrderStatus:
			if value != domain.OrderStatusProcessing && value != domain.OrderStatusOnHold {
				return fmt.Errorf("%s must be %s or %s", key, domain.OrderStatusProcessing, domain.OrderStatusOnHold)
			}
		case KeyTitle, KeyDescription, KeyClientID, KeyClientKey, KeyRefreshToken, KeyIcanToEUR, KeyIcanToGBP:
		default:
			return fmt.Errorf("unknown setting %s", key)
		}
	}
	for key, value := range values {
		if err := s.settings.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}
