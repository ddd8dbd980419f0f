package service

import (
	"context"
	"sort"

	"github.com/firefinancialservices/plugin-woocommerce/internal/domain"
	"github.com/firefinancialservices/plugin-woocommerce/internal/gateway"
	"github.com/firefinancialservices/plugin-woocommerce/internal/models"
	"github.com/firefinancialservices/plugin-woocommerce/internal/repository"
	"github.com/firefinancialservices/plugin-woocommerce/pkg/fire"

	"gorm.io/gorm"
)

// fakeOrders is an in-memory OrderStore.
type fakeOrders struct {
	orders map[uint]*models.Order
	meta   map[uint]map[string]string
	notes  map[uint][]string
}

func newFakeOrders(orders ...*models.Order) *fakeOrders {
	f := &fakeOrders{
		orders: make(map[uint]*models.Order),
		meta:   make(map[uint]map[string]string),
		notes:  make(map[uint][]string),
	}
	for _, o := range orders {
		f.orders[o.ID] = o
	}
	return f
}

func (f *fakeOrders) GetByID(id uint) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) SetStatus(orderID uint, status string) error {
	f.orders[orderID].Status = status
	return nil
}

func (f *fakeOrders) UpdateStatusIf(orderID uint, from, to string) (bool, error) {
	o, ok := f.orders[orderID]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (f *fakeOrders) SetMeta(orderID uint, key, value string) error {
	if f.meta[orderID] == nil {
		f.meta[orderID] = make(map[string]string)
	}
	f.meta[orderID][key] = value
	return nil
}

func (f *fakeOrders) GetMeta(orderID uint, key string) (string, error) {
	return f.meta[orderID][key], nil
}

func (f *fakeOrders) AddNote(orderID uint, note string) error {
	f.notes[orderID] = append(f.notes[orderID], note)
	return nil
}

func (f *fakeOrders) PaidCandidates() ([]repository.SweepCandidate, error) {
	return f.candidates(domain.OrderStatusProcessing, domain.MetaPaymentUUID), nil
}

func (f *fakeOrders) PendingCandidates() ([]repository.SweepCandidate, error) {
	return f.candidates(domain.OrderStatusPending, domain.MetaPaymentCode), nil
}

func (f *fakeOrders) candidates(status, metaKey string) []repository.SweepCandidate {
	var out []repository.SweepCandidate
	for id, o := range f.orders {
		if o.Status != status {
			continue
		}
		if v := f.meta[id][metaKey]; v != "" {
			out = append(out, repository.SweepCandidate{OrderID: id, MetaValue: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MetaValue != out[j].MetaValue {
			return out[i].MetaValue < out[j].MetaValue
		}
		return out[i].OrderID > out[j].OrderID
	})
	return out
}

// fakeProvider is an in-memory ProviderClient.
type fakeProvider struct {
	token    string
	tokenErr error

	paymentStatuses map[string]string
	paymentErr      error
	requestStatuses map[string]string
	requestErr      error
	requestUUIDs    map[string]string
	listErr         error

	createdCode string
	createErr   error

	tokenCalls  int
	createCalls int
	lastRequest fire.PaymentRequest
}

func (p *fakeProvider) GetAccessToken(ctx context.Context) (string, error) {
	p.tokenCalls++
	if p.tokenErr != nil {
		return "", p.tokenErr
	}
	if p.token == "" {
		return "tok", nil
	}
	return p.token, nil
}

func (p *fakeProvider) CreatePaymentRequest(ctx context.Context, pr fire.PaymentRequest, token string) (string, error) {
	p.createCalls++
	p.lastRequest = pr
	if p.createErr != nil {
		return "", p.createErr
	}
	return p.createdCode, nil
}

func (p *fakeProvider) GetPaymentStatus(ctx context.Context, paymentUUID, token string) (string, error) {
	if p.paymentErr != nil {
		return "", p.paymentErr
	}
	return p.paymentStatuses[paymentUUID], nil
}

func (p *fakeProvider) GetRequestStatus(ctx context.Context, code, token string) (string, error) {
	if p.requestErr != nil {
		return "", p.requestErr
	}
	return p.requestStatuses[code], nil
}

func (p *fakeProvider) FirstPaymentUUID(ctx context.Context, code, token string) (string, error) {
	if p.listErr != nil {
		return "", p.listErr
	}
	return p.requestUUIDs[code], nil
}

func (p *fakeProvider) PaymentURL(code string) string {
	return "https://payments-preprod.fire.com/" + code
}

// fakeSettings is a fixed SettingsSource.
type fakeSettings struct {
	set gateway.Settings
	err error
}

func (f *fakeSettings) Current() (gateway.Settings, error) {
	return f.set, f.err
}

func testSettings() *fakeSettings {
	return &fakeSettings{set: gateway.Settings{
		Enabled:      true,
		Sandbox:      true,
		ClientID:     "cid",
		ClientKey:    "ckey",
		RefreshToken: "rtok",
		IcanToEUR:    "1519",
		IcanToGBP:    "1520",
		OrderStatus:  domain.OrderStatusProcessing,
	}}
}

type fakeStock struct {
	reduced []uint
	err     error
}

func (f *fakeStock) ReduceStockForOrder(order *models.Order) error {
	if f.err != nil {
		return f.err
	}
	f.reduced = append(f.reduced, order.ID)
	return nil
}

type fakeCart struct {
	cleared []string
}

func (f *fakeCart) ClearForCustomer(email string) error {
	f.cleared = append(f.cleared, email)
	return nil
}

func clientFor(p *fakeProvider) ClientFunc {
	return func(gateway.Settings) ProviderClient { return p }
}
