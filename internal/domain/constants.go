package domain

// Order statuses owned by the commerce platform. Every transition relevant to
// the gateway is issued by the reconciliation services in this module.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusOnHold     = "on-hold"
	OrderStatusCompleted  = "completed"
	OrderStatusFailed     = "failed"
	OrderStatusCancelled  = "cancelled"
)

// Payment-level statuses reported by Fire for an individual payment.
const (
	PaymentStatusAuthorised    = "AUTHORISED"
	PaymentStatusPaid          = "PAID"
	PaymentStatusNotAuthorised = "NOT_AUTHORISED"
)

// Request-level statuses reported by Fire for a payment request.
// Only ACTIVE requests can still be paid.
const (
	RequestStatusActive  = "ACTIVE"
	RequestStatusExpired = "EXPIRED"
	RequestStatusClosed  = "CLOSED"
)

// Per-order metadata keys.
const (
	MetaPaymentCode  = "_fireob_payment_code"
	MetaPaymentUUID  = "_fireob_paymentUuid"
	MetaStockReduced = "_fireob_stock_reduced"
)

const RoleAdmin = "ADMIN"

// IsTerminal reports whether reconciliation treats an order status as final.
// Reconciliation passes over a terminal order are no-ops.
func IsTerminal(status string) bool {
	return status == OrderStatusCompleted || status == OrderStatusFailed
}
