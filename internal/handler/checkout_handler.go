package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/firefinancialservices/plugin-woocommerce/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentStarter begins a payment for an order and returns the hosted
// payment page URL.
type PaymentStarter interface {
	BeginPayment(ctx context.Context, orderID uint) (string, error)
}

type CheckoutHandler struct {
	checkout      PaymentStarter
	publicBaseURL string
	log           *zap.Logger
}

func NewCheckoutHandler(checkout PaymentStarter, publicBaseURL string, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, publicBaseURL: publicBaseURL, log: log}
}

// Pay answers the checkout flow with the receipt URL the payer should be
// sent to. The provider call happens on the receipt page, not here.
func (h *CheckoutHandler) Pay(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":   "success",
		"redirect": fmt.Sprintf("%s/pay/receipt/%d", h.publicBaseURL, orderID),
	})
}

// Receipt creates the payment request and forwards the payer to the hosted
// payment page. On provider failure the order keeps its pre-payment state
// and the payer sees an error instead of a redirect.
func (h *CheckoutHandler) Receipt(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	url, err := h.checkout.BeginPayment(c.Request.Context(), orderID)
	switch {
	case errors.Is(err, service.ErrCurrencyNotSupported), errors.Is(err, service.ErrGatewayDisabled):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.log.Error("begin payment failed", zap.Uint("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment could not be started"})
		return
	}
	webRedirect(c, url)
}

func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return 0, false
	}
	return uint(id), true
}
