package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/firefinancialservices/plugin-woocommerce/internal/middleware"
	"github.com/firefinancialservices/plugin-woocommerce/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Reconciler is the callback reconciliation entry point.
type Reconciler interface {
	HandleCallback(ctx context.Context, orderID uint, paymentUUID string) (service.CallbackResult, error)
}

// CallbackHandler serves the provider's return trip:
// GET /wc-api/fob?paymentUuid=<uuid>&oid=<order id>.
type CallbackHandler struct {
	reconciler Reconciler
	log        *zap.Logger
}

func NewCallbackHandler(reconciler Reconciler, log *zap.Logger) *CallbackHandler {
	return &CallbackHandler{reconciler: reconciler, log: log}
}

func (h *CallbackHandler) Handle(c *gin.Context) {
	paymentUUID := c.Query("paymentUuid")
	oid := c.Query("oid")
	if paymentUUID == "" || oid == "" {
		// malformed or foreign callback: acknowledge, change nothing
		c.String(http.StatusOK, "ok")
		return
	}
	orderID, err := strconv.ParseUint(oid, 10, 64)
	if err != nil {
		c.String(http.StatusOK, "ok")
		return
	}

	res, err := h.reconciler.HandleCallback(c.Request.Context(), uint(orderID), paymentUUID)
	if errors.Is(err, service.ErrMalformedCallback) {
		c.String(http.StatusOK, "ok")
		return
	}
	if err != nil {
		h.log.Error("callback reconciliation failed", zap.String("oid", oid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}
	middleware.RecordReconciled(res.OrderStatus)
	webRedirect(c, res.RedirectURL)
}

// webRedirect writes a page that forwards the payer client-side, with a
// meta-refresh fallback when scripts are disabled.
func webRedirect(c *gin.Context, url string) {
	page := fmt.Sprintf(`<html><head><script language="javascript">
<!--
window.location=%q;
//-->
</script>
</head><body><noscript><meta http-equiv="refresh" content="0;url=%s"></noscript></body></html>`, url, url)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
