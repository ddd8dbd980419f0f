package handler

import (
	"net/http"

	"github.com/firefinancialservices/plugin-woocommerce/internal/gateway"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SettingsHandler exposes the gateway options to operators. Credentials are
// write-only: reads mask them.
type SettingsHandler struct {
	gateway *gateway.Service
	log     *zap.Logger
}

func NewSettingsHandler(gw *gateway.Service, log *zap.Logger) *SettingsHandler {
	return &SettingsHandler{gateway: gw, log: log}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	set, err := h.gateway.Current()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settings load failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"enabled":       set.Enabled,
		"title":         set.Title,
		"description":   set.Description,
		"testmode":      set.Sandbox,
		"client_id":     mask(set.ClientID),
		"client_key":    mask(set.ClientKey),
		"refresh_token": mask(set.RefreshToken),
		"icanTo_EUR":    set.IcanToEUR,
		"icanTo_GBP":    set.IcanToGBP,
		"order_status":  set.OrderStatus,
	})
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.gateway.Update(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.log.Info("gateway settings updated", zap.Int("keys", len(req)))
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
