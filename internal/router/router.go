package router

import (
	"github.com/firefinancialservices/plugin-woocommerce/config"
	"github.com/firefinancialservices/plugin-woocommerce/internal/domain"
	"github.com/firefinancialservices/plugin-woocommerce/internal/gateway"
	"github.com/firefinancialservices/plugin-woocommerce/internal/handler"
	"github.com/firefinancialservices/plugin-woocommerce/internal/middleware"
	"github.com/firefinancialservices/plugin-woocommerce/internal/repository"
	"github.com/firefinancialservices/plugin-woocommerce/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, log *zap.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())

	// Repositories
	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	gatewaySvc := gateway.NewService(settingRepo)
	checkoutSvc := service.NewCheckoutService(orderRepo, gatewaySvc, service.FireClient,
		cfg.Server.PublicBaseURL, cfg.Server.StoreName, log)
	reconcileSvc := service.NewReconcileService(orderRepo, productRepo, cartRepo, gatewaySvc,
		service.FireClient, cfg.Server.PublicBaseURL, log)

	// Handlers
	checkoutHandler := handler.NewCheckoutHandler(checkoutSvc, cfg.Server.PublicBaseURL, log)
	callbackHandler := handler.NewCallbackHandler(reconcileSvc, log)
	settingsHandler := handler.NewSettingsHandler(gatewaySvc, log)
	authHandler := handler.NewAuthHandler(&cfg.JWT, userRepo)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/metrics", middleware.PrometheusHandler())

	// provider return trip
	r.GET("/wc-api/fob", callbackHandler.Handle)

	// checkout flow
	r.GET("/pay/receipt/:id", checkoutHandler.Receipt)

	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/checkout/:id/pay", checkoutHandler.Pay)

		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(&cfg.JWT), middleware.RequireRole(domain.RoleAdmin))
		{
			admin.GET("/settings", settingsHandler.Get)
			admin.PUT("/settings", settingsHandler.Update)
		}
	}

	return r
}
