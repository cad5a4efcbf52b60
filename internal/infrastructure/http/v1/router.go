// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"inkhub/internal/data"
	"inkhub/internal/domain/auth"
	"inkhub/internal/domain/entity"
	"inkhub/internal/infrastructure/http/v1/handlers"
	"inkhub/internal/infrastructure/http/v1/middleware"
	"inkhub/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Layer is the data layer every handler reads and mutates through
	Layer *data.Layer

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Logger for request logging
	Logger *logger.Logger
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Layer)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerResourceRoutes(protected, cfg)
		registerStockRoutes(protected, cfg)
		registerReportRoutes(protected, cfg)
		registerAdminRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService, cfg.Layer)

	// Public auth endpoints (no JWT required)
	public := rg.Group("/auth")
	public.POST("/login", authHandler.Login)

	// Protected auth endpoints (JWT required)
	protected := rg.Group("/auth")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	protected.POST("/logout", authHandler.Logout)
	protected.GET("/me", authHandler.Me)
	protected.POST("/change-password", authHandler.ChangePassword)
	protected.POST("/register", middleware.RequireAdmin(), authHandler.Register)
}

// registerResourceRoutes registers CRUD endpoints for the record
// collections.
func registerResourceRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	l := cfg.Layer

	// --- SALES ---
	{
		handler := handlers.NewResourceHandler(baseHandler, handlers.ResourceConfig[entity.Sale]{
			Name:   "sale",
			List:   l.Sales,
			Create: l.CreateSale,
			Update: l.UpdateSale,
			Delete: l.DeleteSale,
		})
		RegisterResourceRoutes(rg.Group("/sales"), handler)
	}

	// --- CLIENTS ---
	{
		handler := handlers.NewResourceHandler(baseHandler, handlers.ResourceConfig[entity.Client]{
			Name:   "client",
			List:   l.Clients,
			Create: l.CreateClient,
			Update: l.UpdateClient,
			Delete: l.DeleteClient,
		})
		RegisterResourceRoutes(rg.Group("/clients"), handler)
	}

	// --- DESIGN PROJECTS ---
	{
		handler := handlers.NewResourceHandler(baseHandler, handlers.ResourceConfig[entity.Design]{
			Name:   "design",
			List:   l.Designs,
			Create: l.CreateDesign,
			Update: l.UpdateDesign,
			Delete: l.DeleteDesign,
		})
		RegisterResourceRoutes(rg.Group("/designs"), handler)
	}

	// --- EXPENSES ---
	{
		handler := handlers.NewResourceHandler(baseHandler, handlers.ResourceConfig[entity.Expense]{
			Name:   "expense",
			List:   l.Expenses,
			Create: l.CreateExpense,
			Update: l.UpdateExpense,
			Delete: l.DeleteExpense,
		})
		RegisterResourceRoutes(rg.Group("/expenses"), handler)
	}

	// --- SUPPLIERS ---
	{
		handler := handlers.NewResourceHandler(baseHandler, handlers.ResourceConfig[entity.Supplier]{
			Name:   "supplier",
			List:   l.Suppliers,
			Create: l.CreateSupplier,
			Update: l.UpdateSupplier,
			Delete: l.DeleteSupplier,
		})
		RegisterResourceRoutes(rg.Group("/suppliers"), handler)
	}

	// --- SUPPLIER EXPENSES ---
	{
		handler := handlers.NewResourceHandler(baseHandler, handlers.ResourceConfig[entity.SupplierExpense]{
			Name:   "supplier expense",
			List:   l.SupplierExpenses,
			Create: l.CreateSupplierExpense,
			Update: l.UpdateSupplierExpense,
			Delete: l.DeleteSupplierExpense,
		})
		RegisterResourceRoutes(rg.Group("/supplier-expenses"), handler)
	}

	// --- INVENTORY ---
	{
		handler := handlers.NewResourceHandler(baseHandler, handlers.ResourceConfig[entity.InventoryItem]{
			Name:   "inventory item",
			List:   l.Inventory,
			Create: l.CreateInventoryItem,
			Update: l.UpdateInventoryItem,
			Delete: l.DeleteInventoryItem,
		})
		RegisterResourceRoutes(rg.Group("/inventory"), handler)
	}
}

// registerStockRoutes registers the stock ledger and design material
// endpoints.
func registerStockRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewStockHandler(baseHandler, cfg.Layer)

	rg.GET("/inventory/transactions", handler.ListTransactions)
	rg.POST("/inventory/:id/transactions", handler.RecordTransaction)

	rg.GET("/designs/:id/materials", handler.ListMaterials)
	rg.POST("/designs/:id/materials", handler.AddMaterial)
	rg.DELETE("/materials/:id", handler.RemoveMaterial)
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewReportsHandler(baseHandler, cfg.Layer)

	reports := rg.Group("/reports")
	reports.GET("/summary", handler.Summary)
	reports.GET("/supplier-balances", handler.SupplierBalances)
	reports.GET("/stock-status", handler.StockStatus)
}

// registerAdminRoutes registers account management and the audit trail.
func registerAdminRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	usersHandler := handlers.NewUsersHandler(baseHandler, cfg.Layer)
	users := rg.Group("/users")
	users.Use(middleware.RequireAdmin())
	users.GET("", usersHandler.List)
	users.PATCH("/:username", usersHandler.Update)
	users.DELETE("/:username", usersHandler.Delete)

	auditHandler := handlers.NewAuditHandler(baseHandler, cfg.Layer)
	rg.GET("/audit", middleware.RequireAdmin(), auditHandler.List)
}
