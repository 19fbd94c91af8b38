package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pressgate/broker-api/internal/auth"
	"github.com/pressgate/broker-api/internal/config"
	"github.com/pressgate/broker-api/internal/database"
	"github.com/pressgate/broker-api/internal/erp"
	"github.com/pressgate/broker-api/internal/http/handler"
	"github.com/pressgate/broker-api/internal/http/middleware"

	_ "github.com/pressgate/broker-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                  *config.Config
	logger               *zap.Logger
	db                   *gorm.DB
	erpClient            *erp.Client
	authMiddleware       *auth.Middleware
	rateLimiter          *middleware.RateLimiter
	jobHandler           *handler.JobHandler
	paymentHandler       *handler.PaymentHandler
	lifecycleHandler     *handler.LifecycleHandler
	readinessHandler     *handler.ReadinessHandler
	lineItemHandler      *handler.LineItemHandler
	purchaseOrderHandler *handler.PurchaseOrderHandler
	vendorHandler        *handler.VendorHandler
	customerHandler      *handler.CustomerHandler
	activityHandler      *handler.ActivityHandler
	pricingHandler       *handler.PricingHandler
	fileHandler          *handler.FileHandler
	reconcileHandler     *handler.ReconcileHandler
	authHandler          *handler.AuthHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	erpClient *erp.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	jobHandler *handler.JobHandler,
	paymentHandler *handler.PaymentHandler,
	lifecycleHandler *handler.LifecycleHandler,
	readinessHandler *handler.ReadinessHandler,
	lineItemHandler *handler.LineItemHandler,
	purchaseOrderHandler *handler.PurchaseOrderHandler,
	vendorHandler *handler.VendorHandler,
	customerHandler *handler.CustomerHandler,
	activityHandler *handler.ActivityHandler,
	pricingHandler *handler.PricingHandler,
	fileHandler *handler.FileHandler,
	reconcileHandler *handler.ReconcileHandler,
	authHandler *handler.AuthHandler,
) *Router {
	return &Router{
		cfg:                  cfg,
		logger:               logger,
		db:                   db,
		erpClient:            erpClient,
		authMiddleware:       authMiddleware,
		rateLimiter:          rateLimiter,
		jobHandler:           jobHandler,
		paymentHandler:       paymentHandler,
		lifecycleHandler:     lifecycleHandler,
		readinessHandler:     readinessHandler,
		lineItemHandler:      lineItemHandler,
		purchaseOrderHandler: purchaseOrderHandler,
		vendorHandler:        vendorHandler,
		customerHandler:      customerHandler,
		activityHandler:      activityHandler,
		pricingHandler:       pricingHandler,
		fileHandler:          fileHandler,
		reconcileHandler:     reconcileHandler,
		authHandler:          authHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Liveness probe
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database readiness probe with pool stats
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(r.Context(), rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"service": "database",
				"error":   err.Error(),
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats":   stats,
		})
	})

	// Combined readiness check. The ERP connection is reported but never
	// fails readiness since the API works without it.
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{"status": "healthy"}
		}

		if rt.erpClient.IsEnabled() {
			checks["erp"] = rt.erpClient.HealthCheck(r.Context())
		} else {
			checks["erp"] = map[string]interface{}{"status": "disabled"}
		}

		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		code := http.StatusOK
		if !allHealthy {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)
			r.Get("/users", rt.authHandler.ListUsers)

			// Jobs
			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", rt.jobHandler.List)
				r.Get("/search", rt.jobHandler.Search)
				r.Get("/{id}", rt.jobHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRoles(auth.RoleAdmin, auth.RoleBroker))

					r.Post("/", rt.jobHandler.Create)
					r.Put("/{id}", rt.jobHandler.Update)
					r.Delete("/{id}", rt.jobHandler.Delete)

					// Line items
					r.Get("/{id}/line-items", rt.lineItemHandler.List)
					r.Post("/{id}/line-items", rt.lineItemHandler.Add)

					// Purchase orders
					r.Get("/{id}/purchase-orders", rt.purchaseOrderHandler.List)
					r.Post("/{id}/purchase-orders", rt.purchaseOrderHandler.Create)
					r.Post("/{id}/purchase-orders/{poId}/send", rt.purchaseOrderHandler.Send)

					// Readiness
					r.Put("/{id}/readiness", rt.readinessHandler.UpdateFlags)
					r.Get("/{id}/components", rt.readinessHandler.ListComponents)
					r.Post("/{id}/components", rt.readinessHandler.AddComponent)

					// Lifecycle
					r.Post("/{id}/status/advance", rt.lifecycleHandler.Advance)
					r.Post("/{id}/status/override", rt.lifecycleHandler.Override)
					r.Delete("/{id}/status/override", rt.lifecycleHandler.ClearOverride)

					// Files
					r.Post("/{id}/files", rt.fileHandler.Upload)
				})

				r.Get("/{id}/readiness", rt.readinessHandler.Evaluate)
				r.Get("/{id}/profit-split", rt.jobHandler.GetProfitSplit)
				r.Get("/{id}/files", rt.fileHandler.List)
				r.Get("/{id}/activities", rt.activityHandler.ListForJob)
				r.Post("/{id}/activities", rt.activityHandler.AddJobNote)

				// Payments and financials
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRoles(auth.RoleAdmin, auth.RoleFinance))

					r.Post("/{id}/payments", rt.paymentHandler.RecordMilestone)
					r.Post("/{id}/payments/unset", rt.paymentHandler.UnsetMilestone)
					r.Post("/{id}/payments/resend-downstream-invoice", rt.paymentHandler.ResendDownstreamInvoice)
					r.Put("/{id}/intermediary-cut", rt.jobHandler.SetIntermediaryCut)
				})
			})

			// Line item and purchase order sub-resources
			r.Group(func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireRoles(auth.RoleAdmin, auth.RoleBroker))

				r.Put("/line-items/{itemId}", rt.lineItemHandler.Update)
				r.Post("/line-items/{itemId}/edit", rt.lineItemHandler.EditField)
				r.Delete("/line-items/{itemId}", rt.lineItemHandler.Delete)

				r.Put("/purchase-orders/{poId}", rt.purchaseOrderHandler.Update)
				r.Delete("/purchase-orders/{poId}", rt.purchaseOrderHandler.Delete)

				r.Put("/components/{componentId}", rt.readinessHandler.UpdateComponent)
				r.Delete("/components/{componentId}", rt.readinessHandler.DeleteComponent)

				r.Delete("/files/{fileId}", rt.fileHandler.Delete)
			})

			r.Get("/files/{fileId}", rt.fileHandler.Download)

			// Vendors
			r.Route("/vendors", func(r chi.Router) {
				r.Get("/", rt.vendorHandler.List)
				r.Get("/search", rt.vendorHandler.Search)
				r.Get("/{id}", rt.vendorHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRoles(auth.RoleAdmin, auth.RoleBroker))
					r.Post("/", rt.vendorHandler.Create)
					r.Put("/{id}", rt.vendorHandler.Update)
					r.Delete("/{id}", rt.vendorHandler.Deactivate)
				})
			})

			// Customers
			r.Route("/customers", func(r chi.Router) {
				r.Get("/", rt.customerHandler.List)
				r.Get("/search", rt.customerHandler.Search)
				r.Get("/{id}", rt.customerHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRoles(auth.RoleAdmin, auth.RoleBroker))
					r.Post("/", rt.customerHandler.Create)
					r.Put("/{id}", rt.customerHandler.Update)
					r.Delete("/{id}", rt.customerHandler.Deactivate)
				})
			})

			// Activity feed
			r.Get("/activities", rt.activityHandler.ListRecent)

			// Pricing reference data
			r.Get("/pricing/cpm-rates", rt.pricingHandler.ListCPMRates)

			// ERP reconciliation
			r.With(rt.authMiddleware.RequireRoles(auth.RoleAdmin, auth.RoleFinance)).
				Post("/reconcile", rt.reconcileHandler.Run)
		})
	})

	return r
}
