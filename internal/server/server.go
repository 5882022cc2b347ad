// Package server assembles the HTTP gateway: middleware, services and routes.
package server

import (
	"strings"

	"muttonhub-backend/internal/admin"
	"muttonhub-backend/internal/audit"
	"muttonhub-backend/internal/auth"
	"muttonhub-backend/internal/config"
	"muttonhub-backend/internal/dashboard"
	"muttonhub-backend/internal/models"
	"muttonhub-backend/internal/navigation"
	"muttonhub-backend/internal/party"
	"muttonhub-backend/internal/preference"
	"muttonhub-backend/internal/report"
	"muttonhub-backend/internal/trade"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func New(cfg *config.Config, log *zap.Logger, db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "muttonhub-backend",
		ErrorHandler: ErrorHandler(log),
	})

	// ==========================================
	// Gateway layer
	// ==========================================
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(AccessLog(log))

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(corsOrigins, ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: "Content-Disposition",
	}))

	// ==========================================
	// Wiring
	// ==========================================
	users := auth.NewUserStore(db)
	roles := auth.NewRoleResolver(users, cfg.RoleFailOpen, log)
	authSvc := auth.NewService(users, roles, cfg.JWTSecret, cfg.SignupSecurityCode, log)

	auditLogger := audit.NewLogger(audit.NewRepository(db), log)
	parties := party.NewRepository(db)
	tradeSvc := trade.NewService(trade.NewRepository(db), parties, auditLogger, log)
	reportSvc := report.NewService(tradeSvc)
	dashboardSvc := dashboard.NewService(db, parties)
	prefs := preference.NewStore(db)

	// ==========================================
	// Routes
	// ==========================================
	api := app.Group("/api")

	api.Get("/health", HealthHandler(db))
	api.Post("/auth/signup", auth.SignUpHandler(authSvc))
	api.Post("/auth/login", auth.LoginHandler(authSvc))

	protected := api.Group("", auth.JWTMiddleware(cfg.JWTSecret, roles))

	protected.Get("/auth/session", auth.SessionHandler(authSvc))
	protected.Post("/auth/logout", auth.LogoutHandler())
	protected.Get("/navigation", navigation.Handler())
	protected.Get("/preferences", preference.GetHandler(prefs))
	protected.Put("/preferences", preference.UpdateHandler(prefs))

	// Dashboard
	protected.Get("/dashboard/summary", dashboard.SummaryHandler(dashboardSvc, log))
	protected.Get("/dashboard/chart", dashboard.ChartHandler(dashboardSvc, log))

	// Buyers & sellers
	for _, kind := range []models.PartyKind{models.PartyBuyer, models.PartySeller} {
		g := protected.Group("/" + kind.Table())
		g.Post("/", party.CreateHandler(parties, kind))
		g.Get("/", party.ListHandler(parties, kind, log))
		g.Get("/export", party.ExportHandler(parties, kind))
		g.Get("/:id", party.GetHandler(parties, kind))
	}

	// Transactions
	protected.Post("/buyer-transactions", trade.CreateBuyerTransactionHandler(tradeSvc))
	protected.Get("/buyer-transactions", trade.ListBuyerTransactionsHandler(tradeSvc))
	protected.Get("/buyer-transactions/:id", trade.GetBuyerTransactionHandler(tradeSvc))
	protected.Post("/buyer-transactions/:id/settle", trade.SettleBuyerTransactionHandler(tradeSvc))

	protected.Post("/seller-transactions", trade.CreateSellerTransactionHandler(tradeSvc))
	protected.Get("/seller-transactions", trade.ListSellerTransactionsHandler(tradeSvc))
	protected.Get("/seller-transactions/:id", trade.GetSellerTransactionHandler(tradeSvc))
	protected.Post("/seller-transactions/:id/settle", trade.SettleSellerTransactionHandler(tradeSvc))

	// Reports
	protected.Get("/reports", report.ReportHandler(reportSvc, log))
	protected.Get("/reports/export/:kind", report.ExportHandler(reportSvc, log))

	// Owner only
	owner := protected.Group("", auth.RequireRole(models.RoleOwner))

	owner.Get("/audit-logs", audit.ListAuditLogsHandler(auditLogger))
	owner.Get("/audit-logs/export", audit.ExportAuditLogsHandler(auditLogger))

	owner.Get("/admin/users", admin.ListUsersHandler(db))
	owner.Put("/admin/users/:user_id/role", admin.UpdateUserRoleHandler(db))
	owner.Delete("/admin/users/:user_id", admin.DeleteUserRoleHandler(db))

	return app
}
