package main

import (
	"log"
	"strings"

	"malkabul-backend/internal/audit"
	"malkabul-backend/internal/auth"
	"malkabul-backend/internal/config"
	"malkabul-backend/internal/database"
	"malkabul-backend/internal/inventory"
	"malkabul-backend/internal/models"
	"malkabul-backend/internal/receiving"
	"malkabul-backend/internal/settings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	svc := receiving.NewService(database.DB, inventory.NewCommitter())

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den temizleyerek geçir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	adminRoutes.Post("/employees", auth.CreateEmployeeHandler())

	// Sevkiyatlar
	protected.Post("/shipments", receiving.CreateShipmentHandler(svc))
	protected.Get("/shipments", receiving.ListShipmentsHandler(svc))
	protected.Get("/shipments/:id", receiving.GetShipmentHandler(svc))

	// Doğrulama akışı
	protected.Post("/shipments/:id/start", receiving.StartSessionHandler(svc))
	protected.Post("/shipments/:id/scan", receiving.ScanHandler(svc))
	protected.Post("/shipments/:id/complete", receiving.CompleteStepHandler(svc))
	protected.Post("/shipments/:id/add-to-inventory", receiving.AddToInventoryHandler(svc))

	// Kalemler
	protected.Post("/pending-items/:id/check-in", receiving.CheckInHandler(svc))
	protected.Post("/pending-items/:id/update", receiving.UpdateItemHandler(svc)) // deprecated, eski istemciler
	protected.Put("/pending-items/:id/price", receiving.UpdatePriceHandler(svc))

	// Sorunlar
	protected.Post("/shipments/:id/issues", receiving.ReportIssueHandler(svc, cfg))
	protected.Get("/shipments/:id/issues", receiving.ListIssuesHandler(svc))
	protected.Post("/issues/:id/resolve", receiving.ResolveIssueHandler(svc))

	// İlerleme ve geçmiş
	protected.Get("/shipments/:id/progress", receiving.ProgressHandler(svc))
	protected.Get("/shipments/:id/progress/wait", receiving.WaitProgressHandler(svc))
	protected.Get("/shipments/:id/scan-log", receiving.ScanLogHandler(svc))

	// Ayarlar
	protected.Get("/settings/receiving", settings.GetSettingsHandler())
	protected.Put("/settings/receiving", auth.RequireRole(models.RoleAdmin), settings.UpdateSettingsHandler())

	// Audit log
	protected.Get("/audit-logs", auth.RequireRole(models.RoleAdmin), audit.ListAuditLogsHandler())

	log.Printf("Sunucu %s portunda dinliyor", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("Sunucu başlatılamadı: %v", err)
	}
}
