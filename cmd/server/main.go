package main

import (
	"log"
	"strings"

	"fabrika-backend/internal/approval"
	"fabrika-backend/internal/audit"
	"fabrika-backend/internal/auth"
	"fabrika-backend/internal/batch"
	"fabrika-backend/internal/box"
	"fabrika-backend/internal/config"
	"fabrika-backend/internal/database"
	"fabrika-backend/internal/events"
	"fabrika-backend/internal/logger"
	"fabrika-backend/internal/machine"
	"fabrika-backend/internal/models"
	"fabrika-backend/internal/production"
	"fabrika-backend/internal/quality"
	"fabrika-backend/internal/report"
	"fabrika-backend/internal/rework"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()

	appLog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Logger oluşturulamadı: %v", err)
	}
	defer appLog.Sync()

	database.Init(cfg, appLog)

	// Gerçek zamanlı bildirimler: Redis yoksa sessizce kapalı çalışır
	var pub events.Publisher
	if cfg.RedisAddr != "" {
		pub, err = events.NewRedisPublisher(appLog, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			appLog.Warn("Redis publisher açılamadı, bildirimler kapalı", "error", err)
			pub = events.NewNoopPublisher()
		}
	} else {
		pub = events.NewNoopPublisher()
	}
	defer pub.Close()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			appLog.Error("Beklenmeyen hata", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
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
	api.Post("/auth/register-manager", auth.RegisterManagerHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Yönetici rotaları
	managerRoutes := protected.Group("")
	managerRoutes.Use(auth.RequireRole(models.RoleManager))

	// Operatör yönetimi
	managerRoutes.Post("/operators", auth.CreateOperatorHandler())
	managerRoutes.Get("/operators", auth.ListOperatorsHandler())
	managerRoutes.Post("/users/:id/sections", auth.AssignSectionHandler())
	managerRoutes.Delete("/users/:id/sections/:section", auth.RemoveSectionHandler())

	// Makine yönetimi
	managerRoutes.Post("/machines", machine.CreateMachineHandler())
	managerRoutes.Put("/machines/:id", machine.UpdateMachineHandler())
	protected.Get("/machines", machine.ListMachinesHandler())

	// Parti yönetimi
	managerRoutes.Post("/batches", batch.CreateBatchHandler())
	managerRoutes.Post("/batches/:id/cancel", batch.CancelBatchHandler())
	protected.Get("/batches", batch.ListBatchesHandler())
	protected.Get("/batches/:id", batch.GetBatchHandler())
	protected.Get("/batches/:id/rework-pool", rework.ReworkPoolHandler())

	// Üretim kayıtları (operatör girer, yönetici onaylar)
	operatorRoutes := protected.Group("")
	operatorRoutes.Use(auth.RequireRole(models.RoleOperator))
	operatorRoutes.Post("/production-logs", production.CreateLogHandler())
	operatorRoutes.Post("/quality-checks", quality.RecordInspectionHandler(pub))
	operatorRoutes.Post("/reworks", rework.CreateReworkHandler())

	protected.Get("/production-logs", production.ListLogsHandler())
	protected.Get("/defects", quality.ListDefectsHandler())
	protected.Get("/reworks", rework.ListReworksHandler())

	// Onay akışı
	managerRoutes.Post("/production-logs/:id/approve", approval.ApproveProductionLogHandler(pub))
	managerRoutes.Post("/production-logs/:id/reject", approval.RejectProductionLogHandler(pub))
	managerRoutes.Post("/reworks/:id/approve", approval.ApproveReworkHandler(pub))
	managerRoutes.Post("/reworks/:id/reject", approval.RejectReworkHandler(pub))

	// Koliler
	protected.Get("/boxes", box.ListBoxesHandler())
	managerRoutes.Put("/boxes/:id/status", box.UpdateBoxStatusHandler(pub))

	// Raporlama
	managerRoutes.Get("/reports/production/monthly", report.MonthlyProductionReportHandler())
	managerRoutes.Get("/reports/production/monthly/export", report.ExportMonthlyProductionReportHandler())

	// Audit logs
	managerRoutes.Get("/audit-logs", audit.ListAuditLogsHandler())

	appLog.Info("Server çalışıyor", "port", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		appLog.Fatal("Server kapandı", "error", err)
	}
}
