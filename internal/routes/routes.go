package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/famechasepro/genewell-new/internal/config"
	"github.com/famechasepro/genewell-new/internal/handlers"
	"github.com/famechasepro/genewell-new/internal/middleware"
	"github.com/famechasepro/genewell-new/internal/payment"
	"github.com/famechasepro/genewell-new/internal/repository"
	"github.com/famechasepro/genewell-new/internal/services"
	adminws "github.com/famechasepro/genewell-new/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	submissionRepo := repository.NewSubmissionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	reportRepo := repository.NewReportRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	var storageService services.StorageService
	if cfg.StorageEnabled() {
		storageService = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}
	var orderService *services.OrderService
	if cfg.PaymentsEnabled() {
		gateway := payment.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
		orderService = services.NewOrderService(orderRepo, submissionRepo, gateway, cfg.RazorpayWebhookSecret)
	} else {
		orderService = services.NewOrderService(orderRepo, submissionRepo, nil, cfg.RazorpayWebhookSecret)
	}

	var reportService *services.ReportService
	if cfg.EmailEnabled() {
		emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom)
		reportService = services.NewReportService(orderRepo, submissionRepo, reportRepo, storageService, emailService, cfg.PublicBaseURL)
	} else {
		reportService = services.NewReportService(orderRepo, submissionRepo, reportRepo, storageService, nil, cfg.PublicBaseURL)
	}

	hub := adminws.NewHub()
	go hub.Run()

	quizHandler := handlers.NewQuizHandler(submissionRepo, hub)
	orderHandler := handlers.NewOrderHandler(orderService, hub, cfg.RazorpayKeyID)
	reportHandler := handlers.NewReportHandler(reportService, hub)
	adminHandler := handlers.NewAdminHandler(adminRepo, submissionRepo, orderRepo, hub, cfg.JWTSecret)

	api := app.Group("/api")

	quiz := api.Group("/quiz")
	quiz.Post("", quizHandler.SubmitQuiz)
	quiz.Get("/:id", quizHandler.GetSubmission)

	api.Post("/orders", orderHandler.CreateOrder)
	api.Post("/payments/verify", orderHandler.VerifyPayment)
	api.Post("/payments/webhook", orderHandler.Webhook)

	reports := api.Group("/reports")
	reports.Post("/:orderId/generate", reportHandler.GenerateReport)
	reports.Get("/:orderId/download", reportHandler.DownloadReport)

	admin := api.Group("/admin")
	admin.Post("/login", adminHandler.Login)

	adminProtected := admin.Group("", middleware.AdminRequired(cfg.JWTSecret))
	adminProtected.Get("/stats", adminHandler.GetStats)
	adminProtected.Get("/submissions", adminHandler.ListSubmissions)
	adminProtected.Get("/export.csv", adminHandler.ExportCSV)
	adminProtected.Get("/live", websocket.New(adminHandler.Live))
}
