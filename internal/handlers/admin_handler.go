package handlers

import (
	"context"
	"encoding/csv"
	"errors"
	"strconv"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/famechasepro/genewell-new/internal/models"
	"github.com/famechasepro/genewell-new/internal/repository"
	adminws "github.com/famechasepro/genewell-new/internal/websocket"
	"github.com/famechasepro/genewell-new/pkg/utils"
)

type adminUserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	ListExportRows(ctx context.Context) ([]repository.ExportRow, error)
}

type adminSubmissionStore interface {
	List(ctx context.Context, limit, offset int) ([]models.QuizSubmission, error)
	Count(ctx context.Context) (int, error)
}

type adminOrderStore interface {
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
	PaidRevenue(ctx context.Context) (int64, error)
	PaidTierBreakdown(ctx context.Context) ([]models.TierCount, error)
}

type AdminHandler struct {
	adminRepo      adminUserStore
	submissionRepo adminSubmissionStore
	orderRepo      adminOrderStore
	hub            *adminws.Hub
	jwtSecret      string
}

func NewAdminHandler(
	adminRepo adminUserStore,
	submissionRepo adminSubmissionStore,
	orderRepo adminOrderStore,
	hub *adminws.Hub,
	jwtSecret string,
) *AdminHandler {
	return &AdminHandler{
		adminRepo:      adminRepo,
		submissionRepo: submissionRepo,
		orderRepo:      orderRepo,
		hub:            hub,
		jwtSecret:      jwtSecret,
	}
}

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req adminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateAdminLoginRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	admin, err := h.adminRepo.GetByEmail(c.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to log in"})
	}
	if !utils.CheckPassword(req.Password, admin.PasswordHash) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	token, err := utils.GenerateToken(strconv.FormatInt(admin.ID, 10), "admin", h.jwtSecret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to log in"})
	}

	return c.JSON(fiber.Map{"token": token})
}

func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	ctx := c.Context()

	submissions, err := h.submissionRepo.Count(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load stats"})
	}
	orders, err := h.orderRepo.Count(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load stats"})
	}
	paid, err := h.orderRepo.CountByStatus(ctx, models.OrderStatusPaid)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load stats"})
	}
	revenue, err := h.orderRepo.PaidRevenue(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load stats"})
	}
	breakdown, err := h.orderRepo.PaidTierBreakdown(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load stats"})
	}

	return c.JSON(fiber.Map{"stats": models.AdminStats{
		TotalSubmissions: submissions,
		TotalOrders:      orders,
		PaidOrders:       paid,
		RevenuePaise:     revenue,
		TierBreakdown:    breakdown,
	}})
}

func (h *AdminHandler) ListSubmissions(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPageLimit)
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	total, err := h.submissionRepo.Count(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load submissions"})
	}
	submissions, err := h.submissionRepo.List(c.Context(), limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load submissions"})
	}

	return c.JSON(fiber.Map{
		"submissions": submissions,
		"pagination":  buildPaginationMeta(page, limit, total),
	})
}

func (h *AdminHandler) ExportCSV(c *fiber.Ctx) error {
	rows, err := h.adminRepo.ListExportRows(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to export data"})
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)
	_ = writer.Write([]string{"submission_id", "name", "email", "submitted_at", "tier", "order_status", "amount_paise"})
	for _, row := range rows {
		record := []string{row.SubmissionID, row.Name, row.Email, row.CreatedAt, "", "", ""}
		if row.Tier != nil {
			record[4] = *row.Tier
		}
		if row.OrderStatus != nil {
			record[5] = *row.OrderStatus
		}
		if row.AmountPaise != nil {
			record[6] = strconv.FormatInt(*row.AmountPaise, 10)
		}
		_ = writer.Write(record)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to export data"})
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="submissions.csv"`)
	return c.SendString(buf.String())
}

// Live upgrades the connection and streams activity events until the
// dashboard disconnects.
func (h *AdminHandler) Live(conn *websocket.Conn) {
	client := adminws.NewClient(h.hub, conn)
	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump()
}
