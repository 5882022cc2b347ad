package audit

import (
	"encoding/json"
	"time"

	"muttonhub-backend/internal/export"
	"muttonhub-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID        uint               `json:"id"`
	CreatedAt string             `json:"created_at"`
	Action    models.AuditAction `json:"action"`
	TableName string             `json:"table_name"`
	EntityID  uint               `json:"entity_id"`
	OldValues json.RawMessage    `json:"old_values"`
	NewValues json.RawMessage    `json:"new_values"`
	UserID    uint               `json:"user_id"`
	UserEmail string             `json:"user_email"`
	UserRole  models.Role        `json:"user_role"`
}

// GET /api/audit-logs?action=UPDATE&table=buyer_transactions&date_from=2025-01-01&date_to=2025-01-31
func ListAuditLogsHandler(logger *Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := parseFilter(c)
		if err != nil {
			return err
		}

		logs, err := logger.List(c.UserContext(), filter)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list audit logs")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:        l.ID,
				CreatedAt: l.CreatedAt.Format(time.RFC3339),
				Action:    l.Action,
				TableName: l.TableName,
				EntityID:  l.EntityID,
				OldValues: raw(l.OldValues),
				NewValues: raw(l.NewValues),
				UserID:    l.UserID,
				UserEmail: l.UserEmail,
				UserRole:  l.UserRole,
			})
		}

		return c.JSON(resp)
	}
}

// GET /api/audit-logs/export (same filters)
func ExportAuditLogsHandler(logger *Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := parseFilter(c)
		if err != nil {
			return err
		}

		logs, err := logger.List(c.UserContext(), filter)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list audit logs")
		}

		rows := make([][]any, 0, len(logs))
		for _, l := range logs {
			role := string(l.UserRole)
			if role == "" {
				role = "Unknown"
			}
			rows = append(rows, []any{
				l.CreatedAt.Format("2006-01-02"),
				l.CreatedAt.Format("15:04:05"),
				string(l.Action),
				l.TableName,
				role,
				pretty(l.OldValues),
				pretty(l.NewValues),
			})
		}

		buf, err := export.Build(export.Sheet{
			Name:    "Audit Logs",
			Headers: []string{"Date", "Time", "Action", "Table", "User Role", "Old Values", "New Values"},
			Rows:    rows,
		})
		if err != nil {
			return err
		}
		return export.Send(c, export.DatedFileName("audit-logs", time.Now()), buf)
	}
}

func parseFilter(c *fiber.Ctx) (Filter, error) {
	var f Filter

	if a := c.Query("action"); a != "" {
		f.Action = models.AuditAction(a)
		if !f.Action.Valid() {
			return f, fiber.NewError(fiber.StatusBadRequest, "action must be CREATE, UPDATE or DELETE")
		}
	}
	f.TableName = c.Query("table")

	if s := c.Query("date_from"); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "date_from must be YYYY-MM-DD")
		}
		f.DateFrom = &d
	}
	if s := c.Query("date_to"); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "date_to must be YYYY-MM-DD")
		}
		f.DateTo = &d
	}
	return f, nil
}

func raw(s string) json.RawMessage {
	if s == "" {
		return json.RawMessage("null")
	}
	return json.RawMessage(s)
}

func pretty(s string) string {
	if s == "" || s == "null" {
		return ""
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return s
	}
	return string(b)
}
