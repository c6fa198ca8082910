package server

import (
	"time"

	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/models"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateListing creates a car listing owned by the current user. Listings
// are otherwise managed by the host application; this endpoint exists so
// the moderation flow has content to act on.
func (s *Server) CreateListing(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Title == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("title is required"))
	}

	listing := &models.Listing{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.ListingStatusActive,
	}
	if err := s.listingRepo.Create(c.UserContext(), listing); err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

// FileReport flags a listing for moderation.
func (s *Server) FileReport(c *fiber.Ctx) error {
	reporterID := c.Locals("userID").(uint)
	listingID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason  string `json:"reason"`
		Details string `json:"details"`
	}
	if bodyErr := c.BodyParser(&req); bodyErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, fileErr := s.moderationService.FileReport(c.UserContext(), listingID, reporterID, req.Reason, req.Details)
	if fileErr != nil {
		return respondAppError(c, fileErr)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// ListReports returns reports for the moderator dashboard.
func (s *Server) ListReports(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	status := models.ReportStatus(c.Query("status"))

	reports, total, err := s.moderationService.ListReports(c.UserContext(), status, page.Limit, page.Offset)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"reports": reports, "total": total})
}

// ResolveReport applies a moderation action to a single report.
func (s *Server) ResolveReport(c *fiber.Ctx) error {
	reviewerID := c.Locals("userID").(uint)
	reportID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Action           string `json:"action"`
		Notes            string `json:"notes"`
		BanDurationHours int    `json:"ban_duration_hours"`
	}
	if bodyErr := c.BodyParser(&req); bodyErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, resolveErr := s.moderationService.Resolve(c.UserContext(), service.ResolveInput{
		ReportID:    reportID,
		Action:      req.Action,
		ReviewerID:  reviewerID,
		Notes:       req.Notes,
		BanDuration: time.Duration(req.BanDurationHours) * time.Hour,
	})
	if resolveErr != nil {
		return respondAppError(c, resolveErr)
	}
	return c.JSON(report)
}

// BulkResolveReports applies one action to many reports, reporting
// per-item outcomes.
func (s *Server) BulkResolveReports(c *fiber.Ctx) error {
	reviewerID := c.Locals("userID").(uint)

	var req struct {
		ReportIDs []uint `json:"report_ids"`
		Action    string `json:"action"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if len(req.ReportIDs) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("report_ids must not be empty"))
	}

	result := s.moderationService.BulkResolve(c.UserContext(), req.ReportIDs, req.Action, reviewerID)
	return c.JSON(result)
}
