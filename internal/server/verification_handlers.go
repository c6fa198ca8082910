package server

import (
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SubmitVerification files a verification request for the current user.
func (s *Server) SubmitVerification(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Kind      string   `json:"kind"`
		Documents []string `json:"documents"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	request, err := s.verificationService.Submit(c.UserContext(), userID, req.Kind, req.Documents)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

// LatestVerification returns the current user's most recent request for a kind.
func (s *Server) LatestVerification(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	kind := c.Query("kind")

	request, err := s.verificationService.Latest(c.UserContext(), userID, kind)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(request)
}

// ListPendingVerifications returns the pending review queue for moderators.
func (s *Server) ListPendingVerifications(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	requests, err := s.verificationService.ListPending(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// PendingVerificationCount backs the moderator dashboard badge.
func (s *Server) PendingVerificationCount(c *fiber.Ctx) error {
	count, err := s.verificationService.PendingCount(c.UserContext())
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"pending": count})
}

// ReviewVerification applies a reviewer decision to a request.
func (s *Server) ReviewVerification(c *fiber.Ctx) error {
	reviewerID := c.Locals("userID").(uint)
	requestID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Decision string `json:"decision"`
		Reason   string `json:"reason"`
		Notes    string `json:"notes"`
	}
	if bodyErr := c.BodyParser(&req); bodyErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	request, reviewErr := s.verificationService.Review(c.UserContext(), requestID, req.Decision, reviewerID, req.Reason, req.Notes)
	if reviewErr != nil {
		return respondAppError(c, reviewErr)
	}
	return c.JSON(request)
}
