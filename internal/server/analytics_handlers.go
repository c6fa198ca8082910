package server

import (
	"github.com/gofiber/fiber/v2"
)

// TrackEvent records an engagement event. It always answers 202: analytics
// must never fail or slow down the flow that triggered them, so validation
// problems are logged server-side and swallowed.
func (s *Server) TrackEvent(c *fiber.Ctx) error {
	var req struct {
		EntityID  uint   `json:"entity_id"`
		EventType string `json:"event_type"`
		SessionID string `json:"session_id"`
		Source    string `json:"source"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.SendStatus(fiber.StatusAccepted)
	}

	s.analyticsService.Track(c.UserContext(), req.EntityID, req.EventType, req.SessionID, req.Source)
	return c.SendStatus(fiber.StatusAccepted)
}

// OfferStats returns the pre-aggregated engagement summary for an offer.
func (s *Server) OfferStats(c *fiber.Ctx) error {
	entityID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	stats, statsErr := s.analyticsService.Stats(c.UserContext(), entityID)
	if statsErr != nil {
		return respondAppError(c, statsErr)
	}
	return c.JSON(stats)
}
