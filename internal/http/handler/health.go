package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"legalchat/internal/repository"
)

// HealthCheck reports healthy when the reference catalog can be read.
//
// @Summary  Readiness check
// @Tags     ops
// @Produce  json
// @Success  200 {object} map[string]any
// @Failure  503 {object} errorPayload
// @Router   /health [get]
func HealthCheck(store repository.ContextStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		refs, err := store.AllReferenceContexts(ctx)
		if err != nil || len(refs) == 0 {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "reference catalog unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":            "healthy",
			"referenceContexts": len(refs),
		})
	}
}

// LivenessProbe always answers 200 while the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
