package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"legalchat/internal/repository"
)

// ListLegalContexts returns the seeded reference catalog.
//
// @Summary  Reference legal texts
// @Tags     legal-contexts
// @Produce  json
// @Success  200 {array} model.ReferenceContext
// @Router   /api/legal-contexts [get]
func ListLegalContexts(store repository.ContextStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		refs, err := store.AllReferenceContexts(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(refs)
	}
}

// GetLegalContext returns one reference text.
//
// @Summary  Reference legal text by id
// @Tags     legal-contexts
// @Produce  json
// @Param    id  path     int true "Reference ID"
// @Success  200 {object} model.ReferenceContext
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /api/legal-contexts/{id} [get]
func GetLegalContext(store repository.ContextStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil || id <= 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		ref, err := store.GetReferenceContext(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "legal context not found")
			}
			return writeServiceError(c, err)
		}
		return c.JSON(ref)
	}
}
