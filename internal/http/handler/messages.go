package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"legalchat/internal/model"
	"legalchat/internal/service"
)

type messageResponse struct {
	ID        int64      `json:"id"`
	Role      model.Role `json:"role"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
}

// GetMessages returns the visible history of a conversation, oldest first.
//
// @Summary  Conversation history
// @Tags     messages
// @Produce  json
// @Param    conversationId path string true "Conversation ID"
// @Success  200 {array}  messageResponse
// @Router   /api/messages/{conversationId} [get]
func GetMessages(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		history, err := svc.History(c.UserContext(), c.Params("conversationId"))
		if err != nil {
			return writeServiceError(c, err)
		}
		out := make([]messageResponse, 0, len(history))
		for _, m := range history {
			out = append(out, messageResponse{ID: m.ID, Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt})
		}
		return c.JSON(out)
	}
}

// ClearMessages empties every conversation.
//
// @Summary  Clear all conversations
// @Tags     messages
// @Produce  json
// @Success  200 {object} map[string]int
// @Router   /api/messages [delete]
func ClearMessages(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := svc.ClearAll(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"cleared": n})
	}
}
