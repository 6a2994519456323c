package handler

import (
	"github.com/gofiber/fiber/v2"

	"legalchat/internal/service"
)

type chatRequest struct {
	Message        string `json:"message" validate:"required"`
	ConversationID string `json:"conversationId" validate:"omitempty,max=128"`
	DocumentID     string `json:"documentId" validate:"omitempty,max=128"`
	Language       string `json:"language" validate:"omitempty,max=64"`
}

type chatResponse struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

// SendChat answers one chat turn.
//
// @Summary  Send a chat message
// @Tags     chat
// @Accept   json
// @Produce  json
// @Param    body body     chatRequest true "Chat turn"
// @Success  200  {object} chatResponse
// @Failure  400  {object} errorPayload
// @Failure  404  {object} errorPayload
// @Failure  502  {object} errorPayload
// @Router   /api/chat [post]
func SendChat(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req chatRequest
		if ok, err := bindJSON(c, &req, false); !ok {
			return err
		}

		res, err := svc.Send(c.UserContext(), service.SendInput{
			Message:        req.Message,
			ConversationID: req.ConversationID,
			DocumentID:     req.DocumentID,
			Language:       req.Language,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(chatResponse{Message: res.Message, ConversationID: res.ConversationID})
	}
}
