package handler

import (
	"github.com/gofiber/fiber/v2"

	"legalchat/internal/repository"
	"legalchat/internal/service"
)

// Services are the dependencies the HTTP routes are bound to.
type Services struct {
	Chat      service.ChatService
	Documents service.DocumentService
	Contexts  repository.ContextStore
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers only translate between HTTP and the services.
func RegisterRoutes(app *fiber.App, s Services) {
	app.Get("/health", HealthCheck(s.Contexts))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")

	api.Post("/chat", SendChat(s.Chat))

	api.Get("/messages/:conversationId", GetMessages(s.Chat))
	api.Delete("/messages", ClearMessages(s.Chat))

	api.Post("/documents/upload", UploadDocument(s.Documents))
	api.Get("/documents", ListDocuments(s.Documents))
	api.Get("/documents/:id", GetDocument(s.Documents))
	api.Get("/documents/:id/text", GetDocumentText(s.Documents))
	api.Post("/documents/:id/analyze", AnalyzeDocument(s.Documents))

	api.Get("/legal-contexts", ListLegalContexts(s.Contexts))
	api.Get("/legal-contexts/:id", GetLegalContext(s.Contexts))
}
