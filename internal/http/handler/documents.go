package handler

import (
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"legalchat/internal/service"
)

// uploadFields are the accepted multipart field names, in lookup order.
var uploadFields = []string{"document", "file"}

type uploadResponse struct {
	DocumentID string `json:"documentId"`
	Name       string `json:"name"`
}

type textResponse struct {
	DocumentID string `json:"documentId"`
	Text       string `json:"text"`
}

type analyzeRequest struct {
	Question string `json:"question" validate:"max=4000"`
	Language string `json:"language" validate:"omitempty,max=64"`
}

// ListDocuments returns uploaded documents, newest first.
//
// @Summary  List uploaded documents
// @Tags     documents
// @Produce  json
// @Param    limit  query    int false "Page size" default(10)
// @Param    offset query    int false "Offset"    default(0)
// @Success  200    {object} service.DocumentListResult
// @Failure  400    {object} errorPayload
// @Router   /api/documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UploadDocument ingests a multipart file (field "document" or "file").
//
// @Summary  Upload a document
// @Tags     documents
// @Accept   multipart/form-data
// @Produce  json
// @Param    document       formData file   true  "Text, markdown, PDF or DOCX file"
// @Param    conversationId formData string false "Owning conversation"
// @Success  201 {object} uploadResponse
// @Failure  400 {object} errorPayload
// @Failure  413 {object} errorPayload
// @Failure  415 {object} errorPayload
// @Failure  422 {object} errorPayload
// @Router   /api/documents/upload [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh := formFile(c)
		if fh == nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := svc.Upload(c.UserContext(), service.UploadInput{
			FileName:       fh.Filename,
			MimeType:       fh.Header.Get("Content-Type"),
			Size:           fh.Size,
			Reader:         f,
			ConversationID: c.FormValue("conversationId"),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(uploadResponse{DocumentID: doc.ID, Name: doc.Name})
	}
}

func formFile(c *fiber.Ctx) *multipart.FileHeader {
	for _, field := range uploadFields {
		if fh, err := c.FormFile(field); err == nil {
			return fh
		}
	}
	return nil
}

// GetDocument returns document metadata.
//
// @Summary  Document metadata
// @Tags     documents
// @Produce  json
// @Param    id  path     string true "Document ID"
// @Success  200 {object} model.UploadedDocument
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /api/documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// GetDocumentText returns the text extracted from a document.
//
// @Summary  Extracted document text
// @Tags     documents
// @Produce  json
// @Param    id  path     string true "Document ID"
// @Success  200 {object} textResponse
// @Failure  404 {object} errorPayload
// @Router   /api/documents/{id}/text [get]
func GetDocumentText(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		text, err := svc.Text(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(textResponse{DocumentID: id, Text: text})
	}
}

// AnalyzeDocument runs a one-off analysis that is not recorded in any conversation.
//
// @Summary  Analyze a document
// @Tags     documents
// @Accept   json
// @Produce  json
// @Param    id   path     string         true  "Document ID"
// @Param    body body     analyzeRequest false "Optional question"
// @Success  200  {object} service.AnalysisResult
// @Failure  404  {object} errorPayload
// @Failure  502  {object} errorPayload
// @Router   /api/documents/{id}/analyze [post]
func AnalyzeDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req analyzeRequest
		if ok, err := bindJSON(c, &req, true); !ok {
			return err
		}
		res, err := svc.Analyze(c.UserContext(), id, req.Question, req.Language)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

func documentID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
