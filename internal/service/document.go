package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"legalchat/internal/extract"
	"legalchat/internal/generator"
	"legalchat/internal/logging"
	"legalchat/internal/model"
	"legalchat/internal/observability"
	"legalchat/internal/prompt"
	"legalchat/internal/repository"
	"legalchat/internal/storage"
)

// UploadInput describes one uploaded file as received by the transport.
type UploadInput struct {
	FileName string
	MimeType string
	// Size is the declared size; -1 when unknown. The body is still bounded while reading.
	Size           int64
	Reader         io.Reader
	ConversationID string
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.UploadedDocument `json:"data"`
	Total int                      `json:"total"`
}

// AnalysisResult is a one-off analysis of an uploaded document.
type AnalysisResult struct {
	Analysis     string `json:"analysis"`
	DocumentName string `json:"documentName"`
}

// DocumentService defines the use cases for uploaded documents.
type DocumentService interface {
	// Upload extracts the text of the file and stores it as a new document.
	// When an archive is configured the raw bytes are archived first; nothing is
	// stored if archiving fails.
	Upload(ctx context.Context, in UploadInput) (*model.UploadedDocument, error)

	// List returns documents using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.UploadedDocument, error)

	// Text returns the extracted text of a document.
	Text(ctx context.Context, id string) (string, error)

	// Analyze asks the generator for an analysis of the document. Nothing is recorded
	// in any conversation.
	Analyze(ctx context.Context, id, question, language string) (*AnalysisResult, error)
}

// DocumentOptions tunes the document service.
type DocumentOptions struct {
	MaxUploadBytes    int64
	GenerationTimeout time.Duration
}

type documentService struct {
	store      repository.ContextStore
	extractors *extract.Registry
	archive    storage.Archive
	gen        generator.Generator
	opts       DocumentOptions
	log        *zap.Logger
	metrics    *observability.Metrics
}

// NewDocumentService constructs a new DocumentService. archive may be nil.
func NewDocumentService(
	store repository.ContextStore,
	extractors *extract.Registry,
	archive storage.Archive,
	gen generator.Generator,
	opts DocumentOptions,
	log *zap.Logger,
	metrics *observability.Metrics,
) DocumentService {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = 60 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &documentService{
		store:      store,
		extractors: extractors,
		archive:    archive,
		gen:        gen,
		opts:       opts,
		log:        log,
		metrics:    metrics,
	}
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*model.UploadedDocument, error) {
	doc, result, err := s.upload(ctx, in)
	s.metrics.DocumentIngested(result)
	log := logging.FromContext(ctx, s.log)
	if err != nil {
		log.Info("document rejected",
			zap.String("file_name", in.FileName),
			zap.String("result", result),
			zap.Error(err),
		)
		return nil, err
	}
	log.Info("document ingested",
		zap.String("document_id", doc.ID),
		zap.String("mime_type", doc.MimeType),
		zap.Int64("size_bytes", doc.SizeBytes),
	)
	return doc, nil
}

func (s *documentService) upload(ctx context.Context, in UploadInput) (*model.UploadedDocument, string, error) {
	if in.Reader == nil {
		return nil, "invalid", fmt.Errorf("%w: no file content", ErrInvalidInput)
	}
	limit := s.opts.MaxUploadBytes
	if in.Size > limit {
		return nil, "too_large", ErrTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(in.Reader, limit+1))
	if err != nil {
		return nil, "invalid", fmt.Errorf("%w: read upload: %v", ErrInvalidInput, err)
	}
	if int64(len(data)) > limit {
		return nil, "too_large", ErrTooLarge
	}

	mimeType := s.detectType(in.MimeType, in.FileName, data)
	if !s.extractors.Supports(mimeType) {
		return nil, "unsupported_type", fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	text, err := s.extractors.Extract(mimeType, data)
	if err != nil {
		return nil, "extraction_failed", fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, "empty_content", ErrEmptyContent
	}

	name := filepath.Base(strings.TrimSpace(in.FileName))
	if name == "." || name == "/" || name == "" {
		name = "document"
	}
	doc := &model.UploadedDocument{
		ID:             uuid.NewString(),
		Name:           name,
		MimeType:       mimeType,
		SizeBytes:      int64(len(data)),
		ExtractedText:  text,
		ConversationID: in.ConversationID,
		CreatedAt:      time.Now().UTC(),
	}

	var key string
	if s.archive != nil {
		key = storage.UploadKey(doc.ID, strings.ToLower(filepath.Ext(name)))
		_, err := s.archive.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
			Size:        doc.SizeBytes,
			ContentType: mimeType,
			Metadata:    map[string]string{"original-filename": name},
		})
		if err != nil {
			return nil, "archive_failed", fmt.Errorf("archive upload: %w", err)
		}
	}

	if err := s.store.PutUploadedDocument(ctx, doc); err != nil {
		if key != "" {
			// Rollback: delete the archived object
			if delErr := s.archive.Delete(ctx, key); delErr != nil {
				return nil, "store_failed", fmt.Errorf("store document failed: %v; rollback delete failed: %v", err, delErr)
			}
		}
		return nil, "store_failed", fmt.Errorf("store document: %w", err)
	}
	return doc, "ok", nil
}

// detectType trusts a declared type unless it is missing or generic, in which case
// the content is sniffed. Markdown has no magic bytes, so its extension decides.
func (s *documentService) detectType(declared, fileName string, data []byte) string {
	mt := extract.Normalize(declared)
	if mt != "" && mt != "application/octet-stream" {
		return mt
	}
	if ext := strings.ToLower(filepath.Ext(fileName)); ext == ".md" || ext == ".markdown" {
		return extract.MIMEMarkdown
	}
	return extract.Normalize(mimetype.Detect(data).String())
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.store.ListUploadedDocuments(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.UploadedDocument, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: document id is required", ErrInvalidInput)
	}
	doc, err := s.store.GetUploadedDocument(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Text(ctx context.Context, id string) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return doc.ExtractedText, nil
}

func (s *documentService) Analyze(ctx context.Context, id, question, language string) (*AnalysisResult, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p := prompt.BuildAnalysisPayload(doc.Name, doc.ExtractedText, question, language)
	started := time.Now()
	reply, err := generateWithin(ctx, s.gen, s.opts.GenerationTimeout, p)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = generator.ErrEmptyReply
	}
	s.metrics.GenerationObserved(time.Since(started), err == nil)
	if err != nil {
		logging.FromContext(ctx, s.log).Error("document analysis failed", zap.String("document_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	return &AnalysisResult{Analysis: reply, DocumentName: doc.Name}, nil
}
