package service

import "errors"

// Sentinel errors returned by the services. Handlers classify them with errors.Is;
// the underlying cause, when any, is wrapped alongside.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrTooLarge         = errors.New("document exceeds the upload size limit")
	ErrUnsupportedType  = errors.New("unsupported document type")
	ErrEmptyContent     = errors.New("document contains no extractable text")
	ErrExtractionFailed = errors.New("document text extraction failed")
	ErrDocumentNotFound = errors.New("document not found")
	ErrGenerationFailed = errors.New("response generation failed")
)
