package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrJobNotFound         = errors.New("extraction job not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrMissingAPIKey       = errors.New("vision API key is not configured")
	ErrDocumentUnreadable  = errors.New("document could not be opened or rasterized")
)
