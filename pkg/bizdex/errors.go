package bizdex

import "github.com/kailas-cloud/bizdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest       = domain.ErrInvalidRequest
	ErrInvalidLocation      = domain.ErrInvalidLocation
	ErrEmptyQuery           = domain.ErrEmptyQuery
	ErrInvalidDocument      = domain.ErrInvalidDocument
	ErrDocumentNotFound     = domain.ErrDocumentNotFound
	ErrVectorDimMismatch    = domain.ErrVectorDimMismatch
	ErrEmbeddingUnavailable = domain.ErrEmbeddingUnavailable
	ErrEmbeddingRejected    = domain.ErrEmbeddingRejected
	ErrBackendUnavailable   = domain.ErrBackendUnavailable
	ErrIndexAlreadyExists   = domain.ErrIndexAlreadyExists
	ErrIndexNotFound        = domain.ErrIndexNotFound
)
