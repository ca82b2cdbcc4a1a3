package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest signals a search request rejected before any external call.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidLocation signals out-of-range coordinates or a non-positive radius.
	ErrInvalidLocation = fmt.Errorf("%w: invalid location", ErrInvalidRequest)
	// ErrEmptyQuery signals a request with nothing to search on.
	ErrEmptyQuery = fmt.Errorf("%w: empty query", ErrInvalidRequest)

	// ErrInvalidDocument signals a raw record that cannot be normalized.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrEmbeddingUnavailable signals an unreachable or unconfigured embedding provider.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrEmbeddingRejected signals a provider answer that retrying cannot fix (auth, bad input).
	ErrEmbeddingRejected = errors.New("embedding request rejected")

	// ErrBackendUnavailable signals a failed call to the search backend.
	ErrBackendUnavailable = errors.New("search backend unavailable")
	// ErrIndexAlreadyExists is the informational provisioning outcome for an existing index.
	ErrIndexAlreadyExists = errors.New("index already exists")
	// ErrIndexNotFound signals a missing index.
	ErrIndexNotFound = errors.New("index not found")
)
