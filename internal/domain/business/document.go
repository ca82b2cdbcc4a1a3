// Package business models registry establishments ("estabelecimentos") as indexed documents.
package business

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/bizdex/internal/domain"
	"github.com/kailas-cloud/bizdex/internal/domain/geo"
)

// DateLayout is the wire format of founding dates.
const DateLayout = "2006-01-02"

// Status is the registration status of an establishment.
type Status string

// Registration statuses.
const (
	StatusActive    Status = "ACTIVE"
	StatusClosed    Status = "CLOSED"
	StatusSuspended Status = "SUSPENDED"
)

// ParseStatus accepts canonical values and the registry's Portuguese labels.
// An empty input yields an empty (unknown) status.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "ACTIVE", "ATIVA":
		return StatusActive, nil
	case "CLOSED", "BAIXADA":
		return StatusClosed, nil
	case "SUSPENDED", "SUSPENSA":
		return StatusSuspended, nil
	default:
		return "", fmt.Errorf("unknown status %q: %w", s, domain.ErrInvalidDocument)
	}
}

// Size is the company-size tier.
type Size string

// Size tiers.
const (
	SizeMEI    Size = "MEI"
	SizeME     Size = "ME"
	SizeEPP    Size = "EPP"
	SizeDemais Size = "DEMAIS"
)

// ParseSize validates a size tier. An empty input yields an empty (unknown) tier.
func ParseSize(s string) (Size, error) {
	switch v := Size(strings.ToUpper(strings.TrimSpace(s))); v {
	case "", SizeMEI, SizeME, SizeEPP, SizeDemais:
		return v, nil
	default:
		return "", fmt.Errorf("unknown size %q: %w", s, domain.ErrInvalidDocument)
	}
}

// Address is the registered address.
type Address struct {
	Street     string
	Number     string
	Complement string
	District   string
	City       string
	State      string
	PostalCode string
}

// Document is one establishment as stored in the index.
// Embedding and IndexedAt are derived: the indexer sets them, producers never do.
type Document struct {
	ID                  string
	TaxID               string
	LegalName           string
	TradeName           string
	ActivityCode        string
	ActivitySection     string
	ActivityDescription string
	Description         string
	Status              Status
	Size                Size
	LegalNature         string
	Capital             float64
	FoundedAt           time.Time
	Address             Address
	Location            *geo.Point

	Embedding []float32
	IndexedAt time.Time
}

// SearchText is the embedding input: legal name, trade name, activity description,
// description, city and state, skipping empty parts, joined by " | ".
// The order is fixed so re-indexing reproduces the same embeddings.
func (d *Document) SearchText() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{
		d.LegalName,
		d.TradeName,
		d.ActivityDescription,
		d.Description,
		d.Address.City,
		d.Address.State,
	} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " | ")
}

// WithoutEmbedding returns a copy of d with the vector dropped.
func (d Document) WithoutEmbedding() Document {
	d.Embedding = nil
	return d
}

// Validate checks the invariants a document must hold before it is written.
func (d *Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("id is required: %w", domain.ErrInvalidDocument)
	}
	if d.Capital < 0 {
		return fmt.Errorf("negative capital %g: %w", d.Capital, domain.ErrInvalidDocument)
	}
	return nil
}
