package index

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bizdex/internal/domain"
)

// Policy decides what Provision does when the index already exists.
type Policy string

// Existence policies.
const (
	PolicyFail     Policy = "fail"
	PolicySkip     Policy = "skip"
	PolicyRecreate Policy = "recreate"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyFail, PolicySkip, PolicyRecreate:
		return p, nil
	default:
		return "", fmt.Errorf("unknown index policy %q: %w", s, domain.ErrInvalidRequest)
	}
}

// Outcome reports what Provision did.
type Outcome struct {
	Index          string
	Created        bool
	AlreadyExisted bool
	Recreated      bool
}

// Service provisions and inspects the search index.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// New creates an index service.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Provision creates the index. Under PolicySkip an existing index is reported
// in the outcome and is not an error. PolicyRecreate drops the index with its
// documents first; a failed drop aborts.
func (s *Service) Provision(ctx context.Context, policy Policy) (Outcome, error) {
	out := Outcome{Index: s.repo.Name()}

	if policy == PolicyRecreate {
		exists, err := s.repo.Exists(ctx)
		if err != nil {
			return out, fmt.Errorf("provision: %w", err)
		}
		if exists {
			if err := s.repo.Drop(ctx, true); err != nil && !errors.Is(err, domain.ErrIndexNotFound) {
				return out, fmt.Errorf("provision: recreate: %w", err)
			}
			out.Recreated = true
			s.logger.Warn("Index dropped for recreation", zap.String("index", out.Index))
		}
	}

	err := s.repo.Create(ctx)
	switch {
	case err == nil:
		out.Created = true
		s.logger.Info("Index created",
			zap.String("index", out.Index),
			zap.Bool("recreated", out.Recreated),
		)
		return out, nil
	case errors.Is(err, domain.ErrIndexAlreadyExists):
		out.AlreadyExisted = true
		if policy == PolicySkip {
			s.logger.Info("Index already exists, skipping", zap.String("index", out.Index))
			return out, nil
		}
		return out, fmt.Errorf("provision: %w", err)
	default:
		return out, fmt.Errorf("provision: %w", err)
	}
}

// Describe returns the index document count and indexing state.
func (s *Service) Describe(ctx context.Context) (domain.IndexStats, error) {
	stats, err := s.repo.Info(ctx)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("describe: %w", err)
	}
	return stats, nil
}
