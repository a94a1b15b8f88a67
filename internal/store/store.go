// Package store persists finished decision runs. It is strictly a caller
// concern: the decision engine never touches it.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/basketwise/basket-cli/internal/model"
)

// ErrRunNotFound is returned by GetRun when no run exists for the id.
var ErrRunNotFound = eris.New("store: run not found")

// RunSummary is the listing view of a stored run.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	Items       int       `json:"items"`
	Unfulfilled int       `json:"unfulfilled"`
	Recommended float64   `json:"recommended"`
	CreatedAt   time.Time `json:"created_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// StoredRun couples a run id with its serialized result document.
type StoredRun struct {
	RunID       string
	Result      []byte // JSON-encoded model.PlanResult
	Items       int
	Unfulfilled int
	Recommended float64
}

// Store defines the persistence interface for decision runs.
type Store interface {
	SaveRun(ctx context.Context, run StoredRun) error
	GetRun(ctx context.Context, runID string) ([]byte, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]RunSummary, error)

	Migrate(ctx context.Context) error
	Close() error
}

// NewStoredRun serializes a finished plan result for persistence.
func NewStoredRun(result *model.PlanResult) (StoredRun, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return StoredRun{}, eris.Wrap(err, "store: marshal run")
	}
	return StoredRun{
		RunID:       result.RunID,
		Result:      data,
		Items:       len(result.Items),
		Unfulfilled: len(result.Plan.Unfulfillable),
		Recommended: result.Totals.Recommended,
	}, nil
}
