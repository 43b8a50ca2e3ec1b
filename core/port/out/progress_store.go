package out

import (
	"context"

	"github.com/NATEHSIAO/pdf-invoice/core/domain"
)

// ProgressStore tracks per-job analysis progress. Each job writes under its
// own ID; there is no process-wide current job.
type ProgressStore interface {
	Set(ctx context.Context, jobID string, progress domain.AnalysisProgress) error
	Get(ctx context.Context, jobID string) (domain.AnalysisProgress, bool, error)
	Delete(ctx context.Context, jobID string) error
}
