package analysis

import (
	"context"
	"sync"

	"github.com/NATEHSIAO/pdf-invoice/core/domain"
	"github.com/NATEHSIAO/pdf-invoice/core/port/out"
)

// MemoryProgressStore is the default in-process progress store. Safe for
// concurrent jobs; each job ID has its own entry.
type MemoryProgressStore struct {
	mu   sync.RWMutex
	jobs map[string]domain.AnalysisProgress
}

// NewMemoryProgressStore creates an empty store.
func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{
		jobs: make(map[string]domain.AnalysisProgress),
	}
}

func (s *MemoryProgressStore) Set(_ context.Context, jobID string, progress domain.AnalysisProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[jobID] = progress
	return nil
}

func (s *MemoryProgressStore) Get(_ context.Context, jobID string) (domain.AnalysisProgress, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	progress, ok := s.jobs[jobID]
	return progress, ok, nil
}

func (s *MemoryProgressStore) Delete(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
	return nil
}

var _ out.ProgressStore = (*MemoryProgressStore)(nil)
