package memory

import (
	"context"
	"sync"
	"time"

	"github.com/prepwise/interview-api/internal/domain"
	"github.com/prepwise/interview-api/internal/repository"
)

// Ensure JobStore implements repository.JobStore.
var _ repository.JobStore = (*JobStore)(nil)

type entry struct {
	job       domain.Job
	expiresAt time.Time
}

// JobStore is a process-local job store. A restart loses every entry.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]entry
	ttl  time.Duration
	now  func() time.Time
}

// NewJobStore creates an in-memory job store. Entries older than ttl are
// dropped on access; ttl <= 0 keeps them until deleted.
func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (s *JobStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	if s.expired(e) {
		delete(s.jobs, id)
		return nil, domain.ErrJobNotFound
	}
	job := e.job
	return &job, nil
}

func (s *JobStore) Set(ctx context.Context, job *domain.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{job: *job}
	if prev, ok := s.jobs[job.ID]; ok {
		e.expiresAt = prev.expiresAt
	} else if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.jobs[job.ID] = e
	return nil
}

func (s *JobStore) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return false, nil
	}
	delete(s.jobs, id)
	return true, nil
}

// Len returns the number of live entries.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.jobs {
		if s.expired(e) {
			delete(s.jobs, id)
			continue
		}
		n++
	}
	return n
}

func (s *JobStore) expired(e entry) bool {
	return !e.expiresAt.IsZero() && s.now().After(e.expiresAt)
}
