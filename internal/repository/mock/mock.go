package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/prepwise/interview-api/internal/domain"
	"github.com/prepwise/interview-api/internal/repository"
)

// ---- InterviewRepository mock ----

var _ repository.InterviewRepository = (*InterviewRepository)(nil)

// InterviewRepository is an in-memory test double for repository.InterviewRepository.
type InterviewRepository struct {
	mu   sync.Mutex
	docs map[string]*domain.Interview
	seq  int

	CreateFn func(ctx context.Context, interview *domain.Interview) (string, error)

	// Recorded calls for assertions.
	Created []*domain.Interview
}

// NewInterviewRepository creates an empty mock repository.
func NewInterviewRepository() *InterviewRepository {
	return &InterviewRepository{docs: make(map[string]*domain.Interview)}
}

func (m *InterviewRepository) Create(ctx context.Context, interview *domain.Interview) (string, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, interview)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs == nil {
		m.docs = make(map[string]*domain.Interview)
	}
	m.seq++
	id := fmt.Sprintf("doc-%d", m.seq)
	stored := *interview
	stored.ID = id
	m.docs[id] = &stored
	m.Created = append(m.Created, &stored)
	return id, nil
}

func (m *InterviewRepository) GetByID(ctx context.Context, id string) (*domain.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrInterviewNotFound
	}
	out := *doc
	return &out, nil
}

func (m *InterviewRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Interview, error) {
	return m.list(limit, func(doc *domain.Interview) bool { return doc.UserID == userID }), nil
}

func (m *InterviewRepository) ListLatest(ctx context.Context, excludeUserID string, limit int) ([]*domain.Interview, error) {
	return m.list(limit, func(doc *domain.Interview) bool {
		return doc.Finalized && (excludeUserID == "" || doc.UserID != excludeUserID)
	}), nil
}

func (m *InterviewRepository) list(limit int, keep func(*domain.Interview) bool) []*domain.Interview {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Interview, 0)
	for _, doc := range m.docs {
		if keep(doc) {
			d := *doc
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Count returns the number of stored documents.
func (m *InterviewRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// ---- HealthChecker mock ----

var _ repository.HealthChecker = (*HealthChecker)(nil)

// HealthChecker is a test double for repository.HealthChecker.
type HealthChecker struct {
	mu sync.Mutex

	CheckFn func(ctx context.Context) error

	Calls int
}

func (m *HealthChecker) Check(ctx context.Context) error {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.CheckFn != nil {
		return m.CheckFn(ctx)
	}
	return nil
}

// ---- TextGenerator mock ----

var _ repository.TextGenerator = (*TextGenerator)(nil)

// TextGenerator is a test double for repository.TextGenerator.
type TextGenerator struct {
	mu sync.Mutex

	GenerateFn func(ctx context.Context, prompt string) (string, error)

	Prompts []string
}

func (m *TextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, prompt)
	}
	return `["Tell me about yourself.", "How do you design a REST API?"]`, nil
}

// Calls returns the number of Generate invocations.
func (m *TextGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

// ---- JobStore mock ----

var _ repository.JobStore = (*JobStore)(nil)

// JobStore is an in-memory test double for repository.JobStore.
// SetFn and DeleteFn run before the real operation; a non-nil error fails
// the call and leaves the stored entry untouched.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]domain.Job

	SetFn    func(ctx context.Context, job *domain.Job) error
	DeleteFn func(ctx context.Context, id string) error

	// Recorded calls for assertions.
	Sets    int
	Deletes int
}

// NewJobStore creates an empty mock job store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]domain.Job)}
}

func (m *JobStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return &job, nil
}

func (m *JobStore) Set(ctx context.Context, job *domain.Job) error {
	m.mu.Lock()
	m.Sets++
	m.mu.Unlock()
	if m.SetFn != nil {
		if err := m.SetFn(ctx, job); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.jobs == nil {
		m.jobs = make(map[string]domain.Job)
	}
	m.jobs[job.ID] = *job
	return nil
}

func (m *JobStore) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	m.Deletes++
	m.mu.Unlock()
	if m.DeleteFn != nil {
		if err := m.DeleteFn(ctx, id); err != nil {
			return false, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[id]
	delete(m.jobs, id)
	return ok, nil
}

// Len returns the number of stored entries.
func (m *JobStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}
