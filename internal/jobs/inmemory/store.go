package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dvloznov/moneyflow/internal/jobs"
)

// Store keeps ingestion jobs in memory, indexed by owner so a user's job
// list does not scan everyone's statements. Data is lost on restart.
type Store struct {
	mu     sync.RWMutex
	jobs   map[string]*jobs.IngestStatementJob
	byUser map[string][]string
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		jobs:   make(map[string]*jobs.IngestStatementJob),
		byUser: make(map[string][]string),
		now:    time.Now,
	}
}

// SaveJob stores a copy of job. A job keeps its owner once saved.
func (s *Store) SaveJob(ctx context.Context, job *jobs.IngestStatementJob) error {
	if job.JobID == "" {
		return fmt.Errorf("SaveJob: job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.jobs[job.JobID]
	if exists && prev.UserID != job.UserID {
		return fmt.Errorf("SaveJob: job %s belongs to another user", job.JobID)
	}
	if !exists {
		s.byUser[job.UserID] = append(s.byUser[job.UserID], job.JobID)
	}
	s.jobs[job.JobID] = snapshot(job)
	return nil
}

func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.IngestStatementJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("GetJob %s: %w", jobID, jobs.ErrJobNotFound)
	}
	return snapshot(job), nil
}

// ListJobs returns matching jobs newest first, then applies Offset and Limit.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.IngestStatementJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*jobs.IngestStatementJob{}
	s.each(filter.UserID, func(job *jobs.IngestStatementJob) {
		if matches(job, filter) {
			result = append(result, snapshot(job))
		}
	})

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].JobID < result[j].JobID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*jobs.IngestStatementJob{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (s *Store) each(userID string, fn func(*jobs.IngestStatementJob)) {
	if userID == "" {
		for _, job := range s.jobs {
			fn(job)
		}
		return
	}
	for _, id := range s.byUser[userID] {
		fn(s.jobs[id])
	}
}

func matches(job *jobs.IngestStatementJob, filter jobs.JobFilter) bool {
	switch {
	case filter.Status != "" && job.Status != filter.Status:
		return false
	case filter.SourceURI != "" && job.SourceURI != filter.SourceURI:
		return false
	case filter.ActiveOnly && !job.Status.Active():
		return false
	}
	return true
}

func (s *Store) UpdateJobStatus(ctx context.Context, jobID string, status jobs.JobStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return fmt.Errorf("UpdateJobStatus %s: %w", jobID, jobs.ErrJobNotFound)
	}

	now := s.now()
	switch status {
	case jobs.JobStatusRunning:
		job.StartedAt = &now
		job.CompletedAt = nil
	case jobs.JobStatusCompleted, jobs.JobStatusFailed:
		job.CompletedAt = &now
	}
	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	} else if status == jobs.JobStatusCompleted {
		job.Error = ""
	}
	return nil
}

// snapshot copies job so callers never share memory with the store.
func snapshot(job *jobs.IngestStatementJob) *jobs.IngestStatementJob {
	c := *job
	c.Categories = append([]string(nil), job.Categories...)
	if job.StartedAt != nil {
		t := *job.StartedAt
		c.StartedAt = &t
	}
	if job.CompletedAt != nil {
		t := *job.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

var _ jobs.JobStore = (*Store)(nil)
