// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/pdiddy/blog-engine/pkg/types"
)

// Job statuses.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Job is one article generation run.
type Job struct {
	ID        string         `json:"id"`
	Topic     string         `json:"topic"`
	Status    string         `json:"status"`
	Error     string         `json:"error,omitempty"`
	Log       string         `json:"log,omitempty"`
	Article   *types.Article `json:"article,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// jobStore is the in-memory job registry.
type jobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	seq  int
}

func newJobStore() *jobStore {
	return &jobStore{jobs: make(map[string]*Job)}
}

func (s *jobStore) create(topic string) Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	job := &Job{
		ID:        fmt.Sprintf("%s-%d", time.Now().UTC().Format("20060102t150405"), s.seq),
		Topic:     topic,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	s.jobs[job.ID] = job
	return *job
}

func (s *jobStore) get(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// list returns job snapshots, newest first, without logs or article
// bodies.
func (s *jobStore) list() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		snap := *job
		snap.Log = ""
		snap.Article = nil
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *jobStore) setStatus(id, status, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = status
		job.Error = errMsg
	}
}

func (s *jobStore) finish(id string, article types.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = StatusDone
		job.Article = &article
	}
}

// logWriter returns an io.Writer that appends pipeline progress to the
// job's log.
func (s *jobStore) logWriter(id string) io.Writer {
	return &jobLog{store: s, id: id}
}

type jobLog struct {
	store *jobStore
	id    string
}

func (l *jobLog) Write(p []byte) (int, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	if job, ok := l.store.jobs[l.id]; ok {
		job.Log += string(p)
	}
	return len(p), nil
}
