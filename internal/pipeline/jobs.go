package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// JobStatus represents the state of a delivery job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusDelivering JobStatus = "delivering"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
)

// Job tracks the state of a single document delivery: parse the uploaded
// file, render it into pages, and post each page to a Matrix room.
type Job struct {
	mu sync.Mutex

	ID       string    `json:"job_id"`
	RoomID   string    `json:"room_id"`
	Filename string    `json:"filename"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	pageSize int
	errors   []string
}

// Progress tracks delivery progress.
type Progress struct {
	PagesSent int      `json:"pages_sent"`
	EventIDs  []string `json:"event_ids,omitempty"`
	Errors    []string `json:"errors"`
}

// NewJob builds a queued delivery job with a fresh ID.
func NewJob(roomID, filename string, fileData []byte, pageSize int) *Job {
	now := time.Now()
	return &Job{
		ID:        newJobID(),
		RoomID:    roomID,
		Filename:  filename,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  fileData,
		pageSize:  pageSize,
	}
}

// newJobID returns a random 16-hex-character job identifier.
func newJobID() string {
	var buf [8]byte
	rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// AddEventID records one successfully sent page.
func (j *Job) AddEventID(eventID string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.EventIDs = append(j.Progress.EventIDs, eventID)
	j.Progress.PagesSent++
	j.UpdatedAt = time.Now()
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// PageSize returns the page size limit for this job.
func (j *Job) PageSize() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.pageSize
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	RoomID   string    `json:"room_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	eventIDs := make([]string, len(j.Progress.EventIDs))
	copy(eventIDs, j.Progress.EventIDs)
	return JobSnapshot{
		ID:       j.ID,
		RoomID:   j.RoomID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Progress: Progress{
			PagesSent: j.Progress.PagesSent,
			EventIDs:  eventIDs,
			Errors:    errs,
		},
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
