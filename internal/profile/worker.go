package profile

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lukinoo0/Blazefield/internal/config"
)

// Op selects what a Job does
type Op uint8

const (
	OpResolve Op = iota // GetOrCreate
	OpReset
	OpCredit
)

func (o Op) String() string {
	switch o {
	case OpResolve:
		return "resolve"
	case OpReset:
		return "reset"
	case OpCredit:
		return "credit"
	}
	return "unknown"
}

// Job is one queued profile operation. Done runs on the worker goroutine with
// the resulting profile, or nil when there is none.
type Job struct {
	Op        Op
	ProfileID string
	Nickname  string
	Class     string
	Kills     int
	Deaths    int
	Done      func(*Profile)
}

// Worker drains profile jobs on a single goroutine so callers never block on
// store I/O
type Worker struct {
	service *Service
	jobs    chan Job
	timeout time.Duration
	logger  zerolog.Logger
}

func NewWorker(service *Service, size int, logger zerolog.Logger) *Worker {
	if size <= 0 {
		size = config.ProfileQueueSize
	}
	return &Worker{
		service: service,
		jobs:    make(chan Job, size),
		timeout: config.ProfileIOTimeout,
		logger:  logger,
	}
}

// Submit enqueues a job without blocking; a full queue drops it
func (w *Worker) Submit(job Job) bool {
	select {
	case w.jobs <- job:
		return true
	default:
		w.logger.Warn().Stringer("op", job.Op).Str("profile", job.ProfileID).Msg("Profile queue full, dropping job")
		return false
	}
}

// Run processes jobs until ctx is cancelled
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case job := <-w.jobs:
			w.Do(ctx, job)
		}
	}
}

// Do processes one job synchronously
func (w *Worker) Do(ctx context.Context, job Job) {
	jobCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	var (
		p   *Profile
		err error
	)
	switch job.Op {
	case OpResolve:
		p = w.service.GetOrCreate(jobCtx, job.ProfileID, job.Nickname, job.Class)
	case OpReset:
		p, err = w.service.Reset(jobCtx, job.ProfileID)
	case OpCredit:
		p, err = w.service.Credit(jobCtx, job.ProfileID, job.Kills, job.Deaths)
	}
	if err != nil {
		w.logger.Debug().Err(err).Stringer("op", job.Op).Str("profile", job.ProfileID).Msg("Profile job had no result")
	}

	if job.Done != nil {
		job.Done(p)
	}
}
