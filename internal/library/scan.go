// SPDX-License-Identifier: EPL-2.0

package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ik5/sampledeck/formats/wav"
)

var ErrJobNotFound = errors.New("scan job not found")

// Scan stages, in order.
const (
	StageIdle     = "idle"
	StageScanning = "scanning"
	StageDone     = "done"
)

// Status is a snapshot of a scan job for polling.
type Status struct {
	Stage     string
	Processed int
	Total     int
	Done      bool
	Err       error
}

// FileInfo is the metadata recorded for one sample. Duration is zero when
// the file could not be read as WAV.
type FileInfo struct {
	Path     string
	Name     string
	Size     int64
	ModTime  time.Time
	Duration time.Duration
}

type job struct {
	mu     sync.Mutex
	status Status
	files  []FileInfo
	cancel context.CancelFunc
}

func (j *job) update(f func(*Status)) {
	j.mu.Lock()
	defer j.mu.Unlock()
	f(&j.status)
}

// Scanner runs scan jobs in the background. Each job counts the samples
// under a root, then records FileInfo for every one of them.
type Scanner struct {
	opts   ListOptions
	logger *log.Logger

	mu   sync.Mutex
	jobs map[string]*job
	wg   sync.WaitGroup
}

func NewScanner(opts ListOptions, logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.Default()
	}
	return &Scanner{opts: opts, logger: logger, jobs: make(map[string]*job)}
}

// Start begins scanning root and returns the job id.
func (s *Scanner) Start(ctx context.Context, root string) string {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(ctx)

	j := &job{status: Status{Stage: StageIdle}, cancel: cancel}

	s.mu.Lock()
	s.jobs[id] = j
	s.mu.Unlock()

	s.wg.Go(func() {
		defer cancel()

		err := s.run(ctx, root, j)
		j.update(func(st *Status) {
			st.Stage, st.Done, st.Err = StageDone, true, err
		})

		if err != nil {
			s.logger.Warn("library: scan failed", "job", id, "root", root, "err", err)
			return
		}
		s.logger.Info("library: scan done", "job", id, "root", root, "files", j.snapshot().Processed)
	})

	return id
}

func (s *Scanner) run(ctx context.Context, root string, j *job) error {
	j.update(func(st *Status) { st.Stage = StageScanning })

	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("library root: %w", err)
	}
	if fi, err := os.Stat(abs); err != nil {
		return fmt.Errorf("library root: %w", err)
	} else if !fi.IsDir() {
		return fmt.Errorf("library root %s: not a directory", abs)
	}

	total, err := Count(abs, s.opts)
	if err != nil {
		return err
	}
	j.update(func(st *Status) { st.Total = total })

	err = walk(abs, s.opts, func(path string) bool {
		if ctx.Err() != nil {
			return false
		}

		info, err := Stat(path)
		if err != nil {
			s.logger.Debug("library: skip", "path", path, "err", err)
		} else {
			j.mu.Lock()
			j.files = append(j.files, info)
			j.mu.Unlock()
		}

		j.update(func(st *Status) { st.Processed++ })
		return true
	})
	if err != nil {
		return err
	}
	return ctx.Err()
}

// Stat collects FileInfo for path. A file that is not valid WAV still gets
// its size and modification time.
func Stat(path string) (FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w", err)
	}

	info := FileInfo{
		Path:    path,
		Name:    filepath.Base(path),
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}
	if d, err := wav.Info(path); err == nil {
		info.Duration = d.Duration
	}
	return info, nil
}

func (j *job) snapshot() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

func (s *Scanner) job(id string) (*job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return j, nil
}

// Status reports the progress of job id.
func (s *Scanner) Status(id string) (Status, error) {
	j, err := s.job(id)
	if err != nil {
		return Status{}, err
	}
	return j.snapshot(), nil
}

// Files returns the metadata collected so far by job id.
func (s *Scanner) Files(id string) ([]FileInfo, error) {
	j, err := s.job(id)
	if err != nil {
		return nil, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]FileInfo(nil), j.files...), nil
}

// Cancel stops job id. Its status turns Done once the walk has stopped.
func (s *Scanner) Cancel(id string) error {
	j, err := s.job(id)
	if err != nil {
		return err
	}
	j.cancel()
	return nil
}

// Wait blocks until every started job has finished.
func (s *Scanner) Wait() {
	s.wg.Wait()
}
