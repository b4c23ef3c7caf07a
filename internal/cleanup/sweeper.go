package cleanup

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// removeAttempts bounds how often a single stale file is retried before
// the sweep abandons it until the next run.
const removeAttempts = 3

// Sweeper periodically deletes downloaded catalog files older than the
// configured age. A failed removal is retried a bounded number of times
// and then abandoned with a warning; the sweep itself never fails.
type Sweeper struct {
	dir       string
	maxAge    time.Duration
	scheduler *gocron.Scheduler
	log       *zap.Logger
}

// New creates a sweeper over the download directory
func New(dir string, maxAge time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{
		dir:       dir,
		maxAge:    maxAge,
		scheduler: gocron.NewScheduler(time.UTC),
		log:       log,
	}
}

// Start schedules the hourly sweep and runs the scheduler in the
// background.
func (s *Sweeper) Start() {
	s.scheduler.Every(1).Hour().Do(s.Sweep)
	s.scheduler.StartAsync()
}

// Stop terminates the scheduled sweeps
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

// Sweep removes files in the download directory whose modification time
// is older than the retention age.
func (s *Sweeper) Sweep() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("failed to read download directory", zap.String("dir", s.dir), zap.Error(err))
		}
		return
	}

	cutoff := time.Now().Add(-s.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if s.remove(filepath.Join(s.dir, entry.Name())) {
			removed++
		}
	}
	if removed > 0 {
		s.log.Info("stale downloads removed", zap.Int("count", removed))
	}
}

func (s *Sweeper) remove(path string) bool {
	var lastErr error
	for attempt := 0; attempt < removeAttempts; attempt++ {
		lastErr = os.Remove(path)
		if lastErr == nil {
			return true
		}
	}
	s.log.Warn("failed to remove stale file, giving up",
		zap.String("path", path),
		zap.Error(lastErr),
	)
	return false
}
