package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"autohome-scraper/models"
)

const progressTimeLayout = "2006-01-02 15:04:05.000000"

// ProgressLog appends one line per finished vehicle so an interrupted run
// can be resumed by hand.
type ProgressLog struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewProgressLog returns a log appending to path. The file is created on the
// first Record.
func NewProgressLog(path string, now func() time.Time) *ProgressLog {
	if now == nil {
		now = time.Now
	}
	return &ProgressLog{path: path, now: now}
}

// Path is the file being appended to.
func (p *ProgressLog) Path() string { return p.path }

// Record appends the outcome of one vehicle.
func (p *ProgressLog) Record(res models.VehicleResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("progress: create dir: %w", err)
	}
	f, err := os.OpenFile(p.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("progress: open %q: %w", p.path, err)
	}
	if _, err := f.WriteString(ProgressLine(p.now(), res)); err != nil {
		_ = f.Close()
		return fmt.Errorf("progress: write: %w", err)
	}
	return f.Close()
}

// ProgressLine renders one progress entry, newline included.
func ProgressLine(at time.Time, res models.VehicleResult) string {
	var detail string
	switch res.Outcome {
	case models.OutcomeSuccess:
		detail = fmt.Sprintf("获取%d条评论", len(res.Reviews))
	case models.OutcomeNoData:
		detail = "无数据"
	default:
		detail = fmt.Sprint(res.Err)
	}
	tag := VehicleTag(res.Car.Rank, res.Car.Name, res.Car.SeriesID)
	return fmt.Sprintf("%s: %s %s - %s\n", at.Format(progressTimeLayout), res.Outcome.Label(), tag, detail)
}
