package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	dailyTagLayout    = "20060102"
	intervalTagLayout = "20060102150405"
)

// intervalRotatingWriter 按固定时间间隔切分日志文件.
// 文件名: <base>.log.YYYYMMDD (间隔 >= 24h) 或 <base>.log.YYYYMMDDHHmmss
type intervalRotatingWriter struct {
	mu        sync.Mutex
	dir       string
	baseName  string
	rotateCfg *RotateConfig
	now       func() time.Time

	current  *os.File
	openedAt time.Time
}

func newIntervalRotatingWriter(dir, baseName string, rc *RotateConfig) (*intervalRotatingWriter, error) {
	if rc == nil || rc.RotateInterval <= 0 {
		return nil, fmt.Errorf("invalid rotate interval: %v", rc)
	}
	w := &intervalRotatingWriter{dir: dir, baseName: baseName, rotateCfg: rc, now: time.Now}
	if err := w.rotateIfNeededLocked(w.now()); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *intervalRotatingWriter) tagLayout() string {
	if w.rotateCfg.RotateInterval >= 24*time.Hour {
		return dailyTagLayout
	}
	return intervalTagLayout
}

func (w *intervalRotatingWriter) prefix() string { return w.baseName + ".log." }

func (w *intervalRotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.rotateIfNeededLocked(w.now()); err != nil {
		return 0, err
	}
	return w.current.Write(p)
}

func (w *intervalRotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return nil
	}
	return w.current.Sync()
}

func (w *intervalRotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return nil
	}
	err := w.current.Close()
	w.current = nil
	return err
}

func (w *intervalRotatingWriter) rotateIfNeededLocked(now time.Time) error {
	if w.current != nil {
		if now.Sub(w.openedAt) < w.rotateCfg.RotateInterval {
			return nil
		}
		_ = w.current.Sync()
		_ = w.current.Close()
		w.current = nil
	}
	path := filepath.Join(w.dir, w.prefix()+now.Format(w.tagLayout()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open rotated log file: %w", err)
	}
	w.current = f
	w.openedAt = now

	if w.rotateCfg.CleanupEnabled && w.rotateCfg.MaxAge > 0 {
		w.cleanupOldLocked(now)
	}
	return nil
}

// cleanupOldLocked 删除时间戳早于 now-MaxAge 的轮转文件, 不认识的文件名一律跳过
func (w *intervalRotatingWriter) cleanupOldLocked(now time.Time) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	cutoff := now.Add(-w.rotateCfg.MaxAge)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, w.prefix()) {
			continue
		}
		stamp := strings.TrimPrefix(name, w.prefix())
		var layout string
		switch len(stamp) {
		case len(dailyTagLayout):
			layout = dailyTagLayout
		case len(intervalTagLayout):
			layout = intervalTagLayout
		default:
			continue
		}
		parsed, err := time.ParseInLocation(layout, stamp, now.Location())
		if err != nil {
			continue
		}
		if parsed.Before(cutoff) {
			_ = os.Remove(filepath.Join(w.dir, name))
		}
	}
}
