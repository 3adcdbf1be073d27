// Package batch encodes presented frames to WebP on a worker pool.
package batch

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"bodytrack/internal/logging"
)

// Config controls a Writer.
type Config struct {
	OutputDir string
	Workers   int
	// Progress, when set, receives a line every ProgressEvery.
	Progress      io.Writer
	ProgressEvery time.Duration
}

// Result holds the outcome of writing one frame.
type Result struct {
	Index   int
	Image   string // path relative to OutputDir
	Success bool
	Error   string
}

// ErrClosed is returned by Present after Close.
var ErrClosed = errors.New("batch: writer closed")

type job struct {
	index int
	img   *image.RGBA
}

// Writer is a frame presenter that writes each frame to
// OutputDir/frames/NNNNN.webp.
type Writer struct {
	cfg       Config
	jobs      chan job
	wg        sync.WaitGroup
	mu        sync.Mutex
	results   []Result
	submitted atomic.Int64
	processed atomic.Int64
	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
	start     time.Time
	create    func(path string) (io.WriteCloser, error)
}

// NewWriter creates the output directory and starts the workers.
func NewWriter(cfg Config) (*Writer, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 2 * time.Second
	}
	if err := os.MkdirAll(filepath.Join(cfg.OutputDir, "frames"), 0o755); err != nil {
		return nil, fmt.Errorf("batch: create output dir: %w", err)
	}
	w := &Writer{
		cfg:    cfg,
		jobs:   make(chan job, cfg.Workers*2),
		done:   make(chan struct{}),
		start:  time.Now(),
		create: createFile,
	}
	for i := 0; i < cfg.Workers; i++ {
		w.wg.Add(1)
		go w.work()
	}
	if cfg.Progress != nil {
		go w.report()
	}
	return w, nil
}

// Present queues a copy of img for encoding. It blocks while every worker
// is busy and the queue is full.
func (w *Writer) Present(index int, img *image.RGBA) error {
	if w.closed.Load() {
		return ErrClosed
	}
	cp := &image.RGBA{Pix: slices.Clone(img.Pix), Stride: img.Stride, Rect: img.Rect}
	w.submitted.Add(1)
	w.jobs <- job{index: index, img: cp}
	return nil
}

// Close waits for queued frames and returns the results in frame order.
// Present must not be called concurrently with Close.
func (w *Writer) Close() []Result {
	w.closeOnce.Do(func() {
		w.closed.Store(true)
		close(w.jobs)
		w.wg.Wait()
		close(w.done)
	})
	w.mu.Lock()
	defer w.mu.Unlock()
	out := slices.Clone(w.results)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func (w *Writer) work() {
	defer w.wg.Done()
	for j := range w.jobs {
		r := w.writeFrame(j)
		if !r.Success {
			logging.Logger().Warn("frame not written", "frame", j.index, "err", r.Error)
		}
		w.mu.Lock()
		w.results = append(w.results, r)
		w.mu.Unlock()
		w.processed.Add(1)
	}
}

func (w *Writer) report() {
	ticker := time.NewTicker(w.cfg.ProgressEvery)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			p := w.processed.Load()
			if p > 0 {
				rate := float64(p) / time.Since(w.start).Seconds()
				fmt.Fprintf(w.cfg.Progress, "  [%d/%d] %.1f frames/sec\n", p, w.submitted.Load(), rate)
			}
		}
	}
}

func createFile(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// FramePath returns the relative path of frame index.
func FramePath(index int) string {
	return filepath.Join("frames", fmt.Sprintf("%05d.webp", index))
}

func (w *Writer) writeFrame(j job) Result {
	rel := FramePath(j.index)
	res := Result{Index: j.index, Image: filepath.ToSlash(rel)}

	f, err := w.create(filepath.Join(w.cfg.OutputDir, rel))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if err := nativewebp.Encode(f, j.img, nil); err != nil {
		f.Close()
		res.Error = fmt.Sprintf("WebP encode: %v", err)
		return res
	}
	if err := f.Close(); err != nil {
		res.Error = fmt.Sprintf("close: %v", err)
		return res
	}
	res.Success = true
	return res
}
