package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/google/uuid"
)

// ErrNoRecording indicates an upload attempt with no buffered video
var ErrNoRecording = errors.New("no video recorded")

// ErrUploadRunning indicates a second upload call while one is outstanding
var ErrUploadRunning = errors.New("upload already running")

// Filer stores a finalized recording and returns its durable reference
type Filer interface {
	SaveFile(ctx context.Context, name string, r io.Reader, fileSize int64) (string, error)
}

// Params keeps data required for coordinator work
type Params struct {
	Filer Filer
	// OnProgress receives a non-decreasing percentage 0..100.
	// 100 is delivered exactly once, after the artifact reference exists
	OnProgress func(percent int)
}

// Coordinator turns finished recording chunks into a durable artifact
// reference. Single-flight per recording session
type Coordinator struct {
	filer     Filer
	progressF func(int)

	lock    sync.Mutex
	running bool
	last    int
}

// NewCoordinator creates an upload coordinator
func NewCoordinator(p Params) (*Coordinator, error) {
	if p.Filer == nil {
		return nil, fmt.Errorf("no filer")
	}
	return &Coordinator{filer: p.Filer, progressF: p.OnProgress}, nil
}

// Upload stores the blob and returns the artifact reference. An empty blob
// fails with ErrNoRecording. A second call while one is outstanding is
// rejected with ErrUploadRunning
func (c *Coordinator) Upload(ctx context.Context, name string, blob []byte) (string, error) {
	if len(blob) == 0 {
		return "", ErrNoRecording
	}
	c.lock.Lock()
	if c.running {
		c.lock.Unlock()
		return "", ErrUploadRunning
	}
	c.running = true
	c.last = -1
	c.lock.Unlock()
	defer func() {
		c.lock.Lock()
		c.running = false
		c.lock.Unlock()
	}()

	if name == "" {
		name = uuid.New().String() + ".webm"
	}
	goapp.Log.Info().Str("name", name).Int("size", len(blob)).Msg("upload")
	c.emit(0)
	pr := &progressReader{r: bytes.NewReader(blob), total: len(blob), emit: c.emit}
	ref, err := c.filer.SaveFile(ctx, name, pr, int64(len(blob)))
	if err != nil {
		return "", fmt.Errorf("can't save '%s': %w", name, err)
	}
	if ref == "" {
		return "", fmt.Errorf("no reference from storage")
	}
	c.emit(100)
	goapp.Log.Info().Str("ref", ref).Msg("uploaded")
	return ref, nil
}

// emit delivers progress, non-decreasing, 100 at most once
func (c *Coordinator) emit(percent int) {
	if c.progressF == nil {
		return
	}
	c.lock.Lock()
	if percent <= c.last {
		c.lock.Unlock()
		return
	}
	c.last = percent
	c.lock.Unlock()
	c.progressF(percent)
}

// progressReader reports read progress capped at 99 - the final 100 belongs
// to the successful completion, not to the byte count
type progressReader struct {
	r     io.Reader
	total int
	done  int
	emit  func(int)
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	pr.done += n
	if pr.total > 0 {
		percent := pr.done * 100 / pr.total
		if percent > 99 {
			percent = 99
		}
		pr.emit(percent)
	}
	return n, err
}
