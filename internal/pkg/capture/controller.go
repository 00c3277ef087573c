package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/pkg/errors"
)

// Device is the environment's camera+microphone capture primitive
type Device interface {
	Acquire(ctx context.Context) (Stream, error)
}

// Stream is a live audio+video stream supporting segmented recording.
// Chunks are delivered through the callback passed to Start
type Stream interface {
	Start(onChunk func(data []byte)) error
	Stop() error
	Close() error
}

// Uploader turns a finalized recording blob into a durable artifact reference
type Uploader interface {
	Upload(ctx context.Context, name string, blob []byte) (string, error)
}

// Params keeps data required for controller work
type Params struct {
	Device   Device
	Uploader Uploader
	// OnAnswerCleared is called when a retake discards the current answer
	OnAnswerCleared func()
}

// Controller owns the device stream and the recording lifecycle for
// exactly one answer at a time
type Controller struct {
	device          Device
	uploader        Uploader
	onAnswerCleared func()

	lock      sync.Mutex
	state     State
	acquiring bool
	closed    bool
	stream    Stream
	chunks    [][]byte
	artifact  string
	closeOnce sync.Once
}

// NewController creates a capture controller
func NewController(p Params) (*Controller, error) {
	if p.Device == nil {
		return nil, errors.New("no device")
	}
	if p.Uploader == nil {
		return nil, errors.New("no uploader")
	}
	return &Controller{device: p.Device, uploader: p.Uploader,
		onAnswerCleared: p.OnAnswerCleared, state: Idle}, nil
}

// State returns current recording session state
func (c *Controller) State() State {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.state
}

// ArtifactRef returns the uploaded answer reference, empty if none
func (c *Controller) ArtifactRef() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.artifact
}

// AcquireDevice requests the audio+video capability. On success a live
// stream is attached and the controller enters DeviceReady. On failure the
// state stays Idle and a *DeviceError is returned.
// The lock is not held over the acquisition call - state is read before
// suspending and the result applied atomically after
func (c *Controller) AcquireDevice(ctx context.Context) error {
	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		return &RecordingError{Msg: "controller closed"}
	}
	if c.stream != nil {
		c.lock.Unlock()
		return &RecordingError{Msg: "device already acquired"}
	}
	if c.acquiring {
		c.lock.Unlock()
		return &RecordingError{Msg: "acquisition in progress"}
	}
	c.acquiring = true
	c.lock.Unlock()

	stream, err := c.device.Acquire(ctx)

	c.lock.Lock()
	c.acquiring = false
	if err != nil {
		c.lock.Unlock()
		goapp.Log.Error().Err(err).Msg("can't acquire device")
		if _, ok := err.(*DeviceError); ok {
			return err
		}
		return NewDeviceError("device unavailable", err)
	}
	// the controller may have been disposed while waiting for the grant -
	// release the late stream instead of attaching it
	if c.closed {
		c.lock.Unlock()
		if err := stream.Close(); err != nil {
			goapp.Log.Error().Err(err).Msg("can't release stream")
		}
		return &RecordingError{Msg: "controller closed"}
	}
	c.stream = stream
	c.state = DeviceReady
	c.lock.Unlock()
	return nil
}

// StartRecording begins segment capture. Any previously buffered chunks are
// cleared first. Only one recording may be active - a second call is
// rejected, not queued
func (c *Controller) StartRecording() error {
	c.lock.Lock()
	if c.state == Recording {
		c.lock.Unlock()
		return &RecordingError{Msg: "already recording"}
	}
	if c.stream == nil {
		c.lock.Unlock()
		return &RecordingError{Msg: "no device"}
	}
	if c.state != DeviceReady && c.state != Ready && c.state != Failed {
		c.lock.Unlock()
		return &RecordingError{Msg: fmt.Sprintf("can't record from %s", c.state)}
	}
	c.chunks = nil
	c.artifact = ""
	c.state = Recording
	stream := c.stream
	c.lock.Unlock()

	if err := stream.Start(c.addChunk); err != nil {
		c.lock.Lock()
		c.state = DeviceReady
		c.lock.Unlock()
		return &RecordingError{Msg: err.Error()}
	}
	goapp.Log.Info().Msg("recording started")
	return nil
}

func (c *Controller) addChunk(data []byte) {
	if len(data) == 0 {
		return
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	// chunks accumulate only while recording
	if c.state != Recording {
		return
	}
	c.chunks = append(c.chunks, data)
}

// StopRecording finalizes the chunk sequence into one blob and hands it to
// the upload coordinator. Returns the artifact reference on success. It is
// a no-op when no recording is active
func (c *Controller) StopRecording(ctx context.Context) (string, error) {
	c.lock.Lock()
	if c.state != Recording {
		ref := c.artifact
		c.lock.Unlock()
		return ref, nil
	}
	stream := c.stream
	c.lock.Unlock()

	if err := stream.Stop(); err != nil {
		c.lock.Lock()
		c.state = Failed
		c.lock.Unlock()
		return "", fmt.Errorf("can't stop recording: %w", err)
	}

	c.lock.Lock()
	c.state = Stopped
	blob := joinChunks(c.chunks)
	name := fmt.Sprintf("interview_answer_%d.webm", time.Now().UnixMilli())
	c.state = Uploading
	c.lock.Unlock()
	goapp.Log.Info().Int("size", len(blob)).Msg("recording stopped, uploading")

	ref, err := c.uploader.Upload(ctx, name, blob)

	c.lock.Lock()
	defer c.lock.Unlock()
	if err != nil {
		// chunks retained for retake/retry
		c.state = Failed
		return "", fmt.Errorf("can't upload: %w", err)
	}
	c.artifact = ref
	c.state = Ready
	return ref, nil
}

// Retake discards the buffered chunks and the artifact reference and
// returns to DeviceReady. The stream is reused, not reacquired
func (c *Controller) Retake() error {
	c.lock.Lock()
	if c.state != Ready && c.state != Failed {
		c.lock.Unlock()
		return &RecordingError{Msg: fmt.Sprintf("can't retake from %s", c.state)}
	}
	if c.stream == nil {
		c.lock.Unlock()
		return &RecordingError{Msg: "no device"}
	}
	c.chunks = nil
	c.artifact = ""
	c.state = DeviceReady
	cb := c.onAnswerCleared
	c.lock.Unlock()

	if cb != nil {
		cb()
	}
	return nil
}

// Reset prepares the controller for the next question after a successful
// submission - buffered data is dropped, the stream stays attached
func (c *Controller) Reset() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.chunks = nil
	c.artifact = ""
	if c.stream != nil {
		c.state = DeviceReady
	} else {
		c.state = Idle
	}
}

// Close releases the device stream. Safe to call from any state and on any
// exit path, the stream is torn down exactly once
func (c *Controller) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.lock.Lock()
		c.closed = true
		stream := c.stream
		c.stream = nil
		c.chunks = nil
		c.artifact = ""
		c.state = Idle
		c.lock.Unlock()
		if stream != nil {
			err = stream.Close()
		}
	})
	return err
}

func joinChunks(chunks [][]byte) []byte {
	l := 0
	for _, ch := range chunks {
		l += len(ch)
	}
	res := make([]byte, 0, l)
	for _, ch := range chunks {
		res = append(res, ch...)
	}
	return res
}
