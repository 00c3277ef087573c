package capture

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// FileDevice is a capture device backed by a local media file. It stands in
// for a real camera+microphone: once acquired it delivers the file content
// as timed chunks while a recording is active
type FileDevice struct {
	file      string
	chunkSize int
	interval  time.Duration
}

// NewFileDevice creates a file backed device from config
func NewFileDevice(cfg *viper.Viper) (*FileDevice, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no config")
	}
	res := FileDevice{}
	res.file = cfg.GetString("file")
	if res.file == "" {
		return nil, fmt.Errorf("no input file")
	}
	res.chunkSize = cfg.GetInt("chunkSize")
	if res.chunkSize <= 0 {
		res.chunkSize = 32 * 1024
	}
	res.interval = cfg.GetDuration("chunkDuration")
	if res.interval <= 0 {
		res.interval = 250 * time.Millisecond
	}
	goapp.Log.Info().Str("file", res.file).Dur("interval", res.interval).Msg("file device")
	return &res, nil
}

// Acquire opens the media file and attaches a stream
func (d *FileDevice) Acquire(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewDeviceError("device unavailable", err)
	}
	data, err := os.ReadFile(d.file)
	if err != nil {
		return nil, NewDeviceError("device unavailable", err)
	}
	if len(data) == 0 {
		return nil, NewDeviceError("no device", fmt.Errorf("empty file %s", d.file))
	}
	return &fileStream{data: data, chunkSize: d.chunkSize, interval: d.interval}, nil
}

type fileStream struct {
	data      []byte
	chunkSize int
	interval  time.Duration

	lock   sync.Mutex
	stopCh chan struct{}
	closed bool
}

func (s *fileStream) Start(onChunk func(data []byte)) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return fmt.Errorf("stream closed")
	}
	if s.stopCh != nil {
		return fmt.Errorf("already recording")
	}
	s.stopCh = make(chan struct{})
	go s.loop(s.stopCh, onChunk)
	return nil
}

func (s *fileStream) loop(stop <-chan struct{}, onChunk func(data []byte)) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	pos := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if pos >= len(s.data) {
				pos = 0 // loop the sample
			}
			end := pos + s.chunkSize
			if end > len(s.data) {
				end = len(s.data)
			}
			if goapp.Log.GetLevel() <= zerolog.DebugLevel {
				goapp.Log.Debug().Int("from", pos).Int("to", end).Msg("chunk")
			}
			onChunk(s.data[pos:end])
			pos = end
		}
	}
}

func (s *fileStream) Stop() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	return nil
}

func (s *fileStream) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	return nil
}
