package mocks

import (
	"context"
	"io"

	"github.com/airenas/viva/internal/pkg/api"
	"github.com/stretchr/testify/mock"
)

// Filer is artifact storage mock
type Filer struct{ mock.Mock }

func (m *Filer) SaveFile(ctx context.Context, name string, r io.Reader, fileSize int64) (string, error) {
	args := m.Called(ctx, name, r, fileSize)
	return args.String(0), args.Error(1)
}

// FileSaver is gateway storage mock
type FileSaver struct{ mock.Mock }

func (m *FileSaver) SaveFile(ctx context.Context, name string, r io.Reader, fileSize int64) error {
	args := m.Called(ctx, name, r, fileSize)
	return args.Error(0)
}

// FileLoader is artifact reader mock
type FileLoader struct{ mock.Mock }

func (m *FileLoader) LoadFile(ctx context.Context, name string) (io.ReadSeekCloser, error) {
	args := m.Called(ctx, name)
	return to[io.ReadSeekCloser](args.Get(0)), args.Error(1)
}

// Scoring is scoring service client mock
type Scoring struct{ mock.Mock }

func (m *Scoring) CheckLive(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Scoring) StartInterview(ctx context.Context, role api.Role) (*api.InterviewStart, error) {
	args := m.Called(ctx, role)
	return to[*api.InterviewStart](args.Get(0)), args.Error(1)
}

func (m *Scoring) SubmitAnswer(ctx context.Context, ID string, index int, videoPath string) error {
	args := m.Called(ctx, ID, index, videoPath)
	return args.Error(0)
}

func (m *Scoring) GenerateSummary(ctx context.Context, ID string) error {
	args := m.Called(ctx, ID)
	return args.Error(0)
}

// Fetcher is report fetcher mock
type Fetcher struct{ mock.Mock }

func (m *Fetcher) GetReport(ctx context.Context, ID string) (*api.Report, error) {
	args := m.Called(ctx, ID)
	return to[*api.Report](args.Get(0)), args.Error(1)
}

func to[T interface{}](val interface{}) T {
	if val == nil {
		var res T
		return res
	}
	return val.(T)
}
