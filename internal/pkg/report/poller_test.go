package report

import (
	"fmt"
	"testing"
	"time"

	"github.com/airenas/viva/internal/pkg/api"
	"github.com/airenas/viva/internal/pkg/scoring"
	"github.com/airenas/viva/internal/pkg/test"
	"github.com/airenas/viva/internal/pkg/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	fetcherMock *mocks.Fetcher
	tickCh      chan time.Time
)

func initTest(t *testing.T) *Poller {
	t.Helper()
	fetcherMock = &mocks.Fetcher{}
	tickCh = make(chan time.Time, 10)
	p, err := NewPoller(Params{Fetcher: fetcherMock, Interval: time.Second})
	require.Nil(t, err)
	p.after = func(d time.Duration) <-chan time.Time { return tickCh }
	return p
}

func testReport(final bool) *api.Report {
	return &api.Report{InterviewID: "id1", RoleTitle: "Software Engineer",
		TotalQuestions: 3, CompletedQuestions: 3, ProcessingComplete: final}
}

func TestNewPoller_Fail(t *testing.T) {
	_, err := NewPoller(Params{})
	assert.NotNil(t, err)
}

func TestFetchOnce(t *testing.T) {
	p := initTest(t)
	fetcherMock.On("GetReport", mock.Anything, "id1").Return(testReport(true), nil)

	res, err := p.FetchOnce(test.Ctx(t), "id1")

	assert.Nil(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "id1", res.InterviewID)
	assert.True(t, res.Final())
	assert.Equal(t, res, p.Report())
}

func TestFetchOnce_NoID(t *testing.T) {
	p := initTest(t)

	_, err := p.FetchOnce(test.Ctx(t), "")

	assert.NotNil(t, err)
	assert.Equal(t, 0, len(fetcherMock.Calls))
}

func TestFetchOnce_Fail(t *testing.T) {
	p := initTest(t)
	fetcherMock.On("GetReport", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("err"))

	_, err := p.FetchOnce(test.Ctx(t), "id1")

	assert.NotNil(t, err)
	assert.Nil(t, p.Report(), "no partial apply on failure")
}

func TestPoll_StopsOnFinal(t *testing.T) {
	p := initTest(t)
	fetcherMock.On("GetReport", mock.Anything, "id1").Return(testReport(false), nil).Twice()
	fetcherMock.On("GetReport", mock.Anything, "id1").Return(testReport(true), nil)

	resCh, stopF, err := p.Start(test.Ctx(t), "id1")
	require.Nil(t, err)
	defer stopF()

	for i := 0; i < 2; i++ {
		res := waitReport(t, resCh)
		assert.False(t, res.Final())
		tickCh <- time.Now()
	}
	res := waitReport(t, resCh)
	assert.True(t, res.Final())

	_, opened := <-resCh
	assert.False(t, opened)
	assert.Equal(t, 3, len(fetcherMock.Calls))
}

func TestPoll_KeepsGoingOnTransientError(t *testing.T) {
	p := initTest(t)
	fetcherMock.On("GetReport", mock.Anything, "id1").Return(nil, fmt.Errorf("err")).Once()
	fetcherMock.On("GetReport", mock.Anything, "id1").Return(testReport(true), nil)

	resCh, stopF, err := p.Start(test.Ctx(t), "id1")
	require.Nil(t, err)
	defer stopF()

	tickCh <- time.Now()
	res := waitReport(t, resCh)
	assert.True(t, res.Final())
}

func TestPoll_StopsOnNotFound(t *testing.T) {
	p := initTest(t)
	fetcherMock.On("GetReport", mock.Anything, "bad-id").Return(nil,
		fmt.Errorf("can't get report: %w", scoring.ErrNotFound))

	resCh, stopF, err := p.Start(test.Ctx(t), "bad-id")
	require.Nil(t, err)
	defer stopF()

	_, opened := waitClosed(t, resCh)
	assert.False(t, opened)
	tickCh <- time.Now()
	time.Sleep(time.Millisecond * 20)
	assert.Equal(t, 1, len(fetcherMock.Calls))
}

func TestPoll_StopsAfterRepeatedErrors(t *testing.T) {
	p := initTest(t)
	p.maxFails = 2
	fetcherMock.On("GetReport", mock.Anything, "id1").Return(nil, fmt.Errorf("err"))

	resCh, stopF, err := p.Start(test.Ctx(t), "id1")
	require.Nil(t, err)
	defer stopF()

	tickCh <- time.Now()
	_, opened := waitClosed(t, resCh)
	assert.False(t, opened)
	assert.Equal(t, 2, len(fetcherMock.Calls))
}

func TestPoll_Cancel_NoFurtherFetch(t *testing.T) {
	p := initTest(t)
	fetcherMock.On("GetReport", mock.Anything, "id1").Return(testReport(false), nil)

	resCh, stopF, err := p.Start(test.Ctx(t), "id1")
	require.Nil(t, err)
	waitReport(t, resCh)

	stopF()

	calls := len(fetcherMock.Calls)
	tickCh <- time.Now()
	time.Sleep(time.Millisecond * 20)
	assert.Equal(t, calls, len(fetcherMock.Calls))
	_, opened := <-resCh
	assert.False(t, opened)
}

func TestPoll_Restart_CancelsPrevious(t *testing.T) {
	p := initTest(t)
	fetcherMock.On("GetReport", mock.Anything, "id1").Return(testReport(false), nil)
	fetcherMock.On("GetReport", mock.Anything, "id2").Return(
		&api.Report{InterviewID: "id2", ProcessingComplete: true}, nil)

	resCh1, _, err := p.Start(test.Ctx(t), "id1")
	require.Nil(t, err)
	waitReport(t, resCh1)

	resCh2, stopF, err := p.Start(test.Ctx(t), "id2")
	require.Nil(t, err)
	defer stopF()

	_, opened := <-resCh1
	assert.False(t, opened, "previous loop stopped")
	res := waitReport(t, resCh2)
	assert.Equal(t, "id2", res.InterviewID)
	assert.Equal(t, "id2", p.Report().InterviewID)
}

func TestStart_NoID(t *testing.T) {
	p := initTest(t)

	_, _, err := p.Start(test.Ctx(t), "")

	assert.NotNil(t, err)
}

func waitClosed(t *testing.T, ch <-chan *api.Report) (*api.Report, bool) {
	t.Helper()
	select {
	case res, opened := <-ch:
		return res, opened
	case <-time.After(time.Second * 2):
		require.Fail(t, "timeout")
	}
	return nil, false
}

func waitReport(t *testing.T, ch <-chan *api.Report) *api.Report {
	t.Helper()
	select {
	case res := <-ch:
		require.NotNil(t, res)
		return res
	case <-time.After(time.Second * 2):
		require.Fail(t, "timeout")
	}
	return nil
}
