package session

import (
	"fmt"
	"testing"

	"github.com/airenas/viva/internal/pkg/api"
	"github.com/airenas/viva/internal/pkg/status"
	"github.com/airenas/viva/internal/pkg/test"
	"github.com/airenas/viva/internal/pkg/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var scoringMock *mocks.Scoring

func initTest(t *testing.T) *Machine {
	t.Helper()
	scoringMock = &mocks.Scoring{}
	scoringMock.On("CheckLive", mock.Anything).Return(nil)
	scoringMock.On("StartInterview", mock.Anything, mock.Anything).Return(
		&api.InterviewStart{InterviewID: "id1", Greeting: "Welcome!",
			Questions: []string{"q1", "q2", "q3"}, TotalQuestions: 3}, nil)
	scoringMock.On("SubmitAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	scoringMock.On("GenerateSummary", mock.Anything, mock.Anything).Return(nil)
	m, err := NewMachine(Params{Scoring: scoringMock})
	require.Nil(t, err)
	return m
}

func initStarted(t *testing.T) *Machine {
	t.Helper()
	m := initTest(t)
	require.Nil(t, m.Start(test.Ctx(t), testRole()))
	return m
}

func testRole() api.Role {
	return api.Role{Title: "Software Engineer", Description: "Develops software systems"}
}

func TestNewMachine_Fail(t *testing.T) {
	_, err := NewMachine(Params{})
	assert.NotNil(t, err)
}

func TestStart(t *testing.T) {
	m := initTest(t)
	assert.Equal(t, status.NotStarted, m.Status())

	err := m.Start(test.Ctx(t), testRole())

	assert.Nil(t, err)
	assert.Equal(t, status.InProgress, m.Status())
	assert.Equal(t, "id1", m.ID())
	assert.Equal(t, "Welcome!", m.Greeting())
	assert.Equal(t, 0, m.CurrentIndex())
	assert.Equal(t, 3, m.TotalQuestions())
	assert.InDelta(t, 0, m.Progress(), 0.001)
	q, err := m.CurrentQuestion()
	assert.Nil(t, err)
	assert.Equal(t, "q1", q)
}

func TestStart_EmptyRole(t *testing.T) {
	m := initTest(t)

	err := m.Start(test.Ctx(t), api.Role{Title: "Software Engineer"})

	var sErr *StartError
	assert.ErrorAs(t, err, &sErr)
	assert.Equal(t, status.NotStarted, m.Status())
	assert.Equal(t, 0, len(scoringMock.Calls))
}

func TestStart_ServiceDown(t *testing.T) {
	m := initTest(t)
	scoringMock.ExpectedCalls = nil
	scoringMock.On("CheckLive", mock.Anything).Return(fmt.Errorf("no connection"))

	err := m.Start(test.Ctx(t), testRole())

	var sErr *StartError
	assert.ErrorAs(t, err, &sErr)
	assert.Equal(t, status.NotStarted, m.Status())
}

func TestStart_ServiceFails_Retryable(t *testing.T) {
	m := initTest(t)
	scoringMock.ExpectedCalls = nil
	scoringMock.On("CheckLive", mock.Anything).Return(nil)
	scoringMock.On("StartInterview", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("err"))

	err := m.Start(test.Ctx(t), testRole())

	assert.NotNil(t, err)
	assert.Equal(t, status.NotStarted, m.Status())

	scoringMock.ExpectedCalls = nil
	scoringMock.On("CheckLive", mock.Anything).Return(nil)
	scoringMock.On("StartInterview", mock.Anything, mock.Anything).Return(
		&api.InterviewStart{InterviewID: "id1", Questions: []string{"q1"}}, nil)

	assert.Nil(t, m.Start(test.Ctx(t), testRole()))
	assert.Equal(t, status.InProgress, m.Status())
}

func TestStart_Twice(t *testing.T) {
	m := initStarted(t)

	err := m.Start(test.Ctx(t), testRole())

	var sErr *StartError
	assert.ErrorAs(t, err, &sErr)
}

func TestSubmit(t *testing.T) {
	next := 0
	m := initTest(t)
	m.onNextQuestion = func() { next++ }
	require.Nil(t, m.Start(test.Ctx(t), testRole()))

	err := m.SubmitCurrentAnswer(test.Ctx(t), "v/a1.webm")

	assert.Nil(t, err)
	assert.Equal(t, 1, m.CurrentIndex())
	assert.Equal(t, status.InProgress, m.Status())
	assert.Equal(t, 1, next)
	scoringMock.AssertCalled(t, "SubmitAnswer", mock.Anything, "id1", 0, "v/a1.webm")
	assert.InDelta(t, 33.333, m.Progress(), 0.01)
}

func TestSubmit_NoArtifact(t *testing.T) {
	m := initStarted(t)

	err := m.SubmitCurrentAnswer(test.Ctx(t), "")

	var sErr *SubmitError
	assert.ErrorAs(t, err, &sErr)
	assert.Equal(t, 0, m.CurrentIndex())
}

func TestSubmit_NotStarted(t *testing.T) {
	m := initTest(t)

	err := m.SubmitCurrentAnswer(test.Ctx(t), "v/a1.webm")

	var sErr *SubmitError
	assert.ErrorAs(t, err, &sErr)
}

func TestSubmit_ServiceFails_Retryable(t *testing.T) {
	m := initStarted(t)
	scoringMock.ExpectedCalls = nil
	scoringMock.On("SubmitAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("err")).Once()
	scoringMock.On("SubmitAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	err := m.SubmitCurrentAnswer(test.Ctx(t), "v/a1.webm")

	var sErr *SubmitError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, 0, m.CurrentIndex())
	assert.Equal(t, status.InProgress, m.Status())

	assert.Nil(t, m.SubmitCurrentAnswer(test.Ctx(t), "v/a1.webm"))
	assert.Equal(t, 1, m.CurrentIndex())
}

func TestSubmit_AllAnswers_Completes(t *testing.T) {
	m := initStarted(t)

	for i := 0; i < 3; i++ {
		require.Nil(t, m.SubmitCurrentAnswer(test.Ctx(t), fmt.Sprintf("v/a%d.webm", i)))
	}

	assert.Equal(t, status.Completed, m.Status())
	assert.InDelta(t, 100, m.Progress(), 0.001)
	m.WaitSummary()
	scoringMock.AssertCalled(t, "GenerateSummary", mock.Anything, "id1")
}

func TestSubmit_SummaryFails_StillCompleted(t *testing.T) {
	m := initStarted(t)
	scoringMock.ExpectedCalls = nil
	scoringMock.On("SubmitAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	scoringMock.On("GenerateSummary", mock.Anything, mock.Anything).Return(fmt.Errorf("err"))

	for i := 0; i < 3; i++ {
		require.Nil(t, m.SubmitCurrentAnswer(test.Ctx(t), fmt.Sprintf("v/a%d.webm", i)))
	}

	assert.Equal(t, status.Completed, m.Status())
	m.WaitSummary()
}

func TestSubmit_AfterCompleted(t *testing.T) {
	m := initStarted(t)
	for i := 0; i < 3; i++ {
		require.Nil(t, m.SubmitCurrentAnswer(test.Ctx(t), fmt.Sprintf("v/a%d.webm", i)))
	}

	err := m.SubmitCurrentAnswer(test.Ctx(t), "v/a4.webm")

	var sErr *SubmitError
	assert.ErrorAs(t, err, &sErr)
	assert.Equal(t, status.Completed, m.Status())
}

func TestGoToPrevious(t *testing.T) {
	discarded := 0
	m := initTest(t)
	m.onAnswerDiscarded = func() { discarded++ }
	require.Nil(t, m.Start(test.Ctx(t), testRole()))
	require.Nil(t, m.SubmitCurrentAnswer(test.Ctx(t), "v/a0.webm"))
	require.Equal(t, 1, m.CurrentIndex())

	err := m.GoToPreviousQuestion()

	assert.NotNil(t, err, "previous slot was submitted")
	m.lock.Lock()
	m.questions[0].Submitted = false
	m.lock.Unlock()

	err = m.GoToPreviousQuestion()

	assert.Nil(t, err)
	assert.Equal(t, 0, m.CurrentIndex())
	assert.Equal(t, 1, discarded)
}

func TestGoToPrevious_OnFirst(t *testing.T) {
	m := initStarted(t)

	err := m.GoToPreviousQuestion()

	assert.NotNil(t, err)
	assert.Equal(t, 0, m.CurrentIndex())
}

func TestGoToPrevious_NotStarted(t *testing.T) {
	m := initTest(t)

	assert.NotNil(t, m.GoToPreviousQuestion())
}
