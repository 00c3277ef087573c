package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/viva/internal/pkg/api"
	"github.com/airenas/viva/internal/pkg/status"
)

// Scoring wraps the question/scoring service calls the machine needs
type Scoring interface {
	CheckLive(ctx context.Context) error
	StartInterview(ctx context.Context, role api.Role) (*api.InterviewStart, error)
	SubmitAnswer(ctx context.Context, ID string, index int, videoPath string) error
	GenerateSummary(ctx context.Context, ID string) error
}

// StartError indicates the interview could not be started
type StartError struct {
	err error
}

// NewStartError creates an error
func NewStartError(err error) *StartError {
	return &StartError{err: err}
}

func (e *StartError) Error() string {
	return fmt.Sprintf("can't start interview: %v", e.err)
}

func (e *StartError) Unwrap() error {
	return e.err
}

// SubmitError indicates an answer submission was rejected
type SubmitError struct {
	err error
}

// NewSubmitError creates an error
func NewSubmitError(err error) *SubmitError {
	return &SubmitError{err: err}
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("can't submit answer: %v", e.err)
}

func (e *SubmitError) Unwrap() error {
	return e.err
}

// Question is one interview question with its submission mark
type Question struct {
	Text      string
	Submitted bool
}

// Params keeps data required for the machine
type Params struct {
	Scoring Scoring
	// OnAnswerDiscarded fires when backtracking drops an unsubmitted answer
	OnAnswerDiscarded func()
	// OnNextQuestion fires after a submission advances to the next question
	OnNextQuestion func()
	// SummaryTimeout limits the background overall-evaluation call
	SummaryTimeout time.Duration
}

// Machine owns question sequencing for one interview.
// It is the only writer of the current index and the session status
type Machine struct {
	scoring           Scoring
	onAnswerDiscarded func()
	onNextQuestion    func()
	summaryTimeout    time.Duration

	lock      sync.Mutex
	st        status.Status
	id        string
	role      api.Role
	greeting  string
	questions []Question
	current   int
	summaryWG sync.WaitGroup
}

// NewMachine creates the session machine
func NewMachine(p Params) (*Machine, error) {
	if p.Scoring == nil {
		return nil, fmt.Errorf("no scoring client")
	}
	res := &Machine{scoring: p.Scoring, onAnswerDiscarded: p.OnAnswerDiscarded,
		onNextQuestion: p.OnNextQuestion, st: status.NotStarted,
		summaryTimeout: p.SummaryTimeout}
	if res.summaryTimeout <= 0 {
		res.summaryTimeout = time.Minute * 2
	}
	return res, nil
}

// Start asks the scoring service for questions and moves to InProgress.
// On failure the machine stays at NotStarted and the call may be retried
func (m *Machine) Start(ctx context.Context, role api.Role) error {
	if role.Title == "" || role.Description == "" {
		return NewStartError(fmt.Errorf("empty role"))
	}
	m.lock.Lock()
	if m.st != status.NotStarted {
		m.lock.Unlock()
		return NewStartError(fmt.Errorf("already started"))
	}
	m.lock.Unlock()

	if err := m.scoring.CheckLive(ctx); err != nil {
		return NewStartError(fmt.Errorf("service not reachable: %w", err))
	}
	res, err := m.scoring.StartInterview(ctx, role)
	if err != nil {
		return NewStartError(err)
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	if m.st != status.NotStarted {
		return NewStartError(fmt.Errorf("already started"))
	}
	m.id = res.InterviewID
	m.role = role
	m.greeting = res.Greeting
	m.questions = make([]Question, len(res.Questions))
	for i, q := range res.Questions {
		m.questions[i] = Question{Text: q}
	}
	m.current = 0
	m.st = status.InProgress
	goapp.Log.Info().Str("ID", m.id).Int("questions", len(m.questions)).Msg("interview started")
	return nil
}

// SubmitCurrentAnswer sends the artifact reference for the active question.
// On the last question it completes the session and fires the overall
// evaluation in the background
func (m *Machine) SubmitCurrentAnswer(ctx context.Context, artifactRef string) error {
	if artifactRef == "" {
		return NewSubmitError(fmt.Errorf("no answer recorded"))
	}
	m.lock.Lock()
	if m.st != status.InProgress {
		m.lock.Unlock()
		return NewSubmitError(fmt.Errorf("wrong status %s", m.st.String()))
	}
	id, index := m.id, m.current
	m.lock.Unlock()

	if err := m.scoring.SubmitAnswer(ctx, id, index, artifactRef); err != nil {
		return NewSubmitError(err)
	}

	m.lock.Lock()
	// the call may resume after the machine moved on - apply only if not stale
	if m.st != status.InProgress || m.id != id || m.current != index {
		m.lock.Unlock()
		return NewSubmitError(fmt.Errorf("session changed during submit"))
	}
	m.questions[index].Submitted = true
	if index == len(m.questions)-1 {
		m.st = status.Completed
		m.summaryWG.Add(1)
		m.lock.Unlock()
		goapp.Log.Info().Str("ID", id).Msg("interview completed")
		go m.generateSummary(id)
		return nil
	}
	m.current++
	next := m.current
	m.lock.Unlock()
	goapp.Log.Info().Str("ID", id).Int("question", next+1).Msg("next question")
	if m.onNextQuestion != nil {
		m.onNextQuestion()
	}
	return nil
}

// generateSummary is best-effort - completion never blocks on its result
func (m *Machine) generateSummary(id string) {
	defer m.summaryWG.Done()
	ctx, cancelF := context.WithTimeout(context.Background(), m.summaryTimeout)
	defer cancelF()
	if err := m.scoring.GenerateSummary(ctx, id); err != nil {
		goapp.Log.Error().Err(err).Str("ID", id).Msg("can't generate summary")
	}
}

// GoToPreviousQuestion moves one question back. Submitted answers are
// immutable history, so it refuses to move onto a submitted slot
func (m *Machine) GoToPreviousQuestion() error {
	m.lock.Lock()
	if m.st != status.InProgress {
		m.lock.Unlock()
		return fmt.Errorf("wrong status %s", m.st.String())
	}
	if m.current == 0 {
		m.lock.Unlock()
		return fmt.Errorf("on first question")
	}
	if m.questions[m.current-1].Submitted {
		m.lock.Unlock()
		return fmt.Errorf("answer already submitted")
	}
	discard := !m.questions[m.current].Submitted
	m.current--
	m.lock.Unlock()
	if discard && m.onAnswerDiscarded != nil {
		m.onAnswerDiscarded()
	}
	return nil
}

// Status returns the session status
func (m *Machine) Status() status.Status {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.st
}

// ID returns the interview ID, empty before Start succeeds
func (m *Machine) ID() string {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.id
}

// Greeting returns the greeting text from the scoring service
func (m *Machine) Greeting() string {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.greeting
}

// CurrentIndex returns the active question index
func (m *Machine) CurrentIndex() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.current
}

// CurrentQuestion returns the active question text
func (m *Machine) CurrentQuestion() (string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.st == status.NotStarted {
		return "", fmt.Errorf("not started")
	}
	return m.questions[m.current].Text, nil
}

// TotalQuestions returns the question count
func (m *Machine) TotalQuestions() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.questions)
}

// Progress returns the completion percentage
func (m *Machine) Progress() float64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	if len(m.questions) == 0 {
		return 0
	}
	done := m.current
	if m.st == status.Completed {
		done++
	}
	return float64(done) / float64(len(m.questions)) * 100
}

// WaitSummary blocks until the background evaluation call returns
func (m *Machine) WaitSummary() {
	m.summaryWG.Wait()
}
