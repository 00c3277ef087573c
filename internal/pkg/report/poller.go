package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/viva/internal/pkg/api"
	"github.com/airenas/viva/internal/pkg/scoring"
)

// Fetcher retrieves an interview report
type Fetcher interface {
	GetReport(ctx context.Context, ID string) (*api.Report, error)
}

// Params keeps data required for poller work
type Params struct {
	Fetcher  Fetcher
	Interval time.Duration
}

// Poller keeps the last-known report for one interview fresh by polling
// until the report becomes final. One polling loop per poller at a time
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	// maxFails bounds consecutive transient failures before the loop gives up
	maxFails int
	// after is time.After, replaceable in tests
	after func(d time.Duration) <-chan time.Time

	lock    sync.Mutex
	id      string
	report  *api.Report
	cancelF context.CancelFunc
	doneCh  chan struct{}
}

// NewPoller creates a report poller
func NewPoller(p Params) (*Poller, error) {
	if p.Fetcher == nil {
		return nil, fmt.Errorf("no fetcher")
	}
	res := &Poller{fetcher: p.Fetcher, interval: p.Interval, after: time.After,
		maxFails: 10}
	if res.interval <= 0 {
		res.interval = time.Second * 3
	}
	return res, nil
}

// FetchOnce retrieves the report and replaces the last-known one wholesale.
// A result for an id the poller no longer tracks is dropped
func (p *Poller) FetchOnce(ctx context.Context, ID string) (*api.Report, error) {
	if ID == "" {
		return nil, fmt.Errorf("no ID")
	}
	res, err := p.fetcher.GetReport(ctx, ID)
	if err != nil {
		return nil, err
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.id == ID || p.id == "" {
		p.report = res
	}
	return res, nil
}

// Report returns the last-known report, nil if none was fetched yet
func (p *Poller) Report() *api.Report {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.report
}

// Start begins polling for the id. It cancels any previous loop first.
// Every fetched report is delivered on the returned channel, the channel is
// closed when the report is final or the loop is stopped. The returned stop
// func guarantees no further fetch is issued after it returns
func (p *Poller) Start(ctx context.Context, ID string) (<-chan *api.Report, func(), error) {
	if ID == "" {
		return nil, nil, fmt.Errorf("no ID")
	}
	p.lock.Lock()
	if p.cancelF != nil {
		p.cancelF()
	}
	prevDone := p.doneCh
	p.lock.Unlock()
	if prevDone != nil {
		<-prevDone
	}

	ctxInt, cancelF := context.WithCancel(ctx)
	doneCh := make(chan struct{})
	resCh := make(chan *api.Report, 1)
	p.lock.Lock()
	p.id = ID
	p.report = nil
	p.cancelF = cancelF
	p.doneCh = doneCh
	p.lock.Unlock()

	go p.serviceLoop(ctxInt, ID, resCh, doneCh)
	stopF := func() {
		cancelF()
		<-doneCh
	}
	return resCh, stopF, nil
}

func (p *Poller) serviceLoop(ctx context.Context, ID string, resCh chan<- *api.Report, doneCh chan struct{}) {
	defer close(doneCh)
	defer close(resCh)
	goapp.Log.Info().Str("ID", ID).Msg("start polling")
	fails := 0
	for {
		res, err := p.FetchOnce(ctx, ID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			// unknown id stays unknown, no point retrying
			if errors.Is(err, scoring.ErrNotFound) {
				goapp.Log.Error().Err(err).Str("ID", ID).Msg("no report, stop polling")
				return
			}
			fails++
			goapp.Log.Error().Err(err).Str("ID", ID).Int("fails", fails).Msg("can't fetch report")
			if fails >= p.maxFails {
				goapp.Log.Error().Str("ID", ID).Msg("too many failures, stop polling")
				return
			}
		} else {
			fails = 0
			select {
			case resCh <- res:
			case <-ctx.Done():
				return
			}
			if res.Final() {
				goapp.Log.Info().Str("ID", ID).Msg("report final, stop polling")
				return
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-p.after(p.interval):
		}
	}
}
