package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/jewelry-admin/pkg/logger"
	"github.com/angelmondragon/jewelry-admin/pkg/metrics"
)

const (
	DefaultPollInterval = 30 * time.Second
	pollJobName         = "notifications_poll"
)

// Poller refreshes the service on a fixed cadence until stopped.
type Poller struct {
	service  *Service
	logg     *logger.Logger
	metrics  *metrics.JobMetrics
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// PollerParams configure the poller.
type PollerParams struct {
	Service  *Service
	Logger   *logger.Logger
	Metrics  *metrics.JobMetrics
	Interval time.Duration
}

func NewPoller(params PollerParams) *Poller {
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		service:  params.Service,
		logg:     logg,
		metrics:  params.Metrics,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the loop in its own goroutine. It fetches once immediately.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

// Stop ends the loop and waits for it to exit.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)
	ctx = p.logg.WithField(ctx, "job", pollJobName)

	p.tick(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	start := time.Now()
	err := p.service.Refresh(ctx)
	if p.metrics != nil {
		p.metrics.ObserveDuration(pollJobName, time.Since(start))
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logg.Error(ctx, "notifications refresh failed", err)
		if p.metrics != nil {
			p.metrics.IncFailure(pollJobName)
		}
		return
	}
	if p.metrics != nil {
		p.metrics.IncSuccess(pollJobName)
	}
}
