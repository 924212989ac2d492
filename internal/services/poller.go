package services

import (
	"context"
	"sync"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Poller runs fetch on a fixed interval while skip reports false.
type Poller struct {
	interval time.Duration
	fetch    func(context.Context) error
	skip     func() bool
	log      zerolog.Logger

	mu             sync.Mutex
	cronScheduler  *cron.Cron
	currentEntryID cron.EntryID
	cancel         context.CancelFunc
}

func NewPoller(interval time.Duration, fetch func(context.Context) error, skip func() bool) *Poller {
	return &Poller{
		interval: interval,
		fetch:    fetch,
		skip:     skip,
		log:      logger.Component("poller"),
	}
}

func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cronScheduler != nil {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)

	p.cronScheduler = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	p.currentEntryID = p.cronScheduler.Schedule(cron.Every(p.interval), cron.FuncJob(func() {
		p.poll(ctx)
	}))
	p.cronScheduler.Start()
	p.log.Debug().Dur("interval", p.interval).Msg("fallback poller started")
}

// Stop halts the schedule and waits for a running poll to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	sched := p.cronScheduler
	p.cronScheduler = nil
	p.currentEntryID = 0
	cancel := p.cancel
	p.mu.Unlock()

	if sched == nil {
		return
	}
	cancel()
	<-sched.Stop().Done()
}

// poll runs one scheduled tick.
func (p *Poller) poll(ctx context.Context) bool {
	if ctx.Err() != nil || (p.skip != nil && p.skip()) {
		return false
	}
	if err := p.fetch(ctx); err != nil {
		p.log.Warn().Err(err).Msg("poll failed")
	}
	return true
}
