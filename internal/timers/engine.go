package timers

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/phildougherty/quick-assistant/internal/config"
	"github.com/phildougherty/quick-assistant/internal/logging"
)

// Engine polls the store for expired timers and sounds the alarm
// when one fires
type Engine struct {
	store  *Store
	alarm  *Alarm
	logger *logging.Logger
	cron   *cron.Cron

	// onExpired is invoked with each batch of fired timers, after the
	// alarm starts
	onExpired func([]Timer)

	errorLogged bool
}

// NewEngine creates an engine around the store
func NewEngine(store *Store, alarm *Alarm, logger *logging.Logger, onExpired func([]Timer)) *Engine {
	return &Engine{
		store:  store,
		alarm:  alarm,
		logger: logger,
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		onExpired: onExpired,
	}
}

// Start begins the periodic expiry check
func (e *Engine) Start() error {
	if _, err := e.cron.AddFunc(config.TimerCheckSchedule, e.check); err != nil {
		return fmt.Errorf("failed to schedule timer check: %w", err)
	}
	e.cron.Start()
	return nil
}

// Stop halts the expiry check and silences any ringing alarm
func (e *Engine) Stop() {
	ctx := e.cron.Stop()
	<-ctx.Done()
	e.alarm.Stop()
}

// StopAlarm silences the alarm without stopping the engine
func (e *Engine) StopAlarm() {
	e.alarm.Stop()
}

func (e *Engine) check() {
	expired, err := e.store.CheckExpired(time.Now())
	if err != nil {
		// Log once per failure streak to avoid a line per second
		if !e.errorLogged {
			e.logger.Warning("Error checking timers: %v", err)
			e.errorLogged = true
		}
		return
	}
	e.errorLogged = false

	if len(expired) == 0 {
		return
	}

	names := make([]string, len(expired))
	for i, timer := range expired {
		names[i] = timer.Name
	}
	e.logger.Info("Timer fired: %s", strings.Join(names, ", "))
	e.alarm.Ring("Timer", strings.Join(names, ", "))

	if e.onExpired != nil {
		e.onExpired(expired)
	}
}
