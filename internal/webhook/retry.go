package webhook

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/finopsguard/guardrail/internal/logging"
)

// RetryConfig controls the background retry loop and maintenance sweep.
type RetryConfig struct {
	Interval        time.Duration
	BatchSize       int
	InterItemSleep  time.Duration
	RetentionPeriod time.Duration
	MaintenanceHour int
}

// DefaultRetryConfig mirrors the deployment defaults: 60s retry interval,
// batch size 10, 100ms inter-item sleep, 30-day retention, maintenance run
// at local hour 2.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Interval:        60 * time.Second,
		BatchSize:       10,
		InterItemSleep:  100 * time.Millisecond,
		RetentionPeriod: 30 * 24 * time.Hour,
		MaintenanceHour: 2,
	}
}

// RunRetryLoop polls for due deliveries every cfg.Interval, re-attempting
// each and sleeping cfg.InterItemSleep between items in a batch, until ctx
// is canceled. It also runs the daily maintenance sweep once per calendar
// day, when the tick lands during cfg.MaintenanceHour.
func (d *Dispatcher) RunRetryLoop(ctx context.Context, cfg RetryConfig) {
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	lastMaintenanceDay := -1
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			d.retryDueDeliveries(now, cfg)
			if now.Hour() == cfg.MaintenanceHour && now.YearDay() != lastMaintenanceDay {
				d.runMaintenance(now, cfg)
				lastMaintenanceDay = now.YearDay()
			}
		}
	}
}

func (d *Dispatcher) retryDueDeliveries(now time.Time, cfg RetryConfig) {
	due, err := d.store.DueDeliveries(now, cfg.BatchSize)
	if err != nil {
		logging.Error("webhook: list due deliveries", zap.Error(err))
		return
	}
	for i, delivery := range due {
		w, err := d.store.GetWebhook(delivery.WebhookID)
		if err != nil {
			logging.Warn("webhook: retry target missing", zap.String("webhook_id", delivery.WebhookID), zap.Error(err))
			continue
		}
		d.Dispatch(w, delivery)
		if i < len(due)-1 {
			time.Sleep(cfg.InterItemSleep)
		}
	}
}

func (d *Dispatcher) runMaintenance(now time.Time, cfg RetryConfig) {
	cutoff := now.Add(-cfg.RetentionPeriod)
	removed, err := d.store.DeleteTerminalBefore(cutoff)
	if err != nil {
		logging.Error("webhook: maintenance sweep", zap.Error(err))
		return
	}
	if removed > 0 {
		logging.Info("webhook: maintenance sweep removed terminal deliveries",
			zap.Int("removed", removed), zap.Time("cutoff", cutoff))
	}
}
