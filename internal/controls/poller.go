package controls

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Strategy selects how the device registry is populated.
type Strategy string

const (
	// StrategyAuto picks events when the platform delivers them, polling otherwise.
	StrategyAuto Strategy = "auto"
	// StrategyEvents relies on connect/disconnect notifications.
	StrategyEvents Strategy = "events"
	// StrategyPolling rescans the platform on a fixed interval.
	StrategyPolling Strategy = "polling"
)

// DefaultPollInterval is the rescan cadence used by the polling strategy.
const DefaultPollInterval = 500 * time.Millisecond

// ParseStrategy validates a strategy name. The empty string means auto.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyAuto:
		return StrategyAuto, nil
	case StrategyEvents, StrategyPolling:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown device strategy %q", s)
	}
}

// Resolve picks the concrete strategy once, at initialization.
func (s Strategy) Resolve(eventsSupported bool) Strategy {
	switch s {
	case StrategyEvents:
		if eventsSupported {
			return StrategyEvents
		}
		return StrategyPolling
	case StrategyPolling:
		return StrategyPolling
	default:
		if eventsSupported {
			return StrategyEvents
		}
		return StrategyPolling
	}
}

// Poller rescans a DeviceSource into a DeviceRegistry on a timer, adding
// controllers that appeared since the last scan.
type Poller struct {
	registry *DeviceRegistry
	source   DeviceSource
	interval time.Duration
	log      *zap.Logger
}

// NewPoller creates a poller. A non-positive interval uses DefaultPollInterval.
func NewPoller(registry *DeviceRegistry, source DeviceSource, interval time.Duration, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		registry: registry,
		source:   source,
		interval: interval,
		log:      log,
	}
}

// Run scans immediately and then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	p.log.Debug("device polling started", zap.Duration("interval", p.interval))
	defer p.log.Debug("device polling stopped")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.registry.Scan(p.source)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.registry.Scan(p.source)
		}
	}
}
