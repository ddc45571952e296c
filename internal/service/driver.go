package service

import (
	"context"
	"log"
	"time"
)

// Driver ticks the engine on a fixed interval. It sleeps between ticks
// outside the engine lock; the tick itself acquires it exactly once.
type Driver struct {
	engine   *Engine
	interval time.Duration
}

// NewDriver creates a driver for the engine.
func NewDriver(engine *Engine, interval time.Duration) *Driver {
	return &Driver{engine: engine, interval: interval}
}

// Run blocks, ticking until the context is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	log.Printf("driver: ticking every %s", d.interval)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("driver: stopped")
			return nil
		case now := <-ticker.C:
			d.engine.Tick(now)
		}
	}
}
