package host

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/justyntemme/plughost/pkg/engine"
	"github.com/justyntemme/plughost/pkg/framework/debug"
)

// Controller is the host's main thread. Run activates the plugin against the
// engine, then idles until shutdown while relaying the plugin's restart and
// callback requests. It also receives the engine's notifications.
type Controller struct {
	host   *Host
	engine engine.Engine
	log    *debug.Logger

	// sample rate of the current activation, as float64 bits
	rate atomic.Uint64
}

var _ engine.NotificationHandler = (*Controller)(nil)

// NewController binds an opened host to an engine with no active client.
func NewController(h *Host, eng engine.Engine) *Controller {
	return &Controller{host: h, engine: eng, log: h.log.Named("Controller")}
}

// Run blocks until ctx is done, the engine shuts down or a fatal error
// occurs. On return the engine is deactivated and the plugin destroyed.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.start(); err != nil {
		return errors.Join(err, c.teardown())
	}
	c.log.Info("running %s on %s", c.host.desc.Name, c.engine.Name())

	for {
		select {
		case <-ctx.Done():
			c.log.Info("shutting down: %v", context.Cause(ctx))
			return c.teardown()

		case reason := <-c.host.shutdown:
			if err := c.host.Err(); err != nil {
				return errors.Join(err, c.teardown())
			}
			c.log.Info("engine shut down: %s", reason)
			return c.teardown()

		case <-c.host.shared.restart:
			if err := c.restart(); err != nil {
				return errors.Join(err, c.teardown())
			}

		case <-c.host.shared.callback:
			c.host.plugin.OnMainThread()
		}
	}
}

func (c *Controller) start() error {
	if err := c.host.activate(c.engine); err != nil {
		return err
	}
	c.rate.Store(math.Float64bits(c.host.machine.SampleRate()))
	if err := c.engine.Activate(c, c.host.loop); err != nil {
		c.host.deactivate()
		return fmt.Errorf("activate engine %s: %w", c.engine.Name(), err)
	}
	return nil
}

func (c *Controller) stop() error {
	if err := c.engine.Deactivate(); err != nil {
		return fmt.Errorf("deactivate engine %s: %w", c.engine.Name(), err)
	}
	return c.host.deactivate()
}

// restart reactivates the plugin so that a new latency, port layout or
// sample rate takes effect.
func (c *Controller) restart() error {
	c.log.Info("restarting plugin")
	before := c.host.machine.Topology()
	if err := c.stop(); err != nil {
		return err
	}
	changed := c.host.main.portsChanged.Swap(false)
	if err := c.start(); err != nil {
		return err
	}
	if after := c.host.machine.Topology(); changed {
		if after.Equal(before) {
			c.log.Info("plugin reported a port change, layout unchanged: %s", after)
		} else {
			c.log.Info("plugin ports changed from %s to %s", before, after)
		}
	}
	c.host.metrics.Restarts.Inc()
	return nil
}

func (c *Controller) teardown() error {
	err := c.stop()
	if cerr := c.host.Close(); err == nil {
		err = cerr
	}
	c.logSummary()
	return err
}

func (c *Controller) logSummary() {
	lines, err := c.host.metrics.Summary()
	if err != nil {
		c.log.Warn("%v", err)
		return
	}
	for _, line := range lines {
		c.log.Info("%s", line)
	}
}

// Shutdown implements engine.NotificationHandler.
func (c *Controller) Shutdown(reason string) {
	c.host.requestShutdown(reason)
}

// SampleRate implements engine.NotificationHandler. The plugin was activated
// for one rate, so a change needs a restart.
func (c *Controller) SampleRate(rate float64) engine.Control {
	active := math.Float64frombits(c.rate.Load())
	if rate != active {
		c.log.Error("engine sample rate changed from %g Hz to %g Hz, restarting plugin", active, rate)
		select {
		case c.host.shared.restart <- struct{}{}:
		default:
		}
	}
	return engine.Continue
}

// XRun implements engine.NotificationHandler.
func (c *Controller) XRun() engine.Control {
	c.host.metrics.XRuns.Inc()
	c.log.Debug("xrun")
	return engine.Continue
}
