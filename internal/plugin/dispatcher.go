package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// DefaultPlugin receives every command that has no stored binding.
const DefaultPlugin = "media-keys"

// DefaultQueueSize is the number of commands that may wait for the worker.
const DefaultQueueSize = 8

// ErrBindingDisabled is reported for commands whose binding is switched off.
var ErrBindingDisabled = errors.New("binding disabled")

// BindingLookup resolves a command token to its stored binding, returning
// nil, nil when the command is unbound.
type BindingLookup interface {
	Get(command string) (*store.Binding, error)
}

// PluginSource finds plugins by name.
type PluginSource interface {
	Get(name string) (*Plugin, error)
}

// Runner executes a plugin request.
type Runner interface {
	Execute(ctx context.Context, plugin *Plugin, req *Request) (*Response, error)
}

// Target is the plugin action a command is delivered to.
type Target struct {
	Plugin string
	Action string
	Config json.RawMessage
}

// Delivery is the outcome of handing one command to a plugin.
type Delivery struct {
	Command  gesture.Command
	Target   Target
	Response *Response
	Err      error
}

// Dispatcher is the command sink. Send never blocks: commands are queued for
// a single worker that resolves bindings and runs plugins in order.
type Dispatcher struct {
	plugins  PluginSource
	runner   Runner
	bindings BindingLookup
	queue    chan gesture.Command

	mu         sync.RWMutex
	onDelivery func(Delivery)
}

// NewDispatcher creates a Dispatcher. bindings may be nil, in which case every
// command goes to DefaultPlugin.
func NewDispatcher(plugins PluginSource, runner Runner, bindings BindingLookup, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Dispatcher{
		plugins:  plugins,
		runner:   runner,
		bindings: bindings,
		queue:    make(chan gesture.Command, queueSize),
	}
}

// OnDelivery registers fn to observe every delivery made by the worker.
func (d *Dispatcher) OnDelivery(fn func(Delivery)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onDelivery = fn
}

// Send queues cmd and reports whether it was accepted. Commands are dropped
// when the queue is full.
func (d *Dispatcher) Send(cmd gesture.Command) bool {
	if cmd == gesture.CommandNone {
		return false
	}
	select {
	case d.queue <- cmd:
		return true
	default:
		log.Printf("Dispatch queue full, dropping %s", cmd)
		return false
	}
}

// Run delivers queued commands until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-d.queue:
			res := d.Deliver(ctx, cmd)
			if res.Err != nil && !errors.Is(res.Err, ErrBindingDisabled) {
				log.Printf("Delivering %s to %s/%s: %v", cmd, res.Target.Plugin, res.Target.Action, res.Err)
			}

			d.mu.RLock()
			fn := d.onDelivery
			d.mu.RUnlock()
			if fn != nil {
				fn(res)
			}
		}
	}
}

// Resolve returns the target for cmd: its stored binding if any, otherwise
// the DefaultPlugin action named after the command token.
func (d *Dispatcher) Resolve(cmd gesture.Command) (Target, error) {
	def := Target{Plugin: DefaultPlugin, Action: string(cmd)}
	if d.bindings == nil {
		return def, nil
	}

	b, err := d.bindings.Get(string(cmd))
	if err != nil {
		return def, fmt.Errorf("lookup binding: %w", err)
	}
	if b == nil {
		return def, nil
	}

	t := Target{Plugin: b.PluginName, Action: b.ActionName, Config: b.Config}
	if !b.Enabled {
		return t, ErrBindingDisabled
	}
	return t, nil
}

// Deliver resolves cmd and runs the bound plugin synchronously.
func (d *Dispatcher) Deliver(ctx context.Context, cmd gesture.Command) Delivery {
	res := Delivery{Command: cmd}

	res.Target, res.Err = d.Resolve(cmd)
	if res.Err != nil {
		return res
	}

	p, err := d.plugins.Get(res.Target.Plugin)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", res.Target.Plugin, err)
		return res
	}

	res.Response, res.Err = d.runner.Execute(ctx, p, &Request{
		Action:  res.Target.Action,
		Command: string(cmd),
		Config:  res.Target.Config,
	})
	if res.Err == nil && !res.Response.Success {
		res.Err = fmt.Errorf("plugin %s: %s", res.Target.Plugin, res.Response.Error)
	}
	return res
}
