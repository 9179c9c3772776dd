/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package engine composes the constants, scanner, fixmsg, framer,
// builder, sequence, heartbeat, store, coroutine, transport and session
// packages into the four-phase FIX session lifecycle: connect, logon,
// active, logout, plus an exponential-backoff recovery loop. This is
// the Go realization of nexusfix/session/coroutine_session.hpp's
// CoroutineSession and session_with_recovery.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/SilverstreamsAI/NexusFix/coroutine"
	"github.com/SilverstreamsAI/NexusFix/framer"
	"github.com/SilverstreamsAI/NexusFix/heartbeat"
	"github.com/SilverstreamsAI/NexusFix/sequence"
	"github.com/SilverstreamsAI/NexusFix/session"
	"github.com/SilverstreamsAI/NexusFix/store"
	"github.com/SilverstreamsAI/NexusFix/transport"
)

const recvBufferSize = 4096

// Engine drives a single FIX session's lifecycle end to end. It is the
// sole owner of the session's sequence manager, heartbeat timer, and
// state; it borrows the transport, handler, and message store, matching
// spec §3's ownership summary.
type Engine struct {
	config  session.Config
	handler session.Handler
	async   *transport.AsyncTransport
	store   store.MessageStore
	logger  *zap.Logger
	sink    AppSink
	monitor *Monitor
	metrics *metrics

	seq       *sequence.Manager
	hb        *heartbeat.Timer
	assembler *framer.Assembler
	rxTask    *coroutine.Task[struct{}]

	stateMu sync.RWMutex
	state   session.State

	stats   session.Stats
	statsMu sync.Mutex

	sendMu        coroutine.AsyncMutex
	shutdownEvent coroutine.Event

	logoutMu       sync.Mutex
	logoutNotified bool

	testRequestCount uint64
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithMessageStore plugs in a message store for resend support. The
// default, if this option is not supplied, is store.NewNullStore().
func WithMessageStore(s store.MessageStore) Option {
	return func(e *Engine) { e.store = s }
}

// WithLogger plugs in a zap logger. The default is zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithAppSink plugs in a fanout sink that receives every message
// forwarded to the handler's OnAppMessage, e.g. engine.KafkaSink.
func WithAppSink(sink AppSink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithMonitor plugs in a websocket Monitor that observes this Engine's
// state transitions and stats.
func WithMonitor(m *Monitor) Option {
	return func(e *Engine) { e.monitor = m }
}

// WithMetricsRegistry registers this Engine's Prometheus collectors
// with reg. Omit this option to run without metrics.
func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.metrics = newMetrics()
		e.metrics.MustRegister(reg)
	}
}

// New constructs an Engine over an already-wrapped AsyncTransport. The
// caller owns transport connection lifecycle via the returned Engine's
// Run method.
func New(cfg session.Config, handler session.Handler, async *transport.AsyncTransport, opts ...Option) *Engine {
	e := &Engine{
		config:    cfg,
		handler:   handler,
		async:     async,
		store:     store.NewNullStore(),
		logger:    zap.NewNop(),
		seq:       sequence.New(),
		hb:        heartbeat.New(cfg.HeartbeatInterval(), time.Now()),
		assembler: framer.NewAssembler(),
		state:     session.Disconnected,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the session configuration this Engine was built with.
func (e *Engine) Config() session.Config { return e.config }

// State returns the session's current state.
func (e *Engine) State() session.State {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.state
}

// Stats returns a snapshot of the session's running counters.
func (e *Engine) Stats() session.Stats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.stats
}

// RequestShutdown signals the active phase to begin a graceful logout.
func (e *Engine) RequestShutdown() { e.shutdownEvent.Set() }

// Run drives the full connect -> logon -> active -> logout lifecycle
// against addr ("host:port"). A connect or logon failure is returned at
// once. Once the session has been Active, Run always runs the logout
// phase (which sends a Logout only if the session is still Active) and
// then returns the active phase's result: nil on a clean shutdown or a
// peer-initiated logout, the session error otherwise.
func (e *Engine) Run(ctx context.Context, addr string) error {
	e.restoreSequenceFromStore()

	if err := e.connectPhase(ctx, addr); err != nil {
		return err
	}

	if err := e.logonPhase(ctx); err != nil {
		return err
	}

	activeErr := e.activePhase(ctx)
	_ = e.logoutPhase(ctx)
	return activeErr
}

// RunWithRecovery runs Run in a loop, reconnecting with exponential
// backoff (base * 2^attempt, capped at 60s) up to
// config.MaxReconnectAttempts times. A graceful shutdown (Run returning
// nil) ends the loop immediately.
func (e *Engine) RunWithRecovery(ctx context.Context, addr string) error {
	attempts := 0
	for {
		err := e.Run(ctx, addr)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		attempts++
		if attempts > e.config.MaxReconnectAttempts {
			return err
		}

		delay := e.config.ReconnectInterval * time.Duration(uint64(1)<<uint(attempts))
		if delay > 60*time.Second {
			delay = 60 * time.Second
		}
		if e.metrics != nil {
			e.metrics.reconnects.WithLabelValues(e.sessionLabel()).Inc()
		}
		e.logger.Warn("session run failed, backing off before reconnect",
			zap.Error(err), zap.Int("attempt", attempts), zap.Duration("delay", delay))

		if sleepErr := coroutine.Sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}
}

// sessionLabel identifies this Engine's session for metrics/monitor
// labeling.
func (e *Engine) sessionLabel() string {
	return e.config.SenderCompID + "-" + e.config.TargetCompID
}

func (e *Engine) transition(event session.Event) {
	e.stateMu.Lock()
	prev := e.state
	next := session.NextState(prev, event)
	changed := next != prev
	if changed {
		e.state = next
	}
	e.stateMu.Unlock()

	if !changed {
		return
	}

	e.handler.OnStateChange(prev, next)
	if e.metrics != nil {
		e.metrics.stateTransitions.WithLabelValues(e.sessionLabel(), next.String()).Inc()
	}
	if e.monitor != nil {
		e.monitor.BroadcastStateChange(prev.String(), next.String())
	}
}

// sendRaw acquires the send mutex, stores raw under seqNum (before the
// wire write, per spec §4.6's "stored-first-then-sent" ordering), then
// writes it to the transport. seqNum must be the value returned by the
// sequence.Manager.TakeOutbound call used to build raw.
func (e *Engine) sendRaw(ctx context.Context, seqNum uint32, raw []byte) error {
	lock := e.sendMu.Lock()
	defer lock.Unlock()
	return e.sendRawLocked(ctx, seqNum, raw)
}

// sendRawLocked assumes the caller already holds sendMu.
func (e *Engine) sendRawLocked(ctx context.Context, seqNum uint32, raw []byte) error {
	_ = e.store.Store(seqNum, raw)

	e.handler.OnSend(raw)

	_, err := e.async.SendAsync(ctx, raw)
	if err != nil {
		return err
	}

	e.hb.RecordSend(time.Now())
	e.statsMu.Lock()
	e.stats.MessagesSent++
	e.stats.BytesSent += uint64(len(raw))
	e.statsMu.Unlock()
	if e.metrics != nil {
		e.metrics.messagesSent.WithLabelValues(e.sessionLabel()).Inc()
	}
	e.persistSequenceCounters()
	return nil
}

// restoreSequenceFromStore loads next_sender/target_seq_num from the
// message store, when it persisted them on a previous run, so a
// restart against a durable store resumes numbering where it left off
// instead of renumbering from 1. A store that never persisted them (or
// a NullStore/MemoryStore starting fresh) reports 0, which leaves
// sequence.New's defaults in place.
func (e *Engine) restoreSequenceFromStore() {
	if e.store == nil {
		return
	}
	if sender, err := e.store.GetNextSenderSeqNum(); err == nil && sender != 0 {
		e.seq.ResetOutbound(sender)
	}
	if target, err := e.store.GetNextTargetSeqNum(); err == nil && target != 0 {
		e.seq.ResetInbound(target)
	}
}

// persistSequenceCounters writes the sequence manager's current
// counters back to the store, so they survive a process restart. Called
// after every point that advances either counter.
func (e *Engine) persistSequenceCounters() {
	if e.store == nil {
		return
	}
	_ = e.store.SetNextSenderSeqNum(e.seq.NextOutbound())
	_ = e.store.SetNextTargetSeqNum(e.seq.NextInbound())
}

// notifyLogout calls handler.OnLogout exactly once per connection.
// handleLogout (peer-initiated logout, observed by receiverLoop) and
// logoutPhase's own unconditional teardown call both reach here - at
// most one of them should actually invoke the handler for the same
// disconnect.
func (e *Engine) notifyLogout(text string) {
	e.logoutMu.Lock()
	already := e.logoutNotified
	e.logoutNotified = true
	e.logoutMu.Unlock()

	if !already {
		e.handler.OnLogout(text)
	}
}

// resetLogoutNotification clears the one-shot guard for a new
// connection attempt.
func (e *Engine) resetLogoutNotification() {
	e.logoutMu.Lock()
	e.logoutNotified = false
	e.logoutMu.Unlock()
}
