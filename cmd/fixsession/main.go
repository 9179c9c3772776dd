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

// Command fixsession is an interactive console for driving a single
// NexusFix client session: it loads config.yaml, wires the engine to
// the configured message store / audit log / Kafka sink / Prometheus
// registry / websocket monitor, and hands the operator a readline
// prompt for order entry and session control. The Go shape of
// prime-fix-md-go/fixclient's Repl, rebuilt over the engine package
// instead of quickfix.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/SilverstreamsAI/NexusFix/engine"
	"github.com/SilverstreamsAI/NexusFix/session"
	"github.com/SilverstreamsAI/NexusFix/store"
	"github.com/SilverstreamsAI/NexusFix/transport"
)

func main() {
	configDir := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := loadConfig(*configDir)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	msgStore, closeStore, err := openMessageStore(cfg)
	if err != nil {
		logger.Fatal("failed to open message store", zap.Error(err))
	}
	defer closeStore()

	var audit *store.AuditLog
	if cfg.AuditLog != "" {
		audit, err = store.OpenAuditLog(cfg.AuditLog)
		if err != nil {
			logger.Fatal("failed to open audit log", zap.Error(err))
		}
		defer audit.Close()
	}

	handler := newReplHandler(logger, audit)

	opts := []engine.Option{
		engine.WithMessageStore(msgStore),
		engine.WithLogger(logger),
	}

	if cfg.KafkaBroker != "" {
		sink := engine.NewKafkaSink(cfg.KafkaBroker, cfg.KafkaTopic, logger)
		defer sink.Close()
		opts = append(opts, engine.WithAppSink(sink))
	}

	var monitor *engine.Monitor
	if cfg.MonitorAddr != "" {
		monitor = engine.NewMonitor(logger)
		opts = append(opts, engine.WithMonitor(monitor))
		go serveMonitor(cfg.MonitorAddr, monitor, logger)
	}

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, engine.WithMetricsRegistry(reg))
		go serveMetrics(cfg.MetricsAddr, reg, logger)
	}

	sessCfg := session.Config{
		SenderCompID:         cfg.SenderCompID,
		TargetCompID:         cfg.TargetCompID,
		BeginString:          "FIX.4.4",
		HeartBtInt:           cfg.HeartBtInt,
		LogonTimeout:         cfg.logonTimeout(),
		LogoutTimeout:        cfg.logoutTimeout(),
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
		ReconnectInterval:    cfg.reconnectInterval(),
		ResetSeqNumOnLogon:   cfg.ResetSeqNumOnLogon,
		Username:             cfg.Username,
		Password:             cfg.Password,
	}

	async := transport.NewAsyncTransport(transport.NewTCPTransport())
	e := engine.New(sessCfg, handler, async, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		e.RequestShutdown()
	}()

	runErr := make(chan error, 1)
	go func() { runErr <- e.RunWithRecovery(ctx, cfg.Addr) }()

	displayConnectionSuccess(cfg.SenderCompID, cfg.TargetCompID, cfg.Addr)
	repl(e, handler, cfg.Addr)

	e.RequestShutdown()
	cancel()
	if err := <-runErr; err != nil {
		logger.Warn("session ended with error", zap.Error(err))
	}
}

func openMessageStore(cfg fileConfig) (store.MessageStore, func(), error) {
	switch cfg.Store {
	case "null":
		return store.NewNullStore(), func() {}, nil
	case "badger":
		s, err := store.OpenBadgerStore(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		s := store.NewMemoryStore(10_000)
		return s, func() { s.Close() }, nil
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics listener stopped", zap.Error(err))
	}
}

func serveMonitor(addr string, monitor *engine.Monitor, logger *zap.Logger) {
	if err := http.ListenAndServe(addr, monitor); err != nil {
		logger.Warn("monitor listener stopped", zap.Error(err))
	}
}
