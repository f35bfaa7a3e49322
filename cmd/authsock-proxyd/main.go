package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/authsock/proxy/internal/agent"
	"github.com/authsock/proxy/internal/audit"
	"github.com/authsock/proxy/internal/config"
	"github.com/authsock/proxy/internal/metrics"
)

func main() {
	configPath := flag.String("config", "authsock.yaml", "path to the proxy configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, continuing with process environment")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	configureLogging(cfg.Log)

	reg := prometheus.NewRegistry()
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(reg)
	}

	sink := audit.Sink(audit.NewSlogSink(slog.Default()))

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("received shutdown signal, stopping endpoints")
		cancel()
	}()

	var diagServer *http.Server
	if cfg.Metrics.Enabled {
		diagServer = startDiagnosticsServer(cfg.Metrics.Addr, reg)
	}

	var wg sync.WaitGroup
	listeners := make([]*agent.Listener, 0, len(cfg.Endpoints))

	for _, ep := range cfg.Endpoints {
		rules, err := ep.RuleSet()
		if err != nil {
			log.Fatalf("endpoint %q: %v", ep.Name, err)
		}

		upstream := agent.NewUpstream(ep.UpstreamPath)
		mediator := agent.NewMediator(ep.Name, rules, upstream, sink, m)

		ln := agent.NewListener(ep.SocketPath)
		if err := ln.Bind(); err != nil {
			log.Fatalf("endpoint %q: binding %s: %v", ep.Name, ep.SocketPath, err)
		}
		listeners = append(listeners, ln)
		sink.Emit(audit.Event{Kind: audit.KindListenerBound, Endpoint: ep.Name, Message: ep.SocketPath})

		wg.Add(1)
		go func(ep config.EndpointConfig, ln *agent.Listener, mediator *agent.Mediator) {
			defer wg.Done()
			if err := ln.Run(ctx, mediator.HandleClient); err != nil {
				slog.Error("endpoint stopped unexpectedly", "endpoint", ep.Name, "error", err)
			}
		}(ep, ln, mediator)

		slog.Info("endpoint started", "endpoint", ep.Name, "socket_path", ep.SocketPath, "upstream_path", ep.UpstreamPath, "rules", rules.Len())
	}

	wg.Wait()

	for _, ln := range listeners {
		_ = ln.Close()
	}

	if diagServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := diagServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("diagnostics server shutdown error", "error", err)
		}
	}

	slog.Info("authsock-proxyd stopped")
}

// startDiagnosticsServer exposes Prometheus metrics on a dedicated HTTP
// listener, independent of any endpoint's Unix socket.
func startDiagnosticsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("diagnostics server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("diagnostics server failed", "error", err)
		}
	}()

	return server
}

// configureLogging installs the process-wide slog logger per the
// configured level and format (text for local development, json for
// production log aggregation).
func configureLogging(cfg config.LogConfig) {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
