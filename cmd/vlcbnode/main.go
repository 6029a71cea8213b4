// cmd/vlcbnode/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tamzrod/vlcb-node/internal/config"
	"github.com/tamzrod/vlcb-node/internal/gridconnect"
	"github.com/tamzrod/vlcb-node/internal/logging"
	"github.com/tamzrod/vlcb-node/internal/metrics"
	"github.com/tamzrod/vlcb-node/internal/node"
	"github.com/tamzrod/vlcb-node/internal/status"
	"github.com/tamzrod/vlcb-node/internal/store"
	"github.com/tamzrod/vlcb-node/internal/teach"
	"github.com/tamzrod/vlcb-node/internal/vlcb"
	"github.com/tamzrod/vlcb-node/internal/writer"
)

// transportError carries the port error status as its code.
type transportError struct{ status uint16 }

func (e transportError) Error() string { return "transport error" }
func (e transportError) Code() uint16  { return e.status }

func main() {
	fs := flag.NewFlagSet("vlcbnode", flag.ContinueOnError)
	var (
		cfgPath  = fs.String("config", "", "path to the node YAML configuration")
		logLevel = fs.String("log-level", "", "override log.level (trace|debug|info|warn|error|disabled)")
		port     = fs.String("port", "", "override transport.port (serial device of the CAN interface)")
		listen   = fs.String("metrics-listen", "", "override metrics.listen (host:port of the /metrics endpoint)")
	)

	boot := logging.New("vlcbnode", "info", os.Stderr)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("VLCBNODE")); err != nil {
		boot.Fatal().Err(err).Msg("flag parse failed")
	}
	if *cfgPath == "" {
		boot.Fatal().Msg("usage: vlcbnode -config <node.yaml>")
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		boot.Fatal().Err(err).Msg("config load failed")
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *port != "" {
		cfg.Transport.Port = *port
	}
	if *listen != "" {
		cfg.Metrics.Listen = *listen
	}

	if err := config.Validate(cfg); err != nil {
		boot.Fatal().Err(err).Msg("config validation failed")
	}
	config.Normalize(cfg)

	log := logging.New("vlcbnode", cfg.Log.Level, os.Stderr)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("node stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Event table
	// --------------------

	size := store.ImageSize(cfg.Events.MaxEvents, cfg.Events.MaxEventVariables)
	image, err := store.LoadImage(cfg.Store.Path, size)
	if err != nil {
		return err
	}
	st, err := store.New(image, cfg.Events.MaxEvents, cfg.Events.MaxEventVariables)
	if err != nil {
		return err
	}
	save := func() {
		if !image.Dirty() {
			return
		}
		if err := image.Save(cfg.Store.Path); err != nil {
			log.Error().Err(err).Str("path", cfg.Store.Path).Msg("image save failed")
		}
	}
	defer save()

	// --------------------
	// Bus transport
	// --------------------

	p, err := gridconnect.Open(gridconnect.Config{
		Port:     cfg.Transport.Port,
		BaudRate: cfg.Transport.BaudRate,
		Timeout:  time.Duration(cfg.Transport.TimeoutMs) * time.Millisecond,
		CANID:    cfg.Node.CANID,
	})
	if err != nil {
		return err
	}
	defer p.Close()

	// --------------------
	// Node
	// --------------------

	var teaching teach.Addressing = teach.IndexAddressed{}
	if cfg.Node.Teaching == config.TeachingEvent {
		teaching = teach.EventAddressed{}
	}

	n := node.New(node.Config{
		NodeNumber:       cfg.Node.NodeNumber,
		Producer:         cfg.Node.Producer,
		Consumer:         cfg.Node.Consumer,
		ConsumeOwnEvents: cfg.Node.ConsumeOwnEvents,
		FCUCompatible:    cfg.Node.FCUCompatible,
		Teaching:         teaching,
		Handler: func(index int, m vlcb.Message) {
			log.Info().Int("index", index).Stringer("frame", m).Msg("event")
		},
	}, st, p, p, log)

	td := n.TeachingData()
	log.Info().
		Uint16("node", cfg.Node.NodeNumber).
		Str("teaching", cfg.Node.Teaching).
		Int("max_events", td.MaxEvents).
		Int("max_evs", td.MaxEVs).
		Int("stored", st.Count()).
		Msg("node started")

	// --------------------
	// Metrics
	// --------------------

	collector := metrics.New(cfg.Node.NodeNumber)
	if cfg.Metrics.Listen != "" {
		reg := prometheus.NewRegistry()
		if err := collector.Register(reg); err != nil {
			return err
		}
		srv := &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer srv.Close()
	}

	// --------------------
	// Status mirror (optional)
	// --------------------

	plan, err := writer.BuildStatusPlan(cfg.Status)
	if err != nil {
		return err
	}
	var statusWriter writer.StatusWriter
	statusEnabled := false
	if plan != nil {
		cli, closeWriter, err := writer.BuildEndpointClient(plan, time.Duration(cfg.Status.TimeoutMs)*time.Millisecond)
		if err != nil {
			return err
		}
		defer closeWriter()
		statusWriter, statusEnabled = writer.NewNodeStatusWriter(plan, cli)
	}

	// --------------------
	// Orchestrator (dispatch-owned state + 1Hz ticker)
	// --------------------

	frames := make(chan vlcb.Message, 16)
	rxDone := make(chan error, 1)
	go func() {
		rxDone <- gridconnect.Run(ctx, p, frames, log)
	}()

	var health status.Health
	var lastSendErrors uint32

	publish := func() {
		stats := n.Stats()
		collector.Publish(stats)

		if !statusEnabled {
			return
		}
		snap := status.FromStats(stats)
		health.Apply(&snap)
		if err := statusWriter.WriteStatus(snap); err != nil {
			log.Warn().Err(err).Msg("status write failed")
		}
	}

	// Full block write on start (identity re-assert) if enabled.
	publish()

	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return nil

		case m := <-frames:
			start := time.Now()
			n.Handle(m)
			collector.ObserveFrame(m.Opcode(), time.Since(start))

		case err := <-rxDone:
			if err == nil {
				return nil
			}
			health.Observe(err)
			publish()
			return err

		case <-secTicker.C:
			save()

			// health covers the last second of transmit attempts
			stats := n.Stats()
			if stats.SendErrors != lastSendErrors {
				lastSendErrors = stats.SendErrors
				health.Observe(transportError{status: p.ErrorStatus()})
			} else {
				health.Observe(nil)
			}
			health.Tick()

			publish()
		}
	}
}
