// Command udpechod runs the sharded UDP echo server: argument parsing,
// logging, and signal handling live here; the Supervisor and its Workers
// own everything else.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alan-Jowett/shardedudpecho/internal/config"
	"github.com/Alan-Jowett/shardedudpecho/internal/server"
	"github.com/Alan-Jowett/shardedudpecho/log"
	"github.com/Alan-Jowett/shardedudpecho/metrics"
)

// metricsReportPeriod is how often the background reporter logs a window of
// operational counters while the server is running. The metrics package logs
// these lines at debug level, so the default info-level logger does not
// print them.
const metricsReportPeriod = 30 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Parse(args, os.Stdout)
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "invalid arguments: %v\n", err)
		return 1
	}

	workers := cfg.ResolvedWorkerCount()
	log.Infof("config: %s resolved_workers=%d", cfg, workers)

	sup := server.New(server.WithRecvBufBytes(cfg.RecvBuf))
	if err := sup.Start(cfg.Port, workers, cfg.RecvBuf); err != nil {
		log.Errorf("failed to start: %v", err)
		return 1
	}

	go func() {
		for {
			metrics.ShowMetricsOfPeriod(metricsReportPeriod)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Infof("received signal %v, shutting down", sig)

	total := sup.Stop()
	metrics.ShowMetrics()
	log.Infof("final totals: packets_received=%d packets_sent=%d bytes_received=%d bytes_sent=%d",
		total.PacketsReceived, total.PacketsSent, total.BytesReceived, total.BytesSent)
	return 0
}
