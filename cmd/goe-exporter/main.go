// Goe-exporter is a Prometheus exporter for go-eCharger EV wallbox devices.
//
// Every scrape of /metrics polls the configured chargers over the local
// HTTP API v2 and exposes power, current, voltage, temperature and state
// metrics. Chargers are configured via the GOE_CHARGERS environment
// variable as comma-separated name=host pairs.
//
// Usage:
//
//	GOE_CHARGERS="garage=192.168.1.40,carport=wallbox.fritz.box" goe-exporter
package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/muurk/goe/internal/logging"
	"github.com/muurk/goe/internal/version"
)

const (
	defaultPort    = "9916"
	defaultTimeout = 5 * time.Second
)

// parseTargets parses charger configuration from environment variables.
// GOE_CHARGERS holds comma-separated entries, each either a bare host or a
// name=host pair.
func parseTargets() ([]Target, error) {
	spec := os.Getenv("GOE_CHARGERS")
	if spec == "" {
		return nil, fmt.Errorf("GOE_CHARGERS must be set (comma-separated name=host pairs)")
	}

	entries := strings.Split(spec, ",")
	targets := make([]Target, 0, len(entries))
	for i, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name := "charger" + strconv.Itoa(i)
		host := entry
		if idx := strings.Index(entry, "="); idx >= 0 {
			name = strings.TrimSpace(entry[:idx])
			host = strings.TrimSpace(entry[idx+1:])
		}
		if name == "" || host == "" {
			return nil, fmt.Errorf("invalid charger entry '%s', want name=host", entry)
		}

		targets = append(targets, Target{Name: name, Host: host})
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no valid chargers configured")
	}

	return targets, nil
}

// scrapeTimeout reads the per-charger scrape timeout from the environment
func scrapeTimeout() time.Duration {
	raw := os.Getenv("GOE_SCRAPE_TIMEOUT")
	if raw == "" {
		return defaultTimeout
	}
	timeout, err := time.ParseDuration(raw)
	if err != nil || timeout <= 0 {
		logging.Warn("invalid GOE_SCRAPE_TIMEOUT, using default",
			zap.String("value", raw),
			zap.Duration("default", defaultTimeout),
		)
		return defaultTimeout
	}
	return timeout
}

func main() {
	if err := logging.Initialize("info"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	port := os.Getenv("GOE_EXPORTER_PORT")
	if port == "" {
		port = defaultPort
	}

	targets, err := parseTargets()
	if err != nil {
		logging.Fatal("configuration error", zap.Error(err))
	}

	logging.Info("starting go-eCharger exporter",
		zap.String("version", version.Version),
		zap.String("port", port),
		zap.Int("chargers", len(targets)),
	)
	for _, t := range targets {
		logging.Info("monitoring charger",
			zap.String("name", t.Name),
			zap.String("host", t.Host),
		)
	}

	collector := NewCollector(targets, scrapeTimeout())
	prometheus.MustRegister(collector)

	http.Handle("/metrics", promhttp.Handler())

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		var list strings.Builder
		for _, t := range targets {
			list.WriteString(fmt.Sprintf("<li>%s: %s</li>\n", t.Name, t.Host))
		}
		fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>go-eCharger Exporter</title></head>
<body>
<h1>go-eCharger Prometheus Exporter</h1>
<p>Monitoring %d charger(s)</p>
<ul>
%s</ul>
<p><a href="/metrics">Metrics</a></p>
</body>
</html>`, len(targets), list.String())
	})

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logging.Fatal("server failed", zap.Error(err))
	}
}
