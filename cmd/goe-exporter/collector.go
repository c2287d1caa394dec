package main

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/muurk/goe/goecharger"
	"github.com/muurk/goe/internal/logging"
)

// Target is a single charger scraped by the exporter
type Target struct {
	Name string
	Host string
}

// scrapeKeys is the default status selection plus the identity fields
// (friendly name, firmware, serial) carried on the info metric.
var scrapeKeys = append([]string{"fna", "fwv", "sse"}, goecharger.StatusDefault...)

// Collector implements prometheus.Collector for go-eCharger metrics.
// Every scrape fetches the default status selection from each target.
type Collector struct {
	targets []Target
	timeout time.Duration

	// Metrics
	carState      *prometheus.Desc
	errorState    *prometheus.Desc
	powerTotal    *prometheus.Desc
	powerPhase    *prometheus.Desc
	voltagePhase  *prometheus.Desc
	currentPhase  *prometheus.Desc
	ampere        *prometheus.Desc
	ampereMax     *prometheus.Desc
	chargeLimit   *prometheus.Desc
	temperature   *prometheus.Desc
	info          *prometheus.Desc
	scrapeSuccess *prometheus.Desc
}

// NewCollector creates a collector for the given chargers
func NewCollector(targets []Target, timeout time.Duration) *Collector {
	return &Collector{
		targets: targets,
		timeout: timeout,
		carState: prometheus.NewDesc(
			"goe_car_state",
			"Decoded car state (1=yes for the state named in the label)",
			[]string{"charger_name", "state"},
			nil,
		),
		errorState: prometheus.NewDesc(
			"goe_error",
			"Charger error flag (1 when the error named in the label is active)",
			[]string{"charger_name", "error"},
			nil,
		),
		powerTotal: prometheus.NewDesc(
			"goe_power_total_watts",
			"Total charging power in watts",
			[]string{"charger_name"},
			nil,
		),
		powerPhase: prometheus.NewDesc(
			"goe_power_phase_watts",
			"Per-phase charging power in watts",
			[]string{"charger_name", "phase"},
			nil,
		),
		voltagePhase: prometheus.NewDesc(
			"goe_voltage_phase_volts",
			"Per-phase voltage in volts",
			[]string{"charger_name", "phase"},
			nil,
		),
		currentPhase: prometheus.NewDesc(
			"goe_current_phase_amperes",
			"Per-phase current in amperes",
			[]string{"charger_name", "phase"},
			nil,
		),
		ampere: prometheus.NewDesc(
			"goe_ampere_requested",
			"Requested charging current in amperes",
			[]string{"charger_name"},
			nil,
		),
		ampereMax: prometheus.NewDesc(
			"goe_ampere_device_maximum",
			"Absolute maximum current of the device in amperes",
			[]string{"charger_name"},
			nil,
		),
		chargeLimit: prometheus.NewDesc(
			"goe_charge_limit_wh",
			"Session charge limit in watt-hours (absent when disabled)",
			[]string{"charger_name"},
			nil,
		),
		temperature: prometheus.NewDesc(
			"goe_temperature_celsius",
			"Average device temperature in degrees celsius",
			[]string{"charger_name"},
			nil,
		),
		info: prometheus.NewDesc(
			"goe_info",
			"Charger information",
			[]string{"charger_name", "host", "serial", "friendly_name", "firmware", "model", "charging_mode", "phase_mode", "cable_lock_mode"},
			nil,
		),
		scrapeSuccess: prometheus.NewDesc(
			"goe_scrape_success",
			"Whether scraping the charger API was successful",
			[]string{"charger_name"},
			nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.carState
	ch <- c.errorState
	ch <- c.powerTotal
	ch <- c.powerPhase
	ch <- c.voltagePhase
	ch <- c.currentPhase
	ch <- c.ampere
	ch <- c.ampereMax
	ch <- c.chargeLimit
	ch <- c.temperature
	ch <- c.info
	ch <- c.scrapeSuccess
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	var wg sync.WaitGroup

	for _, target := range c.targets {
		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			c.collectCharger(t, ch)
		}(target)
	}

	wg.Wait()
}

func (c *Collector) collectCharger(target Target, ch chan<- prometheus.Metric) {
	charger, err := goecharger.NewCharger(target.Host)
	if err != nil {
		logging.Error("invalid charger target",
			zap.String("charger", target.Name),
			zap.Error(err),
		)
		ch <- prometheus.MustNewConstMetric(c.scrapeSuccess, prometheus.GaugeValue, 0, target.Name)
		return
	}
	charger.SetTimeout(c.timeout)

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	status, err := charger.GetStatus(ctx, scrapeKeys...)
	if err != nil {
		logging.Error("scrape failed",
			zap.String("charger", target.Name),
			zap.String("host", target.Host),
			zap.Error(err),
		)
		ch <- prometheus.MustNewConstMetric(c.scrapeSuccess, prometheus.GaugeValue, 0, target.Name)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.scrapeSuccess, prometheus.GaugeValue, 1, target.Name)

	if state, ok := status["car_state"].(string); ok {
		ch <- prometheus.MustNewConstMetric(c.carState, prometheus.GaugeValue, 1, target.Name, state)
	}
	if errName, ok := status["error"].(string); ok && errName != "" {
		ch <- prometheus.MustNewConstMetric(c.errorState, prometheus.GaugeValue, 1, target.Name, errName)
	}
	if v, ok := status["ampere"].(float64); ok {
		ch <- prometheus.MustNewConstMetric(c.ampere, prometheus.GaugeValue, v, target.Name)
	}
	if v, ok := status["ampere_device_maximum"].(float64); ok {
		ch <- prometheus.MustNewConstMetric(c.ampereMax, prometheus.GaugeValue, v, target.Name)
	}
	if v, ok := status["charge_limit"].(float64); ok {
		ch <- prometheus.MustNewConstMetric(c.chargeLimit, prometheus.GaugeValue, v, target.Name)
	}
	if v, ok := status["temperature"].(float64); ok {
		ch <- prometheus.MustNewConstMetric(c.temperature, prometheus.GaugeValue, v, target.Name)
	}

	if e, ok := status["energy"].(*goecharger.Energy); ok && e != nil {
		ch <- prometheus.MustNewConstMetric(c.powerTotal, prometheus.GaugeValue, e.Power.Total, target.Name)

		phases := []struct {
			label   string
			power   float64
			voltage float64
			current float64
		}{
			{"L1", e.Power.L1, e.Voltage.L1, e.Current.L1},
			{"L2", e.Power.L2, e.Voltage.L2, e.Current.L2},
			{"L3", e.Power.L3, e.Voltage.L3, e.Current.L3},
		}
		for _, p := range phases {
			ch <- prometheus.MustNewConstMetric(c.powerPhase, prometheus.GaugeValue, p.power, target.Name, p.label)
			ch <- prometheus.MustNewConstMetric(c.voltagePhase, prometheus.GaugeValue, p.voltage, target.Name, p.label)
			ch <- prometheus.MustNewConstMetric(c.currentPhase, prometheus.GaugeValue, p.current, target.Name, p.label)
		}
	}

	infoLabels := []string{
		target.Name,
		target.Host,
		stringField(status, "sse"),
		stringField(status, "fna"),
		stringField(status, "fwv"),
		stringField(status, "device_model"),
		stringField(status, "charging_mode"),
		stringField(status, "phase_mode"),
		stringField(status, "cable_lock_mode"),
	}
	ch <- prometheus.MustNewConstMetric(c.info, prometheus.GaugeValue, 1, infoLabels...)
}

func stringField(status goecharger.Status, name string) string {
	if v, ok := status[name].(string); ok {
		return v
	}
	return ""
}
