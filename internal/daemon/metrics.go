package daemon

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theirongolddev/greenlint/internal/model"
)

// Metrics exposes the latest scan as Prometheus gauges. Each Service owns a
// private registry so tests can build several services side by side.
type Metrics struct {
	registry *prometheus.Registry

	carbon           prometheus.Gauge
	cost             prometheus.Gauge
	files            prometheus.Gauge
	apiCalls         prometheus.Gauge
	passed           prometheus.Gauge
	policyGeneration prometheus.Gauge
	violations       *prometheus.GaugeVec
	modelCarbon      *prometheus.GaugeVec
	regionIntensity  *prometheus.GaugeVec
	scans            *prometheus.CounterVec
	analyzeRequests  prometheus.Counter
	scanDuration     prometheus.Histogram
}

// NewMetrics registers the greenlint collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		carbon: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "greenlint_carbon_grams",
			Help: "Estimated gCO2e of the last scan",
		}),
		cost: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "greenlint_cost_usd",
			Help: "Estimated USD cost of the last scan",
		}),
		files: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "greenlint_files_scanned",
			Help: "Files analyzed by the last scan",
		}),
		apiCalls: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "greenlint_api_calls",
			Help: "API call sites found by the last scan",
		}),
		passed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "greenlint_passed",
			Help: "1 if the last scan passed, 0 otherwise",
		}),
		policyGeneration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "greenlint_policy_generation",
			Help: "Number of policy loads since start",
		}),
		violations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "greenlint_violations",
			Help: "Violations in the last scan by severity",
		}, []string{"severity"}),
		modelCarbon: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "greenlint_model_carbon_grams",
			Help: "Estimated gCO2e per model in the last scan",
		}, []string{"model", "tier"}),
		regionIntensity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "greenlint_region_intensity",
			Help: "Grid intensity (gCO2e/kWh) of regions referenced by the last scan",
		}, []string{"region", "tier"}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "greenlint_scans_total",
			Help: "Completed scans by outcome",
		}, []string{"result"}),
		analyzeRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "greenlint_analyze_requests_total",
			Help: "Single-file analyze requests served",
		}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "greenlint_scan_duration_seconds",
			Help:    "Wall time of full rescans",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}

	m.registry.MustRegister(
		m.carbon, m.cost, m.files, m.apiCalls, m.passed, m.policyGeneration,
		m.violations, m.modelCarbon, m.regionIntensity,
		m.scans, m.analyzeRequests, m.scanDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observe(r *model.ScanResult, d time.Duration) {
	m.carbon.Set(r.TotalCarbon)
	m.cost.Set(r.TotalCost)
	m.files.Set(float64(r.FilesScanned))
	m.apiCalls.Set(float64(r.APICalls))
	if r.Passed {
		m.passed.Set(1)
		m.scans.WithLabelValues("passed").Inc()
	} else {
		m.passed.Set(0)
		m.scans.WithLabelValues("failed").Inc()
	}

	errs, warns, infos := r.Counts()
	m.violations.WithLabelValues(string(model.SeverityError)).Set(float64(errs))
	m.violations.WithLabelValues(string(model.SeverityWarning)).Set(float64(warns))
	m.violations.WithLabelValues(string(model.SeverityInfo)).Set(float64(infos))

	// Models and regions come and go between scans.
	m.modelCarbon.Reset()
	for _, u := range r.Models {
		m.modelCarbon.WithLabelValues(u.Name, u.Tier).Set(u.Carbon)
	}
	m.regionIntensity.Reset()
	for _, u := range r.Regions {
		m.regionIntensity.WithLabelValues(u.Name, u.Tier).Set(u.Intensity)
	}

	m.scanDuration.Observe(d.Seconds())
}

func (m *Metrics) scanFailed() {
	m.scans.WithLabelValues("error").Inc()
}
