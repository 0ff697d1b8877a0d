package deposit

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zombor/palpa-deposit/internal/fault"
)

const unknownLocale = "unknown"

// Lookup outcomes used as metric labels
const (
	OutcomeOK              = "ok"
	OutcomeInvalidEAN      = "invalid_ean"
	OutcomeTypeMismatch    = "type_mismatch"
	OutcomeInvalidArgument = "invalid_argument"
	OutcomeProtocolError   = "protocol_error"
	OutcomeTransportError  = "transport_error"
)

// Metrics counts lookups by locale and outcome and times them
type Metrics struct {
	lookups  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the lookup metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "palpa_lookups_total",
				Help: "Total number of deposit lookups by locale and outcome",
			},
			[]string{"locale", "outcome"},
		),
		// Buckets cover the two or three round trips of one lookup
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "palpa_lookup_duration_seconds",
				Help:    "Duration of a whole deposit lookup session",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"locale"},
		),
	}

	if err := reg.Register(m.lookups); err != nil {
		return nil, err
	}
	if err := reg.Register(m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(locale string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(locale, Outcome(err)).Inc()
	m.duration.WithLabelValues(locale).Observe(elapsed.Seconds())
}

// Outcome classifies the error returned by Fetch
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	switch kind := fault.KindOf(err); {
	case errors.Is(kind, fault.InvalidEANInput):
		return OutcomeInvalidEAN
	case errors.Is(kind, fault.TypeMismatch):
		return OutcomeTypeMismatch
	case errors.Is(kind, fault.InvalidArgument):
		return OutcomeInvalidArgument
	case errors.Is(kind, fault.ServiceProtocol):
		return OutcomeProtocolError
	default:
		return OutcomeTransportError
	}
}
