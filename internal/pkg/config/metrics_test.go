package config

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// One instance per process: promauto registers with the default registry.
var testMetrics = NewMetrics("configtest")

func TestNewMetrics_InitializesAllCollectors(t *testing.T) {
	if testMetrics.LoadTimestamp == nil {
		t.Error("LoadTimestamp is nil")
	}
	if testMetrics.ValidationErrorsTotal == nil {
		t.Error("ValidationErrorsTotal is nil")
	}
	if testMetrics.FallbacksTotal == nil {
		t.Error("FallbacksTotal is nil")
	}
	if testMetrics.FallbackActive == nil {
		t.Error("FallbackActive is nil")
	}
}

func TestMetrics_RecordValidationError(t *testing.T) {
	before := testutil.ToFloat64(testMetrics.ValidationErrorsTotal.WithLabelValues("schedule"))
	testMetrics.RecordValidationError("schedule")
	testMetrics.RecordValidationError("schedule")

	got := testutil.ToFloat64(testMetrics.ValidationErrorsTotal.WithLabelValues("schedule"))
	if got != before+2 {
		t.Errorf("validation errors = %v, want %v", got, before+2)
	}
}

func TestMetrics_RecordFallback(t *testing.T) {
	before := testutil.ToFloat64(testMetrics.FallbacksTotal.WithLabelValues("timezone"))
	testMetrics.RecordFallback("timezone")

	got := testutil.ToFloat64(testMetrics.FallbacksTotal.WithLabelValues("timezone"))
	if got != before+1 {
		t.Errorf("fallbacks = %v, want %v", got, before+1)
	}
}

func TestMetrics_SetFallbackActive(t *testing.T) {
	testMetrics.SetFallbackActive(true)
	if got := testutil.ToFloat64(testMetrics.FallbackActive); got != 1 {
		t.Errorf("fallback active gauge = %v, want 1", got)
	}

	testMetrics.SetFallbackActive(false)
	if got := testutil.ToFloat64(testMetrics.FallbackActive); got != 0 {
		t.Errorf("fallback active gauge = %v, want 0", got)
	}
}

func TestMetrics_RecordLoadTimestamp(t *testing.T) {
	testMetrics.RecordLoadTimestamp()
	if got := testutil.ToFloat64(testMetrics.LoadTimestamp); got <= 0 {
		t.Errorf("load timestamp = %v, want positive unix time", got)
	}
}
