// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package metrics_test

import (
	"errors"
	"testing"
	"time"

	"codeberg.org/mainda/accounts/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAuthEvent(t *testing.T) {
	ok := metrics.AuthEvents.WithLabelValues("metrics_test", metrics.OutcomeSuccess)
	failed := metrics.AuthEvents.WithLabelValues("metrics_test", metrics.OutcomeFailure)
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	metrics.AuthEvent("metrics_test", nil)
	metrics.AuthEvent("metrics_test", errors.New("boom"))
	metrics.AuthEvent("metrics_test", errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+2, testutil.ToFloat64(failed))
}

func TestNotification(t *testing.T) {
	c := metrics.Notifications.WithLabelValues("metrics_test", metrics.OutcomeFailure)
	before := testutil.ToFloat64(c)

	metrics.Notification("metrics_test", errors.New("smtp down"))

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestObserveHTTP(t *testing.T) {
	c := metrics.HTTPRequests.WithLabelValues("GET", "/metrics-test", "200")
	before := testutil.ToFloat64(c)

	metrics.ObserveHTTP("GET", "/metrics-test", "200", 20*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(c))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.HTTPDuration, "mainda_http_request_duration_seconds"))
}
