package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterMetrics(reg)

	RecordHTTPRequest("GET", "/health", "200", 10*time.Millisecond)
	RecordAccountOperation("login", ResultSuccess)
	RecordMailFailure("activation")

	families, err := reg.Gather()
	require.NoError(t, err)

	registered := make(map[string]bool)
	for _, family := range families {
		registered[family.GetName()] = true
	}
	for _, name := range []string{
		"tamuroo_http_requests_total",
		"tamuroo_http_request_duration_seconds",
		"tamuroo_account_operations_total",
		"tamuroo_mail_failures_total",
	} {
		assert.True(t, registered[name], "metric %q should be registered", name)
	}
}

func TestRecordAccountOperation(t *testing.T) {
	before := testutil.ToFloat64(AccountOperations.WithLabelValues("register", ResultRejected))

	RecordAccountOperation("register", ResultRejected)

	assert.Equal(t, before+1, testutil.ToFloat64(AccountOperations.WithLabelValues("register", ResultRejected)))
}
