package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := New()

	r.CacheLookup(LevelField, ResultHit)
	r.CacheLookup(LevelField, ResultHit)
	r.CacheLookup(LevelList, ResultMiss)
	r.ProviderCall(ResultFailure, 20*time.Millisecond)
	r.Invalidation(ResultSuccess, 3)
	r.HTTPRequest("GET", "", 404, time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues(LevelField, ResultHit)))
	require.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues(LevelList, ResultMiss)))
	require.Equal(t, 1.0, testutil.ToFloat64(r.providerCalls.WithLabelValues(ResultFailure)))
	require.Equal(t, 3.0, testutil.ToFloat64(r.purgedKeys))
	require.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	require.NotPanics(t, func() {
		r.CacheLookup(LevelDetail, ResultError)
		r.ProviderCall(ResultSuccess, time.Millisecond)
		r.Invalidation(ResultFailure, 0)
		r.HTTPRequest("POST", "/api/v1/faqs", 201, time.Millisecond)
	})
}
