package faq

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/polyglot-faq/pkg/metrics"
)

func counterValue(t *testing.T, recorder *metrics.Recorder, level, result string) float64 {
	t.Helper()
	families, err := recorder.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "faq_cache_lookups_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			if labelsMatch(metric, level, result) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(metric *dto.Metric, level, result string) bool {
	var gotLevel, gotResult string
	for _, pair := range metric.GetLabel() {
		switch pair.GetName() {
		case "level":
			gotLevel = pair.GetValue()
		case "result":
			gotResult = pair.GetValue()
		}
	}
	return gotLevel == level && gotResult == result
}
