package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/boque/service/scheduler"
)

type statsFunc func() scheduler.Stats

func (f statsFunc) Stats() scheduler.Stats { return f() }

func TestCollector(t *testing.T) {
	stats := scheduler.Stats{Running: 2, Pending: 5, Finished: 7, Failed: 1}
	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(NewCollector(statsFunc(func() scheduler.Stats { return stats }))))

	families, err := registry.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			key := family.GetName() + "/" + metric.GetLabel()[0].GetValue()
			switch {
			case metric.GetGauge() != nil:
				values[key] = metric.GetGauge().GetValue()
			case metric.GetCounter() != nil:
				values[key] = metric.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, map[string]float64{
		"boque_tasks/pending":                   5,
		"boque_tasks/running":                   2,
		"boque_tasks_completed_total/finished":  7,
		"boque_tasks_completed_total/failed":    1,
		"boque_tasks_completed_total/cancelled": 0,
	}, values)

	server := httptest.NewServer(Handler(registry))
	defer server.Close()
	response, err := server.Client().Get(server.URL + Path)
	require.NoError(t, err)
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `boque_tasks_completed_total{state="finished"} 7`)
}
