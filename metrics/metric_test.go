package metrics_test

import (
	"testing"
	"time"

	"github.com/Alan-Jowett/shardedudpecho/metrics"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	metrics.Add(metrics.AffinityHintOK, 1)
	assert.Equal(t, uint64(1), metrics.Get(metrics.AffinityHintOK))
	metrics.Add(metrics.AffinityHintOK, 1)
	assert.Equal(t, uint64(2), metrics.Get(metrics.AffinityHintOK))

	metrics.Add(metrics.Max+1, 1)
	assert.Equal(t, uint64(0), metrics.Get(metrics.Max+1))
	assert.Equal(t, uint64(0), metrics.Get(-1))

	metrics.Add(metrics.RecvMMsgCalls, 9)
	metrics.Add(metrics.RecvMMsgPackets, 99)
	metrics.Add(metrics.SendMMsgCalls, 8)
	metrics.Add(metrics.SendMMsgPackets, 80)
	metrics.Add(metrics.BindFail, 1)
	metrics.Add(metrics.BufferSizeSetFail, 1)
	metrics.Add(metrics.DualStackFallback, 1)
	metrics.Add(metrics.EchoDropSendPoolExhausted, 1)
	metrics.Add(metrics.RecvRepostFail, 1)

	all := metrics.GetAll()
	assert.Equal(t, uint64(9), all[metrics.RecvMMsgCalls])

	metrics.ShowMetrics()
	metrics.ShowMetricsOfPeriod(time.Millisecond)
}
