package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 20, c.Ranking.Lookback)
	assert.Equal(t, 0.95, c.Ranking.VaRConfidence)
	assert.Equal(t, 20, c.Ranking.Workers)
	assert.Equal(t, 5*time.Minute, c.Ranking.SpotCacheTTL)
	assert.Equal(t, 0.25, c.Ranking.Weights.Return)
	assert.Equal(t, 0.45, c.Ranking.Weights.Prob)
	assert.Equal(t, 0.10, c.Ranking.Weights.TailRisk)
	assert.Equal(t, "memory", c.Cache.Backend)
	assert.Equal(t, 100, c.Upstream.PageSize)
	assert.False(t, c.Kafka.Enabled)
	assert.True(t, c.Metrics.Enabled)
}

func TestParseKeepsExplicitValues(t *testing.T) {
	c, err := Parse([]byte(`
environment: prod
ranking:
  lookback: 30
  workers: 4
upstream:
  rps: 2.5
cache:
  backend: redis
`))
	require.NoError(t, err)
	assert.Equal(t, 30, c.Ranking.Lookback)
	assert.Equal(t, 4, c.Ranking.Workers)
	assert.Equal(t, 2.5, c.Upstream.RPS)
	assert.Equal(t, "redis", c.Cache.Backend)
}

func TestParseRejectsInvalid(t *testing.T) {
	for name, doc := range map[string]string{
		"lookback":   "ranking:\n  lookback: 1\n",
		"confidence": "ranking:\n  var_confidence: 1.5\n",
		"backend":    "cache:\n  backend: memcached\n",
		"kafka":      "kafka:\n  enabled: true\n",
		"yaml":       "server: [",
		"weight":     "ranking:\n  weights:\n    prob: -0.1\n",
		"score sum":  "ranking:\n  weights:\n    return: 0.9\n",
		"opt sum":    "ranking:\n  weights:\n    prob: 0.5\n    sigma: 0.5\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	env := map[string]string{
		"INLINERANK_ENV":  "staging",
		"KAFKA_BROKERS":   "k1:9092,k2:9092",
		"REDIS_ADDR":      "redis:6379",
		"CLICKHOUSE_HOST": "ch",
	}
	c.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "staging", c.Environment)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, "redis", c.Cache.Backend)
	assert.True(t, c.ClickHouse.Enabled)
	require.NoError(t, c.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: local\n"), 0o600))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "local", c.Environment)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestExplicitFalseSurvivesDefaults(t *testing.T) {
	c, err := Parse([]byte("server:\n  cors: false\nmetrics:\n  enabled: false\n"))
	require.NoError(t, err)
	assert.False(t, c.Server.CORS)
	assert.False(t, c.Metrics.Enabled)
}

func TestParseWeightsOverride(t *testing.T) {
	c, err := Parse([]byte(`
ranking:
  weights:
    prob: 1
    expected_return: 0
    sigma: 0
    tail_risk: 0
`))
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.Ranking.Weights.Prob)
	assert.Zero(t, c.Ranking.Weights.ExpectedReturn)
	assert.Equal(t, 0.20, c.Ranking.Weights.Distance)
}
