package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(overrides map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := fromViper(newTestViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "8787", cfg.Port)
	assert.Equal(t, "http://localhost:9200", cfg.Elasticsearch.URL)
	assert.Equal(t, 3*time.Second, cfg.Elasticsearch.PingTimeout)
	assert.Equal(t, "cities", cfg.CitiesIndex)
	assert.Equal(t, "documents", cfg.DocumentsIndex)
	assert.Equal(t, "cities", cfg.Database.CitiesTable)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Zero(t, cfg.ReconcileInterval)
	assert.True(t, cfg.IsDevelopment())
}

func TestElasticsearchURLTrailingSlashTrimmed(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]interface{}{
		"elasticsearch_url": "https://es.internal:9200/",
	}))
	require.NoError(t, err)
	assert.Equal(t, "https://es.internal:9200", cfg.Elasticsearch.URL)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]interface{}
	}{
		{"no scheme", map[string]interface{}{"elasticsearch_url": "localhost:9200"}},
		{"bad scheme", map[string]interface{}{"elasticsearch_url": "ftp://localhost:9200"}},
		{"negative retries", map[string]interface{}{"elasticsearch_max_retries": -1}},
		{"zero ping timeout", map[string]interface{}{"elasticsearch_ping_timeout": "0s"}},
		{"sampling rate", map[string]interface{}{"otel_sampling_rate": 1.5}},
		{"empty index", map[string]interface{}{"cities_index": ""}},
		{"negative rate limit", map[string]interface{}{"rate_limit_per_minute": -5}},
		{"negative reconcile", map[string]interface{}{"reconcile_interval": "-1m"}},
		{"table injection", map[string]interface{}{"cities_table": "cities; DROP TABLE x"}},
		{"empty table", map[string]interface{}{"cities_table": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromViper(newTestViper(tt.overrides))
			assert.Error(t, err)
		})
	}
}

func TestZeroRateLimitAccepted(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]interface{}{"rate_limit_per_minute": 0}))
	require.NoError(t, err)
	assert.Zero(t, cfg.RateLimitPerMinute)
}

func TestSchemaQualifiedTableAccepted(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]interface{}{"cities_table": "geo.us_cities"}))
	require.NoError(t, err)
	assert.Equal(t, "geo.us_cities", cfg.Database.CitiesTable)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "app", Name: "cities", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=app dbname=cities sslmode=disable", d.DSN())

	d.Password = "secret"
	assert.Contains(t, d.DSN(), "password=secret")

	d.URL = "postgres://u:p@h/db"
	assert.Equal(t, "postgres://u:p@h/db", d.DSN())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a , ,http://b "))
	assert.Empty(t, splitList(""))
}
