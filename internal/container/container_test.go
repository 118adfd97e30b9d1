package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"fjacquet/paycycle/internal/advisor"
	"fjacquet/paycycle/internal/config"
	"fjacquet/paycycle/internal/logging"
	"fjacquet/paycycle/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(dsn string) *config.Config {
	return &config.Config{
		Log:        config.LogConfig{Level: "info", Format: "text"},
		Store:      config.StoreConfig{Driver: "sqlite", DSN: dsn},
		Forecast:   config.ForecastConfig{Currency: "AUD"},
		CreditCard: config.CreditCardConfig{MinimumFloorCents: 2500, MinimumRatePercent: 2},
		Anomaly:    config.AnomalyConfig{ThresholdPercent: 30, MinDeltaCents: 1000, MinCurrentCents: 1000},
		Reconcile:  config.ReconcileConfig{Schedule: "@daily"},
		API:        config.APIConfig{Address: ":0"},
		CSV:        config.CSVConfig{Delimiter: ";"},
		AI:         config.AIConfig{TimeoutSeconds: 30},
	}
}

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name        string
		config      *config.Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "nil config",
			config:      nil,
			expectError: true,
			errorMsg:    "configuration cannot be nil",
		},
		{
			name:   "sqlite store without AI",
			config: testConfig(filepath.Join(t.TempDir(), "paycycle.db")),
		},
		{
			name: "unsupported driver",
			config: func() *config.Config {
				c := testConfig("x")
				c.Store.Driver = "oracle"
				return c
			}(),
			expectError: true,
			errorMsg:    "failed to open store",
		},
		{
			name: "invalid schedule",
			config: func() *config.Config {
				c := testConfig(filepath.Join(t.TempDir(), "paycycle.db"))
				c.Reconcile.Schedule = "whenever"
				return c
			}(),
			expectError: true,
			errorMsg:    "invalid reconcile schedule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContainer(context.Background(), tt.config)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			defer func() { assert.NoError(t, c.Close()) }()

			assert.NotNil(t, c.GetLogger())
			assert.Equal(t, tt.config, c.GetConfig())
			assert.NotNil(t, c.GetStore())
			assert.NotNil(t, c.GetReconciler())
			assert.NotNil(t, c.GetSnapshotBuilder())
			assert.NotNil(t, c.GetRenderer())
			assert.NotNil(t, c.GetExtractor())
			assert.NotNil(t, c.GetScheduler())
			assert.IsType(t, advisor.Disabled{}, c.GetAdvisor())
		})
	}
}

func TestNewContainerWithRepository(t *testing.T) {
	_, err := NewContainerWithRepository(context.Background(), testConfig(""), nil, nil)
	assert.Error(t, err)

	repo := store.NewMemoryStore()
	require.NoError(t, repo.SetCurrentBalance(context.Background(), 12345))
	c, err := NewContainerWithRepository(context.Background(), testConfig(""), repo, logging.NewMockLogger())
	require.NoError(t, err)
	defer func() { assert.NoError(t, c.Close()) }()

	assert.Same(t, repo, c.GetStore())
	assert.Equal(t, "AUD", c.GetSnapshotBuilder().Currency())

	rec := httptest.NewRecorder()
	c.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContainer_SchedulerReconciles(t *testing.T) {
	c, err := NewContainerWithRepository(context.Background(), testConfig(""), store.NewMemoryStore(), logging.NewMockLogger())
	require.NoError(t, err)
	defer func() { assert.NoError(t, c.Close()) }()

	summary, err := c.GetScheduler().RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Checked)
	assert.Equal(t, 1, c.GetScheduler().Status().Runs)
}
