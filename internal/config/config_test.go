package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CODEMISSION_SESSION_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:3001/api", cfg.APIBaseURL)
	require.Equal(t, 60*time.Second, cfg.RequestTimeout)
	require.Equal(t, 120*time.Second, cfg.UploadTimeout)
	require.Equal(t, 5*time.Minute, cfg.ReanalyzeTimeout)
	require.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	require.Equal(t, int64(50*1024*1024), cfg.MaxUploadBytes())
	require.Equal(t, 3, cfg.RetryAttempts)
	require.True(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CODEMISSION_API_BASE_URL", "https://api.example.com/api/")
	t.Setenv("CODEMISSION_API_TIMEOUT", "15s")
	t.Setenv("CODEMISSION_APP_ENV", "production")
	t.Setenv("CODEMISSION_SESSION_DRIVER", "redis")
	t.Setenv("CODEMISSION_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://api.example.com/api", cfg.APIBaseURL)
	require.Equal(t, 15*time.Second, cfg.RequestTimeout)
	require.False(t, cfg.IsDevelopment())
	require.Equal(t, SessionDriverRedis, cfg.SessionDriver)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad duration":        {"CODEMISSION_API_TIMEOUT": "soon", "CODEMISSION_SESSION_DRIVER": "memory"},
		"relative base url":   {"CODEMISSION_API_BASE_URL": "/api", "CODEMISSION_SESSION_DRIVER": "memory"},
		"unknown driver":      {"CODEMISSION_SESSION_DRIVER": "etcd"},
		"redis without url":   {"CODEMISSION_SESSION_DRIVER": "redis"},
		"negative retries":    {"CODEMISSION_RETRY_ATTEMPTS": "-1", "CODEMISSION_SESSION_DRIVER": "memory"},
		"zero upload timeout": {"CODEMISSION_API_UPLOAD_TIMEOUT": "0s", "CODEMISSION_SESSION_DRIVER": "memory"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for key, value := range env {
				t.Setenv(key, value)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}
