package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresFirebaseProject(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIREBASE_PROJECT_ID")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "salon-test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DASHBOARD_TIMEOUT", "")
	t.Setenv("NOTIFY_ROLE", "")
	t.Setenv("WORKER_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.DashboardTimeout)
	assert.Equal(t, "super_admin", cfg.NotifyRole)
	assert.False(t, cfg.WorkerEnabled)
}

func TestLoadBranchAdminNeedsBranch(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "salon-test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("NOTIFY_ROLE", "branch_admin")
	t.Setenv("NOTIFY_BRANCH", "")

	_, err := Load()
	require.Error(t, err)
}

func TestGetDurationAcceptsPlainSeconds(t *testing.T) {
	t.Setenv("X_TIMEOUT", "7")
	assert.Equal(t, 7*time.Second, getDuration("X_TIMEOUT", time.Second))

	t.Setenv("X_TIMEOUT", "nope")
	assert.Equal(t, time.Second, getDuration("X_TIMEOUT", time.Second))
}
