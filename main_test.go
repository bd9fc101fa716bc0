package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvBindingReachesDashedFlags(t *testing.T) {
	t.Setenv("CAMPAIGN_ACCOUNT_WORKERS", "7")
	t.Setenv("CAMPAIGN_SNAPSHOT_DB", "runs.db")

	newRootCmd()

	assert.Equal(t, 7, viper.GetInt("account-workers"))
	assert.Equal(t, "runs.db", viper.GetString("snapshot-db"))
}

func TestBuildConfigRejectsBadStartDate(t *testing.T) {
	t.Setenv("CAMPAIGN_ACCOUNTS", "accounts.txt")
	t.Setenv("CAMPAIGN_TARGETS", "targets.csv")
	t.Setenv("CAMPAIGN_START_DATE", "10-05-2026")

	newRootCmd()

	_, err := buildConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start-date")
}

func TestBuildConfigParsesStartDate(t *testing.T) {
	t.Setenv("CAMPAIGN_ACCOUNTS", "accounts.txt")
	t.Setenv("CAMPAIGN_TARGETS", "targets.csv")
	t.Setenv("CAMPAIGN_START_DATE", "2026-05-10")

	newRootCmd()

	cfg, err := buildConfig()
	require.NoError(t, err)
	assert.Equal(t, 2026, cfg.StartDate.Year())
	assert.Equal(t, "accounts.txt", cfg.AccountsFile)
}
