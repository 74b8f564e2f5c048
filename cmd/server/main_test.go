package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/productflow/internal/config"
)

func TestRootCmdFlags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--addr", ":9090", "--config", "productflow.yaml"}))

	addr, err := cmd.Flags().GetString("addr")
	require.NoError(t, err)
	assert.Equal(t, ":9090", addr)
	assert.True(t, cmd.Flags().Changed("addr"))

	path, err := cmd.Flags().GetString("config")
	require.NoError(t, err)
	assert.Equal(t, "productflow.yaml", path)
}

func TestSessionSettings(t *testing.T) {
	cfg := config.Default()
	cfg.History.MaxDepth = 40
	cfg.Editor.DarkMode = true
	cfg.Session.EventTimeoutMs = 250

	st := sessionSettings(cfg)
	assert.Equal(t, 40, st.HistoryLimit)
	assert.True(t, st.DarkMode)
	assert.True(t, st.AllowSelfLoops)
	assert.Equal(t, 250*time.Millisecond, st.EventTimeout)
	assert.Equal(t, cfg.Session.QueueDepth, st.QueueDepth)
	assert.Equal(t, cfg.Session.MaxSessions, st.MaxSessions)
}
