package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "storefront version "))
}

func TestMigrateNeedsPostgres(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cmd := rootCmd()
	cmd.SetArgs([]string{"migrate"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")
}

func TestFulfilArgs(t *testing.T) {
	cmd := rootCmd()
	cmd.SetArgs([]string{"fulfil", "ship", "o-1"})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
}

func TestServeFailsFastOnBadBroker(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("EVENTS_DRIVER", "nats")
	t.Setenv("NATS_URL", "nats://127.0.0.1:1")
	t.Setenv("LOG_LEVEL", "error")

	cmd := rootCmd()
	cmd.SetArgs([]string{"serve", "--relay"})

	done := make(chan error, 1)
	go func() { done <- cmd.Execute() }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "events publisher")
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return")
	}
}
