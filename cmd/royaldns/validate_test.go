package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "callbacks.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"callbackToServer": {"speed_usa": "us-1"}}`), 0o600))

	var out bytes.Buffer
	require.NoError(t, runValidate(&out, path))
	assert.Contains(t, out.String(), "menu: 8 nodes ok")
	assert.Contains(t, out.String(), "routing: 1 servers, 0 international")
	assert.Contains(t, out.String(), "warning: no server for speed_ger")
	assert.NotContains(t, out.String(), "speed_usa")
}

func TestRunValidate_BadRoutingFile(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, runValidate(&out, filepath.Join(t.TempDir(), "absent.json")))
}

func TestRunValidate_ShippedRoutingFile(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runValidate(&out, filepath.Join("..", "..", "configs", "callbacks.json")))
	assert.Contains(t, out.String(), "routing: 6 servers, 2 international")
	assert.NotContains(t, out.String(), "warning")
}
