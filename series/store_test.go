package series

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estimates.json")
	store := NewStore(path)

	require.NoError(t, store.Append(1455, -154))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, 1455.0, entries[0].FlightCountEstimate)
	assert.Equal(t, -154.0, entries[0].FlowImbalanceEstimate)
	assert.NotEmpty(t, entries[0].Timestamp)
}

func TestStore_AppendAccumulates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estimates.json")
	store := NewStore(path)

	require.NoError(t, store.Append(100, 10))
	require.NoError(t, store.Append(200, 20))
	require.NoError(t, store.Append(300, 30))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, 300.0, entries[2].FlightCountEstimate)
}

func TestStore_CorruptFileRestartsSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estimates.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewStore(path)
	require.NoError(t, store.Append(100, 10))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.Len(t, entries, 1, "corrupt content should be replaced with a fresh series")
}
