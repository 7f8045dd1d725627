package browserbase

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicebrowser/internal/domain/entity"
)

func TestStateFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	state := NewStateFile(path)

	_, ok, err := state.Load()
	require.NoError(t, err)
	assert.False(t, ok, "missing file means no session")

	info := entity.SessionInfo{
		ID:         "sess-1",
		ConnectURL: "ws://example/devtools",
		ProjectID:  "proj-1",
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, state.Save(info))

	loaded, ok, err := state.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, info.ID, loaded.ID)
	assert.Equal(t, info.ConnectURL, loaded.ConnectURL)

	require.NoError(t, state.Clear())
	_, ok, err = state.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	// Clearing twice is fine.
	assert.NoError(t, state.Clear())
}

func TestStateFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	state := NewStateFile(path)
	_, ok, err := state.Load()
	require.NoError(t, err)
	assert.False(t, ok, "corrupt metadata is treated as absent")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "corrupt file should be removed")
}
