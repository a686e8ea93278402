package kv

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{"plain", "informaticsTopics", "informaticsTopics", false},
		{"spaces trimmed", "  isAdmin ", "isAdmin", false},
		{"path separators", "../etc/passwd", "_etc_passwd", false},
		{"dots only", "..", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sanitizeKey(tt.key)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrEmptyKey)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s := NewFileStore(dir)

	_, ok, err := s.Load("informaticsTopics")
	require.NoError(t, err)
	require.False(t, ok, "missing key should report ok=false")

	require.NoError(t, s.Save("informaticsTopics", []byte(`[{"id":"topic1"}]`)))

	data, ok, err := s.Load("informaticsTopics")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[{"id":"topic1"}]`, string(data))

	path, err := s.Path("informaticsTopics")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "informaticsTopics.json"), path)
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestFileStoreOverwrite(t *testing.T) {
	s := NewFileStore(t.TempDir())

	require.NoError(t, s.Save("isAdmin", []byte("true")))
	require.NoError(t, s.Save("isAdmin", []byte("false")))

	data, ok, err := s.Load("isAdmin")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "false", string(data))
}

func TestFileStoreEmptyKey(t *testing.T) {
	s := NewFileStore(t.TempDir())
	require.ErrorIs(t, s.Save("", []byte("x")), ErrEmptyKey)
	_, _, err := s.Load(" ")
	require.ErrorIs(t, err, ErrEmptyKey)
}

func TestMemStore(t *testing.T) {
	var m MemStore

	_, ok, err := m.Load("k")
	require.NoError(t, err)
	require.False(t, ok)

	payload := []byte("v1")
	require.NoError(t, m.Save("k", payload))
	payload[0] = 'X'

	data, ok, err := m.Load("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v1", string(data), "saved value must not alias caller buffer")
	require.Equal(t, 1, m.Saves)

	boom := errors.New("disk full")
	m.FailSaves = boom
	require.ErrorIs(t, m.Save("k", []byte("v2")), boom)

	data, _, _ = m.Load("k")
	require.Equal(t, "v1", string(data))
}
