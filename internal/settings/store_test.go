package settings

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_TypedAccess(t *testing.T) {
	s := NewMemory(map[string]any{
		"flag":  true,
		"level": 3,
		"name":  "CN",
	}, nil)

	b, err := s.GetBool("flag")
	require.NoError(t, err)
	assert.True(t, b)

	i, err := s.GetInt("level")
	require.NoError(t, err)
	assert.Equal(t, 3, i)

	str, err := s.GetString("name")
	require.NoError(t, err)
	assert.Equal(t, "CN", str)

	_, err = s.GetInt("flag")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = s.GetBool("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSet_RejectsUnsupportedTypes(t *testing.T) {
	s := NewMemory(nil, nil)

	err := s.Set("k", 1.5)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = s.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWatch_NotifiesOnChangeOnly(t *testing.T) {
	s := NewMemory(map[string]any{KeyWifiUse: 1}, nil)

	var calls atomic.Int32
	cancel, err := s.Watch(KeyWifiUse, func(key string) {
		assert.Equal(t, KeyWifiUse, key)
		calls.Add(1)
	})
	require.NoError(t, err)

	require.NoError(t, s.SetInt(KeyWifiUse, 0))
	require.NoError(t, s.SetInt(KeyWifiUse, 0))
	require.NoError(t, s.SetBool(KeyFlightMode, true))
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	cancel()
	require.NoError(t, s.SetInt(KeyWifiUse, 1))
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 0, s.WatchCount(KeyWifiUse))
}

func TestWatch_NilCallback(t *testing.T) {
	s := NewMemory(nil, nil)
	_, err := s.Watch("k", nil)
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	s := NewMemory(map[string]any{"k": 1}, nil)

	var calls int
	_, err := s.Watch("k", func(string) { calls++ })
	require.NoError(t, err)

	require.NoError(t, s.Delete("k"))
	require.NoError(t, s.Delete("k"))

	_, err = s.GetInt("k")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestOpen_MissingFileSeedsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	s, err := Open(path, nil)
	require.NoError(t, err)

	ps, err := s.GetInt(KeyPowerSavingMode)
	require.NoError(t, err)
	assert.Equal(t, PowerSavingOff, ps)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file is written lazily")
}

func TestOpen_PersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetInt(KeyRingtoneVolume, 7))
	require.NoError(t, s.SetString(KeyCountry, "CN"))

	reopened, err := Open(path, nil)
	require.NoError(t, err)

	v, err := reopened.GetInt(KeyRingtoneVolume)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	c, err := reopened.GetString(KeyCountry)
	require.NoError(t, err)
	assert.Equal(t, "CN", c)
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := Open(path, nil)
	assert.Error(t, err)
}

func TestReload_NotifiesChangedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	a, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, a.SetBool(KeyFlightMode, false))

	b, err := Open(path, nil)
	require.NoError(t, err)

	var changed []string
	_, err = b.Watch(KeyFlightMode, func(key string) { changed = append(changed, key) })
	require.NoError(t, err)
	_, err = b.Watch(KeyWifiUse, func(key string) { changed = append(changed, key) })
	require.NoError(t, err)

	require.NoError(t, a.SetBool(KeyFlightMode, true))
	require.NoError(t, b.Reload())

	assert.Equal(t, []string{KeyFlightMode}, changed)

	fm, err := b.GetBool(KeyFlightMode)
	require.NoError(t, err)
	assert.True(t, fm)
}

func TestFileWatcher_PicksUpExternalWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	writer, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, writer.SetInt(KeyWifiUse, 1))

	reader, err := Open(path, nil)
	require.NoError(t, err)

	fw, err := NewFileWatcher(reader, nil)
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	defer func() { _ = fw.Stop() }()

	notified := make(chan struct{}, 1)
	_, err = reader.Watch(KeyWifiUse, func(string) {
		select {
		case notified <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	require.NoError(t, writer.SetInt(KeyWifiUse, 0))

	select {
	case <-notified:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	v, err := reader.GetInt(KeyWifiUse)
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestEntries_SortedByKey(t *testing.T) {
	s := NewMemory(map[string]any{"b": 1, "a": true, "c": "x"}, nil)

	entries := s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].Key)
	assert.Equal(t, "b", entries[1].Key)
	assert.Equal(t, "c", entries[2].Key)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"false", false},
		{"42", 42},
		{"-1", -1},
		{"CN", "CN"},
		{"1.5", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseValue(tt.in))
		})
	}
}
