package timers

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phildougherty/quick-assistant/internal/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "timers.csv"))
	require.NoError(t, err)
	return store
}

func TestStoreCreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timers.csv")
	_, err := NewStore(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,timestamp\n", string(data))
}

func TestStoreAddAndList(t *testing.T) {
	store := newTestStore(t)

	later := time.Now().Add(time.Hour).Truncate(time.Second)
	sooner := time.Now().Add(time.Minute).Truncate(time.Second)
	require.NoError(t, store.Add("tea", later))
	require.NoError(t, store.Add("eggs", sooner))

	timers := store.List()
	require.Len(t, timers, 2)
	assert.Equal(t, "eggs", timers[0].Name)
	assert.Equal(t, "tea", timers[1].Name)
}

func TestStoreDefaultName(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Add("", time.Now().Add(time.Minute)))
	timers := store.List()
	require.Len(t, timers, 1)
	assert.Equal(t, "New Timer", timers[0].Name)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timers.csv")
	store, err := NewStore(path)
	require.NoError(t, err)

	at := time.Now().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, store.Add("laundry", at))

	reopened, err := NewStore(path)
	require.NoError(t, err)
	timers := reopened.List()
	require.Len(t, timers, 1)
	assert.Equal(t, "laundry", timers[0].Name)
	assert.True(t, timers[0].At.Equal(at))
}

func TestStoreRemove(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Add("tea", time.Now().Add(time.Hour)))
	require.NoError(t, store.Add("tea", time.Now().Add(2*time.Hour)))
	require.NoError(t, store.Add("eggs", time.Now().Add(time.Hour)))

	removed, err := store.Remove("tea")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	require.Len(t, store.List(), 1)

	removed, err = store.Remove("nothing")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestStoreCheckExpired(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	require.NoError(t, store.Add("past", now.Add(-time.Minute)))
	require.NoError(t, store.Add("future", now.Add(time.Hour)))

	expired, err := store.CheckExpired(now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "past", expired[0].Name)

	// Expired timers are gone from the store and from disk
	remaining := store.List()
	require.Len(t, remaining, 1)
	assert.Equal(t, "future", remaining[0].Name)

	expired, err = store.CheckExpired(now)
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestStoreIgnoresShortRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timers.csv")
	content := strings.Join([]string{
		"name,timestamp",
		"ok," + time.Now().Add(time.Hour).Format(time.RFC3339),
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	store, err := NewStore(path)
	require.NoError(t, err)
	assert.Len(t, store.List(), 1)
}

func TestAlarmRingOnceWhileRinging(t *testing.T) {
	alarm := NewAlarm()
	defer alarm.Stop()

	alarm.Ring("Timer", "tea")
	assert.True(t, alarm.Ringing())
	alarm.Ring("Timer", "eggs") // no-op while ringing
	assert.True(t, alarm.Ringing())

	alarm.Stop()
	assert.False(t, alarm.Ringing())
	alarm.Stop() // stopping twice is safe
}

func TestEngineFiresExpiredTimers(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Add("soon", time.Now().Add(200*time.Millisecond)))

	logger := logging.NewLogger("error")
	logger.SetOutput(io.Discard)

	var mu sync.Mutex
	var fired []Timer
	alarm := NewAlarm()
	engine := NewEngine(store, alarm, logger, func(expired []Timer) {
		mu.Lock()
		defer mu.Unlock()
		fired = append(fired, expired...)
	})

	require.NoError(t, engine.Start())
	defer engine.Stop()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(fired) == 1
	}, 5*time.Second, 50*time.Millisecond)

	mu.Lock()
	assert.Equal(t, "soon", fired[0].Name)
	mu.Unlock()
	assert.Empty(t, store.List())
}
