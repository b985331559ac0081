//go:build !windows

package process

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/internal/events"
)

const eventTimeout = 5 * time.Second

func waitForExit(t *testing.T, ch <-chan api.Event, id string) (api.Event, []api.Event) {
	t.Helper()
	var seen []api.Event
	deadline := time.After(eventTimeout)
	for {
		select {
		case ev := <-ch:
			if ev.ID != id {
				continue
			}
			if ev.Type == api.EventServerExit {
				return ev, seen
			}
			seen = append(seen, ev)
		case <-deadline:
			t.Fatalf("timed out waiting for exit of %s", id)
		}
	}
}

func TestRegistry_OutputAndExit(t *testing.T) {
	bus := events.NewBus(64)
	ch, cancel := bus.Subscribe()
	defer cancel()

	reg := NewRegistry(bus)
	id, err := reg.Spawn([]string{"sh", "-c", "echo hello; echo oops 1>&2; exit 3"}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	exit, outputs := waitForExit(t, ch, id)
	require.NotNil(t, exit.Code)
	assert.Equal(t, 3, *exit.Code)

	var stdout, stderr strings.Builder
	for _, ev := range outputs {
		assert.Equal(t, api.EventServerOutput, ev.Type)
		switch ev.Stream {
		case api.StreamStdout:
			stdout.WriteString(ev.Data)
		case api.StreamStderr:
			stderr.WriteString(ev.Data)
		}
	}
	assert.Equal(t, "hello\n", stdout.String())
	assert.Equal(t, "oops\n", stderr.String())

	assert.Empty(t, reg.List(), "exited process must be removed")
}

func TestRegistry_StopAfterExitIsNotFound(t *testing.T) {
	bus := events.NewBus(16)
	ch, cancel := bus.Subscribe(api.EventServerExit)
	defer cancel()

	reg := NewRegistry(bus)
	id, err := reg.Spawn([]string{"true"}, nil)
	require.NoError(t, err)

	waitForExit(t, ch, id)

	err = reg.Stop(id)
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}

func TestRegistry_ExitWhileDescendantHoldsPipes(t *testing.T) {
	bus := events.NewBus(64)
	ch, cancel := bus.Subscribe()
	defer cancel()

	reg := NewRegistry(bus)
	start := time.Now()
	id, err := reg.Spawn([]string{"sh", "-c", "sleep 10 & echo $!"}, nil)
	require.NoError(t, err)

	exit, outputs := waitForExit(t, ch, id)
	assert.Less(t, time.Since(start), 5*time.Second, "exit must not wait for the background job")
	require.NotNil(t, exit.Code)
	assert.Equal(t, 0, *exit.Code)

	var stdout strings.Builder
	for _, ev := range outputs {
		stdout.WriteString(ev.Data)
	}
	if pid, err := strconv.Atoi(strings.TrimSpace(stdout.String())); assert.NoError(t, err) {
		_ = syscall.Kill(pid, syscall.SIGKILL)
	}

	assert.Empty(t, reg.List())
	assert.True(t, api.IsNotFound(reg.Stop(id)))
}

func TestRegistry_StopRunning(t *testing.T) {
	bus := events.NewBus(16)
	ch, cancel := bus.Subscribe(api.EventServerExit)
	defer cancel()

	reg := NewRegistry(bus)
	id, err := reg.Spawn([]string{"sleep", "30"}, nil)
	require.NoError(t, err)
	require.Len(t, reg.List(), 1)

	require.NoError(t, reg.Stop(id))
	assert.Empty(t, reg.List(), "stop removes the entry immediately")

	exit, _ := waitForExit(t, ch, id)
	assert.Nil(t, exit.Code, "signalled process has no exit code")

	assert.True(t, api.IsNotFound(reg.Stop(id)))
}

func TestRegistry_StopUnknown(t *testing.T) {
	reg := NewRegistry(nil)
	err := reg.Stop("does-not-exist")
	assert.True(t, api.IsNotFound(err))

	_, err = reg.Output("does-not-exist")
	assert.True(t, api.IsNotFound(err))
}

func TestRegistry_SpawnErrors(t *testing.T) {
	reg := NewRegistry(nil)

	_, err := reg.Spawn(nil, nil)
	assert.Error(t, err)

	_, err = reg.Spawn([]string{"/definitely/not/a/binary"}, nil)
	assert.Error(t, err)
	assert.Empty(t, reg.List())
}

func TestRegistry_SpawnAndCollect(t *testing.T) {
	reg := NewRegistry(nil)

	id, output, err := reg.SpawnAndCollect(context.Background(),
		[]string{"sh", "-c", "echo ready; exit 0"}, nil, 2*time.Second)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, "ready\n", output)
}

func TestRegistry_EnvIsPassed(t *testing.T) {
	reg := NewRegistry(nil)

	_, output, err := reg.SpawnAndCollect(context.Background(),
		[]string{"sh", "-c", "printf %s \"$MCPDESK_TEST\""}, map[string]string{"MCPDESK_TEST": "value"}, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "value", output)
}

func TestRegistry_ConcurrentSpawnsGetUniqueIDs(t *testing.T) {
	reg := NewRegistry(nil)
	defer reg.StopAll()

	const n = 8
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := reg.Spawn([]string{"sleep", "30"}, nil)
			if assert.NoError(t, err) {
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, reg.List(), n)
}

func TestRegistry_IDCollisionIsRetried(t *testing.T) {
	reg := NewRegistry(nil)
	defer reg.StopAll()

	ids := []string{"same", "same", "other"}
	reg.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first, err := reg.Spawn([]string{"sleep", "30"}, nil)
	require.NoError(t, err)
	second, err := reg.Spawn([]string{"sleep", "30"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "same", first)
	assert.Equal(t, "other", second)
}
