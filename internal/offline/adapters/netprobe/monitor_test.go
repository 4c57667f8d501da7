package netprobe_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesync/internal/offline/adapters/netprobe"
	"notesync/internal/offline/config"
)

var errUnreachable = errors.New("remote api unreachable")

// flakyPinger отвечает по сценарию: очередной вызов Ping снимает очередное
// значение из последовательности; после исчерпания повторяется последнее.
type flakyPinger struct {
	mu      sync.Mutex
	results []error
	calls   int
}

func (p *flakyPinger) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.calls
	if idx >= len(p.results) {
		idx = len(p.results) - 1
	}
	p.calls++
	return p.results[idx]
}

func testConfig() *config.ConnectivityConfig {
	return &config.ConnectivityConfig{
		ProbeInterval: 10 * time.Millisecond,
		ProbeTimeout:  time.Second,
	}
}

func waitForState(t *testing.T, states <-chan bool, want bool) {
	t.Helper()
	select {
	case got := <-states:
		require.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for connectivity state %v", want)
	}
}

func TestMonitor_InitialStateIsConnected(t *testing.T) {
	monitor := netprobe.NewMonitor(&flakyPinger{results: []error{nil}}, testConfig())
	assert.True(t, monitor.IsConnected())
}

func TestMonitor_DetectsConnectivityLossAndRecovery(t *testing.T) {
	pinger := &flakyPinger{results: []error{nil, errUnreachable, errUnreachable, nil}}
	monitor := netprobe.NewMonitor(pinger, testConfig())

	states := make(chan bool, 8)
	monitor.Subscribe(func(isConnected bool) {
		states <- isConnected
	})

	ctx := context.Background()
	monitor.Start(ctx)
	defer monitor.Stop(ctx)

	// Первая успешная проба не рассылается: состояние не изменилось.
	waitForState(t, states, false)
	assert.False(t, monitor.IsConnected())

	waitForState(t, states, true)
	assert.True(t, monitor.IsConnected())
}

func TestMonitor_NoNotificationOnSteadyState(t *testing.T) {
	pinger := &flakyPinger{results: []error{nil}}
	monitor := netprobe.NewMonitor(pinger, testConfig())

	notifications := 0
	monitor.Subscribe(func(bool) { notifications++ })

	ctx := context.Background()
	monitor.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	monitor.Stop(ctx)

	assert.Zero(t, notifications, "steady online state must not notify")
}

func TestMonitor_Unsubscribe(t *testing.T) {
	pinger := &flakyPinger{results: []error{errUnreachable, nil}}
	monitor := netprobe.NewMonitor(pinger, testConfig())

	states := make(chan bool, 8)
	unsubscribed := make(chan bool, 8)

	monitor.Subscribe(func(isConnected bool) { states <- isConnected })
	unsubscribe := monitor.Subscribe(func(isConnected bool) { unsubscribed <- isConnected })
	unsubscribe()

	ctx := context.Background()
	monitor.Start(ctx)
	defer monitor.Stop(ctx)

	waitForState(t, states, false)
	assert.Empty(t, unsubscribed)
}

func TestMonitor_StopHaltsProbing(t *testing.T) {
	pinger := &flakyPinger{results: []error{nil}}
	monitor := netprobe.NewMonitor(pinger, testConfig())

	ctx := context.Background()
	monitor.Start(ctx)
	monitor.Stop(ctx)

	pinger.mu.Lock()
	callsAtStop := pinger.calls
	pinger.mu.Unlock()

	time.Sleep(50 * time.Millisecond)

	pinger.mu.Lock()
	defer pinger.mu.Unlock()
	assert.Equal(t, callsAtStop, pinger.calls, "no probes after stop")
}
