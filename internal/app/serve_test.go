package app

import (
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/iqbalbaharum/betting-market-client/internal/metrics"
	"github.com/iqbalbaharum/betting-market-client/internal/rpc"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestObserveSlotKeepsHighest(t *testing.T) {
	a := &App{logger: zap.NewNop(), metrics: metrics.Nop()}

	var last uint64
	for _, slot := range []uint64{100, 102, 101, 102, 105} {
		last = a.observeSlot(last, rpc.SlotNotification{Slot: slot})
	}

	assert.Equal(t, uint64(105), last)
	assert.Equal(t, 105.0, testutil.ToFloat64(a.metrics.LastSlot))

	last = a.observeSlot(last, rpc.SlotNotification{Slot: 90})
	assert.Equal(t, uint64(105), last)
	assert.Equal(t, 105.0, testutil.ToFloat64(a.metrics.LastSlot))
}

func TestShutdownLogsTimeout(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	a := &App{logger: zap.New(core), metrics: metrics.Nop()}

	entered := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
	})}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go server.Serve(listener)

	go http.Get("http://" + listener.Addr().String())

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("request never reached the handler")
	}

	a.shutdown(server, 10*time.Millisecond)

	entries := logs.FilterMessage("server shutdown").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestShutdownIdleServerIsQuiet(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	a := &App{logger: zap.New(core), metrics: metrics.Nop()}

	server := &http.Server{Handler: http.NotFoundHandler()}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go server.Serve(listener)

	a.shutdown(server, time.Second)
	assert.Zero(t, logs.Len())
}
