package client

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/peerdir/internal/common"
	"github.com/dmitrijs2005/peerdir/internal/dispatcher"
	"github.com/dmitrijs2005/peerdir/internal/logging"
	"github.com/dmitrijs2005/peerdir/internal/protocol"
	"github.com/dmitrijs2005/peerdir/internal/registry"
	"github.com/dmitrijs2005/peerdir/internal/server/tcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	ch chan string
}

func (s *recordingSink) Log(_ context.Context, user, operation, timestamp string) error {
	s.ch <- user + "|" + operation + "|" + timestamp
	return nil
}

func startCoordinator(t *testing.T, sink dispatcher.AuditSink) string {
	t.Helper()

	listen, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	reg := registry.New(registry.Options{})
	d := dispatcher.New(reg, sink, logging.NopLogger{}, dispatcher.Options{})
	srv := tcp.NewServer(listen.Addr().String(), d, logging.NopLogger{}, tcp.Options{ReadTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listen) }()

	t.Cleanup(func() {
		cancel()
		<-done
		d.Wait()
	})
	return listen.Addr().String()
}

func fixedClock(ts string) Clock {
	return func(context.Context) (string, error) { return ts, nil }
}

func TestClient_FullSession(t *testing.T) {
	addr := startCoordinator(t, nil)
	ctx := context.Background()
	c := New(addr, WithClock(fixedClock("01/05/2024 10:00:00")))

	require.NoError(t, c.Register(ctx, "alice"))
	assert.ErrorIs(t, c.Register(ctx, "alice"), common.ErrorAlreadyExists)

	require.NoError(t, c.Connect(ctx, "alice", 9000))
	assert.ErrorIs(t, c.Connect(ctx, "alice", 9000), common.ErrorAlreadyConnected)

	require.NoError(t, c.Publish(ctx, "alice", "song.mp3", "a demo track"))
	require.NoError(t, c.Publish(ctx, "alice", "notes.txt", "lecture notes"))
	assert.ErrorIs(t, c.Publish(ctx, "alice", "song.mp3", "again"), common.ErrorDuplicateFile)

	require.NoError(t, c.Register(ctx, "bob"))
	require.NoError(t, c.Connect(ctx, "bob", 9100))

	peers, err := c.ListUsers(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []Peer{
		{Name: "bob", IP: "127.0.0.1", Port: 9100},
		{Name: "alice", IP: "127.0.0.1", Port: 9000},
	}, peers)

	files, err := c.ListContent(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"notes.txt", "song.mp3"}, files)

	where, err := c.GetFile(ctx, "bob", "alice", "song.mp3")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", where)

	_, err = c.GetFile(ctx, "bob", "alice", "missing.bin")
	assert.ErrorIs(t, err, common.ErrorFileNotFound)

	require.NoError(t, c.Delete(ctx, "alice", "notes.txt"))
	assert.ErrorIs(t, c.Delete(ctx, "alice", "notes.txt"), common.ErrorFileNotFound)

	require.NoError(t, c.Disconnect(ctx, "alice"))
	_, err = c.GetFile(ctx, "bob", "alice", "song.mp3")
	assert.ErrorIs(t, err, common.ErrorTargetNotConnected)

	require.NoError(t, c.Unregister(ctx, "alice"))
	_, err = c.ListContent(ctx, "bob", "alice")
	assert.ErrorIs(t, err, common.ErrorTargetNotFound)
}

func TestClient_RequesterChecks(t *testing.T) {
	addr := startCoordinator(t, nil)
	ctx := context.Background()
	c := New(addr)

	_, err := c.ListUsers(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrorRequesterNotFound)

	require.NoError(t, c.Register(ctx, "carol"))
	_, err = c.ListUsers(ctx, "carol")
	assert.ErrorIs(t, err, common.ErrorRequesterNotConnected)

	assert.ErrorIs(t, c.Publish(ctx, "carol", "f", "d"), common.ErrorNotConnected)
	assert.ErrorIs(t, c.Disconnect(ctx, "carol"), common.ErrorNotConnected)
	assert.ErrorIs(t, c.Unregister(ctx, "ghost"), common.ErrorNotFound)
}

func TestClient_SendsTimestamp(t *testing.T) {
	sink := &recordingSink{ch: make(chan string, 1)}
	addr := startCoordinator(t, sink)

	c := New(addr, WithClock(fixedClock("24/12/2024 23:59:59")))
	require.NoError(t, c.Register(context.Background(), "alice"))

	select {
	case got := <-sink.ch:
		assert.Equal(t, "alice|REGISTER|24/12/2024 23:59:59", got)
	case <-time.After(2 * time.Second):
		t.Fatal("no audit record")
	}
}

func TestClient_Unavailable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	c := New(addr, WithTimeout(500*time.Millisecond))
	err = c.Register(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_ClockFailure(t *testing.T) {
	c := New("127.0.0.1:1", WithClock(func(context.Context) (string, error) {
		return "", errors.New("no time")
	}))
	err := c.Register(context.Background(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp")
}

func TestCounted(t *testing.T) {
	rest, err := counted([]string{"2", "a", "b"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rest)

	rest, err = counted([]string{"0"}, 3)
	require.NoError(t, err)
	assert.Empty(t, rest)

	_, err = counted(nil, 1)
	assert.ErrorIs(t, err, common.ErrorMalformedRequest)

	_, err = counted([]string{"3", "a"}, 1)
	assert.ErrorIs(t, err, common.ErrorMalformedRequest)

	_, err = counted([]string{"x"}, 1)
	assert.ErrorIs(t, err, common.ErrorMalformedRequest)
}

func TestTimeServiceClock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("01/05/2024 10:00:00"))
	}))
	defer srv.Close()

	ts, err := TimeServiceClock(srv.URL, srv.Client())(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "01/05/2024 10:00:00", ts)
}

func TestTimeServiceClock_RejectsGarbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tomorrow"))
	}))
	defer srv.Close()

	_, err := TimeServiceClock(srv.URL, srv.Client())(context.Background())
	assert.Error(t, err)
}

func TestWithTimeService_FallsBackToLocalClock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New("unused", WithTimeService(srv.URL))
	ts, err := c.clock(context.Background())
	require.NoError(t, err)
	_, err = time.Parse(common.TimestampLayout, ts)
	assert.NoError(t, err)
}

func TestClient_UnknownStatusFromServer(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		buf := make([]byte, protocol.MaxRequestSize)
		_, _ = conn.Read(buf)
		_, _ = conn.Write([]byte{0x42})
		_ = conn.Close()
	}()

	err = New(l.Addr().String()).Register(context.Background(), "alice")
	assert.ErrorIs(t, err, common.ErrorInternal)
}
