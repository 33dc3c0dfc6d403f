package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nestaway/internal/notifications"

	"github.com/alicebob/miniredis/v2"
	gws "github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve runs env's app on a loopback listener and returns the feed URL.
func serve(t *testing.T, env *testEnv) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = env.app.Listener(ln) }()
	t.Cleanup(func() {
		_ = env.srv.hub.Shutdown(context.Background())
		_ = env.app.Shutdown()
	})
	return "ws://" + ln.Addr().String() + "/api/ws/listings"
}

func dialFeed(t *testing.T, url string) *gws.Conn {
	t.Helper()
	conn, resp, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *gws.Conn) notifications.ListingEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev notifications.ListingEvent
	require.NoError(t, json.Unmarshal(msg, &ev))
	return ev
}

func createListing(t *testing.T, env *testEnv, title string) string {
	t.Helper()
	cookie := login(t, env, "feedhost@x.com")
	form := listingForm()
	form["title"] = title
	req := multipartRequest(t, form, pngUploads(t, 1))
	req.AddCookie(cookie)
	resp, body := env.do(t, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var out createResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out.Property.ID
}

func TestListingFeedRequiresUpgrade(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/ws/listings", nil))
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestListingFeedLocalDelivery(t *testing.T) {
	env := newTestEnv(t)
	url := serve(t, env)

	first := dialFeed(t, url)
	second := dialFeed(t, url)
	require.Eventually(t, func() bool { return env.srv.hub.Count() == 2 }, 2*time.Second, 10*time.Millisecond)

	id := createListing(t, env, "Lakeside cabin")

	for _, conn := range []*gws.Conn{first, second} {
		ev := readEvent(t, conn)
		assert.Equal(t, notifications.EventListingCreated, ev.Type)
		require.NotNil(t, ev.Property)
		assert.Equal(t, id, ev.Property.ID)
		assert.Equal(t, "Lakeside cabin", ev.Property.Title)
	}

	require.NoError(t, first.Close())
	require.Eventually(t, func() bool { return env.srv.hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestListingFeedAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	newRedis := func() *redis.Client {
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		return rdb
	}

	writer := newTestEnv(t, withRedis(newRedis()))
	reader := newTestEnv(t, withRedis(newRedis()))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, reader.srv.hub.StartWiring(ctx, reader.srv.notifier))

	conn := dialFeed(t, serve(t, reader))
	require.Eventually(t, func() bool { return reader.srv.hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	id := createListing(t, writer, "Harbor flat")

	ev := readEvent(t, conn)
	assert.Equal(t, notifications.EventListingCreated, ev.Type)
	require.NotNil(t, ev.Property)
	assert.Equal(t, id, ev.Property.ID)
}

func TestListingFeedIgnoresFailedCreates(t *testing.T) {
	env := newTestEnv(t)
	conn := dialFeed(t, serve(t, env))
	require.Eventually(t, func() bool { return env.srv.hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	cookie := login(t, env, "feedhost@x.com")
	req := multipartRequest(t, listingForm(), nil)
	req.AddCookie(cookie)
	resp, _ := env.do(t, req)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
