package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func startHubServer(t *testing.T, hub *Hub, venueID string) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.ServeWS(conn, "owner-1", venueID)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHub_BroadcastReachesVenueSubscribers(t *testing.T) {
	hub := NewHub(nil)
	srv := startHubServer(t, hub, "V1")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers("V1") == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.Subscribers("V2"))

	assert.Equal(t, 0, hub.BroadcastToVenue("V2", Event{Type: EventBookingCreated, VenueID: "V2"}))
	assert.Equal(t, 1, hub.BroadcastToVenue("V1", Event{Type: EventBookingCreated, VenueID: "V1", BookingID: "b1"}))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, EventBookingCreated, got.Type)
	assert.Equal(t, "b1", got.BookingID)
}

func TestHub_DropsRepeatedChange(t *testing.T) {
	hub := NewHub(nil)
	clock := time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC)
	hub.now = func() time.Time { return clock }
	srv := startHubServer(t, hub, "V1")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Subscribers("V1") == 1 }, time.Second, 10*time.Millisecond)

	confirmed := Event{Type: EventBookingStatusChanged, VenueID: "V1", BookingID: "b1", Status: "CONFIRMED"}
	assert.Equal(t, 1, hub.BroadcastToVenue("V1", confirmed))
	// The backend relays the same change.
	assert.Equal(t, 0, hub.BroadcastToVenue("V1", confirmed))

	cancelled := confirmed
	cancelled.Status = "CANCELLED"
	assert.Equal(t, 1, hub.BroadcastToVenue("V1", cancelled))

	clock = clock.Add(dedupeWindow)
	assert.Equal(t, 1, hub.BroadcastToVenue("V1", confirmed))

	// Events without a booking are never collapsed.
	bare := Event{Type: EventBookingCreated, VenueID: "V1"}
	assert.Equal(t, 1, hub.BroadcastToVenue("V1", bare))
	assert.Equal(t, 1, hub.BroadcastToVenue("V1", bare))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var statuses []string
	for i := 0; i < 3; i++ {
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var got Event
		require.NoError(t, json.Unmarshal(msg, &got))
		statuses = append(statuses, got.Status)
	}
	assert.Equal(t, []string{"CONFIRMED", "CANCELLED", "CONFIRMED"}, statuses)
}

func TestHub_UnsubscribeAndResubscribe(t *testing.T) {
	hub := NewHub(nil)
	srv := startHubServer(t, hub, "V1")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Subscribers("V1") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "unsubscribe", "venue_id": "V1"}))
	require.Eventually(t, func() bool { return hub.Subscribers("V1") == 0 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "subscribe", "venue_id": "V9"}))
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "subscribe", "venue_id": "V1"}))
	require.Eventually(t, func() bool { return hub.Subscribers("V1") == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.Subscribers("V9"))
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub := NewHub(nil)
	srv := startHubServer(t, hub, "V1")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Subscribers("V1") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Subscribers("V1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingBroadcaster) BroadcastToVenue(venueID string, event Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return 1
}

func (r *recordingBroadcaster) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestListener_ForwardsKnownEvents(t *testing.T) {
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer service-token", r.Header.Get("Authorization"))
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"booking.cancelled","venueId":"V1","bookingId":"b7","status":"CANCELLED"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"court.renamed","venueId":"V1"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`garbage`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"booking.created","venueId":"V2","bookingId":"b8"}`))
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	rec := &recordingBroadcaster{}
	l := NewListener(wsURL(srv), "service-token", rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}

	events := rec.snapshot()
	assert.Equal(t, "b7", events[0].BookingID)
	assert.Equal(t, "V1", events[0].VenueID)
	assert.Equal(t, "CANCELLED", events[0].Status)
	assert.Equal(t, EventBookingCreated, events[1].Type)
}

func TestListener_HandleReadsBackendCasing(t *testing.T) {
	rec := &recordingBroadcaster{}
	l := NewListener("ws://unused", "", rec)

	l.handle([]byte(`{"type":"booking.status_changed","venueId":"V1","bookingId":"b1","status":"CONFIRMED","paymentStatus":"PAID","payload":{"x":1}}`))
	// Dashboard-side casing carries no venueId, so nothing is routable.
	l.handle([]byte(`{"type":"booking.created","venue_id":"V1","booking_id":"b2"}`))

	events := rec.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, Event{
		Type:          EventBookingStatusChanged,
		VenueID:       "V1",
		BookingID:     "b1",
		Status:        "CONFIRMED",
		PaymentStatus: "PAID",
		Payload:       json.RawMessage(`{"x":1}`),
	}, events[0])
}

func TestKnownEventType(t *testing.T) {
	assert.True(t, KnownEventType(EventBookingStatusChanged))
	assert.False(t, KnownEventType("booking.deleted"))
}
