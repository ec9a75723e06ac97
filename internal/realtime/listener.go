package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Broadcaster is the part of the hub the listener needs.
type Broadcaster interface {
	BroadcastToVenue(venueID string, event Event) int
}

// Listener consumes the backend's real-time channel and forwards booking
// events to the hub.
type Listener struct {
	url        string
	token      string
	hub        Broadcaster
	dialer     *websocket.Dialer
	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewListener(url, token string, hub Broadcaster) *Listener {
	return &Listener{
		url:        url,
		token:      token,
		hub:        hub,
		dialer:     websocket.DefaultDialer,
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
	}
}

// Run keeps a connection open until ctx is done, reconnecting with backoff.
func (l *Listener) Run(ctx context.Context) error {
	backoff := l.minBackoff
	for {
		connected, err := l.consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = l.minBackoff
		}
		logrus.WithFields(logrus.Fields{"error": err, "retry_in": backoff}).Warn("realtime channel disconnected")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
		if backoff > l.maxBackoff {
			backoff = l.maxBackoff
		}
	}
}

func (l *Listener) consume(ctx context.Context) (bool, error) {
	header := http.Header{}
	if l.token != "" {
		header.Set("Authorization", "Bearer "+l.token)
	}

	conn, _, err := l.dialer.DialContext(ctx, l.url, header)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	// Unblock ReadMessage on shutdown.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	logrus.WithField("url", l.url).Info("realtime channel connected")
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		l.handle(msg)
	}
}

// backendEvent is the backend's push payload. It is camelCase like every
// other backend body and is re-keyed into Event for dashboards.
type backendEvent struct {
	Type          string          `json:"type"`
	VenueID       string          `json:"venueId"`
	BookingID     string          `json:"bookingId"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	Payload       json.RawMessage `json:"payload"`
}

func (b backendEvent) event() Event {
	return Event{
		Type:          b.Type,
		VenueID:       b.VenueID,
		BookingID:     b.BookingID,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		Payload:       b.Payload,
	}
}

func (l *Listener) handle(msg []byte) {
	var in backendEvent
	if err := json.Unmarshal(msg, &in); err != nil {
		logrus.WithError(err).Debug("realtime: undecodable event dropped")
		return
	}
	ev := in.event()
	if !KnownEventType(ev.Type) || ev.VenueID == "" {
		logrus.WithField("type", ev.Type).Debug("realtime: unknown event dropped")
		return
	}
	l.hub.BroadcastToVenue(ev.VenueID, ev)
}
