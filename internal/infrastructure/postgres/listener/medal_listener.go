package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"mesada/internal/shared/messages"
)

const (
	MedalChannel      = "medal_awarded"
	reconnectInterval = 5 * time.Second
	pingInterval      = 90 * time.Second
)

// MedalAwarded is the payload the goal-completion trigger sends.
type MedalAwarded struct {
	MedalID uuid.UUID `json:"medal_id"`
	ChildID uuid.UUID `json:"child_id"`
	Name    string    `json:"name"`
}

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, msg messages.MessageText) error
}

// MedalListener turns medal_awarded notifications into in-app
// notifications for the child who earned the medal.
type MedalListener struct {
	connStr    string
	notifier   Notifier
	texts      *messages.Messages
	log        zerolog.Logger
	shutdownCh chan struct{}
	done       chan struct{}
}

func NewMedalListener(connStr string, notifier Notifier, texts *messages.Messages, log zerolog.Logger) *MedalListener {
	if texts == nil {
		texts = messages.Default()
	}
	return &MedalListener{
		connStr:    connStr,
		notifier:   notifier,
		texts:      texts,
		log:        log.With().Str("component", "medal_listener").Logger(),
		shutdownCh: make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start begins listening in a background goroutine.
func (l *MedalListener) Start(ctx context.Context) {
	go l.listen(ctx)
	l.log.Info().Str("channel", MedalChannel).Msg("Medal listener started")
}

// Stop shuts the listener down and waits for it to exit.
func (l *MedalListener) Stop() {
	close(l.shutdownCh)
	<-l.done
	l.log.Info().Msg("Medal listener stopped")
}

func (l *MedalListener) listen(ctx context.Context) {
	defer close(l.done)

	for {
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		default:
			l.connectAndListen(ctx)
		}

		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		case <-time.After(reconnectInterval):
			l.log.Info().Msg("Reconnecting to PostgreSQL for notifications")
		}
	}
}

func (l *MedalListener) connectAndListen(ctx context.Context) {
	listener := pq.NewListener(l.connStr, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			l.log.Debug().Msg("Connected to notification channel")
		case pq.ListenerEventDisconnected:
			l.log.Warn().Err(err).Msg("Disconnected from notification channel")
		case pq.ListenerEventReconnected:
			l.log.Info().Msg("Reconnected to notification channel")
		case pq.ListenerEventConnectionAttemptFailed:
			l.log.Error().Err(err).Msg("Notification channel connection attempt failed")
		}
	})
	defer listener.Close()

	if err := listener.Listen(MedalChannel); err != nil {
		l.log.Error().Err(err).Str("channel", MedalChannel).Msg("Failed to listen")
		return
	}

	for {
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		case n := <-listener.Notify:
			if n == nil {
				// connection lost
				return
			}
			// the serving context may already be cancelled during shutdown
			go l.Handle(context.Background(), n.Extra)
		case <-time.After(pingInterval):
			go func() {
				if err := listener.Ping(); err != nil {
					l.log.Warn().Err(err).Msg("Listener ping failed")
				}
			}()
		}
	}
}

// Handle notifies the child named in payload. Malformed payloads are logged
// and dropped.
func (l *MedalListener) Handle(ctx context.Context, payload string) {
	var awarded MedalAwarded
	if err := json.Unmarshal([]byte(payload), &awarded); err != nil {
		l.log.Error().Err(err).Msg("Failed to parse medal payload")
		return
	}
	if awarded.ChildID == uuid.Nil {
		l.log.Error().Str("payload", payload).Msg("Medal payload without child")
		return
	}

	if err := l.notifier.Notify(ctx, awarded.ChildID, l.texts.MedalAwarded.Format(awarded.Name)); err != nil {
		l.log.Error().Err(err).
			Str("medal_id", awarded.MedalID.String()).
			Str("child_id", awarded.ChildID.String()).
			Msg("Failed to notify medal")
		return
	}
	l.log.Info().Str("medal_id", awarded.MedalID.String()).Msg("Medal notification sent")
}
