// Package events bridges the dashboard to a NATS bus. Selection changes can be driven
// by publishing to the selection subjects and every render is announced on the render subject.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/nats-io/nats.go"
	"github.com/secmon-lab/suistat/pkg/domain/interfaces"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
)

// Subject suffixes below the configured prefix
const (
	SubjectCountry = "selection.country"
	SubjectYear    = "selection.year"
	SubjectChart   = "selection.chart"
	SubjectRender  = "render"
)

// RenderEvent is published after every completed render
type RenderEvent struct {
	RenderID  types.RenderID    `json:"render_id"`
	Selection model.Selection   `json:"selection"`
	Summary   model.Summary     `json:"summary"`
	Data      []model.DataPoint `json:"data"`
	At        time.Time         `json:"at"`
}

// selectionMessage is the JSON form of a selection message. Plain text bodies are also accepted.
type selectionMessage struct {
	Value string `json:"value"`
}

// Bridge connects selection widgets and render notifications to NATS subjects
type Bridge struct {
	conn   *nats.Conn
	prefix string

	mu   sync.Mutex
	subs []*nats.Subscription
}

// Connect opens a NATS connection with automatic reconnection
func Connect(url, prefix string, opts ...nats.Option) (*Bridge, error) {
	defaults := []nats.Option{
		nats.Name("suistat"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to NATS", goerr.V("url", url))
	}
	return &Bridge{conn: nc, prefix: strings.TrimSuffix(prefix, ".")}, nil
}

// Subject returns the full subject name for a suffix
func (b *Bridge) Subject(suffix string) string {
	if b.prefix == "" {
		return suffix
	}
	return b.prefix + "." + suffix
}

// BindSelection sets the widgets from messages on the selection subjects
func (b *Bridge) BindSelection(ctx context.Context, country, year, chart interfaces.SelectionWidget) error {
	logger := ctxlog.From(ctx)
	bindings := map[string]interfaces.SelectionWidget{
		SubjectCountry: country,
		SubjectYear:    year,
		SubjectChart:   chart,
	}

	for suffix, w := range bindings {
		subject := b.Subject(suffix)
		sub, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
			value := decodeSelection(msg.Data)
			if value == "" {
				logger.Warn("Empty selection message ignored", "subject", msg.Subject)
				return
			}
			logger.Debug("Selection received from NATS", "subject", msg.Subject, "value", value)
			w.Set(value)
		})
		if err != nil {
			return goerr.Wrap(err, "failed to subscribe", goerr.V("subject", subject))
		}

		b.mu.Lock()
		b.subs = append(b.subs, sub)
		b.mu.Unlock()
	}

	// Flush so the subscriptions are registered before publishers on other connections send
	if err := b.conn.Flush(); err != nil {
		return goerr.Wrap(err, "failed to flush subscriptions")
	}
	return nil
}

func decodeSelection(data []byte) string {
	var msg selectionMessage
	if err := json.Unmarshal(data, &msg); err == nil && msg.Value != "" {
		return strings.TrimSpace(msg.Value)
	}
	return strings.TrimSpace(string(data))
}

// NotifyRender publishes a RenderEvent on the render subject
func (b *Bridge) NotifyRender(ctx context.Context, sel model.Selection, scene *model.Scene, summary model.Summary) error {
	event := RenderEvent{
		RenderID:  scene.ID,
		Selection: sel,
		Summary:   summary,
		Data:      scene.Data,
		At:        time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal render event")
	}

	subject := b.Subject(SubjectRender)
	if err := b.conn.Publish(subject, data); err != nil {
		return goerr.Wrap(err, "failed to publish render event", goerr.V("subject", subject))
	}
	return nil
}

// Flush waits until published messages are processed by the server
func (b *Bridge) Flush() error {
	if err := b.conn.Flush(); err != nil {
		return goerr.Wrap(err, "failed to flush NATS connection")
	}
	return nil
}

// Close unsubscribes and closes the connection
func (b *Bridge) Close() error {
	b.mu.Lock()
	for _, sub := range b.subs {
		_ = sub.Unsubscribe()
	}
	b.subs = nil
	b.mu.Unlock()

	b.conn.Close()
	return nil
}
