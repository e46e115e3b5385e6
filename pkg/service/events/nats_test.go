package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/secmon-lab/suistat/pkg/domain/interfaces"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
	"github.com/secmon-lab/suistat/pkg/service/events"
	"github.com/secmon-lab/suistat/pkg/service/widget"
)

var _ interfaces.RenderNotifier = (*events.Bridge)(nil)

func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	gt.NoError(t, err)
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestBridgeSubject(t *testing.T) {
	url := startTestNATS(t)

	b, err := events.Connect(url, "suistat.")
	gt.NoError(t, err)
	defer b.Close()
	gt.Equal(t, "suistat.selection.year", b.Subject(events.SubjectYear))

	bare, err := events.Connect(url, "")
	gt.NoError(t, err)
	defer bare.Close()
	gt.Equal(t, "render", bare.Subject(events.SubjectRender))
}

func TestBridgeBindSelection(t *testing.T) {
	url := startTestNATS(t)
	ctx := context.Background()

	b, err := events.Connect(url, "suistat")
	gt.NoError(t, err)
	defer b.Close()

	country := widget.New("Albania")
	year := widget.New("1987")
	chart := widget.New("Line Chart")
	gt.NoError(t, b.BindSelection(ctx, country, year, chart))

	nc, err := nats.Connect(url)
	gt.NoError(t, err)
	defer nc.Close()

	gt.NoError(t, nc.Publish("suistat.selection.country", []byte("Japan")))
	gt.NoError(t, nc.Publish("suistat.selection.chart", []byte(`{"value":"Bar Chart"}`)))
	gt.NoError(t, nc.Publish("suistat.selection.year", []byte("  ")))
	gt.NoError(t, nc.Flush())

	waitFor(t, func() bool { return country.Current() == "Japan" && chart.Current() == "Bar Chart" })
	gt.Equal(t, "1987", year.Current())
}

func TestBridgeNotifyRender(t *testing.T) {
	url := startTestNATS(t)
	ctx := context.Background()

	b, err := events.Connect(url, "suistat")
	gt.NoError(t, err)
	defer b.Close()

	nc, err := nats.Connect(url)
	gt.NoError(t, err)
	defer nc.Close()

	ch := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe("suistat.render", ch)
	gt.NoError(t, err)
	defer sub.Unsubscribe() //nolint:errcheck
	gt.NoError(t, nc.Flush())

	scene := &model.Scene{
		ID:   types.RenderID("r-1"),
		Kind: types.ChartKindBar,
		Data: []model.DataPoint{{Label: "15", Value: 8}},
	}
	sel := model.Selection{Country: "X", Year: 2010, ChartKind: types.ChartKindBar}
	summary := model.Summary{Total: model.SlotValue{Heading: "Total Suicides", Value: "8"}}

	gt.NoError(t, b.NotifyRender(ctx, sel, scene, summary))
	gt.NoError(t, b.Flush())

	select {
	case msg := <-ch:
		var got events.RenderEvent
		gt.NoError(t, json.Unmarshal(msg.Data, &got))
		gt.Equal(t, types.RenderID("r-1"), got.RenderID)
		gt.Equal(t, sel, got.Selection)
		gt.Equal(t, "8", got.Summary.Total.Value)
		gt.Equal(t, 1, len(got.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for render event")
	}
}
