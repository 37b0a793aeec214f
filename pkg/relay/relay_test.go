package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ha1tch/netui/pkg/export"
	"github.com/ha1tch/netui/pkg/messages"
	"github.com/ha1tch/netui/pkg/observability"
	"github.com/ha1tch/netui/pkg/store"
)

type fixture struct {
	srv     *Server
	ts      *httptest.Server
	metrics *observability.RelayCollector
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "relay.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	metrics, err := observability.NewRelayCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	srv := New(st, Options{Metrics: metrics})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		st.Close()
	})
	return &fixture{srv: srv, ts: ts, metrics: metrics}
}

// editor is a raw protocol client.
type editor struct {
	t        *testing.T
	conn     *websocket.Conn
	id       int
	topology int
	snapshot *messages.Snapshot
	history  *messages.History
}

func (f *fixture) join(t *testing.T, topologyID int) *editor {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + TopologyPath
	if topologyID != 0 {
		url += "?topology_id=" + strconv.Itoa(topologyID)
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	e := &editor{t: t, conn: conn}
	id, ok := e.read().(*messages.ClientID)
	if !ok {
		t.Fatal("first message is not ClientId")
	}
	e.id = id.ID
	topo, ok := e.read().(*messages.Topology)
	if !ok {
		t.Fatal("second message is not Topology")
	}
	e.topology = topo.TopologyID
	if e.snapshot, ok = e.read().(*messages.Snapshot); !ok {
		t.Fatal("third message is not Snapshot")
	}
	if e.history, ok = e.read().(*messages.History); !ok {
		t.Fatal("fourth message is not History")
	}
	return e
}

func (e *editor) read() messages.Message {
	e.t.Helper()
	_ = e.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := e.conn.ReadMessage()
	if err != nil {
		e.t.Fatalf("read: %v", err)
	}
	m, err := messages.Parse(data)
	if err != nil {
		e.t.Fatalf("parse %s: %v", data, err)
	}
	return m
}

func (e *editor) send(m messages.Message) {
	e.t.Helper()
	m.Head().Sender = e.id
	data, err := messages.Serialize(m)
	if err != nil {
		e.t.Fatal(err)
	}
	e.sendRaw(data)
}

func (e *editor) sendRaw(data []byte) {
	e.t.Helper()
	if err := e.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		e.t.Fatalf("write: %v", err)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (f *fixture) loaded(id int) bool {
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	_, ok := f.srv.hubs[id]
	return ok
}

func TestJoinSequence(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 0)
	if a.id == 0 || a.topology == 0 {
		t.Fatalf("got client %d topology %d, want both assigned", a.id, a.topology)
	}
	if len(a.snapshot.Devices) != 0 || len(a.history.Messages) != 0 {
		t.Errorf("new topology not empty: %+v %+v", a.snapshot, a.history)
	}
	b := f.join(t, a.topology)
	if b.id == a.id {
		t.Errorf("client ids not unique: %d", b.id)
	}
	if b.topology != a.topology {
		t.Errorf("topology: got %d, want %d", b.topology, a.topology)
	}
	if got := testutil.ToFloat64(f.metrics.ClientsConnected.WithLabelValues(strconv.Itoa(a.topology))); got != 2 {
		t.Errorf("clients connected: got %v, want 2", got)
	}
}

func TestBroadcastAndHistory(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 0)
	b := f.join(t, a.topology)

	a.send(&messages.DeviceCreate{Header: messages.Header{MessageID: 1}, ID: 1, Name: "r1", X: 10, Y: 20, Type: "router"})
	got, ok := b.read().(*messages.DeviceCreate)
	if !ok || got.Name != "r1" || got.Sender != a.id {
		t.Fatalf("got %+v, want r1 from client %d", got, a.id)
	}

	c := f.join(t, a.topology)
	if len(c.snapshot.Devices) != 1 || c.snapshot.Devices[0].Name != "r1" {
		t.Errorf("snapshot: got %+v, want r1", c.snapshot.Devices)
	}
	if len(c.history.Messages) != 1 || c.history.Messages[0].Type != "DeviceCreate" {
		t.Errorf("history: got %+v, want one DeviceCreate", c.history.Messages)
	}
	if got := testutil.ToFloat64(f.metrics.FramesReceived.WithLabelValues("DeviceCreate")); got != 1 {
		t.Errorf("frames received: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(f.metrics.HistoryRows); got != 1 {
		t.Errorf("history rows: got %v, want 1", got)
	}
}

func TestSelectionNotStored(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 0)
	b := f.join(t, a.topology)

	a.send(&messages.DeviceSelected{ID: 4})
	if _, ok := b.read().(*messages.DeviceSelected); !ok {
		t.Fatal("selection not forwarded")
	}
	c := f.join(t, a.topology)
	if len(c.history.Messages) != 0 {
		t.Errorf("history: got %+v, want empty", c.history.Messages)
	}
}

func TestUndoRedoMarksHistory(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 0)
	b := f.join(t, a.topology)

	create := &messages.DeviceCreate{Header: messages.Header{MessageID: 1, Sender: a.id}, ID: 1, Name: "r1", Type: "router"}
	a.send(create)
	b.read()
	original, err := messages.FrameOf(create)
	if err != nil {
		t.Fatal(err)
	}
	a.send(&messages.Undo{Header: messages.Header{MessageID: 2}, OriginalMessage: original})
	if _, ok := b.read().(*messages.Undo); !ok {
		t.Fatal("undo not forwarded")
	}

	c := f.join(t, a.topology)
	if len(c.snapshot.Devices) != 0 {
		t.Errorf("after undo: got devices %+v, want none", c.snapshot.Devices)
	}
	if len(c.history.Messages) != 0 {
		t.Errorf("after undo: got history %+v, want none", c.history.Messages)
	}

	a.send(&messages.Redo{Header: messages.Header{MessageID: 3}, OriginalMessage: original})
	b.read()
	c.read()
	d := f.join(t, a.topology)
	if len(d.snapshot.Devices) != 1 || len(d.history.Messages) != 1 {
		t.Errorf("after redo: got %d devices and %d history frames, want 1 and 1",
			len(d.snapshot.Devices), len(d.history.Messages))
	}
}

func TestLayoutBroadcastsMoves(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 0)
	a.send(&messages.DeviceCreate{ID: 1, Name: "r1", X: -500, Y: -500, Type: "router"})
	a.send(&messages.DeviceCreate{ID: 2, Name: "s1", X: -500, Y: -500, Type: "switch"})
	a.send(&messages.Layout{})

	b := f.srv.opts.Bounds
	seen := map[int]bool{}
	for i := 0; i < 2; i++ {
		move, ok := a.read().(*messages.DeviceMove)
		if !ok {
			t.Fatal("expected DeviceMove")
		}
		seen[move.ID] = true
		if move.X < b.X || move.X > b.X+b.Width || move.Y < b.Y || move.Y > b.Y+b.Height {
			t.Errorf("device %d moved to (%v, %v), outside the layout bounds", move.ID, move.X, move.Y)
		}
		if move.PreviousX != -500 {
			t.Errorf("previous x: got %v, want -500", move.PreviousX)
		}
	}
	if !seen[1] || !seen[2] {
		t.Errorf("moves for %v, want devices 1 and 2", seen)
	}
}

func TestBadFramesDropped(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 0)
	b := f.join(t, a.topology)

	a.sendRaw([]byte("garbage"))
	a.sendRaw([]byte(`["Bogus", {}]`))
	a.send(&messages.DeviceCreate{ID: 1, Name: "r1", Type: "router"})
	if _, ok := b.read().(*messages.DeviceCreate); !ok {
		t.Fatal("valid frame after bad ones not forwarded")
	}
	if got := testutil.ToFloat64(f.metrics.ParseErrors); got != 2 {
		t.Errorf("parse errors: got %v, want 2", got)
	}
}

func TestUnknownTopologyRejected(t *testing.T) {
	f := newFixture(t)
	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + TopologyPath + "?topology_id=999"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial failure")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("got %v, want 404", resp)
	}
}

func TestSnapshotSavedOnLastLeave(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 0)
	b := f.join(t, a.topology)
	a.send(&messages.DeviceCreate{ID: 1, Name: "r1", X: 5, Y: 6, Type: "router"})
	b.read()

	a.conn.Close()
	b.conn.Close()
	waitFor(t, "hub unload", func() bool { return !f.loaded(a.topology) })

	resp, err := http.Get(f.ts.URL + JSONPath + "?topology_id=" + strconv.Itoa(a.topology))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	var doc export.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Devices) != 1 || doc.Devices[0].Name != "r1" || doc.Devices[0].X != 5 {
		t.Errorf("document devices: got %+v, want r1 at x=5", doc.Devices)
	}
}

func TestYAMLDocumentFromLiveHub(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 0)
	b := f.join(t, a.topology)
	a.send(&messages.DeviceCreate{ID: 1, Name: "edge7", Type: "switch"})
	b.read()

	resp, err := http.Get(f.ts.URL + YAMLPath + "?topology_id=" + strconv.Itoa(a.topology))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	doc, err := export.ReadYAML(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Devices) != 1 || doc.Devices[0].Name != "edge7" {
		t.Errorf("got %+v, want edge7", doc.Devices)
	}
}

func TestDocumentErrors(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		query string
		want  int
	}{
		{"", http.StatusBadRequest},
		{"?topology_id=x", http.StatusBadRequest},
		{"?topology_id=42", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := http.Get(f.ts.URL + JSONPath + tt.query)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("got %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("got %d, want 200", resp.StatusCode)
	}
}

func TestRunSavesOnCancel(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 0)
	b := f.join(t, a.topology)
	a.send(&messages.DeviceCreate{ID: 3, Name: "r3", Type: "router"})
	b.read()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.srv.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	snap, err := f.srv.store.LoadSnapshot(context.Background(), a.topology)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Devices) != 1 || snap.Devices[0].ID != 3 {
		t.Errorf("saved snapshot: got %+v, want device 3", snap.Devices)
	}
}
