package relay

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ha1tch/netui/pkg/export"
	"github.com/ha1tch/netui/pkg/layout"
	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/messages"
	"github.com/ha1tch/netui/pkg/observability"
	"github.com/ha1tch/netui/pkg/session"
	"github.com/ha1tch/netui/pkg/store"
)

var errSendBufferFull = errors.New("client send buffer full")

// hub is one topology being edited. mu guards the session and the client
// set; frames are handled one at a time in arrival order.
type hub struct {
	server     *Server
	topologyID int
	label      string
	log        logging.Logger

	mu      sync.Mutex
	sess    *session.Session
	clients map[*client]struct{}
	dirty   bool
}

func newHub(s *Server, row store.Topology, snap *messages.Snapshot) *hub {
	log := s.log.With(logging.Int("topology_id", row.ID))
	sess := session.New(session.Options{Logger: log})
	sess.LoadSnapshot(snap)
	sess.OnTopology(row.Message())
	return &hub{
		server:     s,
		topologyID: row.ID,
		label:      strconv.Itoa(row.ID),
		log:        log,
		sess:       sess,
		clients:    make(map[*client]struct{}),
	}
}

// add queues the join sequence for c and starts forwarding to it.
func (h *hub) add(ctx context.Context, c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := h.server.store.ListHistory(ctx, h.topologyID)
	if err != nil {
		return err
	}
	snap := h.sess.Snapshot()
	snap.TopologyID = h.topologyID
	info := h.sess.TopologyInfo()
	info.TopologyID = h.topologyID

	join := []messages.Message{
		&messages.ClientID{ID: c.id},
		info,
		snap,
		&messages.History{Messages: store.Frames(entries)},
	}
	for _, m := range join {
		data, err := messages.Serialize(m)
		if err != nil {
			return err
		}
		select {
		case c.send <- data:
		default:
			return errSendBufferFull
		}
	}
	h.clients[c] = struct{}{}
	h.server.metrics.ClientJoined(h.label)
	return nil
}

// remove stops forwarding to c and reports whether the hub is now empty.
func (h *hub) remove(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.drop(c)
	}
	return len(h.clients) == 0
}

func (h *hub) empty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) == 0
}

// drop must be called with mu held.
func (h *hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.server.metrics.ClientLeft(h.label)
}

// handle processes one frame from c.
func (h *hub) handle(ctx context.Context, c *client, data []byte) {
	ctx, span := observability.Tracer().Start(ctx, "relay.frame",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.Int("topology_id", h.topologyID),
			attribute.Int("client_id", c.id),
		))
	defer span.End()

	var f messages.Frame
	err := json.Unmarshal(data, &f)
	var m messages.Message
	if err == nil {
		m, err = f.Decode()
	}
	if err != nil {
		h.server.metrics.ParseError()
		span.RecordError(err)
		span.SetStatus(codes.Error, "unparseable frame")
		h.log.Warn(ctx, "frame dropped", logging.Int("client_id", c.id), logging.Err(err))
		return
	}
	span.SetAttributes(attribute.String("message_type", m.TypeName()))
	h.server.metrics.Received(m.TypeName())

	h.mu.Lock()
	defer h.mu.Unlock()

	switch m := m.(type) {
	case *messages.Layout:
		h.layout(ctx)
		return
	case *messages.Undo:
		h.sess.Apply(m)
		h.markUndone(ctx, c, m.OriginalMessage, true)
	case *messages.Redo:
		h.sess.Apply(m)
		h.markUndone(ctx, c, m.OriginalMessage, false)
	default:
		if persistent(m) {
			h.sess.Apply(m)
			h.dirty = true
			if err := h.server.store.AppendHistory(ctx, h.topologyID, c.id, m.Head().MessageID, f); err != nil {
				span.RecordError(err)
				h.log.Error(ctx, "append history failed", logging.String("type", m.TypeName()), logging.Err(err))
			} else {
				h.server.metrics.HistoryAppended()
			}
		}
	}
	h.broadcast(data, c, m.TypeName())
}

// persistent reports whether m changes the topology and belongs in its
// history.
func persistent(m messages.Message) bool {
	switch m.(type) {
	case *messages.InterfaceCreate, *messages.ProcessCreate, *messages.GroupMembership, *messages.MultipleMessage:
		return true
	}
	_, ok := session.Invert(m)
	return ok
}

func (h *hub) markUndone(ctx context.Context, c *client, f messages.Frame, undone bool) {
	h.dirty = true
	original, err := f.Decode()
	if err != nil {
		h.log.Debug(ctx, "undo of unparseable frame", logging.Err(err))
		return
	}
	if err := h.server.store.MarkUndone(ctx, h.topologyID, c.id, original.Head().MessageID, undone); err != nil {
		h.log.Error(ctx, "mark undone failed", logging.Err(err))
	}
}

// layout places every device automatically and sends each move to all
// clients, the requester included.
func (h *hub) layout(ctx context.Context) {
	snap := h.sess.Snapshot()
	pos := layout.Smart(layout.FromSnapshot(snap), h.server.opts.Bounds)
	for _, d := range snap.Devices {
		p, ok := pos[d.ID]
		if !ok {
			continue
		}
		move := &messages.DeviceMove{ID: d.ID, X: p.X, Y: p.Y, PreviousX: d.X, PreviousY: d.Y}
		h.sess.Apply(move)
		data, err := messages.Serialize(move)
		if err != nil {
			h.log.Error(ctx, "encode layout move", logging.Err(err))
			continue
		}
		h.broadcast(data, nil, move.TypeName())
	}
	h.dirty = true
	h.log.Info(ctx, "layout applied", logging.Int("devices", len(snap.Devices)))
}

// broadcast queues data for every client except skip. Clients whose queue
// is full are disconnected. mu must be held.
func (h *hub) broadcast(data []byte, skip *client, msgType string) {
	n := 0
	for c := range h.clients {
		if c == skip {
			continue
		}
		select {
		case c.send <- data:
			n++
		default:
			h.log.Warn(context.Background(), "slow client dropped", logging.Int("client_id", c.id))
			h.drop(c)
		}
	}
	h.server.metrics.Broadcast(msgType, n)
}

// save writes the snapshot if anything changed since the last save.
func (h *hub) save(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.dirty {
		return nil
	}
	info := h.sess.TopologyInfo()
	info.TopologyID = h.topologyID
	snap := h.sess.Snapshot()
	snap.TopologyID = h.topologyID
	if err := h.server.store.SaveSnapshot(ctx, info, snap); err != nil {
		return err
	}
	h.dirty = false
	h.log.Debug(ctx, "snapshot saved", logging.Int("devices", len(snap.Devices)))
	return nil
}

func (h *hub) document() *export.Document {
	h.mu.Lock()
	defer h.mu.Unlock()
	doc := h.sess.TopologyData()
	doc.TopologyID = h.topologyID
	return doc
}
