// Package relay is the collaboration server editors connect to. Each
// topology has a hub holding the authoritative session; frames from one
// editor are applied there, stored in the topology history and forwarded
// to every other editor of the same topology.
package relay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ha1tch/netui/pkg/export"
	"github.com/ha1tch/netui/pkg/layout"
	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/observability"
	"github.com/ha1tch/netui/pkg/store"
)

// Endpoint paths.
const (
	TopologyPath = "/network_ui/topology"
	YAMLPath     = "/network_ui/topology.yaml"
	JSONPath     = "/network_ui/topology.json"
)

// DefaultSaveInterval is how often dirty topologies are written back.
const DefaultSaveInterval = 30 * time.Second

// Options configures a Server.
type Options struct {
	Logger  logging.Logger
	Metrics *observability.RelayCollector

	// SaveInterval is the period of Run's snapshot writes.
	SaveInterval time.Duration
	// SendBuffer is the per-client outbound queue; a client that falls
	// this far behind is disconnected.
	SendBuffer int
	// Bounds is the canvas area the Layout command places devices in.
	Bounds layout.Bounds
	// CheckOrigin overrides the upgrader's origin check. All origins are
	// accepted when nil.
	CheckOrigin func(r *http.Request) bool
}

// Server accepts editor connections.
type Server struct {
	store    *store.Store
	opts     Options
	log      logging.Logger
	metrics  *observability.RelayCollector
	upgrader websocket.Upgrader

	mu   sync.Mutex
	hubs map[int]*hub
}

// New returns a server persisting to st.
func New(st *store.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Noop()
	}
	if opts.SaveInterval <= 0 {
		opts.SaveInterval = DefaultSaveInterval
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 256
	}
	if opts.Bounds.Width == 0 {
		opts.Bounds = layout.DefaultBounds
	}
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Server{
		store:    st,
		opts:     opts,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
		hubs:     make(map[int]*hub),
	}
}

// Handler returns the server's HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(TopologyPath, s.serveTopology)
	mux.HandleFunc(YAMLPath, s.serveDocument(export.YAML, "application/yaml"))
	mux.HandleFunc(JSONPath, s.serveDocument(export.JSON, "application/json"))
	mux.Handle("/metrics", s.metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

// Run writes the snapshot of every changed topology each SaveInterval
// until ctx ends, then saves once more.
func (s *Server) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.SaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.SaveAll(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			s.SaveAll(ctx)
		}
	}
}

// SaveAll writes the snapshot of every changed topology.
func (s *Server) SaveAll(ctx context.Context) {
	s.mu.Lock()
	hubs := make([]*hub, 0, len(s.hubs))
	for _, h := range s.hubs {
		hubs = append(hubs, h)
	}
	s.mu.Unlock()

	for _, h := range hubs {
		if err := h.save(ctx); err != nil {
			s.log.Error(ctx, "save snapshot failed", logging.Int("topology_id", h.topologyID), logging.Err(err))
		}
	}
}

func (s *Server) serveTopology(w http.ResponseWriter, r *http.Request) {
	ctx, reqID := logging.EnsureRequestID(r.Context())
	log := s.log.With(logging.String("request_id", reqID))

	topologyID, err := s.resolveTopology(ctx, r)
	if errors.Is(err, store.ErrUnknownTopology) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		log.Warn(ctx, "bad topology request", logging.Err(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	clientID, err := s.store.CreateClient(ctx)
	if err != nil {
		log.Error(ctx, "allocate client id", logging.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error(ctx, "websocket upgrade failed", logging.Err(err))
		return
	}

	c := newClient(conn, clientID, s.opts.SendBuffer)
	log = log.With(logging.Int("client_id", clientID), logging.Int("topology_id", topologyID))
	h, err := s.join(ctx, topologyID, c)
	if err != nil {
		log.Error(ctx, "join topology failed", logging.Err(err))
		conn.Close()
		return
	}
	log.Info(ctx, "client connected")

	go c.writePump(log)
	// The request context ends when the handler returns.
	ctx = context.WithoutCancel(ctx)
	c.readPump(func(data []byte) { h.handle(ctx, c, data) }, log)

	s.leave(ctx, h, c)
	log.Info(ctx, "client disconnected")
}

// resolveTopology returns the topology_id query parameter, creating a new
// topology when it is absent or zero.
func (s *Server) resolveTopology(ctx context.Context, r *http.Request) (int, error) {
	raw := r.URL.Query().Get("topology_id")
	if raw == "" || raw == "0" {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "Topology"
		}
		t, err := s.store.CreateTopology(ctx, name)
		if err != nil {
			return 0, err
		}
		return t.ID, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("topology_id must be an integer")
	}
	if _, err := s.store.GetTopology(ctx, id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Server) join(ctx context.Context, topologyID int, c *client) (*hub, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hubs[topologyID]
	if !ok {
		var err error
		h, err = s.loadHub(ctx, topologyID)
		if err != nil {
			return nil, err
		}
		s.hubs[topologyID] = h
	}
	if err := h.add(ctx, c); err != nil {
		if h.empty() {
			delete(s.hubs, topologyID)
		}
		return nil, err
	}
	return h, nil
}

// leave drops c from its hub. The last client out saves the topology and
// unloads the hub.
func (s *Server) leave(ctx context.Context, h *hub, c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !h.remove(c) {
		return
	}
	if err := h.save(ctx); err != nil {
		s.log.Error(ctx, "save snapshot failed", logging.Int("topology_id", h.topologyID), logging.Err(err))
	}
	delete(s.hubs, h.topologyID)
}

func (s *Server) loadHub(ctx context.Context, topologyID int) (*hub, error) {
	row, err := s.store.GetTopology(ctx, topologyID)
	if err != nil {
		return nil, err
	}
	snap, err := s.store.LoadSnapshot(ctx, topologyID)
	if err != nil {
		return nil, err
	}
	return newHub(s, row, snap), nil
}

func (s *Server) serveDocument(encode func(w io.Writer, doc *export.Document) error, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := strconv.Atoi(r.URL.Query().Get("topology_id"))
		if err != nil {
			http.Error(w, "topology_id must be an integer", http.StatusBadRequest)
			return
		}
		doc, err := s.document(ctx, id)
		if errors.Is(err, store.ErrUnknownTopology) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			s.log.Error(ctx, "load topology document", logging.Int("topology_id", id), logging.Err(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		if err := encode(w, doc); err != nil {
			s.log.Warn(ctx, "write topology document", logging.Err(err))
		}
	}
}

// document returns the topology data of a live hub, or of the stored
// snapshot when nobody is editing it.
func (s *Server) document(ctx context.Context, topologyID int) (*export.Document, error) {
	s.mu.Lock()
	h, ok := s.hubs[topologyID]
	s.mu.Unlock()
	if !ok {
		var err error
		if h, err = s.loadHub(ctx, topologyID); err != nil {
			return nil, err
		}
	}
	return h.document(), nil
}
