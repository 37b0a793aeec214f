// Package observability holds the Prometheus collectors and OpenTelemetry
// tracing setup shared by the relay and the editor.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RelayCollector bundles the relay's Prometheus metrics.
type RelayCollector struct {
	gatherer prometheus.Gatherer

	ClientsConnected *prometheus.GaugeVec
	FramesReceived   *prometheus.CounterVec
	FramesBroadcast  *prometheus.CounterVec
	HistoryRows      prometheus.Counter
	ParseErrors      prometheus.Counter
}

// NewRelayCollector registers relay metrics against reg, defaulting to the
// global registry when nil.
func NewRelayCollector(reg prometheus.Registerer) (*RelayCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	clients, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netui_relay_clients_connected",
		Help: "Editors currently connected, labeled by topology.",
	}, []string{"topology"}), "netui_relay_clients_connected")
	if err != nil {
		return nil, err
	}
	received, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netui_relay_frames_received_total",
		Help: "Frames received from editors, labeled by message type.",
	}, []string{"type"}), "netui_relay_frames_received_total")
	if err != nil {
		return nil, err
	}
	broadcast, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netui_relay_frames_broadcast_total",
		Help: "Frames forwarded to other editors, labeled by message type.",
	}, []string{"type"}), "netui_relay_frames_broadcast_total")
	if err != nil {
		return nil, err
	}
	rows, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netui_relay_history_rows_total",
		Help: "Messages appended to topology history.",
	}), "netui_relay_history_rows_total")
	if err != nil {
		return nil, err
	}
	parseErrors, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netui_relay_parse_errors_total",
		Help: "Inbound frames dropped because they could not be parsed.",
	}), "netui_relay_parse_errors_total")
	if err != nil {
		return nil, err
	}

	return &RelayCollector{
		gatherer:         gatherer,
		ClientsConnected: clients,
		FramesReceived:   received,
		FramesBroadcast:  broadcast,
		HistoryRows:      rows,
		ParseErrors:      parseErrors,
	}, nil
}

// Handler exposes a /metrics handler for the collector's registry.
func (c *RelayCollector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// ClientJoined increments the connected gauge for topology.
func (c *RelayCollector) ClientJoined(topology string) {
	if c == nil {
		return
	}
	c.ClientsConnected.WithLabelValues(topology).Inc()
}

// ClientLeft decrements the connected gauge for topology.
func (c *RelayCollector) ClientLeft(topology string) {
	if c == nil {
		return
	}
	c.ClientsConnected.WithLabelValues(topology).Dec()
}

// Received counts an inbound frame.
func (c *RelayCollector) Received(msgType string) {
	if c == nil {
		return
	}
	c.FramesReceived.WithLabelValues(msgType).Inc()
}

// Broadcast counts frames forwarded to n peers.
func (c *RelayCollector) Broadcast(msgType string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.FramesBroadcast.WithLabelValues(msgType).Add(float64(n))
}

// HistoryAppended counts a stored history row.
func (c *RelayCollector) HistoryAppended() {
	if c == nil {
		return
	}
	c.HistoryRows.Inc()
}

// ParseError counts a dropped frame.
func (c *RelayCollector) ParseError() {
	if c == nil {
		return
	}
	c.ParseErrors.Inc()
}

// EditorCollector exposes editor-side metrics.
type EditorCollector struct {
	Events     *prometheus.CounterVec
	Undos      prometheus.Counter
	Redos      prometheus.Counter
	Pending    prometheus.Gauge
	Violations *prometheus.CounterVec
	Panics     prometheus.Counter
}

// NewEditorCollector registers editor metrics against reg, defaulting to
// the global registry when nil.
func NewEditorCollector(reg prometheus.Registerer) (*EditorCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	events, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netui_editor_events_total",
		Help: "Events dispatched through the machine chain, labeled by kind and outcome.",
	}, []string{"kind", "result"}), "netui_editor_events_total")
	if err != nil {
		return nil, err
	}
	undos, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netui_editor_undo_total",
		Help: "Local edits undone.",
	}), "netui_editor_undo_total")
	if err != nil {
		return nil, err
	}
	redos, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netui_editor_redo_total",
		Help: "Local edits redone.",
	}), "netui_editor_redo_total")
	if err != nil {
		return nil, err
	}
	pending, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "netui_editor_messages_pending",
		Help: "Outbound messages queued until the relay accepts them.",
	}), "netui_editor_messages_pending")
	if err != nil {
		return nil, err
	}
	violations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netui_editor_transition_violations_total",
		Help: "State changes not declared in the machine's table, labeled by machine.",
	}, []string{"machine"}), "netui_editor_transition_violations_total")
	if err != nil {
		return nil, err
	}
	panics, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netui_editor_handler_panics_total",
		Help: "Handler panics recovered at the dispatch boundary.",
	}), "netui_editor_handler_panics_total")
	if err != nil {
		return nil, err
	}

	return &EditorCollector{
		Events:     events,
		Undos:      undos,
		Redos:      redos,
		Pending:    pending,
		Violations: violations,
		Panics:     panics,
	}, nil
}

// Event counts one dispatched event.
func (c *EditorCollector) Event(kind string, handled bool) {
	if c == nil {
		return
	}
	result := "forwarded"
	if handled {
		result = "handled"
	}
	c.Events.WithLabelValues(kind, result).Inc()
}

// Undo counts an undo.
func (c *EditorCollector) Undo() {
	if c == nil {
		return
	}
	c.Undos.Inc()
}

// Redo counts a redo.
func (c *EditorCollector) Redo() {
	if c == nil {
		return
	}
	c.Redos.Inc()
}

// SetPending records the outbound queue length.
func (c *EditorCollector) SetPending(n int) {
	if c == nil {
		return
	}
	c.Pending.Set(float64(n))
}

// Violation counts an undeclared state change.
func (c *EditorCollector) Violation(machine string) {
	if c == nil {
		return
	}
	c.Violations.WithLabelValues(machine).Inc()
}

// Panic counts a recovered handler panic.
func (c *EditorCollector) Panic() {
	if c == nil {
		return
	}
	c.Panics.Inc()
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
