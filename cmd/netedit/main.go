// Command netedit is a terminal topology editor. It joins a topology on the
// relay and edits it with the mouse and keyboard; with -offline it edits a
// local canvas that is never sent anywhere.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ha1tch/netui/pkg/awx"
	"github.com/ha1tch/netui/pkg/config"
	"github.com/ha1tch/netui/pkg/editor"
	"github.com/ha1tch/netui/pkg/export"
	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/messages"
	"github.com/ha1tch/netui/pkg/observability"
	"github.com/ha1tch/netui/pkg/render"
	"github.com/ha1tch/netui/pkg/session"
	"github.com/ha1tch/netui/pkg/transport"
)

// messageTTL is how long a status bar message stays up.
const messageTTL = 4 * time.Second

type app struct {
	screen tcell.Screen
	ed     *editor.Editor
	log    logging.Logger
	awx    *awx.Client
	outDir string
	ctx    context.Context

	mu      sync.Mutex
	msg     string
	msgTime time.Time
}

func (a *app) flash(format string, args ...any) {
	a.mu.Lock()
	a.msg = fmt.Sprintf(format, args...)
	a.msgTime = time.Now()
	a.mu.Unlock()
	a.redraw()
}

func (a *app) message() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.msgTime) > messageTTL {
		return ""
	}
	return a.msg
}

// redraw asks the event loop to draw. It never blocks, so hooks may call it
// with the editor locked.
func (a *app) redraw() {
	_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file")
	topologyID := flag.Int("topology", -1, "Topology to join (overrides topology.id; 0 creates one)")
	offline := flag.Bool("offline", false, "Edit without connecting to the relay")
	outDir := flag.String("out", ".", "Directory exports and traces are written to")
	logPath := flag.String("log", filepath.Join(os.TempDir(), "netedit.log"), "Log file")
	metricsAddr := flag.String("metrics-addr", "", "HTTP address for Prometheus /metrics (disabled when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *topologyID >= 0 {
		cfg.Topology.ID = *topologyID
	}

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log %s: %v\n", *logPath, err)
		os.Exit(1)
	}
	defer logFile.Close()
	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: logFile})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *offline, *outDir, *metricsAddr); err != nil {
		log.Error(ctx, "editor exited", logging.Err(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log logging.Logger, offline bool, outDir, metricsAddr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	collector, err := observability.NewEditorCollector(nil)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if metricsAddr != "" {
		srv := serveMetrics(metricsAddr, log)
		defer srv.Close()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.Clear()

	sess := session.New(session.Options{
		Width:     float64(cfg.Editor.Width),
		Height:    float64(cfg.Editor.Height),
		UndoLimit: cfg.Editor.UndoLimit,
		Logger:    log,
	})
	sw, sh := screen.Size()
	sess.Resize(float64(sw*cellW), float64(sh*cellH))

	a := &app{
		screen: screen,
		log:    log,
		awx:    &awx.Client{BaseURL: cfg.AWX.URL, Token: cfg.AWX.Token},
		outDir: outDir,
		ctx:    ctx,
	}
	a.ed = editor.New(sess, editor.Options{
		Logger:  log,
		Metrics: collector,
		Hooks: editor.Hooks{
			ExportSVG:     a.exportSVG,
			LaunchJob:     a.launchJob,
			ExportYAML:    a.exportYAML,
			DownloadTrace: a.downloadTrace,
			Redraw:        func(int64) { a.redraw() },
		},
	})

	var frames <-chan []byte
	if offline {
		sess.Disconnected = true
	} else {
		conn, err := transport.Dial(ctx, topologyURL(cfg.Server.URL, cfg.Topology.ID), transport.Options{
			Logger:      log,
			OnReconnect: func() { a.flash("reconnected") },
		})
		if err != nil {
			log.Warn(ctx, "relay unreachable, editing offline", logging.Err(err))
			sess.Disconnected = true
			a.flash("relay unreachable, editing offline: %v", err)
		} else {
			defer conn.Close()
			a.ed.View(func(s *session.Session) { s.SetTransport(conn) })
			frames = conn.Frames()
		}
	}

	if cfg.AWX.Token != "" {
		go a.loadInventory(cfg.Inventory.ID)
	}

	events := make(chan editor.Event, 64)
	runErr := make(chan error, 1)
	go func() { runErr <- a.ed.Run(ctx, frames, events) }()
	go func() {
		<-ctx.Done()
		a.redraw()
	}()

	send := func(e editor.Event) {
		select {
		case events <- e:
		case <-ctx.Done():
		}
	}

	var mouse mouseTracker
	for {
		a.draw()
		screen.Show()

		if ctx.Err() != nil {
			break
		}
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			w, h := ev.Size()
			a.ed.View(func(s *session.Session) { s.Resize(float64(w*cellW), float64(h*cellH)) })
			screen.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlQ || ev.Key() == tcell.KeyCtrlC {
				cancel()
				continue
			}
			if key, code, mod, ok := translateKey(ev); ok {
				send(editor.Event{Kind: editor.KeyDown, Key: key, KeyCode: code, Mod: mod})
			}
		case *tcell.EventMouse:
			for _, e := range mouse.translate(ev) {
				send(e)
			}
		case *tcell.EventInterrupt:
		case nil:
			cancel()
		}
	}

	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// topologyURL adds the topology_id query the relay reads. Zero asks the
// relay for a new topology.
func topologyURL(base string, id int) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("topology_id", strconv.Itoa(id))
	u.RawQuery = q.Encode()
	return u.String()
}

func serveMetrics(addr string, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()
	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

// loadInventory places every AWX inventory host in the inventory toolbox.
func (a *app) loadInventory(inventoryID int) {
	hosts, err := a.awx.InventoryHosts(a.ctx, inventoryID)
	if err != nil {
		a.log.Warn(a.ctx, "inventory load failed", logging.Int("inventory_id", inventoryID), logging.Err(err))
		a.flash("inventory %d: %v", inventoryID, err)
		return
	}
	a.ed.View(func(s *session.Session) {
		for _, h := range hosts {
			s.AddInventoryHost(h.Name, h.Type)
		}
	})
	a.log.Info(a.ctx, "inventory loaded", logging.Int("inventory_id", inventoryID), logging.Int("hosts", len(hosts)))
	a.flash("inventory %d: %d hosts", inventoryID, len(hosts))
}

func (a *app) path(name string) string {
	return filepath.Join(a.outDir, name)
}

// The hooks below run with the editor locked. They get copies of what they
// need and do the writing on their own goroutine.

func (a *app) exportSVG(snap *messages.Snapshot) error {
	name := fmt.Sprintf("topology-%d", snap.TopologyID)
	go func() {
		opts := render.Options{Title: name}
		for _, out := range []struct {
			ext    string
			encode func(io.Writer, *messages.Snapshot, render.Options) error
		}{{".svg", render.SVG}, {".png", render.PNG}} {
			if err := writeFile(a.path(name+out.ext), func(w io.Writer) error { return out.encode(w, snap, opts) }); err != nil {
				a.log.Error(a.ctx, "export failed", logging.String("format", out.ext), logging.Err(err))
				a.flash("export failed: %v", err)
				return
			}
		}
		a.flash("exported %s.svg and %s.png", a.path(name), a.path(name))
	}()
	return nil
}

func (a *app) exportYAML(doc *export.Document) error {
	go func() {
		p := a.path(fmt.Sprintf("topology-%d.yaml", doc.TopologyID))
		if err := writeFile(p, func(w io.Writer) error { return export.YAML(w, doc) }); err != nil {
			a.log.Error(a.ctx, "yaml export failed", logging.Err(err))
			a.flash("yaml export failed: %v", err)
			return
		}
		a.flash("exported %s", p)
	}()
	return nil
}

func (a *app) downloadTrace(traceID int, frames []messages.Frame) error {
	go func() {
		p := a.path(fmt.Sprintf("trace-%d.json", traceID))
		err := writeFile(p, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(frames)
		})
		if err != nil {
			a.log.Error(a.ctx, "trace write failed", logging.Err(err))
			a.flash("trace write failed: %v", err)
			return
		}
		a.flash("wrote %d frames to %s", len(frames), p)
	}()
	return nil
}

func (a *app) launchJob(templateID int) error {
	go func() {
		jobID, err := a.awx.LaunchJobTemplate(a.ctx, templateID)
		if err != nil {
			a.log.Error(a.ctx, "job launch failed", logging.Int("job_template", templateID), logging.Err(err))
			a.flash("job template %d: %v", templateID, err)
			return
		}
		a.log.Info(a.ctx, "job launched", logging.Int("job_template", templateID), logging.Int("job_id", jobID))
		a.flash("job template %d launched as job %d", templateID, jobID)
	}()
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
