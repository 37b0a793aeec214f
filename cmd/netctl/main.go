// Command netctl inspects editor machines, topology snapshots and the
// relay database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ha1tch/netui/pkg/awx"
	"github.com/ha1tch/netui/pkg/config"
	"github.com/ha1tch/netui/pkg/editor"
	"github.com/ha1tch/netui/pkg/export"
	"github.com/ha1tch/netui/pkg/fsm"
	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/messages"
	"github.com/ha1tch/netui/pkg/render"
	"github.com/ha1tch/netui/pkg/session"
	"github.com/ha1tch/netui/pkg/store"
)

const usage = `netctl - network_ui topology toolkit

Usage:
  netctl <command> [options]

Commands:
  machines     List the editor machines in chain order
  validate     Validate every machine transition table
  dot          Generate Graphviz DOT for one machine
  render       Render a snapshot to SVG or PNG
  export       Convert a snapshot to the YAML or JSON automation document
  topologies   List topologies in the relay database
  inventory    List AWX inventory hosts

Examples:
  netctl dot move_fsm | dot -Tpng -o move.png
  netctl render snapshot.json -o topology.svg -t "Lab"
  netctl export snapshot.json -o topology.yaml
  netctl topologies --db netui.db
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "machines":
		cmdMachines(args)
	case "validate":
		cmdValidate(args)
	case "dot":
		cmdDot(args)
	case "render":
		cmdRender(args)
	case "export":
		cmdExport(args)
	case "topologies":
		cmdTopologies(args)
	case "inventory":
		cmdInventory(args)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}

// parseArgs fills valued and bools from args and returns the positional
// arguments.
func parseArgs(args []string, valued map[string]*string, bools map[string]*bool) []string {
	var rest []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if p, ok := valued[a]; ok {
			if i+1 < len(args) {
				*p = args[i+1]
				i++
			}
			continue
		}
		if p, ok := bools[a]; ok {
			*p = true
			continue
		}
		rest = append(rest, a)
	}
	return rest
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// newEditor builds an offline editor so its machine tables can be read.
func newEditor() *editor.Editor {
	s := session.New(session.Options{Width: 1024, Height: 768, Logger: logging.Noop()})
	s.Disconnected = true
	return editor.New(s, editor.Options{})
}

func lookupTable(ed *editor.Editor, name string) *fsm.Table {
	for _, t := range ed.Tables() {
		if t.Name == name || strings.TrimSuffix(t.Name, "_fsm") == name {
			return t
		}
	}
	return nil
}

func cmdMachines(args []string) {
	var asJSON bool
	parseArgs(args, nil, map[string]*bool{"--json": &asJSON})

	ed := newEditor()
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ed.Tables()); err != nil {
			fail("Error encoding tables: %v", err)
		}
		return
	}

	states := ed.States()
	for i, name := range ed.Machines() {
		t := lookupTable(ed, name)
		n := 0
		if t != nil {
			n = len(t.States)
		}
		fmt.Printf("%2d  %-24s %-20s %d states\n", i+1, name, states[name], n)
	}
}

func cmdValidate(args []string) {
	ed := newEditor()
	failed := false
	for _, t := range ed.Tables() {
		if err := t.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", t.Name, err)
			failed = true
			continue
		}
		if un := t.UnreachableStates(); len(un) > 0 {
			fmt.Printf("%s: valid, unreachable states %v\n", t.Name, un)
			continue
		}
		fmt.Printf("%s: valid with %d states, %d transitions\n", t.Name, len(t.States), len(t.Transitions))
	}
	if failed {
		os.Exit(1)
	}
}

func cmdDot(args []string) {
	var output, title string
	rest := parseArgs(args, map[string]*string{
		"-o": &output, "--output": &output,
		"-t": &title, "--title": &title,
	}, nil)
	if len(rest) < 1 {
		fail("Usage: netctl dot <machine> [-o output] [-t title]")
	}

	ed := newEditor()
	t := lookupTable(ed, rest[0])
	if t == nil {
		fail("Unknown machine: %s (see netctl machines)", rest[0])
	}
	if title == "" {
		title = fmt.Sprintf("%s: %d states", t.Name, len(t.States))
	}

	dot := fsm.GenerateDOT(t, title)
	if output == "" {
		fmt.Print(dot)
		return
	}
	if err := os.WriteFile(output, []byte(dot), 0o644); err != nil {
		fail("Error writing %s: %v", output, err)
	}
}

func loadSnapshot(path string) (*messages.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// A saved Snapshot frame, a stamped object or the bare object.
	if m, err := messages.Parse(data); err == nil {
		if snap, ok := m.(*messages.Snapshot); ok {
			return snap, nil
		}
	}
	if m, err := messages.DecodeObject(data); err == nil {
		if snap, ok := m.(*messages.Snapshot); ok {
			return snap, nil
		}
	}
	var snap messages.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &snap, nil
}

func cmdRender(args []string) {
	var output, title, width, height string
	var hideIntf bool
	rest := parseArgs(args, map[string]*string{
		"-o": &output, "--output": &output,
		"-t": &title, "--title": &title,
		"--width": &width, "--height": &height,
	}, map[string]*bool{"--no-interfaces": &hideIntf})
	if len(rest) < 1 {
		fail("Usage: netctl render <snapshot.json> [-o out.svg|out.png] [-t title] [--width N] [--height N] [--no-interfaces]")
	}

	snap, err := loadSnapshot(rest[0])
	if err != nil {
		fail("Error loading %s: %v", rest[0], err)
	}
	opts := render.Options{Title: title, HideInterfaces: hideIntf}
	fmt.Sscan(width, &opts.Width)
	fmt.Sscan(height, &opts.Height)

	if output == "" {
		if err := render.SVG(os.Stdout, snap, opts); err != nil {
			fail("Error rendering: %v", err)
		}
		return
	}

	var encode func(io.Writer, *messages.Snapshot, render.Options) error
	switch filepath.Ext(output) {
	case ".svg":
		encode = render.SVG
	case ".png":
		encode = render.PNG
	default:
		fail("Unknown output format: %s", filepath.Ext(output))
	}
	if err := writeFile(output, func(w io.Writer) error { return encode(w, snap, opts) }); err != nil {
		fail("Error writing %s: %v", output, err)
	}
	fmt.Printf("Written: %s\n", output)
}

func cmdExport(args []string) {
	var output string
	rest := parseArgs(args, map[string]*string{"-o": &output, "--output": &output}, nil)
	if len(rest) < 1 {
		fail("Usage: netctl export <snapshot.json> [-o out.yaml|out.json]")
	}

	snap, err := loadSnapshot(rest[0])
	if err != nil {
		fail("Error loading %s: %v", rest[0], err)
	}
	s := session.New(session.Options{Width: 1024, Height: 768, Logger: logging.Noop()})
	s.LoadSnapshot(snap)
	doc := s.TopologyData()

	if output == "" {
		if err := export.YAML(os.Stdout, doc); err != nil {
			fail("Error encoding: %v", err)
		}
		return
	}

	encode := export.YAML
	switch filepath.Ext(output) {
	case ".yaml", ".yml":
	case ".json":
		encode = export.JSON
	default:
		fail("Unknown output format: %s", filepath.Ext(output))
	}
	if err := writeFile(output, func(w io.Writer) error { return encode(w, doc) }); err != nil {
		fail("Error writing %s: %v", output, err)
	}
	fmt.Printf("Written: %s\n", output)
}

func cmdTopologies(args []string) {
	var configPath, dbPath string
	parseArgs(args, map[string]*string{"--config": &configPath, "--db": &dbPath}, nil)
	cfg, err := config.Load(configPath)
	if err != nil {
		fail("Error loading config: %v", err)
	}
	if dbPath == "" {
		dbPath = cfg.Store.Path
	}

	st, err := store.Open(dbPath)
	if err != nil {
		fail("Error opening %s: %v", dbPath, err)
	}
	defer st.Close()

	tops, err := st.ListTopologies(context.Background())
	if err != nil {
		fail("Error listing topologies: %v", err)
	}
	for _, t := range tops {
		fmt.Printf("%4d  %-24s scale %.2f  pan %.0f,%.0f\n", t.ID, t.Name, t.Scale, t.PanX, t.PanY)
	}
}

func cmdInventory(args []string) {
	var configPath, inv string
	parseArgs(args, map[string]*string{"--config": &configPath, "--inventory": &inv}, nil)
	cfg, err := config.Load(configPath)
	if err != nil {
		fail("Error loading config: %v", err)
	}
	id := cfg.Inventory.ID
	if inv != "" {
		fmt.Sscan(inv, &id)
	}

	client := &awx.Client{BaseURL: cfg.AWX.URL, Token: cfg.AWX.Token}
	hosts, err := client.InventoryHosts(context.Background(), id)
	if err != nil {
		fail("Error reading inventory %d: %v", id, err)
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].Name < hosts[j].Name })
	for _, h := range hosts {
		fmt.Printf("%4d  %-24s %s\n", h.ID, h.Name, h.Type)
	}
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
