package fsm

import (
	"fmt"
	"sort"
	"strings"
)

// GenerateDOT renders a table in Graphviz DOT format.
func GenerateDOT(t *Table, title string) string {
	var sb strings.Builder

	sb.WriteString("digraph Machine {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [fontname=\"Helvetica\", fontsize=11, shape=box, style=rounded];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10];\n")
	sb.WriteString("\n")

	if title == "" {
		title = t.Name
	}
	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(title)))
		sb.WriteString("\n")
	}

	if t.Initial != "" {
		sb.WriteString("    __start [shape=none, label=\"\", width=0, height=0];\n")
		sb.WriteString(fmt.Sprintf("    __start -> \"%s\";\n", escapeDOT(t.Initial)))
		sb.WriteString("\n")
	}

	for _, state := range t.States {
		sb.WriteString(fmt.Sprintf("    \"%s\";\n", escapeDOT(state)))
	}
	sb.WriteString("\n")

	// One edge per (from, to) pair, labelled with every event that takes it.
	edgeLabels := make(map[[2]string][]string)
	for _, tr := range t.Transitions {
		for _, to := range tr.To {
			key := [2]string{tr.From, to}
			edgeLabels[key] = append(edgeLabels[key], tr.Event)
		}
	}

	keys := make([][2]string, 0, len(edgeLabels))
	for k := range edgeLabels {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	for _, key := range keys {
		combined := strings.Join(edgeLabels[key], ", ")
		sb.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\" [label=\"%s\"];\n",
			escapeDOT(key[0]), escapeDOT(key[1]), escapeDOT(combined)))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "<", "\\<")
	s = strings.ReplaceAll(s, ">", "\\>")
	return s
}
