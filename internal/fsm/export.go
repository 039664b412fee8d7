package fsm

import (
	"bytes"
	"fmt"
	"strings"
)

// DOT renders the machine as a Graphviz digraph. Output follows
// declaration order, so the same machine always renders byte-identical,
// which keeps golden files and generated docs stable.
//
// Terminal states render as double circles; a state message becomes a
// second label line.
func (m *Machine) DOT() []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "digraph %q {\n", m.name)
	buf.WriteString("\trankdir=LR;\n")
	buf.WriteString("\tnode [shape=circle];\n")
	buf.WriteString("\t\"__start\" [shape=point, label=\"\"];\n")

	for _, sd := range m.defs {
		var attrs []string
		if sd.Terminal {
			attrs = append(attrs, "shape=doublecircle")
		}
		if sd.Message != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", string(sd.Name)+"\n"+sd.Message))
		}
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, "\t%q [%s];\n", string(sd.Name), strings.Join(attrs, ", "))
		} else {
			fmt.Fprintf(&buf, "\t%q;\n", string(sd.Name))
		}
	}

	fmt.Fprintf(&buf, "\t\"__start\" -> %q;\n", string(m.initial))
	for _, tr := range m.trans {
		fmt.Fprintf(&buf, "\t%q -> %q [label=%q];\n", string(tr.From), string(tr.To), string(tr.Event))
	}

	buf.WriteString("}\n")
	return buf.Bytes()
}

// Mermaid renders the machine as a stateDiagram-v2 block, again in
// declaration order. State names are aliased to identifier-safe forms
// because mermaid identifiers cannot carry hyphens or spaces.
func (m *Machine) Mermaid() []byte {
	var buf bytes.Buffer

	buf.WriteString("stateDiagram-v2\n")

	for _, sd := range m.defs {
		fmt.Fprintf(&buf, "\tstate %q as %s\n", string(sd.Name), mermaidID(sd.Name))
	}
	for _, sd := range m.defs {
		if sd.Message != "" {
			fmt.Fprintf(&buf, "\t%s: %s\n", mermaidID(sd.Name), sd.Message)
		}
	}

	fmt.Fprintf(&buf, "\t[*] --> %s\n", mermaidID(m.initial))
	for _, tr := range m.trans {
		fmt.Fprintf(&buf, "\t%s --> %s: %s\n", mermaidID(tr.From), mermaidID(tr.To), string(tr.Event))
	}
	for _, sd := range m.defs {
		if sd.Terminal {
			fmt.Fprintf(&buf, "\t%s --> [*]\n", mermaidID(sd.Name))
		}
	}

	return buf.Bytes()
}

var mermaidReplacer = strings.NewReplacer("-", "_", " ", "_", ".", "_")

func mermaidID(s State) string {
	return mermaidReplacer.Replace(string(s))
}
