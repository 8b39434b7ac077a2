package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/maruel/natural"
	yaml "gopkg.in/yaml.v3"

	"wss/cascade"
	"wss/config"
	"wss/rules"
	"wss/utils/debug"
	"wss/widget"
)

type resolved struct {
	node  *widget.Node
	parts map[string]*cascade.Style // "" is the widget itself
}

type (
	ruleOut struct {
		Selector     string   `yaml:"selector"`
		Specificity  string   `yaml:"specificity"`
		Order        int      `yaml:"order"`
		Declarations []string `yaml:"declarations"`
	}

	ruleSetOut struct {
		ID        string            `yaml:"id"`
		Variables map[string]string `yaml:"variables,omitempty"`
		Rules     []ruleOut         `yaml:"rules"`
		Warnings  []string          `yaml:"warnings,omitempty"`
	}

	widgetOut struct {
		ID     string                       `yaml:"id"`
		Widget string                       `yaml:"widget"`
		Style  map[string]string            `yaml:"style,omitempty"`
		Parts  map[string]map[string]string `yaml:"parts,omitempty"`
	}
)

func renderRuleSet(rs *rules.RuleSet, format config.OutputFmt) ([]byte, error) {
	if format != config.OutputFmtYaml {
		return []byte(rs.String()), nil
	}

	out := ruleSetOut{ID: rs.ID().String(), Warnings: rs.Warnings()}
	if tbl := rs.Variables(); tbl.Len() > 0 {
		out.Variables = make(map[string]string, tbl.Len())
		for _, name := range tbl.Names() {
			out.Variables[name], _ = tbl.Lookup(name)
		}
	}
	for _, sub := range append([]string{""}, rs.Subcontrols()...) {
		for _, r := range rs.Candidates(sub) {
			ro := ruleOut{Selector: r.Selector.String(), Specificity: r.Specificity.String(), Order: r.Order}
			for _, d := range r.Declarations {
				ro.Declarations = append(ro.Declarations, d.String())
			}
			out.Rules = append(out.Rules, ro)
		}
	}
	return yaml.Marshal(out)
}

func renderStyles(styles []resolved, format config.OutputFmt) ([]byte, error) {
	if format == config.OutputFmtYaml {
		out := make([]widgetOut, 0, len(styles))
		for _, s := range styles {
			wo := widgetOut{ID: string(s.node.ID), Widget: s.node.String(), Style: properties(s.parts[""])}
			for _, part := range partNames(s.parts) {
				if wo.Parts == nil {
					wo.Parts = make(map[string]map[string]string)
				}
				wo.Parts[part] = properties(s.parts[part])
			}
			out = append(out, wo)
		}
		return yaml.Marshal(out)
	}

	tw := debug.NewTreeWriter()
	for _, s := range styles {
		tw.Line(0, "%s {", label(s.node))
		writeStyle(tw, 1, s.parts[""])
		for _, part := range partNames(s.parts) {
			tw.Line(1, "::%s {", part)
			writeStyle(tw, 2, s.parts[part])
			tw.Line(1, "}")
		}
		tw.Line(0, "}")
	}
	return []byte(tw.String()), nil
}

func writeStyle(tw *debug.TreeWriter, depth int, s *cascade.Style) {
	for _, name := range s.Names() {
		v, _ := s.Get(name)
		tw.Line(depth, "%s: %s; /* %s */", name, v.Raw, v.Kind)
	}
}

func label(n *widget.Node) string {
	if len(n.ID) == 0 {
		return n.String()
	}
	return fmt.Sprintf("%s /* %s */", n.String(), n.ID)
}

func properties(s *cascade.Style) map[string]string {
	if s == nil || s.Len() == 0 {
		return nil
	}
	out := make(map[string]string, s.Len())
	for name, v := range s.Map() {
		out[name] = v.Raw
	}
	return out
}

func partNames(parts map[string]*cascade.Style) []string {
	names := make([]string, 0, len(parts))
	for name := range parts {
		if len(name) > 0 {
			names = append(names, name)
		}
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

func destinationName(fname string) string {
	if len(fname) == 0 {
		return "STDOUT"
	}
	return fname
}

// writeOutput writes data to file or to STDOUT when file name is empty.
func writeOutput(fname string, data []byte) (err error) {
	out := os.Stdout
	if len(fname) > 0 {
		if out, err = os.Create(fname); err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer func() {
			if er := out.Close(); er != nil && err == nil {
				err = er
			}
		}()
	}
	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write to %s: %w", destinationName(fname), err)
	}
	return nil
}
