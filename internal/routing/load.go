package routing

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"spupload/pkg/problems"
)

// LoadFile reads rules from a YAML document of the form
//
//	prefixes:
//	  rca_: EQUIPE
//	keywords:
//	  cortes: CORTE
//
// Mapping order in the document is the matching order.
func LoadFile(path string) (Rules, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, problems.New(problems.ConfigFailure, "routing rules", err)
	}
	rules, err := Parse(b)
	if err != nil {
		return Rules{}, problems.New(problems.ConfigFailure, "routing rules "+path, err)
	}
	return rules, nil
}

// Parse decodes a rules document. yaml.Node is used instead of a Go map so
// that key order survives decoding.
func Parse(b []byte) (Rules, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return Rules{}, err
	}
	if len(doc.Content) == 0 {
		return Rules{}, fmt.Errorf("empty rules document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return Rules{}, fmt.Errorf("line %d: rules document must be a mapping", root.Line)
	}
	var rules Rules
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "prefixes":
			rs, err := orderedRules(val, false)
			if err != nil {
				return Rules{}, fmt.Errorf("prefixes: %w", err)
			}
			rules.Prefixes = rs
		case "keywords":
			rs, err := orderedRules(val, true)
			if err != nil {
				return Rules{}, fmt.Errorf("keywords: %w", err)
			}
			rules.Keywords = rs
		default:
			return Rules{}, fmt.Errorf("line %d: unknown key %q", key.Line, key.Value)
		}
	}
	if rules.Len() == 0 {
		return Rules{}, fmt.Errorf("no rules defined")
	}
	return rules, nil
}

func orderedRules(n *yaml.Node, lower bool) ([]Rule, error) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a pattern: subfolder mapping", n.Line)
	}
	seen := map[string]bool{}
	out := make([]Rule, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		pattern := k.Value
		if lower {
			pattern = strings.ToLower(pattern)
		}
		sub := strings.TrimSpace(v.Value)
		switch {
		case v.Kind != yaml.ScalarNode:
			return nil, fmt.Errorf("line %d: subfolder for %q must be a string", v.Line, k.Value)
		case pattern == "":
			return nil, fmt.Errorf("line %d: empty pattern", k.Line)
		case sub == "":
			return nil, fmt.Errorf("line %d: empty subfolder for %q", v.Line, k.Value)
		case seen[pattern]:
			return nil, fmt.Errorf("line %d: duplicate pattern %q", k.Line, k.Value)
		}
		seen[pattern] = true
		out = append(out, Rule{Pattern: pattern, Subfolder: sub})
	}
	return out, nil
}
