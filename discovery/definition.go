// Package discovery loads command definitions and assembles them, together
// with the built-in frame catalog, into one navigable command tree.
package discovery

import (
	"errors"
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/aallbrig/swarmui/models"
)

// Definition is one externally supplied command.
type Definition struct {
	Path       string         `json:"path" yaml:"path"`
	Target     string         `json:"target" yaml:"target"`
	Parameters []models.Param `json:"parameters" yaml:"parameters"`
	Info       string         `json:"info" yaml:"info"`
}

// ErrMalformed is matched by every MalformedError.
var ErrMalformed = errors.New("malformed definition")

// MalformedError reports a definition entry that cannot be used. It is
// recoverable: the entry is skipped and loading continues.
type MalformedError struct {
	Source string
	Index  int // -1 for document-level problems
	Field  string
	Reason string
}

func (e *MalformedError) Error() string {
	where := e.Source
	if e.Index >= 0 {
		where = fmt.Sprintf("%s: definition %d", e.Source, e.Index)
	}
	if e.Reason != "" {
		return fmt.Sprintf("%s: key %s: %s", where, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: key %s was not found", where, e.Field)
}

func (e *MalformedError) Unwrap() error { return ErrMalformed }

// requiredKeys must be present on every definition entry.
var requiredKeys = []string{"path", "target", "parameters", "info"}

// anyKind is the parameter kind used when a definition lists bare names.
const anyKind = "any"

// ParseDefinitions decodes a JSON or YAML definitions document of the form
// {"commands": [{path, target, parameters, info}, ...]}.
//
// Entries that are missing keys or have the wrong shape are returned in
// skipped; err is only set when the document itself cannot be decoded.
// Parameter order follows the document.
func ParseDefinitions(data []byte, source string) (defs []Definition, skipped []error, err error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", source, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, []error{&MalformedError{Source: source, Index: -1, Field: "commands"}}, nil
	}
	commands := lookup(doc.Content[0], "commands")
	if commands == nil {
		return nil, []error{&MalformedError{Source: source, Index: -1, Field: "commands"}}, nil
	}
	if commands.Kind != yaml.SequenceNode {
		return nil, []error{&MalformedError{Source: source, Index: -1, Field: "commands", Reason: "expected a list"}}, nil
	}

	for i, entry := range commands.Content {
		def, perr := parseEntry(entry)
		if perr != nil {
			perr.Source = source
			perr.Index = i
			skipped = append(skipped, perr)
			continue
		}
		defs = append(defs, def)
	}
	return defs, skipped, nil
}

func parseEntry(entry *yaml.Node) (Definition, *MalformedError) {
	if entry.Kind != yaml.MappingNode {
		return Definition{}, &MalformedError{Field: "path", Reason: "entry is not a mapping"}
	}
	for _, key := range requiredKeys {
		if lookup(entry, key) == nil {
			return Definition{}, &MalformedError{Field: key}
		}
	}

	var def Definition
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"path", &def.Path},
		{"target", &def.Target},
		{"info", &def.Info},
	} {
		v := lookup(entry, f.key)
		if v.Kind != yaml.ScalarNode {
			return Definition{}, &MalformedError{Field: f.key, Reason: "expected a string"}
		}
		if v.Tag != "!!null" {
			*f.dst = v.Value
		}
	}
	if models.Normalize(def.Target) == "" {
		return Definition{}, &MalformedError{Field: "target", Reason: "empty"}
	}

	params, perr := parseParams(lookup(entry, "parameters"))
	if perr != nil {
		return Definition{}, perr
	}
	def.Parameters = params
	return def, nil
}

// parseParams accepts an ordered name→kind mapping or a list of names.
func parseParams(n *yaml.Node) ([]models.Param, *MalformedError) {
	var params []models.Param
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if v.Kind != yaml.ScalarNode {
				return nil, &MalformedError{Field: "parameters", Reason: fmt.Sprintf("kind of %q is not a string", k.Value)}
			}
			params = append(params, models.Param{Name: k.Value, Kind: v.Value})
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, &MalformedError{Field: "parameters", Reason: "list items must be names"}
			}
			params = append(params, models.Param{Name: item.Value, Kind: anyKind})
		}
	case yaml.ScalarNode:
		if n.Tag != "!!null" {
			return nil, &MalformedError{Field: "parameters", Reason: "expected a mapping"}
		}
	default:
		return nil, &MalformedError{Field: "parameters", Reason: "expected a mapping"}
	}
	return params, nil
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
