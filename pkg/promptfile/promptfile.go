// Package promptfile reads and writes prompts as YAML or JSON documents.
//
// A prompt file lists its nodes in order:
//
//	id: countdown
//	nodes:
//	  - id: open
//	    class: WhileLoopOpen
//	    inputs:
//	      initial_value0: 3
//	  - id: close
//	    class: WhileLoopClose
//	    inputs:
//	      flow_control: {from: open, output: 0}
//	      condition: [cond, 0]
//
// An input written as {from, output} or as a two element [id, n] list is a
// link; anything else is a literal.
package promptfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/weave/pkg/domain"
)

// Format selects the document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension. Anything but .json is YAML.
func FormatOf(path string) Format {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return FormatJSON
	}
	return FormatYAML
}

// File is the document shape of a prompt.
type File struct {
	ID    string       `mapstructure:"id" yaml:"id,omitempty" json:"id,omitempty"`
	Nodes []NodeRecord `mapstructure:"nodes" yaml:"nodes" json:"nodes"`
}

// NodeRecord is one node entry.
type NodeRecord struct {
	ID      string         `mapstructure:"id" yaml:"id" json:"id"`
	Class   string         `mapstructure:"class" yaml:"class" json:"class"`
	Display string         `mapstructure:"display" yaml:"display,omitempty" json:"display,omitempty"`
	Inputs  map[string]any `mapstructure:"inputs" yaml:"inputs,omitempty" json:"inputs,omitempty"`
}

// Load reads a prompt file. The prompt id defaults to the file name without
// its extension.
func Load(path string) (*domain.Prompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}
	p, err := Decode(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if p.ID == "" {
		p.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// Decode parses a prompt document. Unknown keys are rejected so typos in
// node records surface early.
func Decode(data []byte, format Format) (*domain.Prompt, error) {
	var raw map[string]any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse prompt json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse prompt yaml: %w", err)
		}
	}

	var file File
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &file,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid prompt document: %w", err)
	}
	return file.Prompt()
}

// Prompt converts the document into a prompt graph.
func (f File) Prompt() (*domain.Prompt, error) {
	p := domain.NewPrompt(f.ID)
	for i, rec := range f.Nodes {
		if rec.ID == "" {
			return nil, fmt.Errorf("node %d: missing id", i)
		}
		if rec.Class == "" {
			return nil, fmt.Errorf("node %s: missing class", rec.ID)
		}
		n := domain.NewNode(rec.ID, rec.Class)
		n.DisplayID = rec.Display
		for name, v := range rec.Inputs {
			n.Set(name, domain.DecodeInput(v))
		}
		if err := p.Add(n); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// FromPrompt builds the document for a prompt. Links are written in the
// {from, output} form.
func FromPrompt(p *domain.Prompt) File {
	f := File{ID: p.ID, Nodes: make([]NodeRecord, 0, p.Len())}
	for _, id := range p.IDs() {
		n, _ := p.Node(id)
		rec := NodeRecord{ID: n.ID, Class: n.Class, Display: n.DisplayID}
		if len(n.Inputs) > 0 {
			rec.Inputs = make(map[string]any, len(n.Inputs))
			for name, in := range n.Inputs {
				if in.IsLink() {
					rec.Inputs[name] = map[string]any{
						domain.KeyFrom:   in.Link.From,
						domain.KeyOutput: in.Link.Output,
					}
					continue
				}
				rec.Inputs[name] = in.Value
			}
		}
		f.Nodes = append(f.Nodes, rec)
	}
	return f
}

// Encode writes a prompt in the given format.
func Encode(p *domain.Prompt, format Format) ([]byte, error) {
	f := FromPrompt(p)
	if format == FormatJSON {
		return json.MarshalIndent(f, "", "  ")
	}
	return yaml.Marshal(f)
}
