package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/weave/pkg/domain"
)

// Loader adapts the Loam library to the Weave PromptLoader interface.
// Every document in the vault is one node; its frontmatter is a NodeMetadata.
type Loader struct {
	Repo *loam.TypedRepository[NodeMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[NodeMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// GetNode retrieves a node from the Loam repository.
// Loam resolves "start" to start.md (or .json/.yaml) on its own.
func (l *Loader) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w: %w", id, domain.ErrNodeNotFound, err)
	}

	meta := doc.Data
	rawID := meta.ID
	if rawID == "" {
		rawID = doc.ID
	}
	if meta.Class == "" {
		return nil, fmt.Errorf("node %s: missing class", trimExtension(rawID))
	}

	n := domain.NewNode(trimExtension(rawID), meta.Class)
	n.DisplayID = meta.Display

	for name, raw := range meta.Inputs {
		in, err := decodeInput(normalize(raw))
		if err != nil {
			return nil, fmt.Errorf("node %s: input %s: %w", n.ID, name, err)
		}
		n.Set(name, in)
	}

	if meta.BodyInput != "" {
		if body := strings.TrimSpace(doc.Content); body != "" {
			n.Set(meta.BodyInput, domain.Literal(body))
		}
	}

	return n, nil
}

// decodeInput lets frontmatter links carry loosely typed fields, such as
// output: "1", which YAML authors write often enough.
func decodeInput(raw any) (domain.Input, error) {
	m, ok := raw.(map[string]any)
	if !ok || len(m) != 2 {
		return domain.DecodeInput(raw), nil
	}
	if _, hasFrom := m[domain.KeyFrom]; !hasFrom {
		return domain.Literal(raw), nil
	}
	if _, hasOutput := m[domain.KeyOutput]; !hasOutput {
		return domain.Literal(raw), nil
	}

	var link domain.Link
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &link,
	})
	if err != nil {
		return domain.Input{}, err
	}
	if err := dec.Decode(m); err != nil {
		return domain.Input{}, fmt.Errorf("invalid link: %w", err)
	}
	if link.From == "" || link.Output < 0 {
		return domain.Input{}, fmt.Errorf("invalid link %v", m)
	}
	return domain.Input{Link: &link}, nil
}

// normalize rewrites map[any]any, which some YAML decoders produce, into
// map[string]any at every depth.
func normalize(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[fmt.Sprintf("%v", k)] = normalize(sub)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[k] = normalize(sub)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, sub := range val {
			out[i] = normalize(sub)
		}
		return out
	default:
		return v
	}
}

// ListNodes lists all nodes in the repository, sorted by id.
func (l *Loader) ListNodes(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		// Use the ID from metadata if available, otherwise filename ID
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch emits the id of every node document that changes on disk.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				// Loam debounces on its own.
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
