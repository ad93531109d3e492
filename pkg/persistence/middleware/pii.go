package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
)

// Mask replaces every redacted literal.
const Mask = "***"

type piiMiddleware struct {
	next     ports.PromptStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks literal inputs whose
// socket name, or any nested map key, matches one of the patterns. Links
// are never touched, so the stored graph keeps its shape.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.PromptStore) ports.PromptStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, promptID string, p *domain.Prompt) error {
	// Clone so the caller's prompt keeps its values.
	cloned := p.Clone()
	for _, id := range cloned.IDs() {
		n, _ := cloned.Node(id)
		for name, in := range n.Inputs {
			if in.IsLink() {
				continue
			}
			if m.matches(name) {
				n.Inputs[name] = domain.Literal(Mask)
				continue
			}
			if sub, ok := in.Value.(map[string]any); ok {
				sub = deepCopyMap(sub)
				maskMap(sub, m.patterns)
				n.Inputs[name] = domain.Literal(sub)
			}
		}
	}

	return m.next.Save(ctx, promptID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, promptID string) (*domain.Prompt, error) {
	return m.next.Load(ctx, promptID)
}

func (m *piiMiddleware) Delete(ctx context.Context, promptID string) error {
	return m.next.Delete(ctx, promptID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

// Helpers

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				break
			}
		}

		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
