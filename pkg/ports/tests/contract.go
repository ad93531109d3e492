package tests

import (
	"context"
	"testing"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
)

// PromptLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.PromptLoader.
func PromptLoaderContractTest(t *testing.T, loader ports.PromptLoader, setupData map[string]*domain.Node) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetNode_Success", func(t *testing.T) {
		for id, expected := range setupData {
			got, err := loader.GetNode(ctx, id)
			if err != nil {
				t.Fatalf("unexpected error getting node %s: %v", id, err)
			}
			if got.ID != expected.ID || got.Class != expected.Class {
				t.Errorf("node mismatch for %s. got %s/%s, want %s/%s", id, got.ID, got.Class, expected.ID, expected.Class)
			}
			for name, in := range expected.Inputs {
				gotIn, ok := got.Inputs[name]
				if !ok {
					t.Errorf("node %s: input %s missing", id, name)
					continue
				}
				if in.IsLink() != gotIn.IsLink() {
					t.Errorf("node %s: input %s link mismatch", id, name)
				}
			}
		}
	})

	t.Run("GetNode_NotFound", func(t *testing.T) {
		_, err := loader.GetNode(ctx, "non-existent-node")
		if err == nil {
			t.Error("expected error for non-existent node, got nil")
		}
	})

	t.Run("ListNodes", func(t *testing.T) {
		nodes, err := loader.ListNodes(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing nodes: %v", err)
		}

		if len(nodes) != len(setupData) {
			t.Errorf("expected %d nodes, got %d", len(setupData), len(nodes))
		}

		lookup := make(map[string]bool)
		for _, id := range nodes {
			lookup[id] = true
		}

		for id := range setupData {
			if !lookup[id] {
				t.Errorf("node %s missing from list", id)
			}
		}
	})

	t.Run("LoadPrompt", func(t *testing.T) {
		p, err := ports.LoadPrompt(ctx, loader, "contract")
		if err != nil {
			t.Fatalf("LoadPrompt() error = %v", err)
		}
		if p.Len() != len(setupData) {
			t.Errorf("expected %d nodes in prompt, got %d", len(setupData), p.Len())
		}
	})
}
