package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractPrompt(id string) *domain.Prompt {
	p := domain.NewPrompt(id)
	open := domain.NewNode("open", "WhileLoopOpen")
	open.Set("initial_value0", domain.Literal(3))
	close := domain.NewNode("close", "WhileLoopClose")
	close.Set("flow_control", domain.Linked("open", 0))
	close.Set("condition", domain.Literal(false))
	close.Set("initial_value0", domain.Linked("open", 1))
	_ = p.Add(open)
	_ = p.Add(close)
	return p
}

// RunPromptStoreContract runs a suite of tests to verify that a PromptStore implementation
// adheres to the defined interface contract.
func RunPromptStoreContract(t *testing.T, store PromptStore) {
	ctx := context.Background()
	promptID := "contract-test-prompt-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		prompt := contractPrompt(promptID)

		err := store.Save(ctx, promptID, prompt)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, promptID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, []string{"open", "close"}, loaded.IDs(), "insertion order must survive")

		closeNode, ok := loaded.Node("close")
		require.True(t, ok)
		assert.True(t, closeNode.Inputs["flow_control"].IsLink())
		assert.Equal(t, "open", closeNode.Inputs["flow_control"].Link.From)
		assert.Equal(t, false, closeNode.Inputs["condition"].Value)

		// JSON persistence may turn ints into floats; only existence is checked.
		openNode, _ := loaded.Node("open")
		assert.NotNil(t, openNode.Inputs["initial_value0"].Value)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+promptID)
		assert.ErrorIs(t, err, domain.ErrPromptNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, promptID, contractPrompt(promptID))
		require.NoError(t, err)

		err = store.Delete(ctx, promptID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, promptID)
		assert.ErrorIs(t, err, domain.ErrPromptNotFound, "Load after Delete should return ErrPromptNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := promptID + "-1"
		id2 := promptID + "-2"
		_ = store.Save(ctx, id1, contractPrompt(id1))
		_ = store.Save(ctx, id2, contractPrompt(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		prompts, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, prompts, id1)
		assert.Contains(t, prompts, id2)
	})
}
