package domain

import (
	"reflect"
)

// PromptDiff represents the changes between two prompts.
// It is designed to be serialized to JSON for partial updates on the client.
type PromptDiff struct {
	// Added lists nodes present only in the new prompt, in insertion order.
	Added []string `json:"added,omitempty"`

	// Removed lists nodes present only in the old prompt.
	Removed []string `json:"removed,omitempty"`

	// Changed maps node ids to the input names whose value or link differs.
	// Removed inputs are listed too.
	Changed map[string][]string `json:"changed,omitempty"`
}

// Diff calculates the difference between oldPrompt and newPrompt.
// If oldPrompt is nil, every node of newPrompt is reported as added.
func Diff(oldPrompt, newPrompt *Prompt) *PromptDiff {
	if newPrompt == nil {
		return nil
	}
	diff := &PromptDiff{}

	for _, id := range newPrompt.IDs() {
		if oldPrompt == nil {
			diff.Added = append(diff.Added, id)
			continue
		}
		prev, ok := oldPrompt.Node(id)
		if !ok {
			diff.Added = append(diff.Added, id)
			continue
		}
		cur, _ := newPrompt.Node(id)
		if changed := diffInputs(prev, cur); len(changed) > 0 {
			if diff.Changed == nil {
				diff.Changed = make(map[string][]string)
			}
			diff.Changed[id] = changed
		}
	}

	if oldPrompt != nil {
		for _, id := range oldPrompt.IDs() {
			if _, ok := newPrompt.Node(id); !ok {
				diff.Removed = append(diff.Removed, id)
			}
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffInputs(old, new *Node) []string {
	var changed []string
	for _, name := range new.InputNames() {
		prev, exists := old.Inputs[name]
		if !exists || !reflect.DeepEqual(prev, new.Inputs[name]) {
			changed = append(changed, name)
		}
	}
	for _, name := range old.InputNames() {
		if _, exists := new.Inputs[name]; !exists {
			changed = append(changed, name)
		}
	}
	return changed
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *PromptDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}
