package domain

// RunStatus tells how a run ended.
type RunStatus string

const (
	StatusCompleted RunStatus = "completed" // Every node produced its outputs
	StatusStalled   RunStatus = "stalled"   // Some nodes could never become ready
	StatusAborted   RunStatus = "aborted"   // A node failed, the context ended or a cap was hit
)

// RunReport is the snapshot of a finished run.
type RunReport struct {
	RunID  string    `json:"run_id"`
	Status RunStatus `json:"status"`

	// Outputs holds the resolved output values per node id.
	Outputs map[string][]any `json:"outputs"`

	// Order lists node ids in execution order.
	Order []string `json:"order"`

	// Expansions counts subgraphs spliced into the prompt.
	Expansions int `json:"expansions"`

	// Executions counts runs per display id, so every clone of a loop
	// body node adds to its original's count.
	Executions map[string]int `json:"executions"`

	// Prompt is the final graph including every spliced node.
	Prompt *Prompt `json:"prompt,omitempty"`

	// Diff lists what the run added to the submitted prompt.
	Diff *PromptDiff `json:"diff,omitempty"`
}

// NewRunReport creates an empty report.
func NewRunReport(runID string) *RunReport {
	return &RunReport{
		RunID:      runID,
		Status:     StatusCompleted,
		Outputs:    make(map[string][]any),
		Executions: make(map[string]int),
	}
}

// Output returns one resolved output value.
func (r *RunReport) Output(nodeID string, index int) (any, bool) {
	values, ok := r.Outputs[nodeID]
	if !ok || index < 0 || index >= len(values) {
		return nil, false
	}
	return values[index], true
}
