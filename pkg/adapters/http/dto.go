package http

import (
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/schema"
)

// ClassInfo describes one registered node class.
type ClassInfo struct {
	Name   string        `json:"name"`
	Schema schema.Schema `json:"schema"`
}

// ResolveRequest asks for the schema of one class given the types observed
// on its sockets. Types use the socket string grammar, e.g. "INT" or "LIST<INT>".
type ResolveRequest struct {
	Class     string              `json:"class"`
	Inputs    map[string]string   `json:"inputs,omitempty"`
	Outputs   map[string][]string `json:"outputs,omitempty"`
	Entangled []ObservationDTO    `json:"entangled,omitempty"`
}

// ObservationDTO is an observation in its string form.
type ObservationDTO struct {
	Inputs  map[string]string   `json:"inputs,omitempty"`
	Outputs map[string][]string `json:"outputs,omitempty"`
}

// Observation converts the request into the observation records a class resolves against.
func (r ResolveRequest) Observation() (schema.Observation, []schema.Observation) {
	entangled := make([]schema.Observation, 0, len(r.Entangled))
	for _, e := range r.Entangled {
		entangled = append(entangled, schema.ObservationFromStrings(e.Inputs, e.Outputs))
	}
	return schema.ObservationFromStrings(r.Inputs, r.Outputs), entangled
}

// ValidateResponse is the verdict of POST /validate.
type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// RunResponse wraps a run report with the error that ended it, if any.
type RunResponse struct {
	Report *domain.RunReport `json:"report"`
	Error  string            `json:"error,omitempty"`
}
