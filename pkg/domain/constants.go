package domain

// Field constants for mapstructure and JSON standardization.
const (
	// KeyFrom is the field naming the producer node of a link.
	KeyFrom = "from"
	// KeyOutput is the field naming the producer's output index.
	KeyOutput = "output"
)
