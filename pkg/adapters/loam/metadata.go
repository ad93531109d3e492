package loam

// NodeMetadata is the frontmatter of one node document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type NodeMetadata struct {
	ID      string `json:"id" mapstructure:"id"`
	Class   string `json:"class" mapstructure:"class"`
	Display string `json:"display" mapstructure:"display"`

	// Inputs maps socket names to literals or links. A link is written as
	// {from: id, output: n} or as the pair [id, n].
	Inputs map[string]any `json:"inputs" mapstructure:"inputs"`

	// BodyInput names an input that receives the document body as a string
	// literal, so long labels can live in Markdown instead of frontmatter.
	BodyInput string `json:"body_input,omitempty" mapstructure:"body_input"`
}
