package api

// Sweep is the declarative form of a parameter sweep.
// It lists the levels of the nest in loop order, outermost first.
type Sweep struct {
	// FailOnClash makes iteration fail when a level overwrites an existing key.
	FailOnClash bool `json:"fail_on_clash,omitempty" koanf:"fail_on_clash"`
	// WarnOnClash logs permitted overwrites. Defaults to true.
	WarnOnClash *bool `json:"warn_on_clash,omitempty" koanf:"warn_on_clash"`
	// IncludeOutdir adds an OUTDIR entry to every control record.
	IncludeOutdir bool `json:"include_outdir,omitempty" koanf:"include_outdir"`
	// Base seeds every namespace.
	Base map[string]any `json:"base,omitempty" koanf:"base"`
	// Levels in registration order.
	Levels []Level `json:"levels" koanf:"levels"`
}

// Level describes one dimension of the sweep.
type Level struct {
	// Name is the namespace key and default path label.
	Name string `json:"name" koanf:"name"`
	// Values are the items of this level: a list of scalars, or of mappings
	// for update levels. It is passed to the nest as decoded, so a bare
	// string or scalar is reported there rather than coerced into a list.
	Values any `json:"values" koanf:"values"`
	// CreateDir controls whether the level adds a path segment. Defaults to true.
	CreateDir *bool `json:"create_dir,omitempty" koanf:"create_dir"`
	// Update merges each mapping item into the namespace.
	Update bool `json:"update,omitempty" koanf:"update"`
	// Template renders each item as a {key} template against earlier levels.
	Template bool `json:"template,omitempty" koanf:"template"`
	// Label is an optional text/template for the path segment.
	Label string `json:"label,omitempty" koanf:"label"`
}
