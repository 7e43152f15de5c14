// Package config implements the configuration lifecycle shared by every
// algorithm and gradient-step strategy: defaults loaded from a named JSON
// resource, partial overrides merged into a copy of the current values, and
// validation after every merge.
//
// A configuration kind declares its schema explicitly through Fields. Each
// field binds a JSON name to a pointer into the receiver, so merging and
// fingerprinting never need reflection over unexported state:
//
//	func (c *KNNConfiguration) Fields() []config.Field {
//		return []config.Field{{Name: "k", Target: &c.K}}
//	}
//
// A field whose Target is itself a Configuration is merged recursively.
package config

// Configuration is one configuration kind.
type Configuration interface {
	// Kind is the stable identifier of the configuration kind (e.g. "knn").
	Kind() string
	// DefaultFileName names the resource holding the default values.
	DefaultFileName() string
	// Fields returns the schema bound to the receiver.
	Fields() []Field
	// Validate checks constraints that struct tags cannot express.
	Validate() error
	// Clone returns a deep copy.
	Clone() Configuration
}

// LoaderAware is implemented by configurations whose validation builds other
// configurations from default resources.
type LoaderAware interface {
	UseResourceLoader(loader ResourceLoader)
}

// AttachLoader hands loader to cfg and its nested configurations when they
// are LoaderAware.
func AttachLoader(cfg Configuration, loader ResourceLoader) {
	if la, ok := cfg.(LoaderAware); ok {
		la.UseResourceLoader(loader)
	}
	for _, f := range cfg.Fields() {
		if nested, ok := f.Target.(Configuration); ok {
			AttachLoader(nested, loader)
		}
	}
}

// Field binds a parameter name to a pointer into its configuration.
type Field struct {
	Name   string
	Target any
}

// State is the lifecycle state of the configuration owned by an algorithm.
type State int

const (
	// StateUnset means no configuration has been materialised yet.
	StateUnset State = iota
	// StateDefault means all fields come from the default resource.
	StateDefault
	// StateOverridden means at least one override has been merged.
	StateOverridden
)

func (s State) String() string {
	switch s {
	case StateDefault:
		return "default"
	case StateOverridden:
		return "overridden"
	default:
		return "unset"
	}
}

// DefaultValuesKey is the resource object holding the default parameter values.
const DefaultValuesKey = "default_parameter_values"
