package codec

// DefaultMaxDepth is the default maximum nesting depth for Parse and Serialize.
const DefaultMaxDepth = 512

// DefaultIndent is the default indent width used by Serialize callers.
const DefaultIndent = 2

// maxIndent caps the indent width, as JSON.stringify does.
const maxIndent = 10

type options struct {
	maxDepth int
}

// Option configures Parse and Serialize.
type Option func(*options)

// WithMaxDepth sets the maximum nesting depth.
// Values <= 0 fall back to DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
