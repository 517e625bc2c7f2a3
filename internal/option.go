package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	version string
	watch   bool
	serve   bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithWatch keeps the process running after the first export and
// re-exports whenever the graph changes.
func WithWatch(watch bool) Option {
	return func(a *application) {
		a.watch = watch
	}
}

// WithServe starts the preview server. Serving implies watching.
func WithServe(serve bool) Option {
	return func(a *application) {
		a.serve = serve
		if serve {
			a.watch = true
		}
	}
}
