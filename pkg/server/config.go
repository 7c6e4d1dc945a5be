package server

// Config carries the server's advertised identity and tunables. It is
// built with functional options, generalized from the teacher's flat
// struct literal construction.
type Config struct {
	Name         string
	Version      string
	EnableBatch  bool
	MaxBatchSize int
	BindHost     string
	BindPort     int
}

// Option mutates a Config during construction.
type Option func(*Config)

// defaultConfig mirrors the teacher's hardcoded "mcp"/"1.0.0" identity,
// with batching on and a generous default cap.
func defaultConfig() Config {
	return Config{
		Name:         "mcp",
		Version:      "1.0.0",
		EnableBatch:  true,
		MaxBatchSize: 100,
	}
}

// WithName overrides the advertised server name.
func WithName(name string) Option {
	return func(c *Config) { c.Name = name }
}

// WithVersion overrides the advertised server version.
func WithVersion(version string) Option {
	return func(c *Config) { c.Version = version }
}

// WithBatch toggles the batch method and sets its per-call item cap.
func WithBatch(enabled bool, maxSize int) Option {
	return func(c *Config) {
		c.EnableBatch = enabled
		c.MaxBatchSize = maxSize
	}
}

// WithBind records the transport-layer bind address; the core dispatcher
// never opens a socket itself, this is advisory for out-of-core transports.
func WithBind(host string, port int) Option {
	return func(c *Config) {
		c.BindHost = host
		c.BindPort = port
	}
}
