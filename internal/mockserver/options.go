package mockserver

import "github.com/rs/zerolog"

// Options configures the mock server.
type Options struct {
	// Models served by /v1/models and /api/tags; requests for other models get 404.
	Models []string
	// Token is the bearer token accepted when RequireAuth is set.
	Token string
	// RequireAuth makes /v1/chat/completions reject requests without "Bearer <Token>".
	RequireAuth bool
	// StatusOverrides forces a status (with a plain-text body) for a URL path.
	StatusOverrides map[string]int
	// Version reported by /api/version.
	Version string

	// CORS configuration (opt-in). If disabled, no CORS middleware is added.
	CORSEnabled        bool
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string

	// MaxBodyBytes bounds JSON request bodies; <= 0 means 1 MiB.
	MaxBodyBytes int64

	// Logger receives one line per request. Nil disables request logging.
	Logger *zerolog.Logger
}

// DefaultOptions serves the default probe model and accepts the default token.
func DefaultOptions() Options {
	return Options{
		Models:  []string{"gpt-oss:120b-cloud"},
		Token:   "ollama",
		Version: "0.0.0-mock",
	}
}

func (o Options) maxBody() int64 {
	if o.MaxBodyBytes <= 0 {
		return 1 << 20
	}
	return o.MaxBodyBytes
}

func (o Options) hasModel(name string) bool {
	for _, m := range o.Models {
		if m == name {
			return true
		}
	}
	return false
}
