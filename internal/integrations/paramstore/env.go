package paramstore

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
)

// Env serves parameters from environment variables. A parameter path is
// mapped to a variable by its last segment, upper-cased with dashes turned
// into underscores: "/travel-agent/open-ai-token" reads OPEN_AI_TOKEN.
type Env struct {
	lookup func(string) (string, bool)
}

// NewEnv returns an Env reading the process environment.
func NewEnv() *Env {
	return &Env{lookup: os.LookupEnv}
}

// EnvName returns the variable name a parameter path maps to.
func EnvName(name string) string {
	base := path.Base(strings.TrimRight(strings.TrimSpace(name), "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(base))
}

func (e *Env) GetParameter(_ context.Context, name string) (string, error) {
	key := EnvName(name)
	if key == "" {
		return "", fmt.Errorf("paramstore: name is required")
	}
	lookup := e.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("environment variable %s for %q: %w", key, name, ErrNotFound)
	}
	return v, nil
}
