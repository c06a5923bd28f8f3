package llm

import "fmt"

// ConfigError indicates a provider backend could not be constructed, usually
// because of missing or invalid credentials. The registry records it and
// marks the provider unavailable until the probe cooldown elapses.
type ConfigError struct {
	Provider string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %s unavailable: %s", e.Provider, e.Reason)
}

// QueryError indicates a successfully resolved provider's backend call
// failed. It is propagated to the caller and never triggers a fallback to
// another provider; fallback happens at resolution time only.
type QueryError struct {
	Provider string
	Err      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query to provider %s failed: %v", e.Provider, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
