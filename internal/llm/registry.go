package llm

import (
	"sort"
	"sync"
	"time"
)

// DefaultProbeCooldown is how long a failed provider construction is cached
// before another attempt is made. Keeps a misconfigured backend from being
// re-probed on every request.
const DefaultProbeCooldown = 60 * time.Second

// failureRecord tracks a provider whose construction failed
type failureRecord struct {
	reason string
	count  int
	lastAt time.Time
}

// Registry owns the provider clients. Clients are constructed lazily on first
// use; construction failures are cached until the probe cooldown elapses.
// The registry is constructed once at startup and passed by reference, so
// there is no package-global provider state.
type Registry struct {
	mu              sync.Mutex
	configs         map[string]ProviderConfig
	clients         map[string]Client
	failures        map[string]*failureRecord
	defaultProvider string
	cooldown        time.Duration

	// factory is overridable in tests
	factory func(ProviderConfig) (Client, error)
	// now is overridable in tests
	now func() time.Time
}

// NewRegistry creates a provider registry over the given configurations with
// the given default provider name
func NewRegistry(configs map[string]ProviderConfig, defaultProvider string) *Registry {
	return &Registry{
		configs:         configs,
		clients:         make(map[string]Client),
		failures:        make(map[string]*failureRecord),
		defaultProvider: defaultProvider,
		cooldown:        DefaultProbeCooldown,
		factory:         newClient,
		now:             time.Now,
	}
}

// Client returns the backend client for a provider, constructing it on first
// use. A cached construction failure returns a *ConfigError without
// re-attempting construction until the cooldown has elapsed.
func (r *Registry) Client(name string) (Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clientLocked(name)
}

func (r *Registry) clientLocked(name string) (Client, error) {
	if c, ok := r.clients[name]; ok {
		return c, nil
	}

	cfg, ok := r.configs[name]
	if !ok {
		return nil, &ConfigError{Provider: name, Reason: "unknown provider"}
	}

	if f, ok := r.failures[name]; ok {
		if r.now().Sub(f.lastAt) < r.cooldown {
			return nil, &ConfigError{Provider: name, Reason: f.reason}
		}
	}

	c, err := r.factory(cfg)
	if err != nil {
		f := r.failures[name]
		if f == nil {
			f = &failureRecord{}
			r.failures[name] = f
		}
		f.reason = err.Error()
		f.count++
		f.lastAt = r.now()
		if cfgErr, ok := err.(*ConfigError); ok {
			return nil, cfgErr
		}
		return nil, &ConfigError{Provider: name, Reason: err.Error()}
	}

	delete(r.failures, name)
	r.clients[name] = c
	return c, nil
}

// Available returns the sorted names of every provider whose client can
// currently be constructed. Probing providers not yet constructed is a side
// effect of the query.
func (r *Registry) Available() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var names []string
	for name := range r.configs {
		if _, err := r.clientLocked(name); err == nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// DefaultProvider returns the current fallback provider name
func (r *Registry) DefaultProvider() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defaultProvider
}

// SetDefaultProvider changes the fallback target for future calls.
// Availability is not validated here; it is checked at use time.
func (r *Registry) SetDefaultProvider(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultProvider = name
}

// SetProbeCooldown overrides the failure cache window
func (r *Registry) SetProbeCooldown(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cooldown = d
}
