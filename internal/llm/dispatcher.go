package llm

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/dmautz1/ai-agent-platform-sub002/internal/logger"
)

// DefaultMaxConcurrent bounds in-flight backend calls during a batch query.
// The bound exists to respect backend rate limits, not for correctness.
const DefaultMaxConcurrent = 3

// batchFailureText is the uniform placeholder returned for every prompt when
// batch orchestration itself fails
const batchFailureText = "Batch processing failed"

// QueryRequest is a logical LLM request before provider resolution
type QueryRequest struct {
	Prompt            string
	Provider          string // optional; empty means use the default provider
	Model             string // optional model override
	SystemInstruction string
	MaxTokens         int
	Temperature       *float64 // nil means DefaultTemperature
	Extra             map[string]interface{}
}

// Dispatcher presents one query interface over the registry's providers
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a dispatcher over the given provider registry
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Registry returns the provider registry the dispatcher resolves against
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// resolve picks the concrete client for a request. An explicitly requested
// provider that is unavailable falls back to the default provider; the
// default itself has no fallback.
func (d *Dispatcher) resolve(name string) (Client, error) {
	if name != "" {
		c, err := d.registry.Client(name)
		if err == nil {
			return c, nil
		}
		logger.WarnWithFields("Requested provider unavailable, falling back to default", map[string]interface{}{
			"provider": name,
			"default":  d.registry.DefaultProvider(),
			"reason":   err.Error(),
		})
	}

	c, err := d.registry.Client(d.registry.DefaultProvider())
	if err != nil {
		return nil, fmt.Errorf("default provider unavailable: %w", err)
	}
	return c, nil
}

// Query resolves a provider and returns the generated text for the prompt.
// A backend failure after resolution is wrapped in *QueryError and is not
// retried against another provider.
func (d *Dispatcher) Query(ctx context.Context, req QueryRequest) (string, error) {
	if req.Prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	client, err := d.resolve(req.Provider)
	if err != nil {
		return "", err
	}

	temperature := DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	text, err := client.Generate(ctx, req.Prompt, GenerateOptions{
		Model:             req.Model,
		SystemInstruction: req.SystemInstruction,
		MaxTokens:         req.MaxTokens,
		Temperature:       temperature,
		Extra:             req.Extra,
	})
	if err != nil {
		return "", &QueryError{Provider: client.Provider(), Err: err}
	}
	return text, nil
}

// BatchQuery runs every prompt through Query with at most maxConcurrent calls
// in flight. Results are positional: out[i] corresponds to prompts[i]
// regardless of completion order. A failing prompt yields per-item error text
// so one bad prompt does not void the batch; only an orchestration failure
// (the semaphore cannot be acquired, e.g. the context was cancelled) degrades
// the whole batch to uniform placeholder strings.
func (d *Dispatcher) BatchQuery(ctx context.Context, prompts []string, req QueryRequest, maxConcurrent int64) []string {
	results := make([]string, len(prompts))
	if len(prompts) == 0 {
		return results
	}
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	sem := semaphore.NewWeighted(maxConcurrent)
	var wg sync.WaitGroup

	for i, prompt := range prompts {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			logger.Errorf("Batch query orchestration failed: %v", err)
			for j := range results {
				results[j] = batchFailureText
			}
			return results
		}

		wg.Add(1)
		go func(i int, prompt string) {
			defer wg.Done()
			defer sem.Release(1)

			itemReq := req
			itemReq.Prompt = prompt
			text, err := d.Query(ctx, itemReq)
			if err != nil {
				results[i] = fmt.Sprintf("Error: %v", err)
				return
			}
			results[i] = text
		}(i, prompt)
	}

	wg.Wait()
	return results
}
