package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultStructuredRetries is the number of additional parse attempts after
// the first one fails
const DefaultStructuredRetries = 2

// Error markers placed in a structured-query error document
const (
	// StructuredErrorParse indicates the backend responded but its output
	// never parsed as JSON
	StructuredErrorParse = "schema_validation_failed"
	// StructuredErrorQuery indicates the backend call itself failed
	StructuredErrorQuery = "query_failed"
)

// forcefulJSONInstruction is appended on retry after a parse failure
const forcefulJSONInstruction = "IMPORTANT: Respond with ONLY valid JSON matching the requested schema. Do not include any explanation or additional text."

// StructuredRequest is a query whose response must parse as a JSON document
// conforming to the given schema description
type StructuredRequest struct {
	Prompt     string
	Schema     map[string]interface{}
	Provider   string
	MaxRetries int // additional attempts after the first; 0 means DefaultStructuredRetries
}

// QueryStructured appends schema instructions to the prompt, queries, and
// parses the response as a JSON document. Parse failures are retried with a
// forceful JSON-only instruction. The contract is total: exhausted retries
// and backend failures both return an explicit error document rather than an
// error, so callers can distinguish "text that wasn't JSON" from "the call
// failed" by the error marker.
func (d *Dispatcher) QueryStructured(ctx context.Context, req StructuredRequest) map[string]interface{} {
	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultStructuredRetries
	}

	prompt := buildStructuredPrompt(req.Prompt, req.Schema)
	attempts := 0
	var lastRaw string

	for attempts <= maxRetries {
		attempts++

		text, err := d.Query(ctx, QueryRequest{Prompt: prompt, Provider: req.Provider})
		if err != nil {
			return map[string]interface{}{
				"error":           StructuredErrorQuery,
				"detail":          err.Error(),
				"expected_schema": req.Schema,
				"attempts":        attempts,
			}
		}

		lastRaw = text
		doc, err := parseJSONDocument(text)
		if err == nil {
			return doc
		}

		prompt = prompt + "\n\n" + forcefulJSONInstruction
	}

	return map[string]interface{}{
		"error":           StructuredErrorParse,
		"raw_response":    lastRaw,
		"expected_schema": req.Schema,
		"attempts":        attempts,
	}
}

// buildStructuredPrompt appends the schema description to the prompt
func buildStructuredPrompt(prompt string, schema map[string]interface{}) string {
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		schemaJSON = []byte("{}")
	}
	return fmt.Sprintf("%s\n\nRespond with a JSON object matching this schema:\n%s", prompt, schemaJSON)
}

// parseJSONDocument parses model output as a JSON object, tolerating a
// markdown code fence around the payload. A partial or non-object parse is an
// error, never a truncated document.
func parseJSONDocument(text string) (map[string]interface{}, error) {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	return doc, nil
}
