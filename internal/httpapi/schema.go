package httpapi

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/google/jsonschema-go/jsonschema"

	"milecast/internal/fault"
)

// eventValidator checks incoming event documents against a JSON schema before
// they reach the engine, so malformed envelopes fail with a schema path
// instead of a zero-value struct.
type eventValidator struct {
	resolved *jsonschema.Resolved
}

func newEventValidator() (*eventValidator, error) {
	// Each property needs its own Schema node: Resolve rejects schemas where
	// one node is reachable from more than one place.
	idField := func() *jsonschema.Schema { return &jsonschema.Schema{Type: "string"} }
	schema := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"type", "payload"},
		Properties: map[string]*jsonschema.Schema{
			"id":        {Type: "string"},
			"type":      {Type: "string"},
			"timestamp": {Type: "string"},
			"actor_id":  {Type: "string"},
			"payload": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"dependency_id":   idField(),
					"work_item_id":    idField(),
					"risk_id":         idField(),
					"decision_id":     idField(),
					"issue_id":        idField(),
					"milestone_id":    idField(),
					"previous_status": idField(),
					"new_status":      idField(),
				},
				AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
			},
		},
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve event schema: %w", err)
	}
	return &eventValidator{resolved: resolved}, nil
}

// validate checks the raw JSON body against the event schema.
func (v *eventValidator) validate(body []byte) error {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("%w: event body is not valid JSON", fault.ErrInvalidInput)
	}
	if err := v.resolved.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", fault.ErrInvalidInput, err)
	}
	return nil
}
