package tasks

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"caradmin/internal/domain/lead"
)

// taskDataSchema describes what the console may store in taskData. Keys
// outside the list are kept as is.
const taskDataSchema = `{
	"type": "object",
	"properties": {
		"name":             {"type": "string", "maxLength": 200},
		"phone":            {"type": "string", "pattern": "^[0-9+()\\- ]{5,20}$"},
		"email":            {"type": "string", "format": "email"},
		"budget":           {"type": ["string", "number"]},
		"city":             {"type": "string"},
		"region":           {"type": "string"},
		"timeline":         {"type": "string"},
		"preferredBrands":  {"type": "array", "items": {"type": "string"}},
		"preferredModels":  {"type": "array", "items": {"type": "string"}},
		"year":             {"type": ["string", "integer"]},
		"mileage":          {"type": ["string", "number"]},
		"telegramUsername": {"type": "string", "pattern": "^@?[A-Za-z0-9_]{3,32}$"}
	}
}`

// DataValidator checks taskData against the schema above.
type DataValidator struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

func NewDataValidator() *DataValidator {
	return &DataValidator{}
}

func (v *DataValidator) compile() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource("task-data.json", strings.NewReader(taskDataSchema)); err != nil {
		v.err = fmt.Errorf("tasks: load schema: %w", err)
		return
	}
	v.schema, v.err = compiler.Compile("task-data.json")
	if v.err != nil {
		v.err = fmt.Errorf("tasks: compile schema: %w", v.err)
	}
}

// Validate returns lead.ErrInvalidTaskData wrapping the schema error.
func (v *DataValidator) Validate(data map[string]any) error {
	v.once.Do(v.compile)
	if v.err != nil {
		return v.err
	}
	if len(data) == 0 {
		return nil
	}

	// schema validation works on plain JSON values
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("tasks: marshal task data: %w", err)
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("tasks: normalize task data: %w", err)
	}
	if err := v.schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %v", lead.ErrInvalidTaskData, err)
	}
	return nil
}
