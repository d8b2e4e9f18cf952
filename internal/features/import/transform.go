package import_feature

import (
	"context"
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

const maxScriptAllocs = 50000

// Transform runs a tengo script against every imported row. The script sees
// the mapped row as `record` and may change it in place or replace it;
// setting `skip = true` drops the row.
type Transform struct {
	compiled *tengo.Compiled
}

// NewTransform compiles src. An empty script yields a nil Transform, which
// passes rows through unchanged.
func NewTransform(src string) (*Transform, error) {
	if src == "" {
		return nil, nil
	}

	script := tengo.NewScript([]byte(src))
	script.SetImports(stdlib.GetModuleMap("text", "math", "times", "fmt"))
	script.SetMaxAllocs(maxScriptAllocs)
	if err := script.Add("record", map[string]any{}); err != nil {
		return nil, err
	}
	if err := script.Add("skip", false); err != nil {
		return nil, err
	}

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile script: %w", err)
	}
	return &Transform{compiled: compiled}, nil
}

// Apply returns the transformed row and whether it should be kept
func (t *Transform) Apply(ctx context.Context, record map[string]any) (map[string]any, bool, error) {
	if t == nil {
		return record, true, nil
	}

	run := t.compiled.Clone()
	if err := run.Set("record", record); err != nil {
		return nil, false, fmt.Errorf("failed to bind record: %w", err)
	}
	if err := run.Set("skip", false); err != nil {
		return nil, false, err
	}
	if err := run.RunContext(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to run script: %w", err)
	}

	if run.Get("skip").Bool() {
		return nil, false, nil
	}
	out := run.Get("record").Map()
	if out == nil {
		return nil, false, fmt.Errorf("script left record as %s", run.Get("record").ValueType())
	}
	return out, true, nil
}
