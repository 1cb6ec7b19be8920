package agent

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/Knetic/govaluate"
)

// EvaluateCondition evaluates a subtask condition against vars. Nested maps
// are also exposed under dotted keys, so `[previous.status] == "success"`
// works. An empty condition is true.
func EvaluateCondition(condition string, vars map[string]any) (bool, error) {
	cond := strings.TrimSpace(condition)
	if cond == "" {
		return true, nil
	}
	switch strings.ToLower(cond) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}

	expr, err := govaluate.NewEvaluableExpression(cond)
	if err != nil {
		return false, err
	}
	result, err := expr.Evaluate(conditionParams(vars))
	if err != nil {
		return false, err
	}
	v, ok := result.(bool)
	if !ok {
		return false, errors.New("condition did not evaluate to boolean")
	}
	return v, nil
}

// conditionParams normalizes vars through JSON so typed results such as
// executor.Result become plain maps, then flattens them.
func conditionParams(vars map[string]any) map[string]any {
	params := map[string]any{}
	raw, err := json.Marshal(vars)
	if err != nil {
		return params
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return params
	}
	for k, v := range m {
		params[k] = v
	}
	flatten("", m, params)
	return params
}

func flatten(prefix string, m map[string]any, out map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flatten(key, nested, out)
			continue
		}
		out[key] = v
	}
}
