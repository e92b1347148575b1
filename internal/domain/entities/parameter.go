package entities

import (
	"encoding/json"
	"strconv"
)

// ParameterKind is the closed set of parameter value types
type ParameterKind string

const (
	ParameterKindString ParameterKind = "STRING"
	ParameterKindNumber ParameterKind = "NUMBER"
)

// Valid reports whether the kind belongs to the closed set.
func (k ParameterKind) Valid() bool {
	return k == ParameterKindString || k == ParameterKindNumber
}

// Parameter is one customizable input of a project's template. The ordered
// parameter sequence is pinned as a single JSON array document; field names
// match that wire format.
type Parameter struct {
	Key     string        `json:"key"`
	Kind    ParameterKind `json:"type"`
	Name    string        `json:"name"`
	Default string        `json:"defaultValue"`
}

// Argument is one supplied parameter value. Arguments keep insertion order,
// so an argument set is a slice, never a map.
type Argument struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ArgumentSet is the ordered key->value mapping supplied at mint time
type ArgumentSet []Argument

// Get returns the value for key and whether it was supplied.
func (a ArgumentSet) Get(key string) (string, bool) {
	for _, arg := range a {
		if arg.Key == key {
			return arg.Value, true
		}
	}
	return "", false
}

// DefaultArguments builds an argument set from each parameter's default, in
// declaration order.
func DefaultArguments(params []Parameter) ArgumentSet {
	args := make(ArgumentSet, 0, len(params))
	for _, p := range params {
		args = append(args, Argument{Key: p.Key, Value: p.Default})
	}
	return args
}

// AttributeValue coerces a raw string value to the JSON representation of
// the parameter's declared kind. Total over the closed kind set; unparsable
// numbers fall back to the string form rather than dropping the attribute.
func (p Parameter) AttributeValue(raw string) json.RawMessage {
	if p.Kind == ParameterKindNumber {
		if _, err := strconv.ParseFloat(raw, 64); err == nil {
			return json.RawMessage(raw)
		}
	}
	quoted, _ := json.Marshal(raw)
	return quoted
}
