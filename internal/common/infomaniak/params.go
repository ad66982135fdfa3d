package infomaniak

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Bag keys the dispatcher reads besides the operation's own parameters.
const (
	KeyReturnAll          = "returnAll"
	KeyLimit              = "limit"
	KeyReturnFullResponse = "returnFullResponse"
	KeyAuthentication     = "authentication"

	queryPrefix = "query_"
	bodyPrefix  = "body_"
)

// ParameterBag is the flat per-invocation input: bag key to decoded JSON value.
type ParameterBag map[string]interface{}

// Lookup returns the value and whether it is present and not null.
func (b ParameterBag) Lookup(key string) (interface{}, bool) {
	v, ok := b[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Map returns the entry as an object, or an empty map when absent or not an object.
func (b ParameterBag) Map(key string) map[string]interface{} {
	if m, ok := b[key].(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

// Bool reads a boolean, accepting "true"/"false" strings.
func (b ParameterBag) Bool(key string, def bool) bool {
	switch v := b[key].(type) {
	case bool:
		return v
	case string:
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

// Int reads a whole number from a JSON number, Go integer or numeric string.
func (b ParameterBag) Int(key string, def int) int {
	if n, ok := toInt(b[key]); ok {
		return n
	}
	return def
}

// String reads a string entry.
func (b ParameterBag) String(key string, def string) string {
	if s, ok := b[key].(string); ok && s != "" {
		return s
	}
	return def
}

// Clone returns a shallow copy.
func (b ParameterBag) Clone() ParameterBag {
	out := make(ParameterBag, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

// formatScalar renders numbers without exponent or trailing zeros, so 41.0 becomes "41".
func formatScalar(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case int32:
		return strconv.FormatInt(int64(s), 10)
	case bool:
		return strconv.FormatBool(s)
	case json.Number:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

func isBlank(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
