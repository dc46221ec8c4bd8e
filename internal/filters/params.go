package filters

// Params represents decode parameters from a PDF stream dictionary.
// Values are Go primitives (int, float64, bool, string).
type Params map[string]interface{}

// Int returns the integer parameter for key, or def when absent or of the
// wrong type.
func (p Params) Int(key string, def int) int {
	if p == nil {
		return def
	}
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Bool returns the boolean parameter for key, or def when absent or of the
// wrong type.
func (p Params) Bool(key string, def bool) bool {
	if p == nil {
		return def
	}
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}
