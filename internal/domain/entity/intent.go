package entity

// Intent is the structured output of the remote classifier: a command name
// plus a loosely-typed parameter bag. It may arrive malformed or with low
// confidence; the normalizer decides what to do with it.
type Intent struct {
	Kind       string
	Confidence float64
	Parameters map[string]any
	// Context is free text the classifier attaches; the workflow detector
	// scans it for sequencing keywords.
	Context  string
	FollowUp []string
	// Raw carries an explicit low-level action shape when the caller already
	// knows what to run. The normalizer passes it through unchanged.
	Raw *Action
}

// Param returns a string parameter, or empty if absent or not a string.
func (i Intent) Param(key string) string {
	if i.Parameters == nil {
		return ""
	}
	if v, ok := i.Parameters[key].(string); ok {
		return v
	}
	return ""
}

// ParamInt returns an integer parameter, tolerating JSON float decoding.
func (i Intent) ParamInt(key string) (int, bool) {
	if i.Parameters == nil {
		return 0, false
	}
	switch v := i.Parameters[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}
