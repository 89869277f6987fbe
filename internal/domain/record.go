package domain

// OpIndex is the bulk operation type used for every queued record.
const OpIndex = "index"

// Body is an arbitrary structured document payload.
type Body map[string]any

// Postprocessor transforms a document body before it is dispatched.
// It receives a private copy of the body and returns the replacement.
type Postprocessor func(Body) (Body, error)

// Record is a single queued document plus the transforms still to apply.
type Record struct {
	// Index is the full target collection name (prefix + suffix).
	Index string

	// Type is the document type tag.
	Type string

	// Source is the document body as it was enqueued.
	Source Body

	// Postprocessors run in order before the record is written.
	Postprocessors []Postprocessor
}

// NewRecord builds a Record for the given collection and type.
// The postprocessor slice is copied so later changes by the caller are not observed.
func NewRecord(index, typ string, source Body, postprocessors []Postprocessor) Record {
	var pp []Postprocessor
	if len(postprocessors) > 0 {
		pp = make([]Postprocessor, len(postprocessors))
		copy(pp, postprocessors)
	}
	return Record{
		Index:          index,
		Type:           typ,
		Source:         source,
		Postprocessors: pp,
	}
}

// Action is one entry of a bulk write request.
type Action struct {
	OpType string `json:"_op_type"`
	Index  string `json:"_index"`
	Type   string `json:"_type"`
	Source Body   `json:"_source"`
}

// Action returns the bulk action for this record with the given body.
func (r Record) Action(source Body) Action {
	return Action{
		OpType: OpIndex,
		Index:  r.Index,
		Type:   r.Type,
		Source: source,
	}
}

// DeepCopy returns a copy of the body that shares no maps or slices with the original.
func (b Body) DeepCopy() Body {
	if b == nil {
		return nil
	}
	out := make(Body, len(b))
	for k, v := range b {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case Body:
		return t.DeepCopy()
	case map[string]any:
		return map[string]any(Body(t).DeepCopy())
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	case []string:
		if t == nil {
			return t
		}
		return append([]string(nil), t...)
	case []byte:
		if t == nil {
			return t
		}
		return append([]byte(nil), t...)
	case map[string]string:
		if t == nil {
			return t
		}
		out := make(map[string]string, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out
	default:
		return v
	}
}
