package axtree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ValueType is the type tag of an accessibility value, as reported by the
// DevTools protocol (AXValueType).
type ValueType string

const (
	TypeBoolean            ValueType = "boolean"
	TypeTristate           ValueType = "tristate"
	TypeBooleanOrUndefined ValueType = "booleanOrUndefined"
	TypeIDRef              ValueType = "idref"
	TypeIDRefList          ValueType = "idrefList"
	TypeInteger            ValueType = "integer"
	TypeNode               ValueType = "node"
	TypeNodeList           ValueType = "nodeList"
	TypeNumber             ValueType = "number"
	TypeString             ValueType = "string"
	TypeComputedString     ValueType = "computedString"
	TypeToken              ValueType = "token"
	TypeTokenList          ValueType = "tokenList"
	TypeDOMRelation        ValueType = "domRelation"
	TypeRole               ValueType = "role"
	TypeInternalRole       ValueType = "internalRole"
	TypeValueUndefined     ValueType = "valueUndefined"
)

// Payload is the decoded content of a [Value]. The set of implementations is
// closed: [Undefined], [Bool], [Tristate], [Integer], [Number], [String],
// [StringList] and [NodeList]. Callers interpret a payload with a type switch.
type Payload interface {
	// String returns the textual form used when a payload is interpolated
	// into narration text.
	String() string
	// Truthy reports whether the payload counts as set. It follows the
	// loose truthiness of the producing protocol: empty strings, zero and
	// undefined are false, lists are always true.
	Truthy() bool

	isPayload()
}

// Undefined is the payload of a value that carries no data.
type Undefined struct{}

// Bool is a boolean payload.
type Bool bool

// Tristate is a three-valued payload: "true", "false" or "mixed".
type Tristate string

const (
	TristateTrue  Tristate = "true"
	TristateFalse Tristate = "false"
	TristateMixed Tristate = "mixed"
)

// Integer is an integral payload such as a heading level.
type Integer int64

// Number is a floating point payload.
type Number float64

// String is a textual payload (strings, tokens, roles).
type String string

// StringList is a list of strings (token and idref lists).
type StringList []string

// NodeList references other DOM nodes by backend id.
type NodeList []RelatedNode

// RelatedNode is a reference to a DOM node attached to a value.
type RelatedNode struct {
	BackendDOMNodeID int    `json:"backendDOMNodeId"`
	IDRef            string `json:"idref,omitempty"`
	Text             string `json:"text,omitempty"`
}

func (Undefined) String() string { return "" }
func (Undefined) Truthy() bool   { return false }
func (Undefined) isPayload()     {}

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }
func (b Bool) Truthy() bool   { return bool(b) }
func (Bool) isPayload()       {}

func (t Tristate) String() string { return string(t) }
func (t Tristate) Truthy() bool   { return t != "" }
func (Tristate) isPayload()       {}

func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }
func (i Integer) Truthy() bool   { return i != 0 }
func (Integer) isPayload()       {}

func (n Number) String() string { return strconv.FormatFloat(float64(n), 'f', -1, 64) }
func (n Number) Truthy() bool {
	return n != 0 && !math.IsNaN(float64(n))
}
func (Number) isPayload() {}

func (s String) String() string { return string(s) }
func (s String) Truthy() bool   { return s != "" }
func (String) isPayload()       {}

func (l StringList) String() string {
	var buf bytes.Buffer
	for i, s := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(s)
	}
	return buf.String()
}
func (StringList) Truthy() bool { return true }
func (StringList) isPayload()   {}

func (l NodeList) String() string {
	var buf bytes.Buffer
	for i, n := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		switch {
		case n.Text != "":
			buf.WriteString(n.Text)
		case n.IDRef != "":
			buf.WriteString(n.IDRef)
		default:
			buf.WriteString(strconv.Itoa(n.BackendDOMNodeID))
		}
	}
	return buf.String()
}
func (NodeList) Truthy() bool { return true }
func (NodeList) isPayload()   {}

// Value is a tagged accessibility value. Payload is never nil for a decoded
// value; a zero Value reads as [Undefined].
type Value struct {
	Type    ValueType
	Payload Payload
}

// Data returns the payload, substituting [Undefined] for a nil payload.
func (v Value) Data() Payload {
	if v.Payload == nil {
		return Undefined{}
	}
	return v.Payload
}

// String returns the textual form of the payload.
func (v Value) String() string { return v.Data().String() }

// NewString builds a string-typed value.
func NewString(t ValueType, s string) Value { return Value{Type: t, Payload: String(s)} }

// NewBool builds a boolean value.
func NewBool(b bool) Value { return Value{Type: TypeBoolean, Payload: Bool(b)} }

// NewTristate builds a tristate value.
func NewTristate(t Tristate) Value { return Value{Type: TypeTristate, Payload: t} }

// NewInteger builds an integer value.
func NewInteger(i int64) Value { return Value{Type: TypeInteger, Payload: Integer(i)} }

type wireValue struct {
	Type         ValueType       `json:"type"`
	Value        json.RawMessage `json:"value,omitempty"`
	RelatedNodes []RelatedNode   `json:"relatedNodes,omitempty"`
}

// UnmarshalJSON decodes a protocol AXValue. The type tag selects the payload
// shape; unknown tags fall back to the shape of the JSON value itself.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p, err := decodePayload(w.Type, w.Value, w.RelatedNodes)
	if err != nil {
		return fmt.Errorf("value of type %q: %w", w.Type, err)
	}
	v.Type = w.Type
	v.Payload = p
	return nil
}

// MarshalJSON encodes the value in protocol form.
func (v Value) MarshalJSON() ([]byte, error) {
	w := wireValue{Type: v.Type}
	var raw any
	switch p := v.Data().(type) {
	case Undefined:
	case Bool:
		raw = bool(p)
	case Tristate:
		raw = string(p)
	case Integer:
		raw = int64(p)
	case Number:
		raw = float64(p)
	case String:
		raw = string(p)
	case StringList:
		raw = []string(p)
	case NodeList:
		w.RelatedNodes = p
	}
	if raw != nil {
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		w.Value = b
	}
	return json.Marshal(w)
}

func decodePayload(t ValueType, raw json.RawMessage, related []RelatedNode) (Payload, error) {
	switch t {
	case TypeValueUndefined:
		return Undefined{}, nil
	case TypeNode, TypeNodeList, TypeIDRef, TypeIDRefList:
		if len(related) > 0 {
			return NodeList(related), nil
		}
	case TypeTristate:
		p, err := decodeShape(raw)
		if err != nil {
			return nil, err
		}
		switch p := p.(type) {
		case String:
			return Tristate(p), nil
		case Bool:
			return Tristate(p.String()), nil
		}
		return p, nil
	case TypeInteger:
		p, err := decodeShape(raw)
		if err != nil {
			return nil, err
		}
		if n, ok := p.(Number); ok && float64(n) == math.Trunc(float64(n)) {
			return Integer(n), nil
		}
		return p, nil
	}
	return decodeShape(raw)
}

// decodeShape picks a payload from the JSON shape alone.
func decodeShape(raw json.RawMessage) (Payload, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Undefined{}, nil
	}
	switch raw[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return String(s), nil
	case '[':
		var items []any
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		out := make(StringList, 0, len(items))
		for _, it := range items {
			out = append(out, fmt.Sprint(it))
		}
		return out, nil
	case '{':
		return String(raw), nil
	default:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, err
		}
		return Number(f), nil
	}
}
