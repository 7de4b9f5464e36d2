package notation

import (
	"bytes"
	"encoding/json"

	"gitlab.com/tozd/go/errors"
)

const returnInstance = "instance"

// marshal is json.Marshal without HTML escaping, so generic spellings such
// as IVector<String> stay readable in the cache.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

type returnJSON struct {
	Description string             `json:"description,omitempty"`
	Type        *TypeReference     `json:"type,omitempty"`
	Members     []DescribedKeyType `json:"members,omitempty"`
}

// MarshalJSON encodes an absent return as null, a constructor return as the
// string "instance" and anything else as an object.
func (r Return) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case ReturnNone:
		return []byte("null"), nil
	case ReturnInstance:
		return marshal(returnInstance)
	case ReturnType:
		t := r.Type
		return marshal(returnJSON{Description: r.Description, Type: &t})
	case ReturnLiteral:
		return marshal(returnJSON{Description: r.Description, Members: r.Members})
	default:
		return nil, errors.Errorf("unknown return kind %d", r.Kind)
	}
}

func (r *Return) UnmarshalJSON(data []byte) error {
	*r = Return{}
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != returnInstance {
			return errors.Errorf("unexpected return %q", s)
		}
		r.Kind = ReturnInstance
		return nil
	}

	var v returnJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	r.Description = v.Description
	if v.Type != nil {
		r.Kind = ReturnType
		r.Type = *v.Type
		return nil
	}
	r.Kind = ReturnLiteral
	r.Members = v.Members
	return nil
}

// MarshalNotation encodes n as an object whose first key is "type".
func MarshalNotation(n Notation) ([]byte, error) {
	body, err := marshal(n)
	if err != nil {
		return nil, err
	}
	kind, err := marshal(n.Kind())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.Write(kind)
	inner := bytes.TrimSpace(body)
	inner = inner[1 : len(inner)-1]
	if len(bytes.TrimSpace(inner)) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalNotation decodes an object written by MarshalNotation.
func UnmarshalNotation(data []byte) (Notation, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	var n Notation
	switch head.Type {
	case KindClass:
		n = &Class{}
	case KindAttribute:
		n = &Class{Attribute: true}
	case KindEnumeration:
		n = &Enumeration{}
	case KindNamespace:
		n = &Namespace{}
	case KindInterface:
		n = &Interface{}
	case KindStructure:
		n = &Structure{}
	case KindDelegate:
		n = &Delegate{}
	case KindFunction:
		n = &Function{}
	case KindEvent:
		n = &Event{}
	case KindProperty:
		n = &Property{}
	default:
		return nil, errors.Errorf("unknown notation type %q", head.Type)
	}
	if err := json.Unmarshal(data, n); err != nil {
		return nil, errors.Errorf("decode %s notation: %w", head.Type, err)
	}
	if c, ok := n.(*Class); ok && head.Type == KindAttribute {
		c.Attribute = true
	}
	return n, nil
}
