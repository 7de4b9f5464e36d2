// Package iteration loads the reflection snapshot of the runtime namespace
// object: a nested name/kind skeleton with placeholder leaves.
package iteration

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"gitlab.com/tozd/go/errors"
)

// Kind discriminates Node variants.
type Kind string

const (
	KindStructure Kind = "structure"
	KindClass     Kind = "class"
	// KindLeaf nodes carry a placeholder string instead of children.
	KindLeaf Kind = "leaf"
)

const (
	keyType     = "__type"
	keyFullName = "__fullname"
	keyExtends  = "__extends"
	keyProto    = "prototype"
)

// Placeholders reflection writes for members it could not describe.
const (
	PlaceholderUnknown = "unknown"
	PlaceholderNull    = "null"
)

// Node is one member of the tree. Children keep the order of the input.
type Node struct {
	Name     string
	FullName string
	Kind     Kind
	// Placeholder is the reflected type string of a leaf ("unknown",
	// "function", "number", ...).
	Placeholder string
	// Extends is the constructor name of a class's base, "Object" when the
	// class derives from nothing.
	Extends   string
	Prototype *Node
	Children  []*Node
}

// Walk visits n and every descendant depth first, prototypes after static
// children.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
	if n.Prototype != nil {
		n.Prototype.Walk(fn)
	}
}

// LoadFile reads the tree stored at path.
func LoadFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("read iteration tree: %w", err)
	}
	root, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// Load decodes a tree whose top-level object describes the root namespace.
func Load(r io.Reader) (*Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Errorf("iteration tree: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.Errorf("iteration tree: root must be an object, got %v", tok)
	}
	root, err := decodeObject(dec, "")
	if err != nil {
		return nil, err
	}
	if root.FullName == "" {
		return nil, errors.New("iteration tree: root has no __fullname")
	}
	root.Name = root.FullName
	return root, nil
}

// decodeObject reads the members of an object whose opening brace has been
// consumed.
func decodeObject(dec *json.Decoder, name string) (*Node, error) {
	n := &Node{Name: name, Kind: KindStructure}
	var proto *Node
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Errorf("iteration tree: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.Errorf("iteration tree: unexpected key %v", tok)
		}

		switch key {
		case keyType, keyFullName, keyExtends:
			s, err := decodeString(dec)
			if err != nil {
				return nil, errors.Errorf("iteration tree %s: %s: %w", name, key, err)
			}
			switch key {
			case keyType:
				n.Kind = Kind(s)
				if n.Kind != KindStructure && n.Kind != KindClass {
					return nil, errors.Errorf("iteration tree %s: unknown __type %q", name, s)
				}
			case keyFullName:
				n.FullName = s
			default:
				n.Extends = s
			}
			continue
		}

		child, err := decodeMember(dec, key)
		if err != nil {
			return nil, err
		}
		if key == keyProto && child.Kind != KindLeaf {
			proto = child
			continue
		}
		n.Children = append(n.Children, child)
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.Errorf("iteration tree: %w", err)
	}

	if n.FullName != "" {
		fixLeaves(n)
	}
	if proto != nil {
		if n.Kind != KindClass {
			n.Children = append(n.Children, proto)
		} else {
			proto.Name = keyProto
			proto.FullName = n.FullName
			if n.FullName != "" {
				fixLeaves(proto)
			}
			n.Prototype = proto
		}
	}
	if n.Kind == KindClass && n.Prototype == nil {
		n.Prototype = &Node{Name: keyProto, FullName: n.FullName, Kind: KindStructure}
	}
	return n, nil
}

func decodeMember(dec *json.Decoder, name string) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Errorf("iteration tree %s: %w", name, err)
	}
	switch v := tok.(type) {
	case string:
		return &Node{Name: name, Kind: KindLeaf, Placeholder: v}, nil
	case nil:
		return &Node{Name: name, Kind: KindLeaf, Placeholder: PlaceholderNull}, nil
	case json.Delim:
		if v != '{' {
			return nil, errors.Errorf("iteration tree %s: unexpected %v", name, v)
		}
		// Full names of nested objects are fixed by the caller once the
		// parent's own __fullname is known.
		return decodeObject(dec, name)
	default:
		return &Node{Name: name, Kind: KindLeaf, Placeholder: PlaceholderUnknown}, nil
	}
}

// decodeString reads a string value; an object yields its __fullname and
// null yields "".
func decodeString(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	switch v := tok.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	case json.Delim:
		if v != '{' {
			return "", errors.Errorf("unexpected %v", v)
		}
		n, err := decodeObject(dec, "")
		if err != nil {
			return "", err
		}
		return n.FullName, nil
	default:
		return "", errors.Errorf("unexpected %v", tok)
	}
}

// fixLeaves derives full names for descendants that lack their own.
func fixLeaves(n *Node) {
	for _, c := range n.Children {
		if c.FullName == "" {
			c.FullName = n.FullName + "." + c.Name
			fixLeaves(c)
		}
	}
	if n.Prototype != nil && n.Prototype.FullName == "" {
		n.Prototype.FullName = n.FullName
		fixLeaves(n.Prototype)
	}
}
