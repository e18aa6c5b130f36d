package masking

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind identifies the variant held by a Node.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the JSON type name of the kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Member is a single key/value pair of an object node.
type Member struct {
	Key   string
	Value Node
}

// Node is a parsed JSON value. Only the fields matching Kind are meaningful.
// Object members keep their source order so re-serialized output stays stable.
type Node struct {
	Kind    Kind
	Bool    bool
	Number  json.Number
	Str     string
	Items   []Node
	Members []Member
}

// ErrTrailingData is returned by Parse when the input holds more than one JSON value
var ErrTrailingData = errors.New("trailing data after JSON value")

// Null returns a null node
func Null() Node { return Node{Kind: KindNull} }

// StringNode returns a string scalar node
func StringNode(s string) Node { return Node{Kind: KindString, Str: s} }

// IsScalar reports whether the node is neither an object nor an array
func (n Node) IsScalar() bool {
	return n.Kind != KindObject && n.Kind != KindArray
}

// Get returns the value stored under key in an object node
func (n Node) Get(key string) (Node, bool) {
	if n.Kind != KindObject {
		return Node{}, false
	}
	for _, m := range n.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Node{}, false
}

// Parse decodes exactly one JSON value from data.
func Parse(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	node, err := decodeValue(dec)
	if err != nil {
		return Node{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Node{}, ErrTrailingData
	}
	return node, nil
}

// ParseString is Parse for string input
func ParseString(s string) (Node, error) {
	return Parse([]byte(s))
}

func decodeValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return Node{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Node, error) {
	switch v := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Node{Kind: KindBool, Bool: v}, nil
	case json.Number:
		return Node{Kind: KindNumber, Number: v}, nil
	case string:
		return StringNode(v), nil
	case json.Delim:
		switch v {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
	}
	return Node{}, fmt.Errorf("unexpected JSON token %v", tok)
}

func decodeObject(dec *json.Decoder) (Node, error) {
	node := Node{Kind: KindObject, Members: []Member{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Node{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Node{}, fmt.Errorf("object key must be a string, got %v", tok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return Node{}, err
		}
		node.Members = append(node.Members, Member{Key: key, Value: value})
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return Node{}, err
	}
	return node, nil
}

func decodeArray(dec *json.Decoder) (Node, error) {
	node := Node{Kind: KindArray, Items: []Node{}}
	for dec.More() {
		item, err := decodeValue(dec)
		if err != nil {
			return Node{}, err
		}
		node.Items = append(node.Items, item)
	}
	// closing ']'
	if _, err := dec.Token(); err != nil {
		return Node{}, err
	}
	return node, nil
}

// MarshalJSON implements json.Marshaler
func (n Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String returns the compact JSON text of the node
func (n Node) String() string {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Text returns the scalar value as plain text: strings unquoted, numbers and
// booleans in their literal form. Containers render as JSON.
func (n Node) Text() string {
	switch n.Kind {
	case KindString:
		return n.Str
	case KindNumber:
		return n.Number.String()
	case KindBool:
		if n.Bool {
			return "true"
		}
		return "false"
	case KindNull:
		return ""
	default:
		return n.String()
	}
}

func (n Node) encode(buf *bytes.Buffer) error {
	switch n.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if n.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		buf.WriteString(n.Number.String())
	case KindString:
		return encodeString(buf, n.Str)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range n.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown node kind %d", n.Kind)
	}
	return nil
}

// encodeString writes s as a JSON string without HTML escaping.
func encodeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}
