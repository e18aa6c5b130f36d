package masking

import (
	"encoding/json"
	"strings"
)

// DefaultSensitiveFields are the field names masked when no explicit set is configured
var DefaultSensitiveFields = []string{"userPhone", "legalId", "bankCard", "phoneNumber"}

// FieldSet is an immutable set of sensitive field names.
// The zero value matches nothing.
type FieldSet struct {
	names map[string]struct{}
	order []string
}

// NewFieldSet builds a FieldSet. Names are trimmed; empty and duplicate names are dropped.
func NewFieldSet(names ...string) FieldSet {
	set := FieldSet{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := set.names[name]; ok {
			continue
		}
		set.names[name] = struct{}{}
		set.order = append(set.order, name)
	}
	return set
}

// DefaultFieldSet returns a FieldSet holding DefaultSensitiveFields
func DefaultFieldSet() FieldSet {
	return NewFieldSet(DefaultSensitiveFields...)
}

// Contains reports whether key exactly matches a sensitive field name
func (s FieldSet) Contains(key string) bool {
	_, ok := s.names[key]
	return ok
}

// Len returns the number of field names in the set
func (s FieldSet) Len() int {
	return len(s.order)
}

// Names returns a copy of the field names in configuration order
func (s FieldSet) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// mentionedIn reports whether any field name occurs as a substring of text
func (s FieldSet) mentionedIn(text string) bool {
	for _, name := range s.order {
		if strings.Contains(text, name) {
			return true
		}
	}
	return false
}

// Masker rewrites sensitive fields of JSON-shaped values.
// It holds no mutable state and is safe for concurrent use.
type Masker struct {
	fields FieldSet
}

// New creates a Masker for the given field set
func New(fields FieldSet) *Masker {
	return &Masker{fields: fields}
}

// Fields returns the sensitive field set
func (m *Masker) Fields() FieldSet {
	return m.fields
}

// Mask returns value with every sensitive field desensitized.
//
// Strings, []byte and json.RawMessage are treated as JSON text; any other value
// is marshalled first. When the value is not a JSON object or array, cannot be
// parsed, or holds no sensitive field, the original value is returned as is.
// Masked text input comes back as the same type; other input comes back as a Node.
func (m *Masker) Mask(value any) any {
	if m == nil || m.fields.Len() == 0 || value == nil {
		return value
	}

	text, ok := serialize(value)
	if !ok {
		return value
	}
	masked, changed := m.maskText(text)
	if !changed {
		return value
	}

	switch value.(type) {
	case string:
		return masked.String()
	case []byte:
		return []byte(masked.String())
	case json.RawMessage:
		return json.RawMessage(masked.String())
	default:
		return masked
	}
}

// MaskString masks JSON text. Non-JSON text is returned unchanged.
func (m *Masker) MaskString(text string) string {
	if m == nil || m.fields.Len() == 0 {
		return text
	}
	masked, changed := m.maskText(text)
	if !changed {
		return text
	}
	return masked.String()
}

// MaskNode masks a parsed tree. The input is never modified.
func (m *Masker) MaskNode(node Node) Node {
	if m == nil {
		return node
	}
	masked, _ := m.mask(node)
	return masked
}

func (m *Masker) maskText(text string) (Node, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return Node{}, false
	}
	node, err := ParseString(trimmed)
	if err != nil {
		return Node{}, false
	}
	// Escaped keys only match after normalization.
	if !m.fields.mentionedIn(node.String()) {
		return Node{}, false
	}
	return m.mask(node)
}

// mask walks node and reports whether anything was rewritten.
func (m *Masker) mask(node Node) (Node, bool) {
	switch node.Kind {
	case KindObject:
		return m.maskObject(node)
	case KindArray:
		return m.maskArray(node)
	default:
		return node, false
	}
}

func (m *Masker) maskObject(node Node) (Node, bool) {
	changed := false
	members := make([]Member, len(node.Members))
	for i, member := range node.Members {
		value := member.Value
		if m.fields.Contains(member.Key) {
			if masked, ok := desensitizeAll(value); ok {
				value = masked
				changed = true
			}
		} else if masked, ok := m.mask(value); ok {
			value = masked
			changed = true
		}
		members[i] = Member{Key: member.Key, Value: value}
	}
	if !changed {
		return node, false
	}
	return Node{Kind: KindObject, Members: members}, true
}

func (m *Masker) maskArray(node Node) (Node, bool) {
	changed := false
	items := make([]Node, len(node.Items))
	for i, item := range node.Items {
		masked, ok := m.mask(item)
		if ok {
			changed = true
		}
		items[i] = masked
	}
	if !changed {
		return node, false
	}
	return Node{Kind: KindArray, Items: items}, true
}

// desensitizeAll masks every non-null scalar leaf under a sensitive key,
// keeping the shape of objects and arrays.
func desensitizeAll(node Node) (Node, bool) {
	switch node.Kind {
	case KindObject:
		changed := false
		members := make([]Member, len(node.Members))
		for i, member := range node.Members {
			masked, ok := desensitizeAll(member.Value)
			changed = changed || ok
			members[i] = Member{Key: member.Key, Value: masked}
		}
		if !changed {
			return node, false
		}
		return Node{Kind: KindObject, Members: members}, true
	case KindArray:
		changed := false
		items := make([]Node, len(node.Items))
		for i, item := range node.Items {
			masked, ok := desensitizeAll(item)
			changed = changed || ok
			items[i] = masked
		}
		if !changed {
			return node, false
		}
		return Node{Kind: KindArray, Items: items}, true
	default:
		return desensitizeNode(node)
	}
}

// desensitizeNode masks a scalar value. Null stays null; numbers and booleans
// are masked through their literal text and become strings.
func desensitizeNode(node Node) (Node, bool) {
	if node.Kind == KindNull {
		return node, false
	}
	text := node.Text()
	masked := Desensitize(text)
	if node.Kind == KindString && masked == text {
		return node, false
	}
	return StringNode(masked), true
}

// Desensitize hides the middle of val. With L runes, L/2+1 runes are replaced by
// '*'; of the remaining keep runes, keep/2 stay at the front and the rest at the end.
// Blank input is returned unchanged.
func Desensitize(val string) string {
	if strings.TrimSpace(val) == "" {
		return val
	}
	runes := []rune(val)
	maskLen := len(runes)/2 + 1
	keepLen := len(runes) - maskLen
	head := keepLen / 2
	tail := keepLen - head

	var b strings.Builder
	b.Grow(len(val))
	b.WriteString(string(runes[:head]))
	b.WriteString(strings.Repeat("*", maskLen))
	b.WriteString(string(runes[len(runes)-tail:]))
	return b.String()
}

// serialize renders value as JSON text.
func serialize(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case json.RawMessage:
		return string(v), true
	case Node:
		return v.String(), true
	case *Node:
		if v == nil {
			return "", false
		}
		return v.String(), true
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", false
	}
	return string(data), true
}
