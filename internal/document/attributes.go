package document

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// canonicalKeyOrder is the preferred attribute ordering for new keys.
// Existing documents keep whatever order they already have; keys added
// later slot in relative to the canonical ranks of their neighbors.
var canonicalKeyOrder = []string{
	"code",
	"title",
	"status",
	"dateCreated",
	"type",
	"priority",
	"phaseEpic",
	"source",
	"impact",
	"effort",
	"assignee",
	"reviewers",
	"relatedTickets",
	"dependsOn",
	"blocks",
	"supersedes",
	"lastModified",
}

// plainTextKeys are attribute fields that must hold a single line of
// text. A multi-line value here means the caller confused an attribute
// field with body content.
var plainTextKeys = map[string]bool{
	"title":     true,
	"assignee":  true,
	"phaseEpic": true,
	"source":    true,
}

// listKeys hold comma-separated CR key lists. YAML sequences are
// accepted on read and normalized to comma-separated scalars on write.
var listKeys = map[string]bool{
	"relatedTickets": true,
	"dependsOn":      true,
	"blocks":         true,
	"supersedes":     true,
}

// ValidationError reports an attribute value that was rejected before
// touching the document.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for attribute %q: %s", e.Field, e.Reason)
}

// Attributes is the ordered key/value block at the top of a CR
// document. Values are stored as normalized scalar strings; list
// attributes are comma-separated.
type Attributes struct {
	keys   []string
	values map[string]string
}

// NewAttributes returns an empty attribute set.
func NewAttributes() *Attributes {
	return &Attributes{values: make(map[string]string)}
}

// Len returns the number of attributes.
func (a *Attributes) Len() int { return len(a.keys) }

// Keys returns the attribute names in document order.
func (a *Attributes) Keys() []string {
	return append([]string(nil), a.keys...)
}

// Get returns the value for a key and whether it is present.
func (a *Attributes) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Set validates and stores a value. Existing keys keep their position;
// new keys are inserted at their canonical rank among the existing
// keys, with unknown keys appended at the end. An empty value removes
// the key.
func (a *Attributes) Set(key, value string) error {
	if err := Validate(key, value); err != nil {
		return err
	}
	value = Normalize(key, value)
	if value == "" {
		a.Delete(key)
		return nil
	}
	if _, ok := a.values[key]; ok {
		a.values[key] = value
		return nil
	}

	rank := canonicalRank(key)
	insert := len(a.keys)
	for i, existing := range a.keys {
		if canonicalRank(existing) > rank {
			insert = i
			break
		}
	}
	a.keys = append(a.keys, "")
	copy(a.keys[insert+1:], a.keys[insert:])
	a.keys[insert] = key
	a.values[key] = value
	return nil
}

// Delete removes a key if present.
func (a *Attributes) Delete(key string) {
	if _, ok := a.values[key]; !ok {
		return
	}
	delete(a.values, key)
	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
}

// Validate rejects values that would corrupt the attribute block.
// Plain-text fields must not contain line breaks.
func Validate(key, value string) error {
	if plainTextKeys[key] && strings.ContainsAny(value, "\n\r") {
		return &ValidationError{
			Field:  key,
			Reason: "value contains a line break; this field holds a single line of text — body content belongs in a section",
		}
	}
	return nil
}

// Normalize canonicalizes a value for storage: surrounding whitespace
// trimmed, list attributes rewritten as comma-separated without spaces.
func Normalize(key, value string) string {
	value = strings.TrimSpace(value)
	if !listKeys[key] {
		return value
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return strings.Join(items, ",")
}

// canonicalRank returns the key's position in canonicalKeyOrder, or a
// rank past the end for unknown keys so they sort last in input order.
func canonicalRank(key string) int {
	for i, k := range canonicalKeyOrder {
		if k == key {
			return i
		}
	}
	return len(canonicalKeyOrder)
}

// parseAttributes builds an ordered attribute set from a YAML mapping
// node. Scalar values are stored as-is; sequences collapse to
// comma-separated scalars; anything deeper is flattened to its string
// form. Order comes from the node, not a map, so round trips preserve
// the author's layout.
func parseAttributes(node *yaml.Node) (*Attributes, error) {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("attribute block is not a key/value mapping")
	}

	attrs := NewAttributes()
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := scalarize(node.Content[i+1])
		if key == "" {
			continue
		}
		if _, dup := attrs.values[key]; dup {
			continue
		}
		attrs.keys = append(attrs.keys, key)
		attrs.values[key] = Normalize(key, value)
	}
	return attrs, nil
}

// scalarize flattens a YAML value node to one scalar string.
func scalarize(node *yaml.Node) string {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Value
	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, c := range node.Content {
			items = append(items, scalarize(c))
		}
		return strings.Join(items, ",")
	case yaml.AliasNode:
		if node.Alias != nil {
			return scalarize(node.Alias)
		}
	}
	return node.Value
}

// marshalAttributes renders the ordered attribute block as YAML.
func (a *Attributes) marshal() ([]byte, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range a.keys {
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: a.values[key]},
		)
	}
	return yaml.Marshal(mapping)
}
