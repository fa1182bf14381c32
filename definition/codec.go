// SPDX-License-Identifier: MIT

package definition

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// The ordered mappings (outputs, weighted-sum inputs) are objects on the
// wire; Go maps would lose their order, so both codecs walk the tokens.

// UnmarshalJSON decodes {"output": "linked", ...} preserving key order.
func (o *OutputLinks) UnmarshalJSON(data []byte) error {
	links := OutputLinks{}
	err := decodeOrderedObject(data, func(key string, dec *json.Decoder) error {
		var linked string
		if err := dec.Decode(&linked); err != nil {
			return fmt.Errorf("definition: output %q: %w", key, err)
		}
		links = append(links, OutputLink{Name: key, Linked: linked})

		return nil
	})
	if err != nil {
		return err
	}
	*o = links

	return nil
}

// MarshalJSON encodes the links as an object in declaration order.
func (o OutputLinks) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, l := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, l.Name, l.Linked); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes {"name": weight, ...} preserving key order.
func (w *WeightedInputs) UnmarshalJSON(data []byte) error {
	terms := WeightedInputs{}
	err := decodeOrderedObject(data, func(key string, dec *json.Decoder) error {
		var weight float64
		if err := dec.Decode(&weight); err != nil {
			return fmt.Errorf("definition: weight of %q: %w", key, err)
		}
		terms = append(terms, WeightedInput{Name: key, Weight: weight})

		return nil
	})
	if err != nil {
		return err
	}
	*w = terms

	return nil
}

// MarshalJSON encodes the terms as an object in declaration order.
func (w WeightedInputs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, term := range w {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, term.Name, term.Weight); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// decodeOrderedObject walks a JSON object calling member for every key.
// A JSON null decodes as an empty object.
func decodeOrderedObject(data []byte, member func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("definition: expected object, got %v", tok)
	}
	for dec.More() {
		if tok, err = dec.Token(); err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("definition: expected object key, got %v", tok)
		}
		if err = member(key, dec); err != nil {
			return err
		}
	}
	// consume the closing brace
	_, err = dec.Token()

	return err
}

// writeMember appends "key":value to buf.
func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)

	return nil
}

// UnmarshalYAML decodes a mapping node preserving key order.
func (o *OutputLinks) UnmarshalYAML(value *yaml.Node) error {
	links := OutputLinks{}
	err := walkMapping(value, func(key string, node *yaml.Node) error {
		var linked string
		if err := node.Decode(&linked); err != nil {
			return fmt.Errorf("definition: output %q: %w", key, err)
		}
		links = append(links, OutputLink{Name: key, Linked: linked})

		return nil
	})
	if err != nil {
		return err
	}
	*o = links

	return nil
}

// MarshalYAML encodes the links as a mapping node in declaration order.
func (o OutputLinks) MarshalYAML() (interface{}, error) {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, l := range o {
		if err := appendPair(m, l.Name, l.Linked); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// UnmarshalYAML decodes a mapping node of weights preserving key order.
func (w *WeightedInputs) UnmarshalYAML(value *yaml.Node) error {
	terms := WeightedInputs{}
	err := walkMapping(value, func(key string, node *yaml.Node) error {
		var weight float64
		if err := node.Decode(&weight); err != nil {
			return fmt.Errorf("definition: weight of %q: %w", key, err)
		}
		terms = append(terms, WeightedInput{Name: key, Weight: weight})

		return nil
	})
	if err != nil {
		return err
	}
	*w = terms

	return nil
}

// MarshalYAML encodes the terms as a mapping node in declaration order.
func (w WeightedInputs) MarshalYAML() (interface{}, error) {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, term := range w {
		if err := appendPair(m, term.Name, term.Weight); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// walkMapping calls member for each key/value pair of a mapping node.
// A null node decodes as an empty mapping.
func walkMapping(value *yaml.Node, member func(key string, node *yaml.Node) error) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("definition: line %d: expected mapping", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		if err := member(value.Content[i].Value, value.Content[i+1]); err != nil {
			return err
		}
	}

	return nil
}

// appendPair adds key: value to mapping node m.
func appendPair(m *yaml.Node, key string, value any) error {
	k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	v := &yaml.Node{}
	if err := v.Encode(value); err != nil {
		return err
	}
	m.Content = append(m.Content, k, v)

	return nil
}
