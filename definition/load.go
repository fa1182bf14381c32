// SPDX-License-Identifier: MIT

package definition

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes data in the given format into a Definition.
// Parse performs no validation; call Validate for that.
func Parse(data []byte, f Format) (*Definition, error) {
	def := &Definition{}
	switch f {
	case FormatJSON:
		if err := json.Unmarshal(data, def); err != nil {
			return nil, fmt.Errorf("definition: parse json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, def); err != nil {
			return nil, fmt.Errorf("definition: parse yaml: %w", err)
		}
	default:
		return nil, ErrUnknownFormat
	}

	return def, nil
}

// LoadFile reads and parses the definition at path, choosing the format
// from the file extension.
func LoadFile(path string) (*Definition, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("definition: read %s: %w", path, err)
	}

	return Parse(data, f)
}

// Marshal encodes def in the given format. Outputs and weighted-sum inputs
// keep their declaration order.
func Marshal(def *Definition, f Format) ([]byte, error) {
	if def == nil {
		return nil, ErrNilDefinition
	}
	switch f {
	case FormatJSON:
		return json.MarshalIndent(def, "", "  ")
	case FormatYAML:
		return yaml.Marshal(def)
	default:
		return nil, ErrUnknownFormat
	}
}

// Identity returns a stable content hash of def: the hex SHA-256 of its
// compact JSON encoding. Two definitions with the same identity build the
// same graph, which makes Identity a natural cache key.
func (d *Definition) Identity() (string, error) {
	if d == nil {
		return "", ErrNilDefinition
	}
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("definition: identity: %w", err)
	}
	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:]), nil
}
