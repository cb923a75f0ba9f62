// Package encoding provides small helpers for the JSON files git-backup keeps
// on disk.
package encoding

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReadJSON reads path and unmarshals it into a value of type T.
// Returns nil, nil if the file does not exist.
func ReadJSON[T any](path string) (*T, error) {
	data, err := ReadFile(path)
	if err != nil || data == nil {
		return nil, err
	}

	return ParseJSON[T](data)
}

// ParseJSON unmarshals JSON data into a value of type T.
func ParseJSON[T any](data []byte) (*T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &result, nil
}

// WriteJSONSecure writes value as two-space indented JSON followed by a
// newline. The file is created with 0600 permissions because it may hold
// credentials; parent directories are created as needed.
func WriteJSONSecure[T any](path string, value T) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	data = append(data, '\n')

	if err := WriteFile(path, data, 0o600); err != nil {
		return err
	}

	// WriteFile keeps the mode of an existing file
	return os.Chmod(path, 0o600)
}
