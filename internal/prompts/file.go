package prompts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// LoadOverrides reads a JSON object of prompt name to instruction text. A
// missing file yields no overrides and no error.
func LoadOverrides(path string) ([]Entry, error) {
	if path == "" {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read prompts file: %w", err)
	}

	entries, err := ParseOverrides(content)
	if err != nil {
		return nil, fmt.Errorf("parse prompts file %s: %w", path, err)
	}
	return entries, nil
}

// ParseOverrides decodes a JSON object keeping the key order of the document.
func ParseOverrides(content []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(content))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("expected a JSON object of prompt name to text")
	}

	var entries []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name := tok.(string)

		var text *string
		if err := dec.Decode(&text); err != nil || text == nil {
			return nil, fmt.Errorf("prompt %q: value must be a string", name)
		}
		entries = append(entries, Entry{Name: name, Text: *text})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after prompts object")
	}

	return entries, nil
}
