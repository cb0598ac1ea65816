package server

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	ActionTranscribe = "transcribe"
	ActionPing       = "ping"
	ActionQuit       = "quit"
)

const (
	keyAction        = "action"
	keyAudioPath     = "audio_path"
	keyCleanupPrompt = "cleanup_prompt"
)

// Request is one decoded input line. Keys are matched exactly and a field is
// only type-checked when the action reads it.
type Request struct {
	fields map[string]json.RawMessage
}

// decodeRequest splits a syntactically valid JSON value into its top-level
// fields. Anything but an object is rejected.
func decodeRequest(raw json.RawMessage) (Request, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Request{}, fmt.Errorf("request must be a JSON object, got %s", jsonKind(raw))
	}
	return Request{fields: fields}, nil
}

// ActionName returns the action as text. Strings are unquoted, other JSON
// values keep their literal form and a missing action reads as null.
func (r Request) ActionName() string {
	raw := strings.TrimSpace(string(r.fields[keyAction]))
	if raw == "" || raw == "null" {
		return "null"
	}

	var name string
	if err := json.Unmarshal([]byte(raw), &name); err == nil {
		return name
	}
	return raw
}

// AudioPath returns "" when the field is absent or null.
func (r Request) AudioPath() (string, error) {
	return r.stringField(keyAudioPath)
}

func (r Request) CleanupPrompt() (string, error) {
	return r.stringField(keyCleanupPrompt)
}

func (r Request) stringField(key string) (string, error) {
	raw, ok := r.fields[key]
	if !ok || strings.TrimSpace(string(raw)) == "null" {
		return "", nil
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fmt.Errorf("%s must be a string, got %s", key, jsonKind(raw))
	}
	return value, nil
}

func jsonKind(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return "nothing"
	}

	switch trimmed[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func errorf(message string) errorResponse {
	return errorResponse{Error: message}
}
