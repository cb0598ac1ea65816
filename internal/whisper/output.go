package whisper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fmueller/voxserve/internal/asr"
)

const blankAudioToken = "[BLANK_AUDIO]"

// output mirrors the parts of whisper-cli's -oj document that are used.
// Offsets are milliseconds from the start of the audio.
type output struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// ParseOutput converts whisper-cli JSON into a result, dropping blank-audio
// markers whisper emits for silence.
func ParseOutput(content []byte) (asr.Result, error) {
	var doc output
	if err := json.Unmarshal(content, &doc); err != nil {
		return asr.Result{}, fmt.Errorf("decode whisper output: %w", err)
	}

	var (
		res   asr.Result
		texts []string
	)
	for _, seg := range doc.Transcription {
		text := strings.TrimSpace(seg.Text)
		if isBlankSegment(text) {
			continue
		}
		res.Sentences = append(res.Sentences, asr.Sentence{
			Text:  text,
			Start: float64(seg.Offsets.From) / 1000,
			End:   float64(seg.Offsets.To) / 1000,
		})
		texts = append(texts, text)
	}

	res.Text = strings.Join(texts, " ")
	return asr.Normalize(res), nil
}

func isBlankSegment(text string) bool {
	return text == "" || strings.EqualFold(text, blankAudioToken)
}
