// Package asr defines the speech-to-text collaborator consumed by the
// transcription service, plus the remote backends.
package asr

import (
	"context"
	"sort"
	"sync"
)

type Sentence struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

type Result struct {
	Text      string
	Sentences []Sentence
}

// Engine transcribes one audio file per call. Implementations are not assumed
// to be safe for concurrent use.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string) (Result, error)
}

// Normalize orders sentences by start time, clamps end to start and derives
// duration from the two. The result never has a nil sentence slice.
func Normalize(res Result) Result {
	sentences := make([]Sentence, 0, len(res.Sentences))
	for _, s := range res.Sentences {
		if s.End < s.Start {
			s.End = s.Start
		}
		s.Duration = s.End - s.Start
		sentences = append(sentences, s)
	}
	sort.SliceStable(sentences, func(i, j int) bool {
		return sentences[i].Start < sentences[j].Start
	})

	res.Sentences = sentences
	return res
}

// Serialized allows at most one in-flight Transcribe call on the wrapped engine.
type Serialized struct {
	mu     sync.Mutex
	engine Engine
}

func Serialize(engine Engine) *Serialized {
	if s, ok := engine.(*Serialized); ok {
		return s
	}
	return &Serialized{engine: engine}
}

func (s *Serialized) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Transcribe(ctx, audioPath)
}
