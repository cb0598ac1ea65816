package asr

import (
	"testing"
	"time"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/durationpb"
)

func word(text string, start, end time.Duration) *speechpb.WordInfo {
	return &speechpb.WordInfo{Word: text, StartTime: durationpb.New(start), EndTime: durationpb.New(end)}
}

func TestResultFromRecognizeUsesWordOffsets(t *testing.T) {
	t.Parallel()

	resp := &speechpb.RecognizeResponse{
		Results: []*speechpb.SpeechRecognitionResult{
			{
				Alternatives: []*speechpb.SpeechRecognitionAlternative{{
					Transcript: "Hello world.",
					Words: []*speechpb.WordInfo{
						word("Hello", 500*time.Millisecond, time.Second),
						word("world.", time.Second, 1500*time.Millisecond),
					},
				}},
				ResultEndTime: durationpb.New(1600 * time.Millisecond),
			},
			{
				Alternatives:  []*speechpb.SpeechRecognitionAlternative{{Transcript: " Second part. "}},
				ResultEndTime: durationpb.New(3 * time.Second),
			},
			{Alternatives: nil},
		},
	}

	res := resultFromRecognize(resp)
	require.Equal(t, "Hello world. Second part.", res.Text)
	require.Len(t, res.Sentences, 2)
	require.Equal(t, Sentence{Text: "Hello world.", Start: 0.5, End: 1.5, Duration: 1.0}, res.Sentences[0])
	require.Equal(t, Sentence{Text: "Second part.", Start: 1.5, End: 3.0, Duration: 1.5}, res.Sentences[1])
}

func TestResultFromRecognizeEmpty(t *testing.T) {
	t.Parallel()

	res := resultFromRecognize(&speechpb.RecognizeResponse{})
	require.Empty(t, res.Text)
	require.NotNil(t, res.Sentences)
}
