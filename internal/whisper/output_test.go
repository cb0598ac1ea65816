package whisper

import (
	"testing"

	"github.com/fmueller/voxserve/internal/asr"
	"github.com/stretchr/testify/require"
)

func TestParseOutputBuildsTimedSentences(t *testing.T) {
	t.Parallel()

	content := []byte(`{
		"result": {"language": "en"},
		"transcription": [
			{"timestamps": {"from": "00:00:00,000", "to": "00:00:01,500"}, "offsets": {"from": 0, "to": 1500}, "text": " Hello there."},
			{"timestamps": {"from": "00:00:01,500", "to": "00:00:02,000"}, "offsets": {"from": 1500, "to": 2000}, "text": " [BLANK_AUDIO]"},
			{"timestamps": {"from": "00:00:02,000", "to": "00:00:04,250"}, "offsets": {"from": 2000, "to": 4250}, "text": " How are you?"}
		]
	}`)

	res, err := ParseOutput(content)
	require.NoError(t, err)
	require.Equal(t, "Hello there. How are you?", res.Text)
	require.Equal(t, []asr.Sentence{
		{Text: "Hello there.", Start: 0, End: 1.5, Duration: 1.5},
		{Text: "How are you?", Start: 2, End: 4.25, Duration: 2.25},
	}, res.Sentences)
}

func TestParseOutputOnlySilence(t *testing.T) {
	t.Parallel()

	res, err := ParseOutput([]byte(`{"transcription": [{"offsets": {"from": 0, "to": 3000}, "text": "[BLANK_AUDIO]"}]}`))
	require.NoError(t, err)
	require.Empty(t, res.Text)
	require.Empty(t, res.Sentences)
}

func TestParseOutputRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := ParseOutput([]byte("not json"))
	require.Error(t, err)
}
