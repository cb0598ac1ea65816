package asr

import (
	"context"
	"fmt"
	"os"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"
)

const defaultGoogleLanguage = "en-US"

// GoogleEngine transcribes with Cloud Speech-to-Text synchronous recognition,
// which accepts up to one minute of audio. WAV and FLAC headers carry the
// encoding, so none is set here.
type GoogleEngine struct {
	client   *speech.Client
	language string
	model    string
	logger   *zap.Logger
}

type GoogleOptions struct {
	Language string
	Model    string
	Logger   *zap.Logger
}

func NewGoogleEngine(ctx context.Context, opts GoogleOptions) (*GoogleEngine, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}

	language := strings.TrimSpace(opts.Language)
	if language == "" || language == "auto" {
		language = defaultGoogleLanguage
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &GoogleEngine{client: client, language: language, model: opts.Model, logger: opts.Logger}, nil
}

func (g *GoogleEngine) Close() error {
	return g.client.Close()
}

func (g *GoogleEngine) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	content, err := os.ReadFile(audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("read audio: %w", err)
	}

	g.logger.Debug("requesting recognition", zap.String("audio", audioPath), zap.Int("bytes", len(content)))
	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			LanguageCode:               g.language,
			Model:                      g.model,
			EnableWordTimeOffsets:      true,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: content},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("recognize: %w", err)
	}

	return resultFromRecognize(resp), nil
}

// resultFromRecognize maps each recognition result to one sentence. A result
// without word offsets starts where the previous one ended.
func resultFromRecognize(resp *speechpb.RecognizeResponse) Result {
	var (
		res   Result
		texts []string
		prev  float64
	)

	for _, r := range resp.GetResults() {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		best := alts[0]
		text := strings.TrimSpace(best.GetTranscript())
		if text == "" {
			continue
		}

		start, end := prev, r.GetResultEndTime().AsDuration().Seconds()
		if words := best.GetWords(); len(words) > 0 {
			start = words[0].GetStartTime().AsDuration().Seconds()
			if last := words[len(words)-1].GetEndTime().AsDuration().Seconds(); last > 0 {
				end = last
			}
		}

		res.Sentences = append(res.Sentences, Sentence{Text: text, Start: start, End: end})
		texts = append(texts, text)
		prev = end
	}

	res.Text = strings.Join(texts, " ")
	return Normalize(res)
}
