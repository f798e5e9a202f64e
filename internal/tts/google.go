// Package tts renders short reply texts as voice notes through Google Cloud
// Text-to-Speech. Audio comes back as OGG/Opus, which chat clients play
// inline as a voice message.
package tts

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gtts "google.golang.org/api/texttospeech/v1"
)

const (
	DefaultLanguage = "en-US"
	audioEncoding   = "OGG_OPUS"
	// The API rejects inputs above 5000 bytes.
	maxInputBytes = 5000
)

var ErrEmptyText = errors.New("nothing to synthesize")

// Config selects the voice and the service account used to call the API.
type Config struct {
	Language           string
	VoiceName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Google struct {
	svc      *gtts.Service
	language string
	voice    string
}

// NewGoogle creates a synthesizer authenticated with the configured service
// account. Extra options are appended after the credentials.
func NewGoogle(ctx context.Context, cfg Config, extra ...goption.ClientOption) (*Google, error) {
	credentialsJSON, err := loadCredentials(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts := append([]goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gtts.CloudPlatformScope),
	}, extra...)
	return newGoogle(ctx, cfg, opts...)
}

func newGoogle(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Google, error) {
	svc, err := gtts.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create text-to-speech service: %w", err)
	}
	language := strings.TrimSpace(cfg.Language)
	if language == "" {
		language = DefaultLanguage
	}
	slog.InfoContext(ctx, "Text-to-speech enabled", "component", "tts", "language", language)
	return &Google{svc: svc, language: language, voice: cfg.VoiceName}, nil
}

// loadCredentials reads inline JSON, a credentials file, or the file named by
// GOOGLE_APPLICATION_CREDENTIALS, in that order.
func loadCredentials(ctx context.Context, cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		slog.InfoContext(ctx, "Reading credentials from file", "component", "tts", "path", file)
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Synthesize returns OGG/Opus audio for text.
func (g *Google) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if len(text) > maxInputBytes {
		return nil, fmt.Errorf("text too long for synthesis: %d bytes", len(text))
	}

	req := &gtts.SynthesizeSpeechRequest{
		Input: &gtts.SynthesisInput{Text: text},
		Voice: &gtts.VoiceSelectionParams{
			LanguageCode: g.language,
			Name:         g.voice,
		},
		AudioConfig: &gtts.AudioConfig{AudioEncoding: audioEncoding},
	}
	resp, err := g.svc.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	return audio, nil
}
