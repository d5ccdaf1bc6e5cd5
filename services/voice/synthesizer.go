package voice

import (
	"context"
	"errors"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"google.golang.org/api/option"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
)

// Synthesizer turns response text into spoken audio. Synthesis is best-effort
// at the turn boundary; the text answer stands on its own when it fails.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// GoogleSynthesizer implements Synthesizer over Google Cloud Text-to-Speech,
// producing MP3 tuned for telephony playback.
type GoogleSynthesizer struct {
	client       *texttospeech.Client
	voiceName    string
	languageCode string
}

func NewGoogleSynthesizer(ctx context.Context, credentialsFile, voiceName, languageCode string) (*GoogleSynthesizer, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize text-to-speech client: %w", err)
	}
	if voiceName == "" {
		voiceName = "en-US-Journey-F"
	}
	if languageCode == "" {
		languageCode = "en-US"
	}
	return &GoogleSynthesizer{client: client, voiceName: voiceName, languageCode: languageCode}, nil
}

func (s *GoogleSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, errors.New("cannot synthesize empty text")
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: s.languageCode,
			Name:         s.voiceName,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:    texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:     1.0,
			Pitch:            0.0,
			EffectsProfileId: []string{"telephony-class-application"},
		},
	}

	resp, err := s.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	return resp.AudioContent, nil
}

func (s *GoogleSynthesizer) Close() error {
	return s.client.Close()
}
