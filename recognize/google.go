package recognize

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"meetscribe/audio"
)

const defaultSpeechEndpoint = "https://speech.googleapis.com/v1/speech:recognize"

// GoogleRecognizer calls the Google Speech recognition HTTP API with raw
// LINEAR16 audio. Empty recognition results map to ErrUnintelligible;
// transport and protocol failures map to *ServiceError.
type GoogleRecognizer struct {
	APIKey   string
	Endpoint string
	Client   *http.Client
}

// NewGoogleRecognizer returns a recognizer using the default endpoint.
func NewGoogleRecognizer(apiKey string) *GoogleRecognizer {
	return &GoogleRecognizer{
		APIKey:   apiKey,
		Endpoint: defaultSpeechEndpoint,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type speechRequest struct {
	Config speechConfig `json:"config"`
	Audio  speechAudio  `json:"audio"`
}

type speechConfig struct {
	Encoding        string `json:"encoding"`
	SampleRateHertz int    `json:"sampleRateHertz"`
	LanguageCode    string `json:"languageCode"`
}

type speechAudio struct {
	Content string `json:"content"`
}

type speechResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Recognize transcribes one segment.
func (g *GoogleRecognizer) Recognize(ctx context.Context, seg audio.Segment, language string) (string, error) {
	if len(seg.PCM) == 0 {
		return "", ErrUnintelligible
	}
	if strings.TrimSpace(g.APIKey) == "" {
		return "", &ServiceError{Op: "auth", Err: errors.New("missing API key")}
	}

	payload := speechRequest{
		Config: speechConfig{
			Encoding:        "LINEAR16",
			SampleRateHertz: seg.SampleRate,
			LanguageCode:    language,
		},
		Audio: speechAudio{Content: base64.StdEncoding.EncodeToString(seg.PCM)},
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", &ServiceError{Op: "encode", Err: err}
	}

	endpoint := g.Endpoint
	if endpoint == "" {
		endpoint = defaultSpeechEndpoint
	}
	endpoint += "?key=" + url.QueryEscape(g.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", &ServiceError{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	client := g.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &ServiceError{Op: "transport", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &ServiceError{Op: "status", Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	var parsed speechResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &ServiceError{Op: "decode", Err: err}
	}

	text := bestTranscript(parsed)
	if text == "" {
		return "", ErrUnintelligible
	}
	return text, nil
}

func bestTranscript(resp speechResponse) string {
	var b strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		best := result.Alternatives[0]
		for _, alt := range result.Alternatives[1:] {
			if alt.Confidence > best.Confidence {
				best = alt
			}
		}
		t := strings.TrimSpace(best.Transcript)
		if t == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(t)
	}
	return b.String()
}
