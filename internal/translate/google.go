package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vedlang/shabd/internal/models"
)

// GoogleTranslator calls the public translate_a/single endpoint. One request
// per target language; the first request also detects the source language.
type GoogleTranslator struct {
	endpoint string
	client   *http.Client
}

// NewGoogleTranslator creates a provider for endpoint with the given timeout.
func NewGoogleTranslator(endpoint string, timeout time.Duration) *GoogleTranslator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GoogleTranslator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// TranslateToAll detects the language of text and translates it into every
// supported language. The detected language maps to the original text without
// a network call. Per-target failures yield an empty translation rather than
// failing the whole set; the validation gate downstream rejects incomplete sets.
func (g *GoogleTranslator) TranslateToAll(ctx context.Context, text string) (*models.TranslationSet, error) {
	first, detected, err := g.translate(ctx, text, "auto", models.LangEnglish)
	if err != nil {
		return nil, err
	}
	if len(detected) > 2 {
		detected = detected[:2]
	}

	ts := &models.TranslationSet{Original: text, DetectedLang: detected}
	ts.Set(models.LangEnglish, first)
	if detected == models.LangEnglish {
		ts.En = text
	}

	for _, target := range models.Languages {
		if target == models.LangEnglish {
			continue
		}
		if target == detected {
			ts.Set(target, text)
			continue
		}
		translated, _, err := g.translate(ctx, text, detected, target)
		if err != nil {
			// Leave the slot empty; an incomplete set never passes validation.
			continue
		}
		ts.Set(target, translated)
	}
	return ts, nil
}

// translate performs one request and returns (translatedText, detectedSourceLang).
func (g *GoogleTranslator) translate(ctx context.Context, text, source, target string) (string, string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", source)
	params.Set("tl", target)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", "", fmt.Errorf("build request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	return parseResponse(body)
}

// parseResponse decodes the endpoint's positional-array payload:
// index 0 holds translated segments ([translated, original, ...]),
// index 2 holds the detected source language.
func parseResponse(body []byte) (string, string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return "", "", fmt.Errorf("decode response: %w", err)
	}
	if len(outer) == 0 {
		return "", "", fmt.Errorf("decode response: empty payload")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(outer[0], &segments); err != nil {
		return "", "", fmt.Errorf("decode segments: %w", err)
	}
	translated := ""
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(seg[0], &part); err == nil {
			translated += part
		}
	}

	detected := ""
	if len(outer) > 2 {
		_ = json.Unmarshal(outer[2], &detected)
	}
	return translated, detected, nil
}
