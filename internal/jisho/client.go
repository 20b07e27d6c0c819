// Package jisho looks words up against the jisho.org dictionary API to
// decide whether they qualify as nouns.
package jisho

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stakahashi/shiritori.space/internal/kana"
	"github.com/stakahashi/shiritori.space/internal/platform/timeouts"
)

// DefaultBaseURL is the public jisho.org words search endpoint.
const DefaultBaseURL = "https://jisho.org/api/v1/search/words"

// VerdictStore caches lookup verdicts so repeated words skip the network.
type VerdictStore interface {
	Verdict(ctx context.Context, word string) (isNoun bool, found bool, err error)
	PutVerdict(ctx context.Context, word string, isNoun bool) error
}

// Client queries the dictionary API. A nil store disables caching.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      VerdictStore
	tracer     trace.Tracer
}

// NewClient creates a dictionary client. An empty baseURL selects the
// public API endpoint.
func NewClient(baseURL string, store VerdictStore) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeouts.JishoRequest},
		store:      store,
		tracer:     otel.Tracer("jisho"),
	}
}

type searchResponse struct {
	Data []searchEntry `json:"data"`
}

type searchEntry struct {
	Japanese []struct {
		Reading string `json:"reading"`
	} `json:"japanese"`
	Senses []struct {
		PartsOfSpeech []string `json:"parts_of_speech"`
	} `json:"senses"`
}

// IsNoun reports whether any dictionary entry whose primary reading matches
// word (after katakana folding) lists a noun part of speech.
func (c *Client) IsNoun(ctx context.Context, word string) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "jisho.IsNoun",
		trace.WithAttributes(attribute.String("jisho.word", word)))
	defer span.End()

	if c.store != nil {
		isNoun, found, err := c.store.Verdict(ctx, word)
		if err != nil {
			log.Printf("jisho: verdict cache read for %q: %v", word, err)
		} else if found {
			span.SetAttributes(attribute.Bool("jisho.cache_hit", true))
			return isNoun, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"?keyword="+url.QueryEscape(word), nil)
	if err != nil {
		return false, fmt.Errorf("build jisho request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("query jisho: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("query jisho: unexpected status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode jisho response: %w", err)
	}

	verdict := matchesNoun(result, word)
	if c.store != nil {
		if err := c.store.PutVerdict(ctx, word, verdict); err != nil {
			log.Printf("jisho: verdict cache write for %q: %v", word, err)
		}
	}
	return verdict, nil
}

// matchesNoun scans entries for one whose primary reading folds to the
// submitted word and whose senses include some form of noun.
func matchesNoun(result searchResponse, word string) bool {
	for _, entry := range result.Data {
		if len(entry.Japanese) == 0 {
			continue
		}
		if kana.ToHiragana(entry.Japanese[0].Reading) != word {
			continue
		}
		for _, sense := range entry.Senses {
			for _, pos := range sense.PartsOfSpeech {
				if strings.Contains(strings.ToLower(pos), "noun") {
					return true
				}
			}
		}
	}
	return false
}
