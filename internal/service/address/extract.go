package address

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"salesroute/internal/cortex"

	"go.uber.org/zap"
)

// Extractor finds street addresses in free text, in order of appearance
type Extractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

// street number, name, street type, then optional city, state/province and ZIP or postal code
var addressPattern = regexp.MustCompile(`(?i)` +
	`\d{1,6}\s+` +
	`[\w.\s]*?` +
	`(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr` +
	`|Way|Parkway|Pkwy|Court|Ct|Place|Pl|Terrace|Ter|Circle|Cir|Rue|R)\b\.?` +
	`[\w.\s,]*?` +
	`(?:[A-Za-z]{2})?` +
	`(?:\s*\d{5}(?:-\d{4})?|\s*[A-Za-z]\d[A-Za-z]\s?\d[A-Za-z]\d)?`)

// RegexExtractor matches the street-address pattern
type RegexExtractor struct{}

func (RegexExtractor) Extract(_ context.Context, text string) ([]string, error) {
	matches := addressPattern.FindAllString(text, -1)
	addresses := make([]string, 0, len(matches))
	for _, m := range matches {
		if m = strings.TrimSpace(m); m != "" {
			addresses = append(addresses, m)
		}
	}
	return addresses, nil
}

// Completer is the part of the Cortex client the LLM extractor needs
type Completer interface {
	Complete(ctx context.Context, prompt string) ([]cortex.Event, error)
}

var (
	codeFence = regexp.MustCompile("(?i)```(?:json)?")
	jsonArray = regexp.MustCompile(`(?s)\[.*\]`)
)

// LLMExtractor asks the agent to list the addresses as a JSON array
type LLMExtractor struct {
	agent  Completer
	logger *zap.Logger
}

func NewLLMExtractor(agent Completer, logger *zap.Logger) *LLMExtractor {
	return &LLMExtractor{agent: agent, logger: logger}
}

func (e *LLMExtractor) Extract(ctx context.Context, text string) ([]string, error) {
	events, err := e.agent.Complete(ctx, extractionPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("address extraction: %w", err)
	}

	reply := cortex.ParseEvents(events).Text
	e.logger.Debug("address extraction reply", zap.String("reply", reply))
	return ParseAddressList(reply)
}

func extractionPrompt(text string) string {
	return "Extract every full street address from this text and output **only** " +
		"a JSON array of strings (no markdown, no explanation). For example:\n" +
		`["123 Main St City, ST 12345", "456 Rue Example Montréal QC H2X 1Y4"]` + "\n\n" +
		"Text:\n```" + text + "```"
}

// ParseAddressList pulls the first JSON array of strings out of a model reply.
// A reply with no array yields an empty list.
func ParseAddressList(reply string) ([]string, error) {
	cleaned := strings.TrimSpace(codeFence.ReplaceAllString(reply, ""))

	m := jsonArray.FindString(cleaned)
	if m == "" {
		return []string{}, nil
	}

	var raw []string
	if err := json.Unmarshal([]byte(m), &raw); err != nil {
		return nil, fmt.Errorf("address extraction: decode JSON array: %w", err)
	}

	addresses := make([]string, 0, len(raw))
	for _, a := range raw {
		if a = strings.TrimSpace(a); a != "" {
			addresses = append(addresses, a)
		}
	}
	return addresses, nil
}

var betweenPattern = regexp.MustCompile(`(?i)between\s+(.*?)\s+and\s+(.*)`)

// BetweenFallback reads "between X and Y" as an origin/destination pair
func BetweenFallback(query string) []string {
	m := betweenPattern.FindStringSubmatch(query)
	if m == nil {
		return nil
	}

	origin := strings.Trim(strings.TrimSpace(m[1]), " ,.")
	destination := strings.Trim(strings.TrimSpace(m[2]), " ,.?!")
	if origin == "" || destination == "" {
		return nil
	}
	return []string{origin, destination}
}

// Chain runs extractors in order; the first non-empty result wins. Failing extractors are
// logged and skipped. When all come back empty the "between X and Y" fallback is tried.
type Chain struct {
	extractors []Extractor
	logger     *zap.Logger
}

func NewChain(logger *zap.Logger, extractors ...Extractor) *Chain {
	return &Chain{extractors: extractors, logger: logger}
}

func (c *Chain) Extract(ctx context.Context, text string) ([]string, error) {
	var lastErr error
	for _, ex := range c.extractors {
		addresses, err := ex.Extract(ctx, text)
		if err != nil {
			c.logger.Warn("address extractor failed", zap.Error(err))
			lastErr = err
			continue
		}
		if len(addresses) > 0 {
			return addresses, nil
		}
	}

	if addresses := BetweenFallback(text); addresses != nil {
		c.logger.Debug("using between fallback", zap.Strings("addresses", addresses))
		return addresses, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return []string{}, nil
}
