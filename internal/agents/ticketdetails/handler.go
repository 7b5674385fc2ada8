package ticketdetails

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	apperrors "helpdesk-assistant/internal/common/errors"
	"helpdesk-assistant/internal/common/genai"
)

const extractorInstructions = `You are a ticket details interpreter for an IT helpdesk.

Parse the user's natural language input and extract or infer ticket details.

PARSING RULES:
1. short_description: the core issue in one line.
2. description: the full problem description, expanded if too brief.
3. impact: business impact, "1"=High, "2"=Medium, "3"=Low.
4. urgency: how quickly this needs resolution, "1"=High, "2"=Medium, "3"=Low.

Return ONLY a valid JSON object with this exact structure:
{
    "short_description": "brief issue summary",
    "description": "detailed description",
    "impact": "1",
    "urgency": "2"
}

Do not include any explanation text.`

// severityRule maps a lower-cased keyword to a level. Separate tables for
// impact and urgency so "urgent" alone never fixes the impact.
type severityRule struct {
	keyword string
	level   string
}

var impactRules = []severityRule{
	{"high impact", "1"},
	{"critical", "1"},
	{"emergency", "1"},
	{"moderate impact", "2"},
	{"medium impact", "2"},
	{"low impact", "3"},
	{"minor", "3"},
}

var urgencyRules = []severityRule{
	{"urgent", "1"},
	{"asap", "1"},
	{"immediately", "1"},
	{"high urgency", "1"},
	{"medium urgency", "2"},
	{"no rush", "3"},
	{"when convenient", "3"},
	{"low urgency", "3"},
}

var failureIndicators = []string{"broken", "won't", "doesn't", "failed", "not working", "crashed"}

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config   *Config
	inferrer genai.Inferencer
	logger   Logger
}

func NewHandler(config *Config, inferrer genai.Inferencer, log Logger) *Handler {
	return &Handler{
		config:   config,
		inferrer: inferrer,
		logger: log.With(map[string]interface{}{
			"agent": "ticket-details",
		}),
	}
}

// Extract parses one conversation turn into draft fields. The delegated mode
// returns a best-effort complete field set; any failure there drops down to
// rule-based detection, which returns only fields it actually recognised.
func (h *Handler) Extract(ctx context.Context, turn string, existing map[string]string) map[string]string {
	if h.config.Mode == ModeDelegated && h.inferrer != nil {
		details, err := h.extractDelegated(ctx, turn, existing)
		if err == nil {
			return details
		}
		h.logger.Warn("delegated extraction failed, using rule-based extraction", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return h.ExtractRules(turn)
}

// ExtractRules detects draft fields from keyword tables alone. Fields it
// cannot recognise are left out of the result rather than defaulted, so a
// partially informative turn keeps the session collecting.
func (h *Handler) ExtractRules(turn string) map[string]string {
	details := make(map[string]string)
	lower := strings.ToLower(turn)

	if desc := detectShortDescription(turn, lower); desc != "" {
		details[FieldShortDescription] = desc
	}
	if level := matchSeverity(lower, impactRules); level != "" {
		details[FieldImpact] = level
	}
	if level := matchSeverity(lower, urgencyRules); level != "" {
		details[FieldUrgency] = level
	}

	return details
}

func (h *Handler) extractDelegated(ctx context.Context, turn string, existing map[string]string) (map[string]string, error) {
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	prompt := extractorInstructions + "\n\nUser Input: " + turn
	if len(existing) > 0 {
		existingJSON, _ := json.Marshal(existing)
		prompt += "\n\nEXISTING DETAILS: " + string(existingJSON) + "\n\nMerge with new information from user input."
	}
	prompt += "\n\nExtract and complete ticket details:"

	response, err := h.inferrer.Infer(ctx, prompt)
	if err != nil {
		return nil, apperrors.NewExtractionFailedError(err)
	}

	details, err := parseDetailsJSON(response)
	if err != nil {
		return nil, apperrors.NewExtractionFailedError(err)
	}

	applyDefaults(details, turn)

	validated, _ := json.Marshal(details)
	if err := validateDetails(string(validated)); err != nil {
		return nil, apperrors.NewExtractionFailedError(err)
	}

	return details, nil
}

// parseDetailsJSON pulls the JSON object out of a possibly chatty model
// response: everything between the first "{" and the last "}".
func parseDetailsJSON(response string) (map[string]string, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return nil, errors.New("no JSON object in response")
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(response[start:end+1]), &raw); err != nil {
		return nil, err
	}

	details := make(map[string]string)
	for key, value := range raw {
		if s, ok := value.(string); ok {
			details[key] = s
		}
	}
	return details, nil
}

// applyDefaults fills fields the model left absent or empty.
func applyDefaults(details map[string]string, turn string) {
	if details[FieldShortDescription] == "" {
		details[FieldShortDescription] = Truncate(turn, 50)
	}
	if details[FieldDescription] == "" {
		details[FieldDescription] = turn
	}
	if details[FieldImpact] == "" {
		details[FieldImpact] = "2"
	}
	if details[FieldUrgency] == "" {
		details[FieldUrgency] = "2"
	}
}

// Truncate shortens s to at most max bytes without splitting a rune,
// marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// ParseSeverity interprets a free-text answer to a targeted impact or
// urgency question. Accepts a bare level digit or a severity word; anything
// unrecognised reads as Medium.
func ParseSeverity(answer string) string {
	trimmed := strings.TrimSpace(answer)
	switch trimmed {
	case "1", "2", "3":
		return trimmed
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.Contains(lower, "high"), strings.Contains(lower, "critical"), strings.Contains(lower, "urgent"):
		return "1"
	case strings.Contains(lower, "low"), strings.Contains(lower, "minor"):
		return "3"
	default:
		return "2"
	}
}

func matchSeverity(lower string, rules []severityRule) string {
	for _, rule := range rules {
		if strings.Contains(lower, rule.keyword) {
			return rule.level
		}
	}
	return ""
}

// detectShortDescription windows a few words around the first failure
// indicator in the turn.
func detectShortDescription(turn, lower string) string {
	words := strings.Fields(turn)
	for i, word := range words {
		wordLower := strings.ToLower(word)
		matched := false
		for _, indicator := range failureIndicators {
			if strings.Contains(wordLower, indicator) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		start := i - 2
		if start < 0 {
			start = 0
		}
		end := i + 3
		if end > len(words) {
			end = len(words)
		}
		return strings.Trim(strings.Join(words[start:end], " "), " ,.!?")
	}

	// "not working" spans two words and never matches a single token.
	if strings.Contains(lower, "not working") {
		return Truncate(strings.TrimSpace(turn), 50)
	}

	return ""
}
