package intentrouter

import (
	"context"
	"strings"

	"helpdesk-assistant/internal/common/genai"
)

const classifierInstructions = `You are an intent classifier for an IT helpdesk assistant.

Routing rules:
- If the user explicitly asks for ticket creation, respond "TICKET_AGENT".
- For all other questions respond "FILE_SEARCH_AGENT" (the repository lookup
  falls back to web search when nothing matches).

Respond with ONLY one of these exact strings:
- "TICKET_AGENT"
- "FILE_SEARCH_AGENT"

Do not provide any explanation or additional text.`

// routingRule pairs a lower-cased phrase with the decision it selects.
// Rules are evaluated top to bottom; ticket phrases come before knowledge
// phrases so "need help with company policy" still opens a ticket.
type routingRule struct {
	phrase   string
	decision Decision
}

var routingRules = []routingRule{
	{"create a ticket", DecisionTicket},
	{"create ticket", DecisionTicket},
	{"make a ticket", DecisionTicket},
	{"open a ticket", DecisionTicket},
	{"laptop not working", DecisionTicket},
	{"computer not working", DecisionTicket},
	{"system not working", DecisionTicket},
	{"need help", DecisionTicket},
	{"need support", DecisionTicket},
	{"steps didn't work", DecisionTicket},
	{"report issue", DecisionTicket},
	{"report problem", DecisionTicket},
	{"submit ticket", DecisionTicket},
	{"how to", DecisionKnowledgeLookup},
	{"procedure", DecisionKnowledgeLookup},
	{"policy", DecisionKnowledgeLookup},
	{"internal", DecisionKnowledgeLookup},
	{"company", DecisionKnowledgeLookup},
	{"system", DecisionKnowledgeLookup},
	{"process", DecisionKnowledgeLookup},
	{"documentation", DecisionKnowledgeLookup},
	{"guide", DecisionKnowledgeLookup},
}

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
			"agent": "intent-router",
		}),
	}
}

// Classify routes a request to one of the three handling paths. The delegated
// strategy degrades to the rule table when no inferrer is wired, and to
// KnowledgeLookup when the model call fails or answers off-script.
func (h *Handler) Classify(ctx context.Context, query string) Decision {
	if h.config.Mode == ModeDelegated && h.inferrer != nil {
		return h.classifyDelegated(ctx, query)
	}
	return h.classifyByRules(query)
}

func (h *Handler) classifyByRules(query string) Decision {
	lower := strings.ToLower(query)
	for _, rule := range routingRules {
		if strings.Contains(lower, rule.phrase) {
			return rule.decision
		}
	}
	return DecisionWebLookup
}

func (h *Handler) classifyDelegated(ctx context.Context, query string) Decision {
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	prompt := classifierInstructions + "\n\nUser Request: " + query + "\n\nWhich agent should handle this request?"

	response, err := h.inferrer.Infer(ctx, prompt)
	if err != nil {
		h.logger.Warn("classification call failed, defaulting to knowledge lookup", map[string]interface{}{
			"error": err.Error(),
		})
		return DecisionKnowledgeLookup
	}

	label := strings.ToUpper(strings.TrimSpace(response))
	if strings.Contains(label, "TICKET") {
		return DecisionTicket
	}

	// Anything else, including a "WEB" answer, routes to the repository
	// lookup first; the fallback chain reaches the web from there. Never
	// open a ticket the user didn't ask for.
	return DecisionKnowledgeLookup
}
