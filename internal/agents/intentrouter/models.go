package intentrouter

// Decision is the routing target for an inbound request.
type Decision string

const (
	DecisionTicket          Decision = "TICKET"
	DecisionKnowledgeLookup Decision = "KNOWLEDGE_LOOKUP"
	DecisionWebLookup       Decision = "WEB_LOOKUP"
)
