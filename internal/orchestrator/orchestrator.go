package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"helpdesk-assistant/internal/agents/intentrouter"
	"helpdesk-assistant/internal/agents/notify"
	"helpdesk-assistant/internal/agents/ticketdetails"
	"helpdesk-assistant/internal/agents/ticketsubmit"
	"helpdesk-assistant/internal/common/errors"
	"helpdesk-assistant/internal/common/metrics"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Classifier decides the handling path for a turn.
type Classifier interface {
	Classify(ctx context.Context, query string) intentrouter.Decision
}

// Extractor parses one turn into draft fields.
type Extractor interface {
	Extract(ctx context.Context, turn string, existing map[string]string) map[string]string
}

// Submitter creates the incident from a complete draft.
type Submitter interface {
	Submit(ctx context.Context, draft map[string]string, opts ticketsubmit.SubmitOptions) (*ticketsubmit.Incident, error)
}

// Notifier fans out post-submission notifications. Optional.
type Notifier interface {
	Execute(ctx context.Context, input *notify.Input) *notify.Output
}

type Config struct {
	ChunkSize  int
	ChunkDelay time.Duration

	Caller          string
	AssignmentGroup string
	Category        string

	NotifyEmail string
	NotifyPhone string
}

func LoadConfig() *Config {
	return &Config{
		ChunkSize:  50,
		ChunkDelay: 20 * time.Millisecond,
	}
}

// Orchestrator ties routing, lookup and slot-filling together. One turn is
// fully resolved before the next is accepted for the same session; distinct
// sessions are independent.
type Orchestrator struct {
	config     *Config
	classifier Classifier
	resolver   *Resolver
	web        LookupProvider
	extractor  Extractor
	submitter  Submitter
	notifier   Notifier
	sessions   SessionStore
	logger     Logger
	sleep      func(time.Duration)
}

func New(config *Config, classifier Classifier, resolver *Resolver, web LookupProvider,
	extractor Extractor, submitter Submitter, sessions SessionStore, log Logger) *Orchestrator {
	return &Orchestrator{
		config:     config,
		classifier: classifier,
		resolver:   resolver,
		web:        web,
		extractor:  extractor,
		submitter:  submitter,
		sessions:   sessions,
		logger: log.With(map[string]interface{}{
			"component": "orchestrator",
		}),
		sleep: time.Sleep,
	}
}

// WithNotifier wires optional post-submission notifications.
func (o *Orchestrator) WithNotifier(notifier Notifier) *Orchestrator {
	o.notifier = notifier
	return o
}

// Route resolves a single user turn and returns the user-visible response.
// Errors come back as marked response text, never as a failure.
func (o *Orchestrator) Route(ctx context.Context, text, sessionID string) string {
	return o.StreamingRoute(ctx, text, sessionID, nil)
}

// StreamingRoute is Route plus progress milestones and a chunked final
// payload delivered through onProgress. Sequencing and retry semantics are
// identical to Route.
func (o *Orchestrator) StreamingRoute(ctx context.Context, text, sessionID string, onProgress func(string)) string {
	start := time.Now()
	turn := strings.TrimSpace(text)

	if strings.EqualFold(turn, "clear") {
		if err := o.sessions.Delete(ctx, sessionID); err != nil {
			o.logger.Warn("session clear failed", map[string]interface{}{
				"sessionId": sessionID,
				"error":     err.Error(),
			})
		}
		return "Session cleared. How can I help?"
	}

	session := o.loadSession(ctx, sessionID)

	var decision intentrouter.Decision
	var response string

	if session.AwaitingDetails {
		decision = intentrouter.DecisionTicket
		progress(onProgress, "Processing ticket details...")
		response = o.handleTicketTurn(ctx, sessionID, session, turn, onProgress)
	} else {
		progress(onProgress, "Routing request...")
		decision = o.classifier.Classify(ctx, turn)
		metrics.RequestsRouted.WithLabelValues(string(decision)).Inc()

		o.logger.Info("request routed", map[string]interface{}{
			"sessionId": sessionID,
			"decision":  string(decision),
		})

		switch decision {
		case intentrouter.DecisionTicket:
			progress(onProgress, "Processing ticket details...")
			response = o.startTicketSession(ctx, sessionID, session)

		case intentrouter.DecisionKnowledgeLookup:
			body, err := o.resolver.Resolve(ctx, turn, onProgress)
			response = o.lookupResponse(body, err)

		default:
			progress(onProgress, "Searching the web...")
			body, err := o.web.Search(ctx, turn)
			if err != nil {
				err = asLookupError(err, errors.NewWebLookupFailedError)
			}
			response = o.lookupResponse(body, err)
		}
	}

	metrics.RequestDuration.WithLabelValues(string(decision)).Observe(time.Since(start).Seconds())

	o.emitChunks(response, onProgress)
	return response
}

func (o *Orchestrator) loadSession(ctx context.Context, sessionID string) *Session {
	session, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		o.logger.Warn("session load failed, starting fresh", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
	}
	if session == nil {
		session = NewSession()
	}
	return session
}

func (o *Orchestrator) lookupResponse(body string, err error) string {
	if err != nil {
		metrics.RequestErrors.WithLabelValues(string(errors.Normalize(err).Code)).Inc()
		return errors.UserMessage(err)
	}
	return body
}

// startTicketSession opens an empty draft and asks for the required fields.
// The triggering turn itself ("create a ticket") carries no draft content.
func (o *Orchestrator) startTicketSession(ctx context.Context, sessionID string, session *Session) string {
	session.AwaitingDetails = true
	session.Draft = make(map[string]string)

	if err := o.sessions.Save(ctx, sessionID, session); err != nil {
		o.logger.Error("session save failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
	}

	var sb strings.Builder
	sb.WriteString("Happy to raise a ticket. Please tell me:\n")
	for _, field := range ticketdetails.RequiredFields {
		sb.WriteString("- ")
		sb.WriteString(fieldLabel(field))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// handleTicketTurn merges one turn into the draft and either prompts for
// what is still missing or submits. The session always resets after a
// submission attempt, successful or not.
func (o *Orchestrator) handleTicketTurn(ctx context.Context, sessionID string, session *Session, turn string, onProgress func(string)) string {
	details := o.extractor.Extract(ctx, turn, session.Draft)

	missingBefore := missingFields(session.Draft)

	// A turn answering a single targeted question fills that field even
	// when keyword detection saw nothing.
	if len(missingBefore) == 1 {
		field := missingBefore[0]
		if details[field] == "" {
			details[field] = answerForField(field, turn)
		}
	} else if len(details) == 0 && turn != "" {
		// Free text with nothing recognisable is still the problem
		// statement; it fills whichever of the summary and description
		// fields are open.
		if session.Draft[ticketdetails.FieldShortDescription] == "" {
			details[ticketdetails.FieldShortDescription] = ticketdetails.Truncate(strings.TrimSpace(turn), 50)
		}
		if session.Draft[ticketdetails.FieldDescription] == "" {
			details[ticketdetails.FieldDescription] = turn
		}
	}

	for field, value := range details {
		if value != "" {
			session.Draft[field] = value
		}
	}

	missing := missingFields(session.Draft)
	if len(missing) > 0 {
		if err := o.sessions.Save(ctx, sessionID, session); err != nil {
			o.logger.Error("session save failed", map[string]interface{}{
				"sessionId": sessionID,
				"error":     err.Error(),
			})
		}
		return promptForMissing(session.Draft, missing)
	}

	response := o.submitDraft(ctx, session.Draft)

	// Reset regardless of the submission outcome; a failed submission is
	// restarted by the user, not resumed.
	if err := o.sessions.Delete(ctx, sessionID); err != nil {
		o.logger.Warn("session reset failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
	}

	return response
}

func (o *Orchestrator) submitDraft(ctx context.Context, draft map[string]string) string {
	summary := fmt.Sprintf("Creating ticket with:\nShort Description: %s\nDescription: %s\nImpact: %s\nUrgency: %s\n\n",
		draft[ticketdetails.FieldShortDescription],
		draft[ticketdetails.FieldDescription],
		draft[ticketdetails.FieldImpact],
		draft[ticketdetails.FieldUrgency],
	)

	incident, err := o.submitter.Submit(ctx, draft, ticketsubmit.SubmitOptions{
		Caller:          o.config.Caller,
		AssignmentGroup: o.config.AssignmentGroup,
		Category:        o.config.Category,
	})
	if err != nil {
		metrics.RequestErrors.WithLabelValues(string(errors.Normalize(err).Code)).Inc()
		return summary + errors.UserMessage(err)
	}

	if o.notifier != nil {
		o.notifier.Execute(ctx, &notify.Input{
			TicketNumber:     incident.Number,
			TicketURL:        incident.URL,
			ShortDescription: draft[ticketdetails.FieldShortDescription],
			Urgency:          draft[ticketdetails.FieldUrgency],
			RecipientEmail:   o.config.NotifyEmail,
			RecipientPhone:   o.config.NotifyPhone,
		})
	}

	return summary + fmt.Sprintf("Ticket created successfully.\nNumber: %s\nLink: %s\nIdempotency tag: %s",
		incident.Number, incident.URL, incident.IdempotencyTag)
}

func (o *Orchestrator) emitChunks(response string, onProgress func(string)) {
	if onProgress == nil || response == "" {
		return
	}

	size := o.config.ChunkSize
	if size <= 0 {
		size = 50
	}

	for start := 0; start < len(response); {
		end := start + size
		if end >= len(response) {
			end = len(response)
		} else {
			// Never split a rune across chunks.
			for end > start && !utf8.RuneStart(response[end]) {
				end--
			}
			if end == start {
				end = start + size
			}
		}
		onProgress(response[start:end])
		start = end
		if start < len(response) {
			o.sleep(o.config.ChunkDelay)
		}
	}
}

func missingFields(draft map[string]string) []string {
	var missing []string
	for _, field := range ticketdetails.RequiredFields {
		if draft[field] == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

func answerForField(field, turn string) string {
	switch field {
	case ticketdetails.FieldImpact, ticketdetails.FieldUrgency:
		return ticketdetails.ParseSeverity(turn)
	case ticketdetails.FieldShortDescription:
		return ticketdetails.Truncate(strings.TrimSpace(turn), 50)
	default:
		return strings.TrimSpace(turn)
	}
}

func promptForMissing(draft map[string]string, missing []string) string {
	if len(missing) == 1 {
		return fmt.Sprintf("Almost there! I just need the %s.", fieldLabel(missing[0]))
	}

	var sb strings.Builder
	sb.WriteString("To raise the ticket I still need:\n")
	for _, field := range missing {
		sb.WriteString("- ")
		sb.WriteString(fieldLabel(field))
		sb.WriteString("\n")
	}
	if len(draft) > 0 {
		sb.WriteString("So far I have: ")
		first := true
		for _, field := range ticketdetails.RequiredFields {
			if draft[field] == "" {
				continue
			}
			if !first {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s=%q", fieldLabel(field), draft[field]))
			first = false
		}
	}
	return strings.TrimRight(sb.String(), "\n ")
}

func fieldLabel(field string) string {
	words := strings.Split(field, "_")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}
