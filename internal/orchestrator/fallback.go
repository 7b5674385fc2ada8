package orchestrator

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"helpdesk-assistant/internal/common/errors"
	"helpdesk-assistant/internal/common/metrics"
)

// LookupProvider is the shared contract of the knowledge and web lookups.
// A knowledge provider signals "no answer" by returning its documented
// not-found sentinel in the body, never by erroring.
type LookupProvider interface {
	Search(ctx context.Context, query string) (string, error)
}

// notFoundSentinel is matched case-insensitively against the primary body.
const notFoundSentinel = "not found"

// Resolver runs the knowledge-first, web-second lookup chain.
type Resolver struct {
	knowledge LookupProvider
	web       LookupProvider
	logger    Logger
}

func NewResolver(knowledge, web LookupProvider, log Logger) *Resolver {
	return &Resolver{
		knowledge: knowledge,
		web:       web,
		logger: log.With(map[string]interface{}{
			"component": "lookup-resolver",
		}),
	}
}

// Resolve queries the knowledge repository and falls back to the web lookup
// when the repository reports no answer. Both traces are returned labeled,
// knowledge first. A provider failure propagates; the resolver never retries.
func (r *Resolver) Resolve(ctx context.Context, query string, onProgress func(string)) (string, error) {
	progress(onProgress, "Searching knowledge repository...")

	primary, err := r.knowledge.Search(ctx, query)
	if err != nil {
		return "", asLookupError(err, errors.NewKnowledgeLookupFailedError)
	}

	if !strings.Contains(strings.ToLower(primary), notFoundSentinel) {
		return primary, nil
	}

	r.logger.Info("knowledge lookup missed, falling back to web", map[string]interface{}{
		"query": query,
	})
	metrics.LookupFallbacks.Inc()
	progress(onProgress, "Falling back to web search...")

	secondary, err := r.web.Search(ctx, query)
	if err != nil {
		return "", asLookupError(err, errors.NewWebLookupFailedError)
	}

	return fmt.Sprintf("Knowledge repository:\n%s\n\nWeb search:\n%s", primary, secondary), nil
}

func progress(onProgress func(string), status string) {
	if onProgress != nil {
		onProgress(status)
	}
}

// asLookupError keeps already-classified failures intact and tags bare
// provider errors with the lookup stage they came from.
func asLookupError(err error, wrap func(error) *errors.StandardError) error {
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return wrap(err)
}
