package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "helpdesk-assistant/internal/common/errors"
)

// ==========================
// Test Helpers
// ==========================

type TestLogger struct {
	t *testing.T
}

func (l *TestLogger) Info(msg string, fields map[string]interface{})  { l.t.Logf("INFO: %s %v", msg, fields) }
func (l *TestLogger) Warn(msg string, fields map[string]interface{})  { l.t.Logf("WARN: %s %v", msg, fields) }
func (l *TestLogger) Error(msg string, fields map[string]interface{}) { l.t.Logf("ERROR: %s %v", msg, fields) }
func (l *TestLogger) With(fields map[string]interface{}) Logger       { return l }

type fakeLookup struct {
	body   string
	err    error
	called int
}

func (f *fakeLookup) Search(ctx context.Context, query string) (string, error) {
	f.called++
	return f.body, f.err
}

// ==========================
// Resolver Tests
// ==========================

func TestResolvePrimaryHit(t *testing.T) {
	knowledge := &fakeLookup{body: "The answer is 42."}
	web := &fakeLookup{body: "web stuff"}
	resolver := NewResolver(knowledge, web, &TestLogger{t})

	body, err := resolver.Resolve(context.Background(), "what is the answer", nil)

	require.NoError(t, err)
	assert.Equal(t, "The answer is 42.", body)
	assert.Equal(t, 0, web.called)
}

func TestResolveFallsBackOnSentinel(t *testing.T) {
	tests := []string{
		"Not found in repository.",
		"NOT FOUND IN REPOSITORY.",
		"not found",
	}

	for _, sentinel := range tests {
		t.Run(sentinel, func(t *testing.T) {
			knowledge := &fakeLookup{body: sentinel}
			web := &fakeLookup{body: "from the web"}
			resolver := NewResolver(knowledge, web, &TestLogger{t})

			body, err := resolver.Resolve(context.Background(), "anything", nil)

			require.NoError(t, err)
			assert.Equal(t, 1, web.called)
			assert.Contains(t, body, "Knowledge repository:\n"+sentinel)
			assert.Contains(t, body, "Web search:\nfrom the web")

			// Knowledge trace comes first.
			assert.Less(t, strings.Index(body, sentinel), strings.Index(body, "from the web"))
		})
	}
}

func TestResolveKnowledgeErrorPropagates(t *testing.T) {
	knowledge := &fakeLookup{err: errors.New("index offline")}
	web := &fakeLookup{}
	resolver := NewResolver(knowledge, web, &TestLogger{t})

	_, err := resolver.Resolve(context.Background(), "anything", nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeKnowledgeLookupFailed))
	assert.Equal(t, 0, web.called)
}

func TestResolveWebErrorPropagates(t *testing.T) {
	knowledge := &fakeLookup{body: "Not found in repository."}
	web := &fakeLookup{err: errors.New("quota exceeded")}
	resolver := NewResolver(knowledge, web, &TestLogger{t})

	_, err := resolver.Resolve(context.Background(), "anything", nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeWebLookupFailed))
}

func TestResolveKeepsClassifiedErrors(t *testing.T) {
	knowledge := &fakeLookup{err: apperrors.NewIndexNotFoundError("knowledge-articles")}
	web := &fakeLookup{}
	resolver := NewResolver(knowledge, web, &TestLogger{t})

	_, err := resolver.Resolve(context.Background(), "anything", nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeIndexNotFound))
}

func TestResolveReportsFallbackProgress(t *testing.T) {
	knowledge := &fakeLookup{body: "Not found in repository."}
	web := &fakeLookup{body: "x"}
	resolver := NewResolver(knowledge, web, &TestLogger{t})

	var statuses []string
	_, err := resolver.Resolve(context.Background(), "anything", func(s string) { statuses = append(statuses, s) })

	require.NoError(t, err)
	assert.Equal(t, []string{"Searching knowledge repository...", "Falling back to web search..."}, statuses)
}
