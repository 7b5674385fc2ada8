package ticketsubmit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactSecretAssignments(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"password colon", "my password: hunter2 please"},
		{"password equals", "set password=hunter2 now"},
		{"api key", "the api key: sk-12345abc is broken"},
		{"api-key hyphenated", "api-key=sk-12345abc rejected"},
		{"token", "token: ghp_abcdef123 expired"},
		{"case insensitive", "PASSWORD: Hunter2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Redact(tt.input)
			assert.NotContains(t, out, "hunter2")
			assert.NotContains(t, out, "Hunter2")
			assert.NotContains(t, out, "sk-12345abc")
			assert.NotContains(t, out, "ghp_abcdef123")
			assert.Contains(t, out, "*")
		})
	}
}

func TestRedactBearerToken(t *testing.T) {
	out := Redact("header was Bearer eyJhbGciOiJIUzI1NiJ9.payload.sig and it leaked")

	assert.NotContains(t, out, "eyJhbGciOiJIUzI1NiJ9")
	assert.NotContains(t, strings.ToLower(out), "bearer")
	assert.Contains(t, out, "and it leaked")
}

func TestRedactSSHKey(t *testing.T) {
	out := Redact("found ssh-rsa AAAAB3NzaC1yc2EAAAADAQABAAABgQC in the log")

	assert.NotContains(t, out, "AAAAB3NzaC1yc2EAAAADAQABAAABgQC")
	assert.Contains(t, out, "in the log")
}

func TestRedactPreservesLengthAndWhitespace(t *testing.T) {
	input := "password: hunter2"
	out := Redact(input)

	assert.Len(t, out, len(input))
	assert.Equal(t, strings.Index(input, " "), strings.Index(out, " "))
}

func TestRedactIsIdempotent(t *testing.T) {
	inputs := []string{
		"password: hunter2 and token=abc123",
		"Bearer eyJtoken and ssh-rsa AAAAB3Nza",
		"nothing secret here",
		"",
	}

	for _, input := range inputs {
		once := Redact(input)
		assert.Equal(t, once, Redact(once), "input %q", input)
	}
}

func TestRedactLeavesPlainTextAlone(t *testing.T) {
	input := "my laptop will not boot since this morning"
	assert.Equal(t, input, Redact(input))
}

func TestRedactEmptyInput(t *testing.T) {
	assert.Equal(t, "", Redact(""))
}
