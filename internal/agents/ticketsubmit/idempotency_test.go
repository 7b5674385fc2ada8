package ticketsubmit

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagIsDeterministic(t *testing.T) {
	assert.Equal(t, Tag("jdoe", "laptop broken"), Tag("jdoe", "laptop broken"))
}

func TestTagFormat(t *testing.T) {
	tag := Tag("jdoe", "laptop broken")
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{12}$`), tag)
}

func TestTagVariesWithInputs(t *testing.T) {
	assert.NotEqual(t, Tag("jdoe", "a"), Tag("jdoe", "b"))
	assert.NotEqual(t, Tag("jdoe", "a"), Tag("asmith", "a"))
}

func TestTagTrimsShortDescription(t *testing.T) {
	assert.Equal(t, Tag("jdoe", "laptop broken"), Tag("jdoe", "  laptop broken  "))
}

func TestTagAbsentCaller(t *testing.T) {
	assert.Equal(t, Tag("unknown", "laptop broken"), Tag("", "laptop broken"))
}
