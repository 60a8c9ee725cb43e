package bulk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadKeywords(t *testing.T) {
	in := "keyword,volume\nemail onboarding,1200\n# seasonal\n\n  local  SEO  tips ,300\nEmail Onboarding,99\n\"pricing, explained\",10\n"
	keywords, err := ReadKeywords(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"email onboarding", "local SEO tips", "pricing, explained"}, keywords)
}

func TestReadKeywords_Empty(t *testing.T) {
	_, err := ReadKeywords(strings.NewReader("keyword\n\n"))
	assert.ErrorContains(t, err, "no keywords")
}

func TestReadKeywords_Malformed(t *testing.T) {
	_, err := ReadKeywords(strings.NewReader("\"unterminated\n"))
	assert.Error(t, err)
}

func TestNormalizeKeywords(t *testing.T) {
	got := NormalizeKeywords([]string{"  email   marketing ", "", "Email Marketing", "seo", "   "})
	assert.Equal(t, []string{"email marketing", "seo"}, got)
	assert.Empty(t, NormalizeKeywords(nil))
}
