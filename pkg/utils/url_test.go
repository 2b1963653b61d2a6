package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashURLIsStable(t *testing.T) {
	a := HashURL("https://example.com/search?q=lamp")
	b := HashURL("https://example.com/search?q=lamp")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	assert.NotEqual(t, a, HashURL("https://example.com/search?q=chair"))
}

func TestToAbsoluteURL(t *testing.T) {
	base, err := url.Parse("https://example.com/search?q=lamp")
	require.NoError(t, err)

	abs, err := ToAbsoluteURL(base, "/images/origin")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/images/origin", abs)

	abs, err = ToAbsoluteURL(base, "https://other.example.org/page")
	require.NoError(t, err)
	assert.Equal(t, "https://other.example.org/page", abs)
}
