package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adscenter/reports/internal/service/auth"
)

func TestHashPassword_FormatAndVerify(t *testing.T) {
	hash, err := auth.HashPassword("S3cret!pass")
	require.NoError(t, err)

	parts := strings.Split(hash, ".")
	require.Len(t, parts, 2, "hash must be hex(key).hex(salt)")

	match, err := auth.ComparePassword("S3cret!pass", hash)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = auth.ComparePassword("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	first, err := auth.HashPassword("same-password")
	require.NoError(t, err)
	second, err := auth.HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestComparePassword_MalformedHash(t *testing.T) {
	_, err := auth.ComparePassword("anything", "no-separator-here")
	assert.Error(t, err)
}
