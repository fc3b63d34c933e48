package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	for range 1000 {
		id, err := Generate("test")
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{"req", "seed", "x"} {
		t.Run(prefix, func(t *testing.T) {
			id, err := Generate(prefix)
			require.NoError(t, err)

			require.True(t, strings.HasPrefix(id, prefix+"-"))
			suffix := strings.TrimPrefix(id, prefix+"-")
			assert.Len(t, suffix, 21)
			for _, c := range suffix {
				assert.True(t,
					(c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' || c == '-',
					"character %c should be URL-safe", c)
			}
		})
	}
}

func TestRequest(t *testing.T) {
	id := Request()
	assert.True(t, strings.HasPrefix(id, "req-"))
	assert.NotEqual(t, id, Request())
}

func TestInstance(t *testing.T) {
	parsed, err := uuid.Parse(Instance())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}
