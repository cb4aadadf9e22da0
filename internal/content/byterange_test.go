package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	const size = 1000

	t.Run("explicit range", func(t *testing.T) {
		rng, err := ParseRange("bytes=0-99", size)
		require.NoError(t, err)
		assert.Equal(t, int64(0), rng.Start)
		assert.Equal(t, int64(99), rng.End)
		assert.Equal(t, int64(100), rng.Length())
	})

	t.Run("open ended runs to last byte", func(t *testing.T) {
		rng, err := ParseRange("bytes=900-", size)
		require.NoError(t, err)
		assert.Equal(t, int64(900), rng.Start)
		assert.Equal(t, int64(999), rng.End)
		assert.Equal(t, int64(100), rng.Length())
	})

	t.Run("end past file is clamped", func(t *testing.T) {
		rng, err := ParseRange("bytes=500-5000", size)
		require.NoError(t, err)
		assert.Equal(t, int64(500), rng.Start)
		assert.Equal(t, int64(999), rng.End)
	})

	t.Run("full file as range", func(t *testing.T) {
		rng, err := ParseRange("bytes=0-", size)
		require.NoError(t, err)
		assert.Equal(t, int64(size), rng.Length())
	})

	invalid := []struct {
		name   string
		header string
	}{
		{"start at size", "bytes=1000-"},
		{"start past size", "bytes=2000-2100"},
		{"start after end", "bytes=200-100"},
		{"suffix form", "bytes=-500"},
		{"multi range", "bytes=0-99,200-299"},
		{"wrong unit", "items=0-99"},
		{"missing prefix", "0-99"},
		{"non numeric start", "bytes=abc-99"},
		{"non numeric end", "bytes=0-xyz"},
		{"negative start", "bytes=--5"},
		{"empty", ""},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRange(tc.header, size)
			assert.ErrorIs(t, err, ErrRangeNotSatisfiable)
		})
	}
}

func TestMimeTypeFor(t *testing.T) {
	assert.Equal(t, "application/epub+zip", MimeTypeFor("books/origin.epub"))
	assert.Equal(t, "application/pdf", MimeTypeFor("books/origin.PDF"))
	assert.Equal(t, "audio/mpeg", MimeTypeFor("audio/mindos.mp3"))
	assert.Equal(t, "audio/mp4", MimeTypeFor("audio/mindos.m4a"))
	assert.Equal(t, "application/octet-stream", MimeTypeFor("files/blob.xyz"))
	assert.Equal(t, "application/octet-stream", MimeTypeFor("noextension"))
}
