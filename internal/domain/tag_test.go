package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTags(t *testing.T) {
	got, err := ParseTags([]string{" PS ", "bc1", "ps", ""})
	require.NoError(t, err)
	assert.Equal(t, []Tag{TagPS, TagBC1}, got)

	got, err = ParseTags(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseTags([]string{"nsfw", "bc3"})
	assert.ErrorContains(t, err, "bc3")
}

func TestFlagsCoverAllTags(t *testing.T) {
	require.Len(t, Flags, len(AllTags))
	for i, f := range Flags {
		assert.Equal(t, AllTags[i], f.Tag)
		assert.NotEmpty(t, f.Label)
	}
}

func TestBuckets_Select(t *testing.T) {
	b := Buckets{
		TagPS:  {"PS-001.mp4", "PS-002.mp4"},
		TagBC1: {"BC-Office-a1.mp4"},
	}

	assert.Equal(t, []string{"BC-Office-a1.mp4", "PS-001.mp4", "PS-002.mp4"},
		b.Select([]Tag{TagBC1, TagPS, TagBC1}))
	assert.Empty(t, b.Select([]Tag{TagOther}))
	assert.Empty(t, b.Select(nil))
	assert.Equal(t, 3, b.Len())
}
