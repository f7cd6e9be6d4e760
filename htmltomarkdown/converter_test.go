package htmltomarkdown_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tverano/docqa"
	"github.com/tverano/docqa/htmltomarkdown"
)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts headings and lists", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(
			"<h1>Guide</h1><p>Intro text.</p><ul><li>first</li><li>second</li></ul>")
		require.NoError(t, err)
		assert.Contains(t, md, "# Guide")
		assert.Contains(t, md, "- first")
	})

	t.Run("converts tables", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(
			"<table><tr><th>Name</th></tr><tr><td>Widget</td></tr></table>")
		require.NoError(t, err)
		// Cell padding varies with column width; match the pipes loosely.
		assert.Regexp(t, `\|\s*Name\s*\|`, md)
		assert.Regexp(t, `\|\s*Widget\s*\|`, md)
	})

	t.Run("empty input invalid", func(t *testing.T) {
		t.Parallel()

		_, err := htmltomarkdown.NewConverter().Convert("   ")
		assert.Equal(t, docqa.EINVALID, docqa.ErrorCode(err))
	})
}
