package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Great film", "Great film"},
		{"script removed", "ok<script>alert(1)</script>", "ok"},
		{"tags stripped", "<b>bold</b> move", "bold move"},
		{"entities unescaped", "Tom &amp; Jerry", "Tom & Jerry"},
		{"paragraphs split", "<p>one</p><p>two</p>", "one\ntwo"},
		{"only markup", "<img src=x>", ""},
		{"trimmed", "  spaced  ", "spaced"},
		{"encoded tags stripped", "&lt;b&gt;bold&lt;/b&gt; move", "bold move"},
		{"double encoded script", "ok&amp;lt;script&amp;gt;x&amp;lt;/script&amp;gt;", "ok"},
		{"comparison kept", "a < b and c > d", "a < b and c > d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.input))
		})
	}
}
