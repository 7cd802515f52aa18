package reply

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindMarker(t *testing.T) {
	t.Run("no marker", func(t *testing.T) {
		_, _, ok := findMarker("plain text without any structure")
		assert.False(t, ok)
	})

	t.Run("single marker", func(t *testing.T) {
		m, idx, ok := findMarker("abc<reasoning>def")
		assert.True(t, ok)
		assert.Equal(t, 3, idx)
		assert.Equal(t, SectionReasoning, m.Section)
		assert.Equal(t, MarkerOpen, m.Kind)
	})

	t.Run("earliest of several markers wins", func(t *testing.T) {
		m, idx, ok := findMarker("x<conclusion>y<reasoning>z")
		assert.True(t, ok)
		assert.Equal(t, 1, idx)
		assert.Equal(t, SectionConclusion, m.Section)
	})

	t.Run("marker at index zero", func(t *testing.T) {
		m, idx, ok := findMarker("</tools>rest")
		assert.True(t, ok)
		assert.Equal(t, 0, idx)
		assert.Equal(t, SectionTools, m.Section)
		assert.Equal(t, MarkerClose, m.Kind)
	})

	t.Run("close marker before open marker", func(t *testing.T) {
		m, idx, ok := findMarker("a</reasoning>b<tools>c")
		assert.True(t, ok)
		assert.Equal(t, 1, idx)
		assert.Equal(t, MarkerClose, m.Kind)
		assert.Equal(t, SectionReasoning, m.Section)
	})

	t.Run("lookalike tags are not markers", func(t *testing.T) {
		_, _, ok := findMarker("<reason> <toolset> <conclusions in here")
		assert.False(t, ok)
	})
}

func TestHasPendingMarkerStart(t *testing.T) {
	cases := []struct {
		name string
		buf  string
		want bool
	}{
		{"empty buffer", "", false},
		{"plain text", "no angle brackets here", false},
		{"lone open angle", "text ending in <", true},
		{"partial open marker", "text <reaso", true},
		{"partial close marker", "text </conclu", true},
		{"partial tools marker", "<to", true},
		{"slash only", "text </", true},
		{"full marker is not partial", "text <reasoning>", false},
		{"tail is not a marker prefix", "text <xyz", false},
		{"closed lookalike tag", "text <b>bold", false},
		{"angle bracket earlier in buffer", "a < b and more text", false},
		{"second angle starts the fragment", "first <x> then <conc", true},
		{"marker prefix then divergence", "text <reasonable", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, hasPendingMarkerStart(tc.buf), "buffer %q", tc.buf)
		})
	}
}

func TestStripMarkers(t *testing.T) {
	t.Run("removes every literal", func(t *testing.T) {
		in := "<reasoning>a</reasoning><tools>b</tools><conclusion>c</conclusion>"
		assert.Equal(t, "abc", StripMarkers(in))
	})

	t.Run("leaves partial fragments alone", func(t *testing.T) {
		assert.Equal(t, "tail <conclu", StripMarkers("tail <conclu"))
	})

	t.Run("leaves unknown tags alone", func(t *testing.T) {
		assert.Equal(t, "<think>x</think>", StripMarkers("<think>x</think>"))
	})
}

func TestMarkerHelpers(t *testing.T) {
	for _, s := range Sections {
		assert.Equal(t, "<"+string(s)+">", OpenMarker(s))
		assert.Equal(t, "</"+string(s)+">", CloseMarker(s))
	}
}
