package telnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestColorize(t *testing.T) {
	assert.Equal(t, "\033[31mdeleted\033[0m", Colorize(Red, "deleted"))
}

func TestColorf(t *testing.T) {
	assert.Equal(t, "\033[32mwins: 42\033[0m", Colorf(Green, "wins: %d", 42))
}

func TestStripANSI(t *testing.T) {
	input := "\033[31mred\033[0m normal \033[1m\033[32mbold green\033[0m"
	assert.Equal(t, "red normal bold green", StripANSI(input))
	assert.Equal(t, "plain text", StripANSI("plain text"))
	assert.Equal(t, "", StripANSI(""))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "pho   ", PadRight("pho", 6))
	assert.Equal(t, Colorize(Cyan, "pho")+"   ", PadRight(Colorize(Cyan, "pho"), 6))
	assert.Equal(t, "paella", PadRight("paella", 3))
	assert.Equal(t, "crème ", PadRight("crème", 6))
}

// Property: StripANSI(Colorize(color, text)) == text for any ASCII text.
func TestPropertyStripANSIInversesColorize(t *testing.T) {
	colors := []string{Red, Green, Yellow, Cyan, Magenta, BrightWhite, BrightYellow, Bold, Dim}
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 ]{0,50}`).Draw(t, "text")
		color := rapid.SampledFrom(colors).Draw(t, "color")
		assert.Equal(t, text, StripANSI(Colorize(color, text)))
	})
}

// Property: PadRight never shortens and always reaches width.
func TestPropertyPadRightReachesWidth(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-z ]{0,20}`).Draw(t, "text")
		width := rapid.IntRange(0, 30).Draw(t, "width")
		got := PadRight(Colorize(Bold, text), width)
		assert.GreaterOrEqual(t, VisibleWidth(got), width)
		assert.GreaterOrEqual(t, VisibleWidth(got), VisibleWidth(text))
	})
}
