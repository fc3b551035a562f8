package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"photo-triage/internal/gesture"
	"photo-triage/internal/library"
	"photo-triage/internal/preview"
)

// card is the on-screen representation of the asset under the cursor. Its
// gesture interpreter samples the terminal width once at creation and keeps
// it for the card's whole life.
type card struct {
	asset  library.Asset
	interp *gesture.Interpreter
	uri    string // display URI; empty while the resolver is working
}

func newCard(a library.Asset, termW int) *card {
	if termW <= 0 {
		termW = 80
	}
	return &card{
		asset:  a,
		interp: gesture.New(gesture.Config{ReferenceWidth: float64(termW)}),
	}
}

// render draws the card into a termW-wide area of the given height,
// applying the gesture offsets and a per-row shear that stands in for the
// rotation a touch UI would draw.
func (c *card) render(m *model, termW, areaH int) string {
	cardW := termW / 2
	if cardW < 24 {
		cardW = termW - 4
	}
	if cardW > 64 {
		cardW = 64
	}
	cardH := areaH - 2
	if cardH < 6 {
		cardH = 6
	}

	innerW, innerH := cardW-2, cardH-2
	var body string
	if c.uri == "" {
		body = preview.Placeholder(innerW, innerH)
	} else if s, err := m.cfg.Preview.Render(c.uri, innerW, innerH); err == nil {
		body = s
	} else {
		// Unrenderable fallback URI: show what we know about the photo.
		body = lipgloss.NewStyle().
			Width(innerW).Height(innerH).
			Align(lipgloss.Center, lipgloss.Center).
			Render(c.asset.Filename + "\n" + c.asset.CreationTime.Format("2006-01-02 15:04"))
	}

	boxed := cardStyle.Width(innerW).Height(innerH).Render(body)

	ox, oy := c.interp.Offset()
	rot := c.interp.Rotation()
	lines := strings.Split(boxed, "\n")
	basePad := (termW - cardW) / 2

	var sb strings.Builder
	for i := 0; i < int(oy); i++ {
		sb.WriteByte('\n')
	}
	mid := len(lines) / 2
	for i, line := range lines {
		shear := int(math.Round(rot / 15 * float64(i-mid) * 0.5))
		pad := basePad + int(ox) + shear
		if pad < 0 {
			pad = 0
		}
		if pad >= termW {
			pad = termW - 1
		}
		sb.WriteString(strings.Repeat(" ", pad))
		sb.WriteString(truncate.String(line, uint(termW-pad)))
		if i < len(lines)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
