// Package preview renders photos as ANSI half-block art for the terminal.
// Each text row carries two pixel rows: the upper half block glyph takes the
// top pixel as foreground and the bottom pixel as background.
package preview

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nfnt/resize"
)

// Renderer decodes, downscales and colorizes photos. Rendered previews are
// cached so card re-renders during a drag do not re-decode the file.
type Renderer struct {
	cache *lru.Cache[string, string]
}

// NewRenderer builds a renderer with an LRU of size entries.
func NewRenderer(size int) (*Renderer, error) {
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Renderer{cache: c}, nil
}

// Render returns the photo at localURI scaled to fit cols x rows terminal
// cells (rows*2 pixel rows), preserving aspect ratio.
func (r *Renderer) Render(localURI string, cols, rows int) (string, error) {
	key := fmt.Sprintf("%s|%dx%d", localURI, cols, rows)
	if s, ok := r.cache.Get(key); ok {
		return s, nil
	}

	path := strings.TrimPrefix(localURI, "file://")
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode photo: %w", err)
	}

	thumb := resize.Thumbnail(uint(cols), uint(rows*2), img, resize.Bilinear)
	s := halfBlocks(thumb)
	r.cache.Add(key, s)
	return s, nil
}

func halfBlocks(img image.Image) string {
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := hexColor(img.At(x, y))
			st := lipgloss.NewStyle().Foreground(lipgloss.Color(top))
			if y+1 < b.Max.Y {
				st = st.Background(lipgloss.Color(hexColor(img.At(x, y+1))))
			}
			sb.WriteString(st.Render("▀"))
		}
		if y+2 < b.Max.Y {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hexColor(c interface{ RGBA() (r, g, b, a uint32) }) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// Placeholder is shown while an asset's URI is still resolving.
func Placeholder(cols, rows int) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	line := strings.Repeat("░", cols)
	lines := make([]string, rows)
	for i := range lines {
		lines[i] = line
	}
	if rows > 0 {
		mid := rows / 2
		label := "loading"
		if cols > len(label)+2 {
			pad := (cols - len(label)) / 2
			lines[mid] = strings.Repeat("░", pad) + label + strings.Repeat("░", cols-pad-len(label))
		}
	}
	return style.Render(strings.Join(lines, "\n"))
}
