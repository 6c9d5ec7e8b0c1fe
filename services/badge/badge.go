package badgesvc

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/trezcool/edusite/core/exam"
)

const (
	width  = 1200
	height = 630
)

// Renderer draws shareable result cards as PNG images.
type Renderer struct {
	institute string

	once    sync.Once
	regular *truetype.Font
	bold    *truetype.Font
	err     error
}

func NewRenderer(institute string) *Renderer {
	return &Renderer{institute: institute}
}

func (r *Renderer) loadFonts() error {
	r.once.Do(func() {
		if r.regular, r.err = truetype.Parse(goregular.TTF); r.err != nil {
			return
		}
		r.bold, r.err = truetype.Parse(gobold.TTF)
	})
	return errors.Wrap(r.err, "parsing fonts")
}

func (r *Renderer) face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

func (r *Renderer) Render(ctx context.Context, res exam.Result) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.loadFonts(); err != nil {
		return nil, err
	}

	dc := gg.NewContext(width, height)
	dc.SetHexColor("#1e40af")
	dc.Clear()

	// card
	dc.SetHexColor("#ffffff")
	dc.DrawRoundedRectangle(40, 40, width-80, height-80, 24)
	dc.Fill()

	cx := float64(width) / 2
	dc.SetHexColor("#1e40af")
	dc.SetFontFace(r.face(r.bold, 34))
	dc.DrawStringAnchored(r.institute, cx, 110, 0.5, 0.5)

	dc.SetHexColor("#111827")
	dc.SetFontFace(r.face(r.bold, 64))
	dc.DrawStringAnchored(truncate(dc, res.StudentName, width-160), cx, 220, 0.5, 0.5)

	dc.SetHexColor("#374151")
	dc.SetFontFace(r.face(r.regular, 36))
	dc.DrawStringAnchored(truncate(dc, res.TestName, width-160), cx, 300, 0.5, 0.5)

	// score
	pct := res.Percentage()
	dc.SetHexColor(scoreColor(pct))
	dc.SetFontFace(r.face(r.bold, 96))
	dc.DrawStringAnchored(fmt.Sprintf("%.2f%%", pct), cx, 420, 0.5, 0.5)

	dc.SetHexColor("#374151")
	dc.SetFontFace(r.face(r.regular, 30))
	dc.DrawStringAnchored(fmt.Sprintf("Score %g / %g", res.Score, res.TotalMarks), cx, 510, 0.5, 0.5)

	// progress bar
	barW := float64(width - 240)
	dc.SetHexColor("#e5e7eb")
	dc.DrawRoundedRectangle(120, 545, barW, 16, 8)
	dc.Fill()
	if pct > 0 {
		dc.SetHexColor(scoreColor(pct))
		dc.DrawRoundedRectangle(120, 545, barW*pct/100, 16, 8)
		dc.Fill()
	}

	var buff bytes.Buffer
	if err := dc.EncodePNG(&buff); err != nil {
		return nil, errors.Wrap(err, "encoding png")
	}
	return buff.Bytes(), nil
}

func scoreColor(pct float64) string {
	switch {
	case pct >= 75:
		return "#15803d"
	case pct >= 40:
		return "#b45309"
	default:
		return "#b91c1c"
	}
}

// truncate shortens s with an ellipsis until it fits in maxW with the current font.
func truncate(dc *gg.Context, s string, maxW float64) string {
	if w, _ := dc.MeasureString(s); w <= maxW {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "…"
		if w, _ := dc.MeasureString(candidate); w <= maxW {
			return candidate
		}
	}
	return ""
}
