package layout

import (
	"errors"
	"unicode/utf8"
)

// monoMeasurer treats every rune as half of the font size wide.
type monoMeasurer struct{}

func (monoMeasurer) StringWidth(f Font, s string) float64 {
	return float64(utf8.RuneCountInString(s)) * f.Size * 0.5
}

type fakeBody struct {
	pages  int
	w, h   float64
	failAt int
}

func newFakeBody(pages int) *fakeBody {
	return &fakeBody{pages: pages, w: 612, h: 792, failAt: -1}
}

func (b *fakeBody) PageCount() int {
	return b.pages
}

func (b *fakeBody) PageSize(i int) (float64, float64, error) {
	if i == b.failAt {
		return 0, 0, errors.New("broken page dictionary")
	}
	return b.w, b.h, nil
}
