package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowOptions(t *testing.T) {
	w := &engineWindow{}
	for _, opt := range []WindowBuilderOption{
		WithTitle("viewer"),
		WithSize(1024, 768),
		WithSizeLimits(320, 200, 1920, 0),
	} {
		opt(w)
	}

	assert.Equal(t, "viewer", w.title)
	assert.Equal(t, 1024, w.width)
	assert.Equal(t, 768, w.height)

	minW, minH, maxW, maxH := w.sizeLimits()
	assert.Equal(t, []int{320, 200, 1920, dontCare}, []int{minW, minH, maxW, maxH})
}

func TestWindow_ClampSize(t *testing.T) {
	tests := []struct {
		name                  string
		width, height         int
		limits                [4]int
		wantWidth, wantHeight int
	}{
		{"inside limits", 800, 600, [4]int{320, 200, 1920, 1080}, 800, 600},
		{"below minimum", 100, 50, [4]int{320, 200, 1920, 1080}, 320, 200},
		{"above maximum", 4000, 3000, [4]int{320, 200, 1920, 1080}, 1920, 1080},
		{"open limits", 4000, 10, [4]int{0, 0, 0, 0}, 4000, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &engineWindow{}
			WithSize(tt.width, tt.height)(w)
			WithSizeLimits(tt.limits[0], tt.limits[1], tt.limits[2], tt.limits[3])(w)
			w.clampSize()
			assert.Equal(t, tt.wantWidth, w.width)
			assert.Equal(t, tt.wantHeight, w.height)
		})
	}
}
