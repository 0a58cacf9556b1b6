// internal/screen/analyzer_test.go
package screen

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
	"github.com/halcyondale/deskpilot-cli/internal/config"
	"github.com/halcyondale/deskpilot-cli/internal/desktop"
)

type fakeCapturer struct {
	img image.Image
	err error
}

func (f *fakeCapturer) Capture(context.Context) (image.Image, error) { return f.img, f.err }

type fakeOCR struct {
	texts []string
	err   error
	calls int
}

func (f *fakeOCR) Recognize(context.Context, image.Image) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	idx := f.calls
	f.calls++
	if idx < len(f.texts) {
		return f.texts[idx], nil
	}
	return "", nil
}

type fakeWindows struct {
	title string
	err   error
}

func (f *fakeWindows) ActiveWindowTitle(context.Context) (string, error) { return f.title, f.err }

func testAnalyzerConfig() config.AnalyzerConfig {
	return config.AnalyzerConfig{
		Downscale:          1,
		EdgeThreshold:      128,
		MinRegionArea:      100,
		MaxRegionArea:      10000,
		TextFieldAspect:    4.0,
		TextFieldMaxHeight: 40,
		MaxRegions:         64,
	}
}

func newTestAnalyzer(cap desktop.Capturer, ocr desktop.OCREngine, win desktop.WindowQuerier, cfg config.AnalyzerConfig) *Analyzer {
	return NewAnalyzer(&desktop.Provider{Capturer: cap, OCR: ocr, Windows: win}, cfg, zap.NewNop())
}

// syntheticScreen draws filled black boxes on a white canvas.
func syntheticScreen(w, h int, boxes ...image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	for _, b := range boxes {
		draw.Draw(img, b, image.NewUniform(color.Black), image.Point{}, draw.Src)
	}
	return img
}

func TestIdentifyApp(t *testing.T) {
	cases := []struct {
		title string
		name  string
	}{
		{"Spotify Premium", "Spotify"},
		{"rust borrow checker - Google Chrome", "Google Chrome"},
		{"main.go - myproject - Visual Studio Code", "Visual Studio Code"},
		{"Daft Punk - YouTube", "YouTube"},
		{"report.pdf - Document Viewer", "Document Viewer"},
		{"bare title", "bare title"},
	}
	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			got := identifyApp(tc.title)
			assert.Equal(t, tc.name, got.Name)
			assert.Equal(t, tc.title, got.Title)
		})
	}

	t.Run("empty title is unknown", func(t *testing.T) {
		assert.Equal(t, schemas.UnknownApp, identifyApp("   "))
	})
}

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "hello\n\n  world\t!", "hello world"},
		{"drops stray symbol tokens", "click | the ~ button", "click the button"},
		{"keeps single letters and digits", "a 1 item", "a 1 item"},
		{"drops unprintable runes", "ok\x00\x07 done", "ok done"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeText(tc.in))
		})
	}
}

func TestClassifyKind(t *testing.T) {
	assert.Equal(t, schemas.RegionTextField, classifyKind(schemas.Rect{W: 200, H: 30}, 4.0, 40))
	assert.Equal(t, schemas.RegionButton, classifyKind(schemas.Rect{W: 60, H: 30}, 4.0, 40))
	// Wide but tall boxes stay buttons.
	assert.Equal(t, schemas.RegionButton, classifyKind(schemas.Rect{W: 400, H: 80}, 4.0, 40))
	assert.Equal(t, schemas.RegionUnknown, classifyKind(schemas.Rect{W: 10, H: 0}, 4.0, 40))
}

func TestConnectedComponents(t *testing.T) {
	// Two separate 3x3 blobs in a 10x4 grid.
	w, h := 10, 4
	mask := make([]bool, w*h)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			mask[y*w+x] = true
			mask[y*w+x+6] = true
		}
	}

	boxes := connectedComponents(mask, w, h)
	require.Len(t, boxes, 2)
	assert.Equal(t, schemas.Rect{X: 0, Y: 0, W: 3, H: 3}, boxes[0])
	assert.Equal(t, schemas.Rect{X: 6, Y: 0, W: 3, H: 3}, boxes[1])

	t.Run("diagonal pixels do not merge", func(t *testing.T) {
		m := make([]bool, 4)
		m[0], m[3] = true, true // (0,0) and (1,1) in a 2x2 grid
		assert.Len(t, connectedComponents(m, 2, 2), 2)
	})
}

func TestAnalyzeDegradesInsteadOfFailing(t *testing.T) {
	t.Run("capture failure yields empty snapshot", func(t *testing.T) {
		a := newTestAnalyzer(
			&fakeCapturer{err: errors.New("no display")},
			&fakeOCR{},
			&fakeWindows{title: "Spotify"},
			testAnalyzerConfig(),
		)

		state := a.Analyze(context.Background())
		require.NotNil(t, state)
		assert.True(t, state.Degraded())
		assert.Equal(t, "Spotify", state.App.Name)
		assert.False(t, state.CapturedAt.IsZero())
	})

	t.Run("window failure degrades identity only", func(t *testing.T) {
		img := syntheticScreen(300, 300, image.Rect(50, 50, 110, 80))
		a := newTestAnalyzer(
			&fakeCapturer{img: img},
			&fakeOCR{texts: []string{"some onscreen text"}},
			&fakeWindows{err: errors.New("no window manager")},
			testAnalyzerConfig(),
		)

		state := a.Analyze(context.Background())
		assert.Equal(t, schemas.UnknownApp, state.App)
		assert.Equal(t, "some onscreen text", state.Text)
	})

	t.Run("ocr failure degrades text only", func(t *testing.T) {
		img := syntheticScreen(300, 300, image.Rect(50, 50, 110, 80))
		a := newTestAnalyzer(
			&fakeCapturer{img: img},
			&fakeOCR{err: errors.New("tesseract missing")},
			&fakeWindows{title: "Firefox"},
			testAnalyzerConfig(),
		)

		state := a.Analyze(context.Background())
		assert.Empty(t, state.Text)
		assert.Equal(t, "Firefox", state.App.Name)
		assert.NotEmpty(t, state.Regions, "detection still runs without OCR")
	})
}

func TestAnalyzeDetectsRegions(t *testing.T) {
	// One button-shaped box and one text-field-shaped box.
	img := syntheticScreen(400, 400,
		image.Rect(50, 50, 110, 80),   // 60x30, aspect 2
		image.Rect(50, 200, 250, 220), // 200x20, aspect 10
	)
	a := newTestAnalyzer(
		&fakeCapturer{img: img},
		&fakeOCR{texts: []string{"page text"}},
		&fakeWindows{title: "Firefox"},
		testAnalyzerConfig(),
	)

	state := a.Analyze(context.Background())
	require.Len(t, state.Regions, 2)

	assert.Equal(t, schemas.RegionButton, state.Regions[0].Kind)
	assert.Equal(t, schemas.RegionTextField, state.Regions[1].Kind)

	// Centers land inside the drawn boxes, in full-resolution coordinates.
	assert.True(t, schemas.Rect{X: 48, Y: 48, W: 64, H: 34}.Contains(state.Regions[0].Center))
	assert.True(t, schemas.Rect{X: 48, Y: 198, W: 204, H: 24}.Contains(state.Regions[1].Center))

	// Layout covers the full height in three bands.
	top := state.Layout[schemas.ZoneTop]
	bottom := state.Layout[schemas.ZoneBottom]
	assert.Equal(t, 0, top.Y)
	assert.Equal(t, 400, bottom.Y+bottom.H)
}

func TestAnalyzeFiltersBySizeBand(t *testing.T) {
	img := syntheticScreen(600, 600,
		image.Rect(10, 10, 14, 14),    // tiny, below the band
		image.Rect(100, 100, 500, 500), // huge, above the band
	)
	a := newTestAnalyzer(
		&fakeCapturer{img: img},
		&fakeOCR{},
		&fakeWindows{title: "x"},
		testAnalyzerConfig(),
	)

	state := a.Analyze(context.Background())
	assert.Empty(t, state.Regions)
}

func TestSampleRegionText(t *testing.T) {
	cfg := testAnalyzerConfig()
	cfg.RegionOCRLimit = 1

	img := syntheticScreen(400, 400,
		image.Rect(50, 50, 110, 80),
		image.Rect(50, 200, 250, 220),
	)
	// First OCR call is the full-screen pass, then one region crop.
	ocr := &fakeOCR{texts: []string{"full screen text", "Submit"}}
	a := newTestAnalyzer(&fakeCapturer{img: img}, ocr, &fakeWindows{title: "x"}, cfg)

	state := a.Analyze(context.Background())
	require.Len(t, state.Regions, 2)
	assert.Equal(t, "Submit", state.Regions[0].NearbyText)
	assert.Empty(t, state.Regions[1].NearbyText, "beyond the sampling limit")
	assert.Equal(t, 2, ocr.calls)
}
