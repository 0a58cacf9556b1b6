// internal/screen/analyzer.go
package screen

import (
	"context"
	"image"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
	"github.com/halcyondale/deskpilot-cli/internal/config"
	"github.com/halcyondale/deskpilot-cli/internal/desktop"
)

// Analyzer turns a live desktop into ScreenState snapshots. Every sub-step
// is allowed to fail; the analyzer absorbs the failure, logs it, and fills
// the affected fields with degraded defaults. Analyze never returns an error
// and never returns nil.
type Analyzer struct {
	capturer desktop.Capturer
	ocr      desktop.OCREngine
	windows  desktop.WindowQuerier
	cfg      config.AnalyzerConfig
	logger   *zap.Logger
}

// NewAnalyzer assembles an analyzer over the desktop provider backends.
func NewAnalyzer(provider *desktop.Provider, cfg config.AnalyzerConfig, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		capturer: provider.Capturer,
		ocr:      provider.OCR,
		windows:  provider.Windows,
		cfg:      cfg,
		logger:   logger.Named("screen"),
	}
}

// Analyze runs one full analysis cycle: capture, OCR, region detection, app
// identification, and layout mapping.
func (a *Analyzer) Analyze(ctx context.Context) *schemas.ScreenState {
	state := &schemas.ScreenState{
		App:        schemas.UnknownApp,
		Layout:     map[schemas.LayoutZone]schemas.Rect{},
		CapturedAt: time.Now(),
	}

	if title, err := a.windows.ActiveWindowTitle(ctx); err != nil {
		a.logger.Warn("Active window query failed; identity degraded", zap.Error(err))
	} else {
		state.App = identifyApp(title)
	}

	img, err := a.capturer.Capture(ctx)
	if err != nil {
		a.logger.Warn("Screen capture failed; snapshot degraded", zap.Error(err))
		return state
	}

	bounds := img.Bounds()
	state.Layout = layoutZones(bounds.Dx(), bounds.Dy())

	if text, err := a.ocr.Recognize(ctx, img); err != nil {
		a.logger.Warn("OCR failed; text degraded", zap.Error(err))
	} else {
		state.Text = normalizeText(text)
	}

	state.Regions = a.detectRegions(img)
	a.sampleRegionText(ctx, img, state.Regions)

	a.logger.Debug("Analysis cycle complete",
		zap.String("app", state.App.Name),
		zap.Int("text_chars", len(state.Text)),
		zap.Int("regions", len(state.Regions)))

	return state
}

// detectRegions runs the geometric detection pipeline: downscale, grayscale,
// edge mask, connected components, size filter, classify. Coordinates in the
// result are full-resolution.
func (a *Analyzer) detectRegions(img image.Image) []schemas.Region {
	factor := a.cfg.Downscale
	small := downscale(img, factor)
	gray := grayscale(small)
	mask := sobelMask(gray, a.cfg.EdgeThreshold)
	boxes := connectedComponents(mask, gray.Rect.Dx(), gray.Rect.Dy())

	regions := make([]schemas.Region, 0, len(boxes))
	for _, box := range boxes {
		// Scale back to full resolution before applying the size band.
		full := schemas.Rect{
			X: box.X * factor, Y: box.Y * factor,
			W: box.W * factor, H: box.H * factor,
		}
		area := full.W * full.H
		if area <= a.cfg.MinRegionArea || area >= a.cfg.MaxRegionArea {
			continue
		}
		regions = append(regions, schemas.Region{
			Center: full.Center(),
			Bounds: full,
			Area:   area,
			Kind:   classifyKind(full, a.cfg.TextFieldAspect, a.cfg.TextFieldMaxHeight),
		})
	}

	if len(regions) > a.cfg.MaxRegions && a.cfg.MaxRegions > 0 {
		// Keep the largest candidates, then restore detection order.
		sort.SliceStable(regions, func(i, j int) bool { return regions[i].Area > regions[j].Area })
		regions = regions[:a.cfg.MaxRegions]
		sort.SliceStable(regions, func(i, j int) bool {
			if regions[i].Bounds.Y != regions[j].Bounds.Y {
				return regions[i].Bounds.Y < regions[j].Bounds.Y
			}
			return regions[i].Bounds.X < regions[j].Bounds.X
		})
	}
	return regions
}

// sampleRegionText runs per-region OCR crops for the first few regions so
// the resolver can score against text that is actually near each candidate.
func (a *Analyzer) sampleRegionText(ctx context.Context, img image.Image, regions []schemas.Region) {
	limit := a.cfg.RegionOCRLimit
	if limit <= 0 {
		return
	}

	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	src, ok := img.(subImager)
	if !ok {
		return
	}

	full := img.Bounds()
	for i := range regions {
		if i >= limit {
			break
		}
		b := regions[i].Bounds
		crop := image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H).Intersect(full)
		if crop.Empty() {
			continue
		}
		text, err := a.ocr.Recognize(ctx, src.SubImage(crop))
		if err != nil {
			a.logger.Debug("Region OCR failed", zap.Int("region", i), zap.Error(err))
			continue
		}
		regions[i].NearbyText = normalizeText(text)
	}
}

// layoutZones splits the screen into three horizontal bands.
func layoutZones(w, h int) map[schemas.LayoutZone]schemas.Rect {
	third := h / 3
	return map[schemas.LayoutZone]schemas.Rect{
		schemas.ZoneTop:    {X: 0, Y: 0, W: w, H: third},
		schemas.ZoneMiddle: {X: 0, Y: third, W: w, H: third},
		schemas.ZoneBottom: {X: 0, Y: 2 * third, W: w, H: h - 2*third},
	}
}
