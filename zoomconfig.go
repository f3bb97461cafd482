package pinchzoom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Construction errors returned by NewZoomOverlay.
var (
	ErrInvalidScale   = errors.New("pinchzoom: scale bounds must satisfy 0 < MinScale <= MaxScale")
	ErrInvalidOpacity = errors.New("pinchzoom: MaxOverlayOpacity must be within [0, 1]")
	ErrNilBase        = errors.New("pinchzoom: Base element is nil")
	ErrNilHost        = errors.New("pinchzoom: overlay host is nil")
)

// overlayRemovalDelay is how long the overlay stays after the reset
// animation completes, so the final frame renders before teardown.
const overlayRemovalDelay = 100 * time.Millisecond

// ZoomConfig configures a ZoomOverlay. It is read once by NewZoomOverlay.
type ZoomConfig struct {
	// Base is the pannable, zoomable element. Required.
	Base *Node
	// Zoom is rendered inside the overlay instead of Base. Nil uses Base.
	Zoom *Node

	ResetDuration time.Duration
	ResetCurve    ease.TweenFunc

	Clip     ClipBehavior
	MinScale float64
	MaxScale float64

	// BoundaryMargin is the extra pannable margin beyond the content
	// bounds. math.Inf(1) removes the boundary.
	BoundaryMargin float64

	// UseOverlay renders the zoomed content in the overlay layer.
	UseOverlay bool
	// MaxOverlayOpacity caps the dimming behind the zoomed content.
	MaxOverlayOpacity float64
	OverlayColor      Color

	// FingersRequired is the exact pointer count a gesture must start with.
	// Zero or negative accepts any count.
	FingersRequired int

	// OnMultiTouchEngage is called when a pointer down brings the contact
	// count to two or more.
	OnMultiTouchEngage func()
	// OnMultiTouchRelease is called when a pointer up drops the contact
	// count below two.
	OnMultiTouchRelease func()

	// Logger receives diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// DefaultZoomConfig returns a configuration with the standard values and no
// Base element.
func DefaultZoomConfig() ZoomConfig {
	return ZoomConfig{
		ResetDuration:     200 * time.Millisecond,
		ResetCurve:        ease.OutQuad,
		Clip:              ClipNone,
		MinScale:          0.8,
		MaxScale:          8,
		UseOverlay:        true,
		MaxOverlayOpacity: 0.5,
		OverlayColor:      ColorBlack,
		FingersRequired:   2,
	}
}

// Validate checks the preconditions NewZoomOverlay enforces.
func (c ZoomConfig) Validate() error {
	if c.Base == nil {
		return ErrNilBase
	}
	if !(c.MinScale > 0) || !(c.MaxScale > 0) || c.MaxScale < c.MinScale {
		return fmt.Errorf("%w: min=%v max=%v", ErrInvalidScale, c.MinScale, c.MaxScale)
	}
	if math.IsNaN(c.MaxOverlayOpacity) || c.MaxOverlayOpacity < 0 || c.MaxOverlayOpacity > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidOpacity, c.MaxOverlayOpacity)
	}
	return nil
}

// --- Serialisable settings ---

// ZoomSettings is the file-friendly subset of ZoomConfig. Nil fields leave
// the corresponding ZoomConfig value untouched.
type ZoomSettings struct {
	ResetDuration     *time.Duration `yaml:"resetDuration"`
	ResetCurve        *string        `yaml:"resetCurve"`
	Clip              *ClipBehavior  `yaml:"clip"`
	MinScale          *float64       `yaml:"minScale"`
	MaxScale          *float64       `yaml:"maxScale"`
	BoundaryMargin    *float64       `yaml:"boundaryMargin"`
	UseOverlay        *bool          `yaml:"useOverlay"`
	MaxOverlayOpacity *float64       `yaml:"maxOverlayOpacity"`
	OverlayColor      *Color         `yaml:"overlayColor"`
	FingersRequired   *int           `yaml:"fingersRequired"`
}

// LoadZoomSettings decodes YAML (or JSON) zoom settings. Unknown keys and
// unknown curve names are errors.
func LoadZoomSettings(data []byte) (ZoomSettings, error) {
	var zs ZoomSettings
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&zs); err != nil && !errors.Is(err, io.EOF) {
		return ZoomSettings{}, fmt.Errorf("parse zoom settings: %w", err)
	}
	if zs.ResetCurve != nil {
		if _, err := CurveByName(*zs.ResetCurve); err != nil {
			return ZoomSettings{}, fmt.Errorf("parse zoom settings: %w", err)
		}
	}
	return zs, nil
}

// Apply copies every set field into cfg.
func (zs ZoomSettings) Apply(cfg *ZoomConfig) error {
	if zs.ResetDuration != nil {
		cfg.ResetDuration = *zs.ResetDuration
	}
	if zs.ResetCurve != nil {
		curve, err := CurveByName(*zs.ResetCurve)
		if err != nil {
			return err
		}
		cfg.ResetCurve = curve
	}
	if zs.Clip != nil {
		cfg.Clip = *zs.Clip
	}
	if zs.MinScale != nil {
		cfg.MinScale = *zs.MinScale
	}
	if zs.MaxScale != nil {
		cfg.MaxScale = *zs.MaxScale
	}
	if zs.BoundaryMargin != nil {
		cfg.BoundaryMargin = *zs.BoundaryMargin
	}
	if zs.UseOverlay != nil {
		cfg.UseOverlay = *zs.UseOverlay
	}
	if zs.MaxOverlayOpacity != nil {
		cfg.MaxOverlayOpacity = *zs.MaxOverlayOpacity
	}
	if zs.OverlayColor != nil {
		cfg.OverlayColor = *zs.OverlayColor
	}
	if zs.FingersRequired != nil {
		cfg.FingersRequired = *zs.FingersRequired
	}
	return nil
}

// --- Easing curves ---

var curves = map[string]ease.TweenFunc{
	"linear":     ease.Linear,
	"inQuad":     ease.InQuad,
	"outQuad":    ease.OutQuad,
	"inOutQuad":  ease.InOutQuad,
	"inCubic":    ease.InCubic,
	"outCubic":   ease.OutCubic,
	"inOutCubic": ease.InOutCubic,
	"inSine":     ease.InSine,
	"outSine":    ease.OutSine,
	"inOutSine":  ease.InOutSine,
	"inExpo":     ease.InExpo,
	"outExpo":    ease.OutExpo,
	"inOutExpo":  ease.InOutExpo,
	"inBack":     ease.InBack,
	"outBack":    ease.OutBack,
	"outBounce":  ease.OutBounce,
}

// CurveByName returns the easing function registered under name. Matching
// ignores case.
func CurveByName(name string) (ease.TweenFunc, error) {
	for k, fn := range curves {
		if strings.EqualFold(k, name) {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("pinchzoom: unknown curve %q (have %s)", name, strings.Join(CurveNames(), ", "))
}

// CurveNames lists the registered curve names in sorted order.
func CurveNames() []string {
	names := make([]string, 0, len(curves))
	for k := range curves {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
