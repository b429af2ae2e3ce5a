// Package fusion combines depth, color and skeleton data of one sensor tick
// into per-hand images, skin masks and held-object masks.
package fusion

import (
	"fmt"
	"image"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/handfusion/internal/depth"
	"github.com/ayusman/handfusion/internal/morph"
	"github.com/ayusman/handfusion/internal/object"
	"github.com/ayusman/handfusion/internal/pixel"
	"github.com/ayusman/handfusion/internal/roi"
	"github.com/ayusman/handfusion/internal/sensor"
	"github.com/ayusman/handfusion/internal/skeleton"
	"github.com/ayusman/handfusion/internal/skin"
)

// HandResult is the outcome for one hand. Buffers is nil unless Present.
type HandResult struct {
	Side    skeleton.Side
	Present bool
	Buffers *HandBuffers

	Joint       skeleton.Point3D
	ColorRegion roi.Region
	DepthRegion roi.Region

	SkinArea      int
	SkinConfident bool

	ObjectPixels int
	ObjectFound  bool
	// ObjectRegion is relative to the hand region.
	ObjectRegion roi.Region

	// Cursor is the hand position mapped onto the screen.
	Cursor image.Point
}

// Result is the outcome of one tick. It and all Mats it references belong to
// the orchestrator and stay valid until the next call to Process.
type Result struct {
	Tick int64
	// SkeletonID is the target skeleton, or -1 when none is fully tracked.
	SkeletonID int
	// Depth is the whole depth frame as 8-bit intensity.
	Depth gocv.Mat
	// Color is the whole color frame (BGRA).
	Color gocv.Mat
	Hands [2]HandResult
	// Degraded is set when skin classification is disabled.
	Degraded bool
}

// Hand returns the result for side s.
func (r *Result) Hand(s skeleton.Side) *HandResult {
	return &r.Hands[s]
}

// Orchestrator runs the per-tick pipeline. Process must not be called
// concurrently.
type Orchestrator struct {
	session Session
	cfg     Config

	colorLocator *roi.Locator
	depthLocator *roi.Locator
	classifier   *skin.Classifier
	refiner      *morph.Refiner

	depthFrame gocv.Mat
	colorFrame gocv.Mat
	depthView  pixel.View
	colorView  pixel.View

	hands  [2]*HandBuffers
	views  [2]handViews
	result Result

	logger      *slog.Logger
	rangeWarned bool
	closeOnce   sync.Once
}

// New validates the session and configuration and allocates all buffers.
func New(session *Session, cfg Config) (*Orchestrator, error) {
	if session == nil {
		return nil, fmt.Errorf("fusion: nil session")
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	colorLocator, err := roi.NewLocator(session.Projector, roi.PlaneColor,
		session.ColorWidth, session.ColorHeight, cfg.HandWidth, cfg.HandHeight)
	if err != nil {
		return nil, err
	}
	depthLocator, err := roi.NewLocator(session.Projector, roi.PlaneDepth,
		session.DepthWidth, session.DepthHeight, cfg.HandWidth, cfg.HandHeight)
	if err != nil {
		return nil, err
	}

	refiner, err := morph.New(cfg.Morph)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		session:      *session,
		cfg:          cfg,
		colorLocator: colorLocator,
		depthLocator: depthLocator,
		classifier:   skin.NewClassifier(session.SkinTable, cfg.SkinThreshold, cfg.MinSkinArea),
		refiner:      refiner,
		depthFrame:   zeroMat(session.DepthWidth, session.DepthHeight, gocv.MatTypeCV8UC1),
		colorFrame:   zeroMat(session.ColorWidth, session.ColorHeight, gocv.MatTypeCV8UC4),
		logger:       slog.Default().With("component", "fusion"),
	}
	for _, side := range skeleton.Sides {
		o.hands[side] = newHandBuffers(cfg.HandWidth, cfg.HandHeight)
	}

	if err := o.bindViews(); err != nil {
		o.Close()
		return nil, err
	}

	o.logger.Info("orchestrator ready",
		"depth", fmt.Sprintf("%dx%d", session.DepthWidth, session.DepthHeight),
		"color", fmt.Sprintf("%dx%d", session.ColorWidth, session.ColorHeight),
		"hand_region", fmt.Sprintf("%dx%d", cfg.HandWidth, cfg.HandHeight),
		"skin_model", o.classifier.Enabled())
	if session.Degraded() {
		o.logger.Warn("skin model not loaded, running without skin classification")
	}
	return o, nil
}

// SetLogger replaces the orchestrator's logger.
func (o *Orchestrator) SetLogger(l *slog.Logger) {
	o.logger = l.With("component", "fusion")
}

// checkRange warns once when a frame declares a depth range other than the
// session table's. The session table is always used for normalization.
func (o *Orchestrator) checkRange(f *sensor.DepthFrame) {
	if o.rangeWarned || (f.MinDepth == 0 && f.MaxDepth == 0) {
		return
	}
	table := o.session.DepthTable
	if f.MinDepth == table.MinDepth() && f.MaxDepth == table.MaxDepth() {
		return
	}
	o.rangeWarned = true
	o.logger.Warn("frame depth range differs from session table, using session table",
		"frame_min", f.MinDepth, "frame_max", f.MaxDepth,
		"table_min", table.MinDepth(), "table_max", table.MaxDepth())
}

func (o *Orchestrator) bindViews() error {
	var err error
	if o.depthView, err = viewOf(&o.depthFrame); err != nil {
		return err
	}
	if o.colorView, err = viewOf(&o.colorFrame); err != nil {
		return err
	}
	for _, side := range skeleton.Sides {
		if o.views[side], err = o.hands[side].views(); err != nil {
			return err
		}
	}
	return nil
}

// Session returns the session the orchestrator was built for.
func (o *Orchestrator) Session() Session {
	return o.session
}

// Config returns the orchestrator configuration.
func (o *Orchestrator) Config() Config {
	return o.cfg
}

// Process runs one tick: skeleton stage, depth stage, then color stage. Both
// hands are processed concurrently on their own buffers. The only error is a
// tick whose frames do not match the session.
func (o *Orchestrator) Process(t *sensor.Tick) (*Result, error) {
	if err := o.session.check(t); err != nil {
		return nil, err
	}
	o.checkRange(&t.Depth)

	r := &o.result
	*r = Result{
		Tick:       t.Number,
		SkeletonID: -1,
		Depth:      o.depthFrame,
		Color:      o.colorFrame,
		Degraded:   !o.classifier.Enabled(),
	}
	for _, side := range skeleton.Sides {
		r.Hands[side] = HandResult{Side: side}
	}

	// Skeleton stage
	var target *skeleton.Skeleton
	if i := skeleton.SelectTarget(t.Skeletons); i >= 0 {
		target = &t.Skeletons[i]
		r.SkeletonID = target.ID
	}

	// Whole frames are published every tick, with or without a target.
	if err := o.session.DepthTable.Normalize(o.depthView, t.Depth.Samples); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrameMismatch, err)
	}
	src, err := pixel.Wrap(t.Color.Pix, t.Color.Width, t.Color.Height, sensor.ColorChannels, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrameMismatch, err)
	}
	if err := o.colorView.CopyFrom(src); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrameMismatch, err)
	}

	if target == nil {
		return r, nil
	}

	var g errgroup.Group
	for _, side := range skeleton.Sides {
		joint := target.Hand(side)
		depthRegion, ok := o.depthLocator.Locate(joint)
		if !ok {
			continue
		}
		colorRegion, ok := o.colorLocator.Locate(joint)
		if !ok {
			continue
		}

		hr := &r.Hands[side]
		hr.Joint = joint.Position
		hr.DepthRegion = depthRegion
		hr.ColorRegion = colorRegion
		hr.Cursor = o.cursor(o.colorLocator.Project(joint))

		g.Go(func() error {
			return o.processHand(side, hr)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return r, nil
}

// processHand runs the depth and color stages for one hand. It only touches
// the buffers of its own side.
func (o *Orchestrator) processHand(side skeleton.Side, hr *HandResult) error {
	b := o.hands[side]
	v := o.views[side]

	// Depth stage
	depthSrc, err := o.depthView.Sub(hr.DepthRegion.Rect())
	if err != nil {
		return err
	}
	if err := v.depth.CopyFrom(depthSrc); err != nil {
		return err
	}
	o.refiner.SmoothDepth(&b.Depth)
	depth.NearCrop(v.depth)

	// Color stage
	colorSrc, err := o.colorView.Sub(hr.ColorRegion.Rect())
	if err != nil {
		return err
	}
	if err := v.color.CopyFrom(colorSrc); err != nil {
		return err
	}
	o.refiner.Smooth(&b.Color)
	if err := depth.FilterFarObjects(v.color, v.depth, byte(o.cfg.NearThreshold)); err != nil {
		return err
	}

	area, err := o.classifier.Classify(v.color, v.skin)
	if err != nil {
		return err
	}
	o.refiner.RefineSkin(&b.Skin)

	if _, err := object.Isolate(v.depth, v.skin, v.object); err != nil {
		return err
	}
	o.refiner.RefineObject(&b.Object)

	if err := v.objectColor.CopyFrom(v.color); err != nil {
		return err
	}
	if err := depth.FilterFarObjects(v.objectColor, v.object, 1); err != nil {
		return err
	}

	hr.Present = true
	hr.Buffers = b
	hr.SkinArea = area
	hr.SkinConfident = o.classifier.Confident(area)
	hr.ObjectPixels = v.object.CountNonZero()
	hr.ObjectRegion, hr.ObjectFound = object.Locate(v.object, o.cfg.ObjectWidth, o.cfg.ObjectHeight, o.cfg.MinObjectArea)
	return nil
}

// cursor maps a color-plane point onto the screen.
func (o *Orchestrator) cursor(p image.Point) image.Point {
	x := p.X * o.cfg.ScreenWidth / o.session.ColorWidth
	y := p.Y * o.cfg.ScreenHeight / o.session.ColorHeight
	return image.Pt(
		min(max(x, 0), o.cfg.ScreenWidth-1),
		min(max(y, 0), o.cfg.ScreenHeight-1),
	)
}

// Close releases all Mats. The last Result must not be used afterwards.
func (o *Orchestrator) Close() error {
	var err error
	o.closeOnce.Do(func() {
		for _, b := range o.hands {
			if b != nil {
				if cerr := b.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}
		}
		for _, m := range []*gocv.Mat{&o.depthFrame, &o.colorFrame} {
			if cerr := m.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
		if cerr := o.refiner.Close(); cerr != nil && err == nil {
			err = cerr
		}
	})
	return err
}
