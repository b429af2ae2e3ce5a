package sensor

import (
	"image"
	"math"
	"sync"
	"time"

	"github.com/ayusman/handfusion/internal/depth"
	"github.com/ayusman/handfusion/internal/roi"
	"github.com/ayusman/handfusion/internal/skeleton"
)

// Scene colors in BGRA order.
var (
	SkinColor       = [ColorChannels]byte{90, 130, 200, 255}
	ObjectColor     = [ColorChannels]byte{200, 60, 30, 255}
	TorsoColor      = [ColorChannels]byte{110, 100, 90, 255}
	BackgroundColor = [ColorChannels]byte{70, 70, 70, 255}
)

// Scene geometry in metres.
const (
	handRadius     = 0.06
	objectHalfSide = 0.035
	handZ          = 1.1
	objectZ        = 1.05
	torsoZ         = 1.8
	wallZ          = 3.5
	bystanderZ     = 2.6
	swayRadius     = 0.05
	playerIndex    = 1
)

// SceneConfig controls the synthetic scene.
type SceneConfig struct {
	DepthWidth  int
	DepthHeight int
	ColorWidth  int
	ColorHeight int
	FPS         int
	MinDepth    int
	MaxDepth    int
	// HoldObject places a non-skin object in the right hand.
	HoldObject bool
	// DropEvery, when > 0, loses the target skeleton on every n-th tick.
	DropEvery int
}

// DefaultSceneConfig returns a 640x480 scene at 30 fps holding an object.
func DefaultSceneConfig() SceneConfig {
	return SceneConfig{
		DepthWidth:  DefaultWidth,
		DepthHeight: DefaultHeight,
		ColorWidth:  DefaultWidth,
		ColorHeight: DefaultHeight,
		FPS:         DefaultFPS,
		MinDepth:    800,
		MaxDepth:    3000,
		HoldObject:  true,
	}
}

// Synthetic generates a person standing in front of a wall with both hands
// raised and swaying. It stands in for a live sensor in demos and tests.
type Synthetic struct {
	cfg       SceneConfig
	colorIn   Intrinsics
	depthIn   Intrinsics
	projector *Pinhole

	mu      sync.Mutex
	running bool
	number  int64
}

// NewSynthetic creates a synthetic source. Zero fields in cfg take their defaults.
func NewSynthetic(cfg SceneConfig) *Synthetic {
	def := DefaultSceneConfig()
	if cfg.DepthWidth <= 0 || cfg.DepthHeight <= 0 {
		cfg.DepthWidth, cfg.DepthHeight = def.DepthWidth, def.DepthHeight
	}
	if cfg.ColorWidth <= 0 || cfg.ColorHeight <= 0 {
		cfg.ColorWidth, cfg.ColorHeight = def.ColorWidth, def.ColorHeight
	}
	if cfg.FPS <= 0 {
		cfg.FPS = def.FPS
	}
	if cfg.MaxDepth <= 0 {
		cfg.MinDepth, cfg.MaxDepth = def.MinDepth, def.MaxDepth
	}

	colorIn := KinectColor.Scaled(cfg.ColorWidth)
	depthIn := KinectDepth.Scaled(cfg.DepthWidth)
	return &Synthetic{
		cfg:       cfg,
		colorIn:   colorIn,
		depthIn:   depthIn,
		projector: NewPinhole(colorIn, depthIn),
	}
}

// Projector returns the projector matching the generated frames.
func (s *Synthetic) Projector() *Pinhole {
	return s.projector
}

func (s *Synthetic) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	return nil
}

func (s *Synthetic) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}

func (s *Synthetic) FPS() int {
	return s.cfg.FPS
}

func (s *Synthetic) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// ReadTick renders the next tick of the scene.
func (s *Synthetic) ReadTick() (*Tick, error) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil, ErrSourceNotOpen
	}
	s.number++
	n := s.number
	s.mu.Unlock()

	return s.Render(n), nil
}

// Render draws tick n of the scene. It does not depend on the source being open.
func (s *Synthetic) Render(n int64) *Tick {
	period := float64(4 * s.cfg.FPS)
	angle := 2 * math.Pi * float64(n) / period

	left := skeleton.Point3D{X: -0.2 + swayRadius*math.Cos(angle), Y: 0.05 + swayRadius*math.Sin(angle), Z: handZ}
	right := skeleton.Point3D{X: 0.2 - swayRadius*math.Cos(angle), Y: 0.05 + swayRadius*math.Sin(angle), Z: handZ}
	object := skeleton.Point3D{X: right.X + 0.03, Y: right.Y, Z: objectZ}

	tick := &Tick{
		Number:    n,
		Timestamp: time.Now(),
		Depth: DepthFrame{
			Width:    s.cfg.DepthWidth,
			Height:   s.cfg.DepthHeight,
			Samples:  make([]uint16, s.cfg.DepthWidth*s.cfg.DepthHeight),
			MinDepth: s.cfg.MinDepth,
			MaxDepth: s.cfg.MaxDepth,
		},
		Color: ColorFrame{
			Width:  s.cfg.ColorWidth,
			Height: s.cfg.ColorHeight,
			Pix:    make([]byte, s.cfg.ColorWidth*s.cfg.ColorHeight*ColorChannels),
		},
	}

	s.drawDepth(&tick.Depth, left, right, object)
	s.drawColor(&tick.Color, left, right, object)

	target := s.person(left, right)
	if s.cfg.DropEvery > 0 && n%int64(s.cfg.DropEvery) == 0 {
		target.State = skeleton.StatePositionOnly
	}
	tick.Skeletons = []skeleton.Skeleton{bystander(), target}

	return tick
}

func (s *Synthetic) person(left, right skeleton.Point3D) skeleton.Skeleton {
	torso := skeleton.Point3D{Z: torsoZ}
	sk := skeleton.Skeleton{ID: 1, State: skeleton.StateTracked, Position: torso}
	for i := range sk.Joints {
		sk.Joints[i] = skeleton.Joint{Position: torso, State: skeleton.Tracked}
	}
	sk.Joints[skeleton.HandLeft].Position = left
	sk.Joints[skeleton.HandRight].Position = right
	return sk
}

// bystander is a tracked skeleton behind the person, outside the depth range.
func bystander() skeleton.Skeleton {
	pos := skeleton.Point3D{X: 0.6, Z: bystanderZ}
	sk := skeleton.Skeleton{ID: 2, State: skeleton.StateTracked, Position: pos}
	for i := range sk.Joints {
		sk.Joints[i] = skeleton.Joint{Position: pos, State: skeleton.Tracked}
	}
	return sk
}

func (s *Synthetic) drawDepth(f *DepthFrame, left, right, object skeleton.Point3D) {
	wall := sample(wallZ, 0)
	for i := range f.Samples {
		f.Samples[i] = wall
	}

	set := func(v uint16) func(x, y int) {
		return func(x, y int) { f.Samples[y*f.Width+x] = v }
	}
	bounds := image.Rect(0, 0, f.Width, f.Height)

	fillRect(bounds, s.torsoRect(roi.PlaneDepth), set(sample(torsoZ, playerIndex)))
	for _, hand := range []skeleton.Point3D{left, right} {
		fillDisk(bounds, s.projector.Project(hand, roi.PlaneDepth), pixels(s.depthIn, handRadius, hand.Z), set(sample(hand.Z, playerIndex)))
	}
	if s.cfg.HoldObject {
		fillRect(bounds, s.square(object, roi.PlaneDepth, s.depthIn), set(sample(objectZ, playerIndex)))
	}
}

func (s *Synthetic) drawColor(f *ColorFrame, left, right, object skeleton.Point3D) {
	set := func(c [ColorChannels]byte) func(x, y int) {
		return func(x, y int) {
			i := (y*f.Width + x) * ColorChannels
			copy(f.Pix[i:i+ColorChannels], c[:])
		}
	}
	bounds := image.Rect(0, 0, f.Width, f.Height)

	fillRect(bounds, bounds, set(BackgroundColor))
	fillRect(bounds, s.torsoRect(roi.PlaneColor), set(TorsoColor))
	for _, hand := range []skeleton.Point3D{left, right} {
		fillDisk(bounds, s.projector.Project(hand, roi.PlaneColor), pixels(s.colorIn, handRadius, hand.Z), set(SkinColor))
	}
	if s.cfg.HoldObject {
		fillRect(bounds, s.square(object, roi.PlaneColor, s.colorIn), set(ObjectColor))
	}
}

func (s *Synthetic) torsoRect(plane roi.Plane) image.Rectangle {
	topLeft := s.projector.Project(skeleton.Point3D{X: -0.18, Y: 0.3, Z: torsoZ}, plane)
	bottomRight := s.projector.Project(skeleton.Point3D{X: 0.18, Y: -0.6, Z: torsoZ}, plane)
	return image.Rectangle{Min: topLeft, Max: bottomRight}.Canon()
}

func (s *Synthetic) square(centre skeleton.Point3D, plane roi.Plane, in Intrinsics) image.Rectangle {
	c := s.projector.Project(centre, plane)
	h := pixels(in, objectHalfSide, centre.Z)
	return image.Rect(c.X-h, c.Y-h, c.X+h, c.Y+h)
}

// sample packs a distance in metres and a player index into a raw depth sample.
func sample(z float64, player uint16) uint16 {
	mm := uint16(math.Round(z * 1000))
	if mm > TooFarDepth {
		mm = TooFarDepth
	}
	return mm<<depth.PlayerIndexBits | player
}

// pixels converts a metric length at distance z into a pixel length.
func pixels(in Intrinsics, length, z float64) int {
	return int(math.Round(in.Fx * length / z))
}

func fillRect(bounds, r image.Rectangle, set func(x, y int)) {
	r = r.Intersect(bounds)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			set(x, y)
		}
	}
}

func fillDisk(bounds image.Rectangle, c image.Point, radius int, set func(x, y int)) {
	r := image.Rect(c.X-radius, c.Y-radius, c.X+radius+1, c.Y+radius+1).Intersect(bounds)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dx, dy := x-c.X, y-c.Y
			if dx*dx+dy*dy <= radius*radius {
				set(x, y)
			}
		}
	}
}
