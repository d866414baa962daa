// Package calibration implements the device-frame to kart-frame
// rotation calibration: a small state machine that consumes a
// gravity-phase buffer followed by a forward-phase buffer and derives
// an orthonormal (forward, right, up) frame plus a quality score.
package calibration

import (
	"math"
	"time"

	"github.com/relabs-tech/kartpower/internal/apperr"
)

// State is one of the calibration state machine's four states:
// awaiting-gravity -> awaiting-forward -> done | failed.
type State string

const (
	AwaitingGravity State = "awaiting-gravity"
	AwaitingForward State = "awaiting-forward"
	Done            State = "done"
	Failed          State = "failed"
)

const (
	// MinGravitySamples is the minimum gravity-phase buffer length
	// (>=150 samples, ~3s at 50Hz).
	MinGravitySamples = 150
	// MinForwardSamples is the minimum forward-phase buffer length
	// (>=250 samples, ~5s at 50Hz).
	MinForwardSamples = 250
	// forwardRetainThresholdMps2 is the minimum linear-acceleration
	// magnitude a forward-phase sample must exceed to be retained for
	// PCA when at least 20 such samples are available.
	forwardRetainThresholdMps2 = 0.5
	// minRetainedForPCA is the retained-sample count below which PCA
	// falls back to running over the full forward buffer.
	minRetainedForPCA = 20
	// powerIterations is the fixed power-iteration count.
	powerIterations = 50
	// nominalGravityMps2 is standard gravity, used for the quality
	// score and the u = -g/|g| axis.
	nominalGravityMps2 = 9.81
	// gravityWarnThresholdMps2 is the deviation above which a warning
	// is reported (calibration still proceeds).
	gravityWarnThresholdMps2 = 1.5
)

// Vec3 is a plain 3-vector in device or kart frame.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (a Vec3) add(b Vec3) Vec3   { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) sub(b Vec3) Vec3   { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) scale(k float64) Vec3 {
	return Vec3{a.X * k, a.Y * k, a.Z * k}
}
func (a Vec3) dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) norm() float64      { return math.Sqrt(a.dot(a)) }
func (a Vec3) cross(b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}
func (a Vec3) normalized() Vec3 {
	n := a.norm()
	if n == 0 {
		return a
	}
	return a.scale(1 / n)
}

// Sub returns a-b. Exported for callers (e.g. the sensor power engine)
// that need to remove gravity from a raw device-frame sample.
func (a Vec3) Sub(b Vec3) Vec3 { return a.sub(b) }

// Norm returns the Euclidean length of a.
func (a Vec3) Norm() float64 { return a.norm() }

// Matrix3 is a row-major 3x3 rotation matrix.
type Matrix3 [3]Vec3

// Apply returns M*v treating each row of M as a dot-product basis
// vector, i.e. a_kart = M . a_device.
func (m Matrix3) Apply(v Vec3) Vec3 {
	return Vec3{X: m[0].dot(v), Y: m[1].dot(v), Z: m[2].dot(v)}
}

// Data is the calibration result: the measured gravity vector, the
// orthonormal (forward, right, up) frame, the rotation matrix built
// from those rows, a quality score in [0,1], and the timestamp the
// caller supplied when the forward phase completed.
type Data struct {
	Gravity   Vec3      `json:"gravity"`
	Forward   Vec3      `json:"forward"`
	Right     Vec3      `json:"right"`
	Up        Vec3      `json:"up"`
	Rotation  Matrix3   `json:"rotation"`
	Quality   float64   `json:"quality"`
	Timestamp time.Time `json:"timestamp"`
	Warning   string    `json:"warning,omitempty"`
}

// Engine is the calibration state machine. It is not safe for
// concurrent use by multiple goroutines pushing samples at once:
// callers must serialize their own pushes.
type Engine struct {
	state          State
	gravitySamples []Vec3
	forwardSamples []Vec3
	result         Data
}

// New returns an Engine in the awaiting-gravity state.
func New() *Engine {
	return &Engine{state: AwaitingGravity}
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Progress reports how far the current phase's buffer is filled,
// scaled into the overall [0,1] range: [0,0.5] during the gravity
// phase, [0.5,1] during the forward phase, 1 once done.
func (e *Engine) Progress() float64 {
	switch e.state {
	case AwaitingGravity:
		return 0.5 * clamp01(float64(len(e.gravitySamples))/float64(MinGravitySamples))
	case AwaitingForward:
		return 0.5 + 0.5*clamp01(float64(len(e.forwardSamples))/float64(MinForwardSamples))
	case Done:
		return 1.0
	default:
		return 0.0
	}
}

// PushSample appends one sample to whichever phase buffer is currently
// active and returns the new state and progress. Pushing while in
// Done or Failed is a no-op.
func (e *Engine) PushSample(v Vec3) (State, float64) {
	switch e.state {
	case AwaitingGravity:
		e.gravitySamples = append(e.gravitySamples, v)
	case AwaitingForward:
		e.forwardSamples = append(e.forwardSamples, v)
	}
	return e.state, e.Progress()
}

// Reset discards both buffers and returns the machine to
// awaiting-gravity.
func (e *Engine) Reset() {
	e.state = AwaitingGravity
	e.gravitySamples = nil
	e.forwardSamples = nil
	e.result = Data{}
}

// AdvancePhase closes out the current phase. From awaiting-gravity it
// checks the gravity buffer is full enough and moves to
// awaiting-forward. From awaiting-forward it checks the forward
// buffer, runs the calibration computation, and moves to done. now is
// stamped onto the resulting Data on completion; the core never reads
// the wall clock itself.
func (e *Engine) AdvancePhase(now time.Time) error {
	const component = "calibration.Engine"

	switch e.state {
	case AwaitingGravity:
		if len(e.gravitySamples) < MinGravitySamples {
			e.state = Failed
			return apperr.Newf(apperr.InsufficientSamples, component,
				"gravity phase has %d samples, need >= %d", len(e.gravitySamples), MinGravitySamples)
		}
		e.state = AwaitingForward
		return nil

	case AwaitingForward:
		if len(e.forwardSamples) < MinForwardSamples {
			e.state = Failed
			return apperr.Newf(apperr.InsufficientSamples, component,
				"forward phase has %d samples, need >= %d", len(e.forwardSamples), MinForwardSamples)
		}
		data := compute(e.gravitySamples, e.forwardSamples)
		data.Timestamp = now
		e.result = data
		e.state = Done
		return nil

	default:
		return apperr.Newf(apperr.ConfigurationInvalid, component,
			"cannot advance phase from state %q", e.state)
	}
}

// Result returns the completed calibration and true, or a zero value
// and false if the machine has not reached Done.
func (e *Engine) Result() (Data, bool) {
	return e.result, e.state == Done
}

func mean(vs []Vec3) Vec3 {
	var sum Vec3
	for _, v := range vs {
		sum = sum.add(v)
	}
	if len(vs) == 0 {
		return sum
	}
	return sum.scale(1 / float64(len(vs)))
}

// pca returns the dominant eigenvector of the second-moment matrix of
// vs via 50 iterations of power iteration seeded at (1,1,1)/sqrt(3).
// vs is expected to already be gravity-centered (see compute): a
// further per-set mean subtraction here would zero out the covariance
// for the common case where every forward-phase sample carries the
// same acceleration, collapsing the eigenvector to zero.
func pca(vs []Vec3) Vec3 {
	var cov [3][3]float64
	for _, v := range vs {
		arr := [3]float64{v.X, v.Y, v.Z}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				cov[i][j] += arr[i] * arr[j]
			}
		}
	}

	seed := 1.0 / math.Sqrt(3)
	e := Vec3{seed, seed, seed}
	for i := 0; i < powerIterations; i++ {
		earr := [3]float64{e.X, e.Y, e.Z}
		var next [3]float64
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				next[r] += cov[r][c] * earr[c]
			}
		}
		e = Vec3{next[0], next[1], next[2]}.normalized()
	}
	return e
}

// compute runs the full calibration algorithm.
func compute(gravitySamples, forwardSamples []Vec3) Data {
	g := mean(gravitySamples)
	gNorm := g.norm()

	var warning string
	if math.Abs(gNorm-nominalGravityMps2) > gravityWarnThresholdMps2 {
		warning = "measured gravity deviates from 9.81 m/s^2 by more than 1.5 m/s^2"
	}

	linear := make([]Vec3, len(forwardSamples))
	for i, s := range forwardSamples {
		linear[i] = s.sub(g)
	}

	retained := make([]Vec3, 0, len(linear))
	for _, l := range linear {
		if l.norm() > forwardRetainThresholdMps2 {
			retained = append(retained, l)
		}
	}

	pcaSet := linear
	if len(retained) >= minRetainedForPCA {
		pcaSet = retained
	}

	fRaw := pca(pcaSet)
	meanLinear := mean(pcaSet)
	if meanLinear.dot(fRaw) < 0 {
		fRaw = fRaw.scale(-1)
	}

	u := Vec3{}
	if gNorm != 0 {
		u = g.scale(-1 / gNorm)
	}
	fPerp := fRaw.sub(u.scale(fRaw.dot(u)))
	f := fPerp.normalized()
	r := f.cross(u)

	qg := clamp01(1 - math.Min(1, math.Abs(gNorm-nominalGravityMps2)/2))
	qf := clamp01(math.Min(1, fRaw.norm()/2))
	qPerp := clamp01(1 - math.Abs(fRaw.dot(u)))
	quality := (qg + qf + qPerp) / 3

	return Data{
		Gravity:  g,
		Forward:  f,
		Right:    r,
		Up:       u,
		Rotation: Matrix3{f, r, u},
		Quality:  quality,
		Warning:  warning,
	}
}
