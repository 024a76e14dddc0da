package gait

import (
	"gonum.org/v1/gonum/mat"
)

// SmootherParams configures the trajectory Kalman filter
type SmootherParams struct {
	// ProcessNoise is the variance of the constant velocity motion model
	ProcessNoise float64
	// MeasureNoise is the variance of the keypoint measurements
	MeasureNoise float64
}

// DefaultSmootherParams returns smoother parameters tuned for pixel space
// joint trajectories
func DefaultSmootherParams() SmootherParams {
	return SmootherParams{
		ProcessNoise: 0.05,
		MeasureNoise: 2.0,
	}
}

// TrajectorySmoother applies a constant velocity Kalman filter to a joint
// trajectory to suppress per frame estimation jitter.  State is
// [x y vx vy] with unit time step between frames.
type TrajectorySmoother struct {
	params SmootherParams
	// motionMat is the 4x4 constant velocity transition matrix
	motionMat *mat.Dense
	// updateMat is the 2x4 observation matrix mapping state to the
	// measured x,y position
	updateMat *mat.Dense
}

// NewTrajectorySmoother initializes and returns a new TrajectorySmoother
func NewTrajectorySmoother(p SmootherParams) *TrajectorySmoother {

	ndim := 2
	dt := 1.0

	// identity matrix with velocity coupling for motionMat
	motionMat := mat.NewDense(4, 4, nil)

	for i := 0; i < 4; i++ {
		motionMat.Set(i, i, 1.0)
	}

	for i := 0; i < ndim; i++ {
		motionMat.Set(i, ndim+i, dt)
	}

	// updateMat observes the position components only
	updateMat := mat.NewDense(2, 4, nil)

	for i := 0; i < 2; i++ {
		updateMat.Set(i, i, 1.0)
	}

	return &TrajectorySmoother{
		params:    p,
		motionMat: motionMat,
		updateMat: updateMat,
	}
}

// Smooth filters the trajectory and returns the smoothed points.  Trails
// too short to smooth are returned unchanged.
func (s *TrajectorySmoother) Smooth(trail []Point) []Point {

	if len(trail) < 3 {
		return trail
	}

	// initial state at the first measurement with zero velocity
	mean := mat.NewVecDense(4, []float64{trail[0].X, trail[0].Y, 0, 0})

	cov := mat.NewDense(4, 4, nil)

	for i := 0; i < 4; i++ {
		cov.Set(i, i, s.params.MeasureNoise)
	}

	out := make([]Point, len(trail))
	out[0] = trail[0]

	for i := 1; i < len(trail); i++ {

		// predict
		var predMean mat.VecDense
		predMean.MulVec(s.motionMat, mean)

		var fp, predCov mat.Dense
		fp.Mul(s.motionMat, cov)
		predCov.Mul(&fp, s.motionMat.T())

		for j := 0; j < 4; j++ {
			predCov.Set(j, j, predCov.At(j, j)+s.params.ProcessNoise)
		}

		// innovation against the measurement
		var projected mat.VecDense
		projected.MulVec(s.updateMat, &predMean)

		innov := mat.NewVecDense(2, []float64{
			trail[i].X - projected.AtVec(0),
			trail[i].Y - projected.AtVec(1),
		})

		// innovation covariance S = H P H^T + R
		var hp, innovCov mat.Dense
		hp.Mul(s.updateMat, &predCov)
		innovCov.Mul(&hp, s.updateMat.T())

		for j := 0; j < 2; j++ {
			innovCov.Set(j, j, innovCov.At(j, j)+s.params.MeasureNoise)
		}

		var innovInv mat.Dense

		if err := innovInv.Inverse(&innovCov); err != nil {
			// degenerate covariance, keep the raw measurement
			out[i] = trail[i]
			mean.SetVec(0, trail[i].X)
			mean.SetVec(1, trail[i].Y)
			continue
		}

		// Kalman gain K = P H^T S^-1
		var pht, gain mat.Dense
		pht.Mul(&predCov, s.updateMat.T())
		gain.Mul(&pht, &innovInv)

		// updated state
		var correction mat.VecDense
		correction.MulVec(&gain, innov)

		var newMean mat.VecDense
		newMean.AddVec(&predMean, &correction)

		// updated covariance P = (I - K H) P
		var kh mat.Dense
		kh.Mul(&gain, s.updateMat)

		ident := mat.NewDense(4, 4, nil)

		for j := 0; j < 4; j++ {
			ident.Set(j, j, 1.0)
		}

		var ikh, newCov mat.Dense
		ikh.Sub(ident, &kh)
		newCov.Mul(&ikh, &predCov)

		mean = &newMean
		cov = &newCov

		out[i] = Point{
			X: newMean.AtVec(0),
			Y: newMean.AtVec(1),
		}
	}

	return out
}
