package gait

// Risk level bands for the fall risk score
const (
	RiskLow      = "Low Risk"
	RiskModerate = "Moderate Risk"
	RiskHigh     = "High Risk"
)

// TinettiParams defines the threshold table mapping gait feature statistics
// to Tinetti POMA component scores.  Distance thresholds are in pixels of
// the keypoint coordinate space.
type TinettiParams struct {
	// GoodStepLength is the mean ankle separation for a full 2 point
	// step length score, HalfStepLength for 1 point
	GoodStepLength float64
	HalfStepLength float64
	// GoodStepHeight is the mean ankle clearance for a full 2 point
	// step height score, HalfStepHeight for 1 point
	GoodStepHeight float64
	HalfStepHeight float64
	// SymmetryCV is the maximum step length coefficient of variation
	// still considered symmetric
	SymmetryCV float64
	// ContinuityRatio is the minimum fraction of frames with measurable
	// steps for the continuity point
	ContinuityRatio float64
	// LowPathDeviation scores 2 points, HighPathDeviation 1 point
	LowPathDeviation  float64
	HighPathDeviation float64
	// LowTrunkSway scores 2 points, HighTrunkSway 1 point
	LowTrunkSway  float64
	HighTrunkSway float64
	// StanceSwayMax is the maximum single frame sway for the stance
	// point
	StanceSwayMax float64
}

// DefaultTinettiParams returns the threshold table for 720p scale
// coordinate spaces
func DefaultTinettiParams() TinettiParams {
	return TinettiParams{
		GoodStepLength:    60,
		HalfStepLength:    25,
		GoodStepHeight:    20,
		HalfStepHeight:    8,
		SymmetryCV:        0.5,
		ContinuityRatio:   0.8,
		LowPathDeviation:  2000,
		HighPathDeviation: 10000,
		LowTrunkSway:      4,
		HighTrunkSway:     12,
		StanceSwayMax:     30,
	}
}

// ComponentScores holds the per component Tinetti POMA gait scores
type ComponentScores struct {
	Initiation    int // 0-1
	StepLength    int // 0-2
	StepHeight    int // 0-2
	Symmetry      int // 0-1
	Continuity    int // 0-1
	PathDeviation int // 0-2
	TrunkSway     int // 0-2
	Stance        int // 0-1
}

// Total sums the component scores to the 0-12 gait total
func (c ComponentScores) Total() int {
	return c.Initiation + c.StepLength + c.StepHeight + c.Symmetry +
		c.Continuity + c.PathDeviation + c.TrunkSway + c.Stance
}

// Assessment is the fall risk result derived from a Tinetti total
type Assessment struct {
	Total     int
	RiskScore float64
	RiskLevel string
}

// TinettiScorer maps gait feature statistics to Tinetti POMA gait scores
// using a deterministic threshold table
type TinettiScorer struct {
	Params TinettiParams
}

// NewTinettiScorer returns an instance of the TinettiScorer
func NewTinettiScorer(p TinettiParams) *TinettiScorer {
	return &TinettiScorer{
		Params: p,
	}
}

// Score maps the extracted features to per component scores
func (t *TinettiScorer) Score(f Features) ComponentScores {

	p := t.Params
	var c ComponentScores

	if f.StepLength.Count > 0 {
		c.Initiation = 1
	}

	c.StepLength = twoPointScore(f.StepLength.Mean, p.GoodStepLength,
		p.HalfStepLength)
	c.StepHeight = twoPointScore(f.StepHeight.Mean, p.GoodStepHeight,
		p.HalfStepHeight)

	if f.StepLength.Mean > 0 &&
		f.StepLength.Std/f.StepLength.Mean <= p.SymmetryCV {
		c.Symmetry = 1
	}

	if f.FrameCount > 0 &&
		float64(f.StepLength.Count)/float64(f.FrameCount) >= p.ContinuityRatio {
		c.Continuity = 1
	}

	// lower deviation and sway score higher
	switch {
	case f.PathDeviation <= p.LowPathDeviation:
		c.PathDeviation = 2
	case f.PathDeviation <= p.HighPathDeviation:
		c.PathDeviation = 1
	}

	switch {
	case f.TrunkSway.Count == 0:
		// no sway measurements, nothing to penalise
		c.TrunkSway = 0
	case f.TrunkSway.Mean <= p.LowTrunkSway:
		c.TrunkSway = 2
	case f.TrunkSway.Mean <= p.HighTrunkSway:
		c.TrunkSway = 1
	}

	if f.TrunkSway.Count > 0 && f.TrunkSway.Max <= p.StanceSwayMax {
		c.Stance = 1
	}

	return c
}

// Assess scores the features and derives the fall risk assessment
func (t *TinettiScorer) Assess(f Features) Assessment {
	return AssessFallRisk(t.Score(f).Total())
}

// AssessFallRisk maps a Tinetti total to a continuous 0 to 1 risk score and
// a categorical risk level.  Totals up to 12 are interpreted on the gait
// only scale, larger totals on the full 28 point POMA scale.
func AssessFallRisk(total int) Assessment {

	maxScore := 12.0

	if total > 12 {
		maxScore = 28
	}

	risk := 1.0 - float64(total)/maxScore

	if risk < 0 {
		risk = 0
	}

	if risk > 1 {
		risk = 1
	}

	level := RiskHigh

	switch {
	case risk < 1.0/3.0:
		level = RiskLow
	case risk < 2.0/3.0:
		level = RiskModerate
	}

	return Assessment{
		Total:     total,
		RiskScore: risk,
		RiskLevel: level,
	}
}

// twoPointScore awards 2 points at or above the good threshold, 1 point at
// or above the half threshold
func twoPointScore(val, good, half float64) int {

	switch {
	case val >= good:
		return 2
	case val >= half:
		return 1
	}

	return 0
}
