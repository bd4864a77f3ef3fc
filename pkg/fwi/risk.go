package fwi

// Band is a display-only risk classification of a predicted FWI score.
// Bands are derived on read and never stored, so threshold changes apply to old records too.
type Band int

const (
	BandLow Band = iota
	BandMedium
	BandHigh
	BandExtreme
)

// Band thresholds (lower bounds, inclusive).
const (
	MediumThreshold  = 5.0
	HighThreshold    = 15.0
	ExtremeThreshold = 30.0
)

// Classify maps a score to its risk band.
func Classify(score float64) Band {
	switch {
	case score >= ExtremeThreshold:
		return BandExtreme
	case score >= HighThreshold:
		return BandHigh
	case score >= MediumThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

func (b Band) String() string {
	switch b {
	case BandLow:
		return "LOW"
	case BandMedium:
		return "MEDIUM"
	case BandHigh:
		return "HIGH"
	case BandExtreme:
		return "EXTREME"
	}
	return "UNKNOWN"
}

// Description is a short human summary of the band.
func (b Band) Description() string {
	switch b {
	case BandLow:
		return "Minimal fire risk"
	case BandMedium:
		return "Moderate fire risk"
	case BandHigh:
		return "High fire risk"
	case BandExtreme:
		return "Extreme fire risk"
	}
	return ""
}

// Advice returns the safety advice shown alongside a result.
func (b Band) Advice() string {
	switch b {
	case BandLow:
		return "Continue monitoring conditions. Fire risk is minimal at this time."
	case BandMedium:
		return "Exercise caution. Monitor weather conditions and be prepared for changes."
	case BandHigh:
		return "High alert! Implement fire prevention measures and monitor closely."
	case BandExtreme:
		return "CRITICAL! Immediate action required. Implement all fire prevention protocols."
	}
	return "Monitor conditions and stay alert."
}
