// policy.go implements the danger classification decision policy. The
// evaluator is a pure function of the probability vector; all I/O lives in
// the analyzer and fan-out.
package analysis

import (
	"fmt"

	"github.com/soundguard/soundguard-go/internal/errors"
)

// Decision policy thresholds. These values are tuned against the production
// model and the comparison operators are part of the behavior; do not adjust
// one without the other.
const (
	// DangerThreshold is the minimum probability of the winning danger
	// class required for a dangerous verdict.
	DangerThreshold = 0.70

	// MinConfidence is the floor below which any prediction is forced to
	// the normal class.
	MinConfidence = 0.30

	// NormalClassThreshold forces a normal verdict whenever the normal
	// class probability reaches it.
	NormalClassThreshold = 0.50

	// NormalClassMin is the ceiling the normal class probability must stay
	// under for a dangerous verdict.
	NormalClassMin = 0.25
)

// DangerClasses are the class indices treated as potentially dangerous.
var DangerClasses = []int{ClassScream, ClassHelp, ClassEmergency}

// ErrEmptyProbabilities is returned when the evaluator receives no input.
var ErrEmptyProbabilities = errors.NewStd("probability vector is empty")

// Verdict is the evaluator's structured decision for one analysis call.
type Verdict struct {
	IsDangerous       bool    `json:"isDangerous"`
	PredictedClass    int     `json:"predictedClass"`
	Confidence        float64 `json:"confidence"`        // probability of the predicted class
	DangerProbability float64 `json:"dangerProbability"` // sum of danger class probabilities
	Message           string  `json:"message"`
}

// Evaluate applies the decision policy to a probability vector and returns a
// verdict. The vector is positionally indexed; values are treated
// independently and need not sum to one. Vectors shorter than the full class
// set are tolerated.
//
// The policy is a multi-stage gate rather than a single threshold: a mildly
// elevated danger score does not fire while the normal class signal is still
// fairly strong, and low-confidence output never reaches the class-specific
// branches at all.
func Evaluate(probabilities []float64) (Verdict, error) {
	if len(probabilities) == 0 {
		return Verdict{}, ErrEmptyProbabilities
	}

	predictedClass := argmax(probabilities)
	maxProb := probabilities[predictedClass]
	normalProb := 0.0
	if len(probabilities) > ClassNormal {
		normalProb = probabilities[ClassNormal]
	}

	isDangerous := false

	switch {
	// Too uncertain overall: force normal.
	case maxProb < MinConfidence:
		predictedClass = ClassNormal
		maxProb = normalProb

	// Normal class clearly dominant: always normal.
	case normalProb >= NormalClassThreshold:
		predictedClass = ClassNormal
		maxProb = normalProb

	// A danger class won: dangerous only when its score clears the danger
	// threshold and the normal class is nearly absent.
	case isDangerClass(predictedClass):
		isDangerous = normalProb < NormalClassMin && maxProb >= DangerThreshold

	// Any other non-danger class: normal.
	default:
	}

	verdict := Verdict{
		IsDangerous:       isDangerous,
		PredictedClass:    predictedClass,
		Confidence:        maxProb,
		DangerProbability: dangerProbability(probabilities),
	}
	verdict.Message = verdictMessage(&verdict)
	return verdict, nil
}

// argmax returns the index of the largest value; the first index wins ties.
func argmax(values []float64) int {
	maxIndex := 0
	maxValue := values[0]
	for i := 1; i < len(values); i++ {
		if values[i] > maxValue {
			maxValue = values[i]
			maxIndex = i
		}
	}
	return maxIndex
}

func isDangerClass(classIndex int) bool {
	for _, dangerClass := range DangerClasses {
		if classIndex == dangerClass {
			return true
		}
	}
	return false
}

// dangerProbability sums the danger class probabilities, skipping indices
// beyond the vector length.
func dangerProbability(probabilities []float64) float64 {
	sum := 0.0
	for _, dangerClass := range DangerClasses {
		if dangerClass < len(probabilities) {
			sum += probabilities[dangerClass]
		}
	}
	return sum
}

func verdictMessage(verdict *Verdict) string {
	if verdict.IsDangerous {
		return fmt.Sprintf("⚠️ 위험 소리 감지! (클래스: %d, 확률: %.2f%%)",
			verdict.PredictedClass, verdict.Confidence*100)
	}
	return fmt.Sprintf("✅ 정상 소리 (클래스: %d, 확률: %.2f%%)",
		verdict.PredictedClass, verdict.Confidence*100)
}
