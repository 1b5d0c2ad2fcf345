package analysis

// Class indices of the classification model output. The index order is fixed
// by the model and must match the external ML service.
const (
	ClassNormal = iota
	ClassScream
	ClassHelp
	ClassEmergency
	ClassBackgroundNoise
	ClassFactoryNoise
	ClassRoadNoise

	// ClassCount is the number of classes the model was trained on. The
	// evaluator tolerates shorter vectors; this is informational.
	ClassCount = 7
)

// classLabels maps a class index to its display label.
var classLabels = map[int]string{
	ClassNormal:          "정상 소리 (normal)",
	ClassScream:          "비명 소리 (scream)",
	ClassHelp:            "도움 요청 (help)",
	ClassEmergency:       "비상 상황 (emergency)",
	ClassBackgroundNoise: "배경 소음 (background_noise)",
	ClassFactoryNoise:    "공장 소음 (factory_noise)",
	ClassRoadNoise:       "도로 소음 (road_noise)",
}

// ClassLabel returns the display label for a class index.
func ClassLabel(classIndex int) string {
	if label, ok := classLabels[classIndex]; ok {
		return label
	}
	return "알 수 없는 클래스"
}

// AlertTypeForClass maps a danger class index to its event type and short
// alert label. Any danger-class value outside the known set falls back to a
// generic emergency.
func AlertTypeForClass(classIndex int) (eventType, alertLabel string) {
	switch classIndex {
	case ClassScream:
		return "scream", "비명 소리"
	case ClassHelp:
		return "help", "도움 요청"
	case ClassEmergency:
		return "emergency", "비상 상황"
	default:
		return "emergency", "위험 소리"
	}
}
