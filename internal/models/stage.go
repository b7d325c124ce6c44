package models

type StageType string

// Üretim hattı sırası sabittir. REWORK sırada bir slot olarak durur ama
// parti hiçbir zaman currentStage olarak REWORK'e girmez; tadilat kesim ve
// dikiş kusurları üzerinde yan kanal olarak çalışır.
const (
	StageCutting      StageType = "CUTTING"       // Kesim
	StageStitching    StageType = "STITCHING"     // Dikiş
	StageQualityCheck StageType = "QUALITY_CHECK" // Kalite kontrol
	StageRework       StageType = "REWORK"        // Tadilat (slot)
	StageLabeling     StageType = "LABELING"      // Etiketleme
	StageFolding      StageType = "FOLDING"       // Katlama
	StagePacking      StageType = "PACKING"       // Paketleme
)

// StageOrder: Hat sırası. Index karşılaştırması için kullanılır.
var StageOrder = []StageType{
	StageCutting,
	StageStitching,
	StageQualityCheck,
	StageRework,
	StageLabeling,
	StageFolding,
	StagePacking,
}

// ReworkableStages: Tadilata konu olabilecek kusur kaynağı aşamalar
var ReworkableStages = []StageType{StageCutting, StageStitching}

func IsValidStage(s StageType) bool {
	for _, stage := range StageOrder {
		if stage == s {
			return true
		}
	}
	return false
}

// StageIndex: Aşamanın hat sırasındaki yeri, bilinmeyen aşama için -1
func StageIndex(s StageType) int {
	for i, stage := range StageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// NextStage: Onay sonrası geçilecek aşama. REWORK slotu atlanır.
// Son aşamadan (PACKING) sonrası yoktur, boş döner.
func NextStage(s StageType) (StageType, bool) {
	idx := StageIndex(s)
	if idx < 0 || idx >= len(StageOrder)-1 {
		return "", false
	}
	next := StageOrder[idx+1]
	if next == StageRework {
		if idx+2 >= len(StageOrder) {
			return "", false
		}
		next = StageOrder[idx+2]
	}
	return next, true
}

// IsTerminalProcessingStage: Kayıp beklenmeyen son işlem aşamaları.
// Bu aşamalarda quantity_in ve quantity_out kuralları katıdır.
func IsTerminalProcessingStage(s StageType) bool {
	return s == StageLabeling || s == StageFolding || s == StagePacking
}

// IsDefectOriginStage: Kusur satırının kaynağı olabilecek aşamalar.
// Kalite kontrol sonrası aşamalar ve tadilat slotu kusur üretmez.
func IsDefectOriginStage(s StageType) bool {
	idx := StageIndex(s)
	return idx >= 0 && idx <= StageIndex(StageQualityCheck)
}

func IsReworkableStage(s StageType) bool {
	for _, stage := range ReworkableStages {
		if stage == s {
			return true
		}
	}
	return false
}
