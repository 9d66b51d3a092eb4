package campaign

import "github.com/Spok95/school-healthcheck/internal/models"

// Пороговые политики классификации. Именованные константы, а не числа
// в коде: медкабинет может пересмотреть нормы.
const (
	// VisionNormalAcuity — минимальная острота зрения без коррекции,
	// считающаяся нормой.
	VisionNormalAcuity = 1.0
	// HearingMaxNormalDB — максимальный порог слышимости в децибелах,
	// считающийся нормой.
	HearingMaxNormalDB = 25.0
)

// Classify — чистая классификация замеров одной категории.
// Никуда не пишет и ни от чего не зависит.
func Classify(category string, m models.CategoryMeasurement) models.ResultStatus {
	switch category {
	case models.CategoryVision:
		return classifyVision(m)
	case models.CategoryHearing:
		return classifyHearing(m)
	default:
		// oral/skin/respiratory и прочие категории с явным флагом
		return classifyFlagged(m)
	}
}

func classifyVision(m models.CategoryMeasurement) models.ResultStatus {
	// нулевое значение — замера не было
	if (m.VisionLeft > 0 && m.VisionLeft < VisionNormalAcuity) ||
		(m.VisionRight > 0 && m.VisionRight < VisionNormalAcuity) ||
		m.NeedsLenses || m.IsAbnormal {
		return models.ResultAbnormal
	}
	return models.ResultNormal
}

func classifyHearing(m models.CategoryMeasurement) models.ResultStatus {
	if m.HearingLeftDB > HearingMaxNormalDB || m.HearingRightDB > HearingMaxNormalDB || m.IsAbnormal {
		return models.ResultAbnormal
	}
	return models.ResultNormal
}

func classifyFlagged(m models.CategoryMeasurement) models.ResultStatus {
	if m.IsAbnormal && m.Treatment != "" {
		return models.ResultNeedsTreatment
	}
	if m.IsAbnormal {
		return models.ResultAbnormal
	}
	return models.ResultNormal
}
