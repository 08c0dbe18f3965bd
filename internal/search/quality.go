package search

import "github.com/helmick/nutriseek/internal/models"

// Result-count thresholds for the quality label. A search that keeps more
// than DefaultQualityHigh results after merging is labeled high quality.
const (
	DefaultQualityHigh   = 8
	DefaultQualityMedium = 4
)

// Classify produces the quality descriptor for a finished search. The label
// depends on how many results survived merging, not on how many the sources
// found; a hundred provider hits that all collapse into three foods is still
// a thin answer.
func Classify(totalFound, kept int, method string, highThreshold, mediumThreshold int) models.SearchQuality {
	if highThreshold <= 0 {
		highThreshold = DefaultQualityHigh
	}
	if mediumThreshold <= 0 {
		mediumThreshold = DefaultQualityMedium
	}

	quality := models.QualityLow
	switch {
	case kept > highThreshold:
		quality = models.QualityHigh
	case kept > mediumThreshold:
		quality = models.QualityMedium
	}

	return models.SearchQuality{
		Quality:     quality,
		Method:      method,
		TotalFound:  totalFound,
		QualityKept: kept,
	}
}

// decideMethod names the dominant source of the final result list. Cached
// data beats everything else in the label because it tells the client no
// provider round trip happened; a mixed local and external answer is hybrid.
func decideMethod(localCount, externalCount int, usedFallback, externalAttempted, fromCache bool) string {
	switch {
	case fromCache:
		return models.MethodCached
	case localCount > 0 && externalCount > 0:
		return models.MethodHybrid
	case externalAttempted && localCount == 0:
		return models.MethodExternal
	case usedFallback:
		return models.MethodFallback
	default:
		return models.MethodFuzzy
	}
}
