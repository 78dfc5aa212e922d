package services

import (
	"strings"

	"zillow-scraper/models"
)

// FallbackStatus is used when no status field carries a known value.
const FallbackStatus = models.StatusForSale

var statusPaths = []string{"statusType", "hdpData.homeInfo.homeStatus"}

var statusVocabulary = map[string]models.StatusType{
	"FOR_RENT":      models.StatusForRent,
	"FOR_SALE":      models.StatusForSale,
	"SOLD":          models.StatusSold,
	"RECENTLY_SOLD": models.StatusSold,
}

// multiUnitPaths expose unit configuration or a unit count.
var multiUnitPaths = []string{"units", "unitTypes", "totalUnits", "hdpData.homeInfo.totalUnits"}

// Classify decides the status and variant of a raw entry. It never fails.
func Classify(raw models.RawListing) models.Classification {
	return models.Classification{
		Status:      classifyStatus(raw),
		IsMultiUnit: isMultiUnit(raw),
	}
}

// ParseStatus maps a raw status string onto the known vocabulary.
func ParseStatus(s string) (models.StatusType, bool) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	st, ok := statusVocabulary[key]
	return st, ok
}

func classifyStatus(raw models.RawListing) models.StatusType {
	for _, p := range statusPaths {
		v, ok := lookup(raw, p)
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if st, ok := ParseStatus(s); ok {
			return st
		}
	}
	return FallbackStatus
}

func isMultiUnit(raw models.RawListing) bool {
	for _, p := range multiUnitPaths {
		if present(raw, p) {
			return true
		}
	}
	return firstBool(raw, "isBuilding")
}
