package predict

import (
	"strings"

	"contactdash/internal/entity"
)

// Merge reconciles system and semantic predictions per header. The semantic
// counterpart is matched by case-insensitive original header; whichever side
// has the strictly higher confidence wins, ties favor the system result.
// Output order mirrors sys, which mirrors the input header order.
func Merge(sys, ai []entity.ColumnPrediction) []entity.ColumnPrediction {
	byHeader := make(map[string]entity.ColumnPrediction, len(ai))
	for _, p := range ai {
		byHeader[strings.ToLower(p.OriginalHeader)] = p
	}

	out := make([]entity.ColumnPrediction, 0, len(sys))
	for _, sysItem := range sys {
		aiItem, ok := byHeader[strings.ToLower(sysItem.OriginalHeader)]
		if !ok {
			out = append(out, sysItem)
			continue
		}
		if aiItem.Confidence > sysItem.Confidence {
			aiItem.Source = entity.SourceAI
			out = append(out, aiItem)
		} else {
			sysItem.Source = entity.SourceSystem
			out = append(out, sysItem)
		}
	}
	return out
}
