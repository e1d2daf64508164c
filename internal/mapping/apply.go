package mapping

import (
	"strings"

	"contactdash/internal/entity"
)

// Apply projects raw rows through a confirmed mapping: each cell lands under
// its column's target field, skipped columns are dropped, and rows with no
// populated field are excluded entirely.
func Apply(entries []entity.ColumnPrediction, rows [][]string) []entity.Contact {
	out := make([]entity.Contact, 0, len(rows))
	for _, row := range rows {
		contact := entity.Contact{}
		populated := false
		for i, e := range entries {
			if e.SuggestedHeader == "" || i >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[i])
			contact[e.SuggestedHeader] = value
			if value != "" {
				populated = true
			}
		}
		if populated {
			out = append(out, contact)
		}
	}
	return out
}
