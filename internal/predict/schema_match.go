package predict

import "contactdash/internal/entity"

// ColumnsWithSchema runs the exact schema matcher ahead of heuristic scoring.
// A header whose normalized form equals a live field's normalized label
// short-circuits with full confidence, so custom fields created on an earlier
// import are re-recognized without re-scoring. Matches target the field id
// for core fields and the label otherwise, the same keys a manual selection
// produces. Headers with no exact match fall through to the heuristic scorer.
func ColumnsWithSchema(headers []string, samples [][]string, schema []entity.ContactField) []entity.ColumnPrediction {
	targets := make(map[string]string, len(schema))
	for _, f := range schema {
		key := Normalize(f.Label)
		if key == "" {
			continue
		}
		if _, taken := targets[key]; taken {
			continue
		}
		if f.Core {
			targets[key] = f.ID
		} else {
			targets[key] = f.Label
		}
	}

	out := make([]entity.ColumnPrediction, len(headers))
	var unmatched []int
	for i, header := range headers {
		if target, ok := targets[Normalize(header)]; ok {
			out[i] = entity.ColumnPrediction{
				OriginalHeader:  header,
				SuggestedHeader: target,
				Confidence:      1.0,
			}
			continue
		}
		unmatched = append(unmatched, i)
	}
	if len(unmatched) == 0 {
		return out
	}

	rest := make([]string, 0, len(unmatched))
	restSamples := make([][]string, len(samples))
	for _, i := range unmatched {
		rest = append(rest, headers[i])
		for r, row := range samples {
			var v string
			if i < len(row) {
				v = row[i]
			}
			restSamples[r] = append(restSamples[r], v)
		}
	}
	for j, p := range Columns(rest, restSamples) {
		out[unmatched[j]] = p
	}
	return out
}
