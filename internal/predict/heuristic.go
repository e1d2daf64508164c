package predict

import (
	"math"
	"regexp"
	"strings"

	"contactdash/internal/entity"
)

// systemFields is the fixed candidate set, in tie-break order: when two
// fields score equally, the earlier one keeps the column.
var systemFields = []string{
	"firstName",
	"lastName",
	"email",
	"phone",
	"agentUid",
	"createdOn",
}

// fieldSynonyms lists normalized keywords that hint at each system field when
// the field name itself does not appear in the header.
var fieldSynonyms = map[string][]string{
	"firstName": {"name", "fullname", "contactname", "person"},
	"lastName":  {"lastname", "surname"},
	"email":     {"email", "mailid", "mail"},
	"phone":     {"phone", "mobile", "contactnumber", "phonenumber", "whatsapp"},
	"agentUid":  {"agent", "owner", "assignedto", "handler"},
	"createdOn": {"date", "created", "timestamp", "time", "addedon"},
}

// customThreshold is the minimum winning score for a column to resolve to a
// system field; below it the column is classified custom.
const customThreshold = 0.65

var (
	reEmail     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	rePhone     = regexp.MustCompile(`^\+?[0-9\-\s()]{7,15}$`)
	reDate      = regexp.MustCompile(`\d{4}[-/]\d{1,2}[-/]\d{1,2}`)
	reMonthName = regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\b`)
)

// headerHint scores keyword presence: 0.9 when the normalized header contains
// the normalized field name, 0.8 when it contains any synonym, else 0.
func headerHint(field, header string) float64 {
	h := Normalize(header)
	f := Normalize(field)
	if strings.Contains(h, f) {
		return 0.9
	}
	for _, w := range fieldSynonyms[field] {
		if strings.Contains(h, w) {
			return 0.8
		}
	}
	return 0
}

// valuePatternBoost inspects sampled column values: 0.3 when any non-empty
// value matches the email or phone shape for those fields, 0.4 when any value
// looks like a date for createdOn, else 0.
func valuePatternBoost(field string, values []string) float64 {
	valid := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return 0
	}

	switch field {
	case "email":
		for _, v := range valid {
			if reEmail.MatchString(v) {
				return 0.3
			}
		}
	case "phone":
		for _, v := range valid {
			if rePhone.MatchString(v) {
				return 0.3
			}
		}
	case "createdOn":
		for _, v := range valid {
			if reDate.MatchString(v) || reMonthName.MatchString(v) {
				return 0.4
			}
		}
	}
	return 0
}

// Columns produces one heuristic prediction per header, independent of all
// other headers. samples holds rows of cell values aligned with headers.
func Columns(headers []string, samples [][]string) []entity.ColumnPrediction {
	out := make([]entity.ColumnPrediction, 0, len(headers))
	for idx, header := range headers {
		values := make([]string, 0, len(samples))
		for _, row := range samples {
			if idx < len(row) {
				values = append(values, row[idx])
			}
		}

		var bestField string
		var bestScore float64
		for _, field := range systemFields {
			score := headerHint(field, header) + valuePatternBoost(field, values)
			score = math.Round(score*100) / 100
			// The additive formula can theoretically reach 1.3; clamp so
			// confidence stays inside [0,1].
			if score > 1 {
				score = 1
			}
			if score > bestScore {
				bestScore = score
				bestField = field
			}
		}

		p := entity.ColumnPrediction{
			OriginalHeader: header,
			Confidence:     bestScore,
		}
		if bestScore < customThreshold {
			p.SuggestedHeader = Normalize(header)
			p.IsCustom = true
		} else {
			p.SuggestedHeader = bestField
		}
		out = append(out, p)
	}
	return out
}
