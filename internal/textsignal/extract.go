package textsignal

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/biotrust-cli/internal/model"
)

// contextWindow is how many characters of surrounding text are kept
// around a pattern match as the promise excerpt.
const contextWindow = 100

// ExtractPromises scans text (earnings call, press release) for
// executive promises. Every candidate comes back in pending state with
// a content-derived id, so saving re-extracted results is idempotent.
// No match means no candidates, never an error.
func ExtractPromises(text, company, executiveName, executiveTitle, source string, dateMade time.Time) []model.Promise {
	text = strings.Join(strings.Fields(text), " ")

	var promises []model.Promise
	for _, promiseType := range model.PromiseTypes {
		patterns := promisePatterns[promiseType]
		for _, pattern := range patterns {
			for _, match := range pattern.FindAllStringSubmatchIndex(text, -1) {
				start := match[0] - contextWindow
				if start < 0 {
					start = 0
				}
				end := match[1] + contextWindow
				if end > len(text) {
					end = len(text)
				}
				excerpt := strings.TrimSpace(text[start:end])

				var deadline *time.Time
				if len(match) >= 4 && match[2] >= 0 {
					deadline = ResolveDeadline(text[match[2]:match[3]])
				}

				now := time.Now().UTC()
				promises = append(promises, model.Promise{
					ID:                 model.PromiseID(company, executiveName, promiseType, dateMade, excerpt),
					Company:            company,
					ExecutiveName:      executiveName,
					ExecutiveTitle:     executiveTitle,
					Text:               excerpt,
					Type:               promiseType,
					DateMade:           dateMade,
					Deadline:           deadline,
					Source:             source,
					ConfidenceLanguage: ClassifyConfidence(excerpt),
					Metrics:            ExtractMetrics(excerpt, promiseType),
					Status:             model.StatusPending,
					CreatedAt:          now,
					UpdatedAt:          now,
				})
			}
		}
	}

	if len(promises) > 0 {
		zap.L().Debug("textsignal: promises extracted",
			zap.String("company", company),
			zap.String("executive", executiveName),
			zap.Int("count", len(promises)),
		)
	}
	return promises
}

// ClassifyConfidence maps the hedging language in a promise excerpt to
// an ordinal confidence level. Phrase sets are scanned strongest-first;
// no match yields neutral.
func ClassifyConfidence(text string) model.ConfidenceLevel {
	lower := strings.ToLower(text)
	for _, set := range confidenceSets {
		for _, pattern := range set.patterns {
			if pattern.MatchString(lower) {
				return set.level
			}
		}
	}
	return model.ConfidenceNeutral
}

// ExtractMetrics pulls quantifiable targets out of a promise excerpt.
// Dollar figures are normalized to absolute values (million/billion).
func ExtractMetrics(text string, promiseType model.PromiseType) model.Metrics {
	var m model.Metrics

	for _, match := range percentPattern.FindAllStringSubmatch(text, -1) {
		if v, err := strconv.ParseFloat(match[1], 64); err == nil {
			m.Percentages = append(m.Percentages, v)
		}
	}

	for _, match := range dollarPattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(match[2]) {
		case "million", "m":
			v *= 1_000_000
		case "billion", "b":
			v *= 1_000_000_000
		}
		m.FinancialFigures = append(m.FinancialFigures, v)
	}

	for _, match := range patientPattern.FindAllStringSubmatch(text, -1) {
		if v, err := strconv.Atoi(match[1]); err == nil {
			m.PatientCounts = append(m.PatientCounts, v)
		}
	}

	for _, match := range sitePattern.FindAllStringSubmatch(text, -1) {
		if v, err := strconv.Atoi(match[1]); err == nil {
			m.SiteCounts = append(m.SiteCounts, v)
		}
	}

	if promiseType == model.PromiseEnrollmentCompletion {
		if match := enrollmentPattern.FindStringSubmatch(text); match != nil {
			m.EnrollmentTarget, _ = strconv.Atoi(match[1])
		}
	}

	return m
}
