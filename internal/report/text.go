package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/biotrust-cli/internal/model"
)

var printer = message.NewPrinter(language.English)

// Accountability renders a plaintext accountability report for one
// company: the headline score, the executive table, and every broken or
// late promise with its delay.
func Accountability(company model.CompanyCredibility, executives []model.ExecutiveCredibility, promises []model.Promise) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ACCOUNTABILITY REPORT: %s\n", company.Company)
	fmt.Fprintf(&b, "Generated: %s\n\n", company.LastUpdated.Format("2006-01-02"))

	fmt.Fprintf(&b, "Credibility score: %.3f\n", company.CredibilityScore)
	printer.Fprintf(&b, "Promises tracked: %d (%d on time, %d late, %d failed, %d pending)\n",
		company.TotalPromises, company.DeliveredOnTime, company.DeliveredLate,
		company.Failed, company.Pending)
	if company.AverageDelayDays > 0 {
		fmt.Fprintf(&b, "Average delay when late: %.1f days\n", company.AverageDelayDays)
	}

	if len(company.ByPromiseType) > 0 {
		b.WriteString("\nBy promise type:\n")
		types := make([]model.PromiseType, 0, len(company.ByPromiseType))
		for t := range company.ByPromiseType {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
		for _, t := range types {
			acc := company.ByPromiseType[t]
			fmt.Fprintf(&b, "  %-24s %d completed, %.0f%% on time\n",
				t, acc.Total, acc.SuccessRate*100)
		}
	}

	if len(executives) > 0 {
		b.WriteString("\nExecutives:\n")
		sorted := make([]model.ExecutiveCredibility, len(executives))
		copy(sorted, executives)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CredibilityScore > sorted[j].CredibilityScore
		})
		for _, e := range sorted {
			fmt.Fprintf(&b, "  %-28s score %.3f (%d promises)\n",
				e.ExecutiveName, e.CredibilityScore, e.TotalPromises)
		}
	}

	broken := brokenPromises(promises)
	if len(broken) > 0 {
		b.WriteString("\nBroken and late promises:\n")
		for _, p := range broken {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", promiseVerdict(p), p.ExecutiveName, firstSentence(p.Text))
		}
	}

	if target := totalEnrollment(promises); target > 0 {
		printer.Fprintf(&b, "\nOutstanding enrollment commitments: %d patients\n", target)
	}

	return b.String()
}

func brokenPromises(promises []model.Promise) []model.Promise {
	var out []model.Promise
	for _, p := range promises {
		if p.Status == model.StatusFailed || p.Status == model.StatusDeliveredLate {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateMade.Before(out[j].DateMade)
	})
	return out
}

func promiseVerdict(p model.Promise) string {
	if p.Status == model.StatusFailed {
		return "FAILED"
	}
	if p.DelayDays != nil {
		return fmt.Sprintf("LATE %dd", *p.DelayDays)
	}
	return "LATE"
}

// totalEnrollment sums enrollment targets across promises still open.
func totalEnrollment(promises []model.Promise) int {
	total := 0
	for _, p := range promises {
		if p.Status == model.StatusPending || p.Status == model.StatusInProgress {
			total += p.Metrics.EnrollmentTarget
		}
	}
	return total
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, ".!?"); i > 0 && i < len(text)-1 {
		return text[:i+1]
	}
	if len(text) > 120 {
		return text[:120] + "..."
	}
	return text
}

// DefaultFilename builds the default workbook filename for a company.
func DefaultFilename(company string, now time.Time) string {
	slug := strings.ToLower(strings.ReplaceAll(company, " ", "-"))
	return fmt.Sprintf("%s-credibility-%s.xlsx", slug, now.Format("20060102"))
}
