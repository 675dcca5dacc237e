package promise

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/biotrust-cli/internal/credibility"
	"github.com/sells-group/biotrust-cli/internal/model"
)

// Tracker is the domain layer over a promise Store: it records
// extracted promises, resolves outcomes against deadlines, and keeps
// the credibility aggregates current.
type Tracker struct {
	store Store
	now   func() time.Time
}

// NewTracker wraps a Store.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Record saves a batch of extracted promises. Promise ids are content
// hashes, so re-recording the same extraction is idempotent.
func (t *Tracker) Record(ctx context.Context, promises []model.Promise) (int, error) {
	for _, p := range promises {
		if err := t.store.SavePromise(ctx, p); err != nil {
			return 0, err
		}
	}
	if len(promises) > 0 {
		zap.L().Info("promise: recorded batch",
			zap.String("company", promises[0].Company),
			zap.Int("count", len(promises)),
		)
	}
	return len(promises), nil
}

// UpdateOutcome resolves a promise. When the promise has a deadline and
// the proposed status claims delivery, the deadline is authoritative:
// the recorded outcome date decides on-time versus late regardless of
// what the caller claimed. Aggregates for the executive and company are
// recomputed afterward.
func (t *Tracker) UpdateOutcome(ctx context.Context, id string, proposed model.PromiseStatus, outcomeDate time.Time, details string) (*model.Promise, error) {
	p, err := t.store.GetPromise(ctx, id)
	if err != nil {
		return nil, err
	}

	status := proposed
	delivered := proposed == model.StatusDeliveredOnTime || proposed == model.StatusDeliveredLate
	if p.Deadline != nil && delivered {
		// The signed delay is stored even for early deliveries.
		delay := daysBetween(*p.Deadline, outcomeDate)
		p.DelayDays = &delay
		if delay <= 0 {
			status = model.StatusDeliveredOnTime
		} else {
			status = model.StatusDeliveredLate
		}
	}

	impact := credibility.Impact(status, p.DelayDays)
	p.Status = status
	p.OutcomeDate = &outcomeDate
	p.OutcomeDetails = details
	p.CredibilityImpact = &impact
	p.UpdatedAt = t.now().UTC()

	if err := t.store.SavePromise(ctx, *p); err != nil {
		return nil, err
	}
	if err := t.refreshAggregates(ctx, p.ExecutiveName, p.Company); err != nil {
		return nil, err
	}

	zap.L().Info("promise: outcome recorded",
		zap.String("id", p.ID),
		zap.String("status", string(p.Status)),
		zap.Float64("impact", impact),
	)
	return p, nil
}

// refreshAggregates recomputes and persists the executive and company
// credibility records from the full promise history.
func (t *Tracker) refreshAggregates(ctx context.Context, executiveName, company string) error {
	execPromises, err := t.store.ListByExecutive(ctx, executiveName, company)
	if err != nil {
		return err
	}
	if err := t.store.SaveExecutiveCredibility(ctx, credibility.ComputeExecutive(executiveName, company, execPromises)); err != nil {
		return err
	}

	companyPromises, err := t.store.ListByCompany(ctx, company)
	if err != nil {
		return err
	}
	return t.store.SaveCompanyCredibility(ctx, credibility.ComputeCompany(company, companyPromises))
}

// DuePromise is an open promise approaching (or past) its deadline.
// DaysUntilDeadline is negative when overdue.
type DuePromise struct {
	model.Promise
	DaysUntilDeadline int `json:"days_until_deadline"`
}

// DueWithin lists open promises whose deadline falls within the next
// N days, overdue ones included, soonest first.
func (t *Tracker) DueWithin(ctx context.Context, days int) ([]DuePromise, error) {
	now := t.now().UTC()
	promises, err := t.store.DueBefore(ctx, now.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}

	due := make([]DuePromise, 0, len(promises))
	for _, p := range promises {
		if p.Deadline == nil {
			continue
		}
		due = append(due, DuePromise{
			Promise:           p,
			DaysUntilDeadline: daysBetween(now, *p.Deadline),
		})
	}
	return due, nil
}

// PromiseLine pairs a promise with its display status for reports.
type PromiseLine struct {
	Promise model.Promise `json:"promise"`
	Display string        `json:"display"`
}

// ExecutiveDetails is the full accountability view of one executive,
// partitioned by how each promise resolved.
type ExecutiveDetails struct {
	Credibility model.ExecutiveCredibility `json:"credibility"`
	Failed      []PromiseLine              `json:"failed"`
	Late        []PromiseLine              `json:"late"`
	OnTime      []PromiseLine              `json:"on_time"`
	Pending     []PromiseLine              `json:"pending"`
}

// Details assembles the accountability view for an executive. The
// company filter is a substring match, so the history can span several
// stored company spellings; that is logged since attribution across
// variants is ambiguous.
func (t *Tracker) Details(ctx context.Context, executiveName, company string) (*ExecutiveDetails, error) {
	promises, err := t.store.ListByExecutive(ctx, executiveName, company)
	if err != nil {
		return nil, err
	}
	if len(promises) == 0 {
		return nil, eris.Errorf("no promises recorded for %s", executiveName)
	}

	companies := make(map[string]struct{})
	for _, p := range promises {
		companies[p.Company] = struct{}{}
	}
	if len(companies) > 1 {
		zap.L().Warn("promise: executive history spans multiple companies",
			zap.String("executive", executiveName),
			zap.String("company_filter", company),
			zap.Int("companies", len(companies)),
		)
	}
	if company == "" {
		company = promises[0].Company
	}

	now := t.now().UTC()
	details := &ExecutiveDetails{
		Credibility: credibility.ComputeExecutive(executiveName, company, promises),
	}
	for _, p := range promises {
		line := PromiseLine{Promise: p, Display: displayStatus(p, now)}
		switch p.Status {
		case model.StatusFailed:
			details.Failed = append(details.Failed, line)
		case model.StatusDeliveredLate:
			details.Late = append(details.Late, line)
		case model.StatusDeliveredOnTime:
			details.OnTime = append(details.OnTime, line)
		default:
			details.Pending = append(details.Pending, line)
		}
	}
	return details, nil
}

// Search finds promises by substring across text, company, and
// executive name.
func (t *Tracker) Search(ctx context.Context, query string) ([]model.Promise, error) {
	return t.store.SearchPromises(ctx, query)
}

func displayStatus(p model.Promise, now time.Time) string {
	switch p.Status {
	case model.StatusDeliveredOnTime:
		return "DELIVERED"
	case model.StatusDeliveredLate:
		if p.DelayDays != nil {
			return fmt.Sprintf("LATE (%d days)", *p.DelayDays)
		}
		return "LATE"
	case model.StatusFailed:
		return "FAILED"
	case model.StatusModified:
		return "MODIFIED"
	default:
		if p.Deadline != nil {
			days := daysBetween(now, *p.Deadline)
			if days < 0 {
				return fmt.Sprintf("OVERDUE (%d days)", -days)
			}
			return fmt.Sprintf("PENDING (%d days left)", days)
		}
		return "PENDING"
	}
}

// daysBetween returns whole days from a to b, negative when b precedes a.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
