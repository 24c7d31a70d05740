package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/shopspring/decimal"
)

var fundCardTemplate = template.Must(template.New("fund").Parse(`<div style="font-family: Arial, sans-serif; line-height:1.6; color:#0b1220;">
  <h2 style="margin:0 0 8px;">{{.Title}}</h2>
  <p style="margin:0 0 12px;">{{.Intro}} <b>{{.Fund}}</b></p>
  <div style="padding:14px; border:1px solid #e2e8f0; border-radius:12px; background:#f8fafc;">
    {{range .Rows}}<p style="margin:6px 0 0;"><b>{{.Label}}:</b> {{.Value}}</p>
    {{end}}<div style="margin-top:10px; background:#e2e8f0; border-radius:999px; overflow:hidden; height:12px;">
      <div style="width:{{.Bar}}%; background:{{.Color}}; height:12px;"></div>
    </div>
    <p style="margin:8px 0 0; font-size:13px; color:#334155;">{{.Footer}}</p>
  </div>
</div>`))

type fundCardRow struct {
	Label string
	Value string
}

type fundCard struct {
	Title  string
	Intro  string
	Fund   string
	Rows   []fundCardRow
	Bar    int64
	Color  template.CSS
	Footer string
}

func renderFundCard(card fundCard) (string, error) {
	if card.Bar > 100 {
		card.Bar = 100
	}
	var buf bytes.Buffer
	if err := fundCardTemplate.Execute(&buf, card); err != nil {
		return "", fmt.Errorf("rendering fund email: %w", err)
	}
	return buf.String(), nil
}

type fundFigures struct {
	target, saved, remaining decimal.Decimal
	pct                      int64
}

func figuresOf(fund domain.Fund) fundFigures {
	return fundFigures{
		target:    fund.TargetAmount,
		saved:     fund.SavedAmount,
		remaining: decimal.Max(fund.TargetAmount.Sub(fund.SavedAmount), decimal.Zero),
		pct:       wholePercent(fund.SavedAmount, fund.TargetAmount),
	}
}

func inr(d decimal.Decimal) string {
	return rupee + grouped(d)
}

func fundEnvelope(fund domain.Fund, key string, today civil.Date, compose func(context.Context) (Message, map[string]interface{}, error)) envelope {
	return envelope{
		owner:   fund.Owner,
		kind:    domain.TargetFund,
		target:  fund.ID,
		key:     key,
		day:     today,
		compose: compose,
	}
}

func fundMeta(fund domain.Fund, kind string) map[string]interface{} {
	return map[string]interface{}{
		"type":      kind,
		"module":    "emergency",
		"fund_id":   fund.ID,
		"fund_name": fund.Name,
	}
}

// FundCreated welcomes a new emergency fund, even one with nothing saved yet.
func (n *Notifier) FundCreated(ctx context.Context, fund domain.Fund, today civil.Date) Outcome {
	return n.deliver(ctx, fundEnvelope(fund, FundCreatedKey(fund.ID), today,
		func(context.Context) (Message, map[string]interface{}, error) {
			f := figuresOf(fund)
			text := "Your emergency fund is created successfully!\n\n" +
				"Fund: " + fund.Name + "\n" +
				"Target: " + inr(f.target) + "\n" +
				"Current Saved: " + inr(f.saved) + "\n" +
				"Remaining: " + inr(f.remaining) + "\n" +
				"Interval: " + string(fund.Interval) + "\n"
			html, err := renderFundCard(fundCard{
				Title: "Emergency Fund Created!",
				Intro: "Your new fund is ready:",
				Fund:  fund.Name,
				Rows: []fundCardRow{
					{"Target", inr(f.target)},
					{"Saved", inr(f.saved)},
					{"Remaining", inr(f.remaining)},
					{"Interval", string(fund.Interval)},
				},
				Bar:    f.pct,
				Color:  "#3b82f6",
				Footer: "Start small: " + rupee + "50 today is better than " + rupee + "0 tomorrow.",
			})
			meta := fundMeta(fund, "emergency_created")
			if err != nil {
				return Message{}, meta, err
			}
			return Message{
				Subject: "Emergency Fund Created: " + fund.Name,
				Text:    text,
				HTML:    html,
			}, meta, nil
		}))
}

// FundContribution confirms money added to a fund. fund must already
// reflect the new saved amount.
func (n *Notifier) FundContribution(ctx context.Context, fund domain.Fund, added decimal.Decimal, today civil.Date) Outcome {
	if !added.IsPositive() {
		return Skipped
	}
	return n.deliver(ctx, fundEnvelope(fund, FundContributionKey(today, fund.ID, added), today,
		func(context.Context) (Message, map[string]interface{}, error) {
			f := figuresOf(fund)
			text := "Saving added successfully!\n\n" +
				"Fund: " + fund.Name + "\n" +
				"Added: " + inr(added) + "\n" +
				"Saved: " + inr(f.saved) + " / " + inr(f.target) + "\n" +
				"Remaining: " + inr(f.remaining) + "\n" +
				fmt.Sprintf("Progress: %d%%\n", f.pct)
			html, err := renderFundCard(fundCard{
				Title: "Saving Added Successfully!",
				Intro: "You just strengthened your safety net in",
				Fund:  fund.Name,
				Rows: []fundCardRow{
					{"Added", inr(added)},
					{"Saved", inr(f.saved) + " / " + inr(f.target)},
					{"Remaining", inr(f.remaining)},
				},
				Bar:    f.pct,
				Color:  "#22c55e",
				Footer: fmt.Sprintf("You're %d%% close to your target.", f.pct),
			})
			meta := fundMeta(fund, "emergency_success")
			meta["added"] = toFloat(added)
			if err != nil {
				return Message{}, meta, err
			}
			return Message{
				Subject: fmt.Sprintf("Emergency Fund Updated: %s (%d%% done)", fund.Name, f.pct),
				Text:    text,
				HTML:    html,
			}, meta, nil
		}))
}

// FundMissedInterval reminds the owner that no money was added within the
// fund's interval. Keyed per day, so a lapsed fund is reminded daily.
func (n *Notifier) FundMissedInterval(ctx context.Context, fund domain.Fund, daysOverdue int, today civil.Date) Outcome {
	return n.deliver(ctx, fundEnvelope(fund, FundMissedKey(today, fund.ID), today,
		func(context.Context) (Message, map[string]interface{}, error) {
			f := figuresOf(fund)
			text := "Friendly reminder!\n\n" +
				"You haven't added savings to '" + fund.Name + "' within your selected interval.\n" +
				"Saved: " + inr(f.saved) + " / " + inr(f.target) + "\n" +
				"Remaining: " + inr(f.remaining) + "\n" +
				fmt.Sprintf("Overdue: %d day(s)\n", daysOverdue)
			meta := fundMeta(fund, "emergency_missed")
			meta["days_overdue"] = daysOverdue
			return Message{
				Subject: fmt.Sprintf("Reminder: Add to %s (%d%% complete)", fund.Name, f.pct),
				Text:    text,
			}, meta, nil
		}))
}

// DaysOverdue reports how far past its interval fund is on today. The
// interval starts at the last contribution, or at creation when there is
// none; loc decides which calendar day those instants fall on.
func DaysOverdue(fund domain.Fund, today civil.Date, loc *time.Location) (int, bool) {
	base := fund.CreatedAt
	if fund.LastContributionAt != nil {
		base = *fund.LastContributionAt
	}
	if base.IsZero() {
		return 0, false
	}
	if loc == nil {
		loc = time.UTC
	}
	passed := today.DaysSince(civil.DateOf(base.In(loc)))
	interval := fund.Interval.Days()
	if passed <= interval {
		return 0, false
	}
	return passed - interval, true
}
