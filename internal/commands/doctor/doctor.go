// Package doctor runs health checks over the calculator's configuration and
// saved history, and repairs what it safely can.
package doctor

import "context"

// Status is the outcome of a single finding.
type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Remedy names a repair `abacus doctor --fix` knows how to apply.
type Remedy string

const (
	// RemedyRemoveTemp deletes a temp file left by an interrupted save.
	RemedyRemoveTemp Remedy = "remove-temp"
	// RemedyTrimHistory rewrites the saved history keeping only the newest
	// max_history_size calculations.
	RemedyTrimHistory Remedy = "trim-history"
)

// Finding is one line of a check report. Remedy is set on warnings and
// failures that --fix can repair.
type Finding struct {
	Label  string `json:"label"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
	Remedy Remedy `json:"remedy,omitempty"`
}

func pass(label, detail string) Finding {
	return Finding{Label: label, Status: StatusPass, Detail: detail}
}

func warn(label, detail string) Finding {
	return Finding{Label: label, Status: StatusWarn, Detail: detail}
}

func fail(label, detail string) Finding {
	return Finding{Label: label, Status: StatusFail, Detail: detail}
}

// Report groups the findings of one check.
type Report struct {
	Name     string    `json:"name"`
	Findings []Finding `json:"findings"`
}

func (r *Report) add(f ...Finding) {
	r.Findings = append(r.Findings, f...)
}

// Check inspects one part of the setup.
type Check interface {
	Name() string
	Run(ctx context.Context) Report
}

// RunAll runs checks in order. A cancelled context stops before the next
// check.
func RunAll(ctx context.Context, checks ...Check) []Report {
	reports := make([]Report, 0, len(checks))
	for _, check := range checks {
		if ctx.Err() != nil {
			break
		}
		reports = append(reports, check.Run(ctx))
	}
	return reports
}

// Tally counts findings by status.
type Tally struct {
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

// Healthy reports whether nothing failed. Warnings do not count.
func (t Tally) Healthy() bool { return t.Failed == 0 }

func Count(reports []Report) Tally {
	var t Tally
	for _, r := range reports {
		for _, f := range r.Findings {
			switch f.Status {
			case StatusPass:
				t.Passed++
			case StatusWarn:
				t.Warned++
			case StatusFail:
				t.Failed++
			}
		}
	}
	return t
}

// Pending returns the unresolved findings that --fix could repair.
func Pending(reports []Report) []Finding {
	var out []Finding
	for _, r := range reports {
		for _, f := range r.Findings {
			if f.Remedy != "" && f.Status != StatusPass {
				out = append(out, f)
			}
		}
	}
	return out
}
