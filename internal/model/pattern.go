package model

import (
	"regexp"
	"strings"
	"time"
)

// LearnedPattern is a classification rule created from a manual correction.
// A later correction becomes a new pattern, never a retroactive edit.
type LearnedPattern struct {
	CreatedAt  time.Time
	LastUsed   time.Time
	Pattern    string // substring or regex matched against descriptions
	Module     Module
	GLCode     string
	FundCode   string
	Payee      string
	ID         int64
	Confidence float64
	UseCount   int
	IsRegex    bool
}

// Matches reports whether the pattern applies to a description.
func (p *LearnedPattern) Matches(description string) bool {
	if p.Pattern == "" {
		return false
	}
	if p.IsRegex {
		re, err := regexp.Compile("(?i)" + p.Pattern)
		if err != nil {
			return false
		}
		return re.MatchString(description)
	}
	return strings.Contains(strings.ToUpper(description), strings.ToUpper(p.Pattern))
}

// Vendor is a known payee on the disbursement side.
type Vendor struct {
	LastUpdated time.Time
	Name        string
	Aliases     []string
	GLCode      string
	FundCode    string
	UseCount    int
}

// Customer is a known payer on the receipts side; grants carry their
// federal program number and a dedicated fund code.
type Customer struct {
	LastUpdated time.Time
	Name        string
	Aliases     []string
	GLCode      string
	FundCode    string
	CFDANumber  string // federal grant program number, empty for non-grants
	UseCount    int
}

// PostedTransaction is one row of the already-posted history used by the
// database side of duplicate detection.
type PostedTransaction struct {
	PostedAt    time.Time
	Date        time.Time
	Description string
	CheckNumber string
	Hash        string
	Amount      float64
}
