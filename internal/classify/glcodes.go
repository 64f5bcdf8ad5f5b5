// Package classify assigns accounting modules, GL codes, and payees to raw
// transactions by running layered matchers merged by confidence and
// priority.
package classify

import "github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"

// glRule maps description keywords to a GL code within one module.
type glRule struct {
	GLCode   string
	Keywords []string
}

// Revenue-side GL rules, most specific first.
var crGLRules = []glRule{
	{GLCode: "4110", Keywords: []string{"hud treas", "hud"}},
	{GLCode: "4120", Keywords: []string{"doe treas", "dept of education"}},
	{GLCode: "4130", Keywords: []string{"hhs treas", "health and human"}},
	{GLCode: "4100", Keywords: []string{"grant", "treas", "drawdown", "federal"}},
	{GLCode: "4200", Keywords: []string{"rent", "lease", "tenant"}},
	{GLCode: "4400", Keywords: []string{"donation", "contribution", "pledge"}},
	{GLCode: model.InterestGL, Keywords: []string{"interest"}},
}

// Expense-side GL rules.
var cdGLRules = []glRule{
	{GLCode: "7200", Keywords: []string{"payroll", "intuit", "adp", "gusto", "salar"}},
	{GLCode: "7400", Keywords: []string{"irs", "tax", "eftps"}},
	{GLCode: model.BankFeesGL, Keywords: []string{"service charge", "maintenance fee", "analysis fee", "bank fee", "nsf"}},
	{GLCode: "7500", Keywords: []string{"insurance", "premium"}},
	{GLCode: model.VendorGL, Keywords: []string{"check"}},
}

// Module keyword vocabularies scanned by the keyword matcher. Regex
// patterns carry more weight than bare keywords.
var moduleKeywords = map[model.Module][]string{
	model.ModuleCR: {
		"deposit", "grant", "hud", "treas", "donation", "contribution",
		"rent", "interest", "drawdown", "wire in", "transfer in",
		"ach credit", "refund received",
	},
	model.ModuleCD: {
		"check", "payroll", "intuit", "adp", "irs", "tax", "insurance",
		"utility", "fee", "service charge", "payment", "withdrawal",
		"ach debit", "wire out", "transfer out",
	},
	model.ModuleJV: {
		"transfer between", "sweep", "adjustment", "correction",
		"bank error", "reclass",
	},
}

var modulePatterns = map[model.Module][]string{
	model.ModuleCR: {
		`(?i)\b[A-Z]{2,4}\s+TREAS\s+\d{3}\b`,
		`(?i)\bACH\s+CREDIT\b`,
		`(?i)\bMISC\s+PAY\b`,
	},
	model.ModuleCD: {
		`(?i)\bCHECK\s*#?\s*\d{3,6}\b`,
		`(?i)\bACH\s+(?:CORP\s+)?DEBIT\b`,
		`(?i)\bEFTPS\b`,
	},
	model.ModuleJV: {
		`(?i)\bTRANSFER\s+(?:TO|FROM)\s+(?:ACCT|ACCOUNT)\b`,
	},
}

// glCodeFor finds the GL code for a description within one module's rule
// table. Empty means no rule fired and the module fallback applies.
func glCodeFor(module model.Module, lowerDesc string) string {
	var rules []glRule
	switch module {
	case model.ModuleCR:
		rules = crGLRules
	case model.ModuleCD:
		rules = cdGLRules
	default:
		return ""
	}

	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if containsWord(lowerDesc, kw) {
				return rule.GLCode
			}
		}
	}
	return ""
}
