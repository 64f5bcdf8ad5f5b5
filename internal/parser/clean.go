package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Amount validity bounds. Ten characters covers 999,999.99 with thousands
// separators; anything longer is OCR debris glued onto a number.
const (
	maxAmountChars = 10
	maxAmountValue = 999_999.99
)

var (
	validAmountRe = regexp.MustCompile(`^\d{1,3}(,\d{3})*\.\d{2}$`)
	amountTokenRe = regexp.MustCompile(`[\dSszZeoOlIBg,]+\.[\dSszZeoOlIBg]{2}`)
	leadingJunkRe = regexp.MustCompile("^[|=_~—–\\s]+")
	multiSpaceRe  = regexp.MustCompile(`\s{2,}`)
)

// digitFixes maps characters tesseract commonly substitutes for digits.
// Applied only inside amount-shaped tokens, never to descriptions.
var digitFixes = map[rune]rune{
	'S': '4', 's': '4',
	'z': '7', 'Z': '7',
	'e': '6',
	'o': '0', 'O': '0',
	'l': '1', 'I': '1',
	'B': '8',
	'g': '9',
}

// CleanLine normalizes one OCR'd statement line: leading artifact strip,
// template-specific corrections, whitespace collapse.
func CleanLine(line string, ocrFixes map[string]string) string {
	line = leadingJunkRe.ReplaceAllString(line, "")
	for bad, good := range ocrFixes {
		line = strings.ReplaceAll(line, bad, good)
	}
	line = multiSpaceRe.ReplaceAllString(line, "  ")
	return strings.TrimSpace(line)
}

// fixDigits repairs misread digits inside an amount token.
func fixDigits(token string) string {
	var out strings.Builder
	for _, r := range token {
		if fixed, ok := digitFixes[r]; ok {
			out.WriteRune(fixed)
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// ValidAmountToken reports whether a token looks like a printed statement
// amount after digit repair.
func ValidAmountToken(token string) bool {
	token = fixDigits(strings.TrimSpace(token))
	if len(token) > maxAmountChars {
		return false
	}
	if !validAmountRe.MatchString(token) {
		return false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", ""), 64)
	if err != nil {
		return false
	}
	return value <= maxAmountValue
}

// ParseAmount converts an amount token to a float, repairing misread
// digits first.
func ParseAmount(token string) (float64, error) {
	token = fixDigits(strings.TrimSpace(token))
	token = strings.TrimPrefix(token, "$")
	if !ValidAmountToken(token) {
		return 0, fmt.Errorf("invalid amount token %q", token)
	}
	return strconv.ParseFloat(strings.ReplaceAll(token, ",", ""), 64)
}

// LastValidAmount returns the rightmost valid amount on a line. Statement
// lines often carry reference numbers (e.g. "REF 18211038") before the real
// amount, so the last well-formed token wins.
func LastValidAmount(line string) (float64, bool) {
	tokens := amountTokenRe.FindAllString(line, -1)
	for i := len(tokens) - 1; i >= 0; i-- {
		if amount, err := ParseAmount(tokens[i]); err == nil {
			return amount, true
		}
	}
	return 0, false
}

// ParseDate normalizes a statement date token. format is the template's
// declared layout; year supplies the statement year for formats without
// one. Impossible day values from OCR (9O read as 90) are repaired by
// offset before giving up.
func ParseDate(token, format string, year int) (time.Time, error) {
	token = strings.TrimSpace(token)
	parts := strings.Split(token, "/")

	switch format {
	case "MM/DD":
		// A printed year on an MM/DD statement is accepted rather than
		// rejected; some banks mix both on one page.
		if len(parts) != 2 && len(parts) != 3 {
			return time.Time{}, fmt.Errorf("date %q does not match MM/DD", token)
		}
	case "MM/DD/YYYY":
		if len(parts) != 3 {
			return time.Time{}, fmt.Errorf("date %q does not match MM/DD/YYYY", token)
		}
	default:
		return time.Time{}, fmt.Errorf("unsupported date format %q", format)
	}

	month, err := strconv.Atoi(fixDigits(parts[0]))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month in %q", token)
	}
	day, err := strconv.Atoi(fixDigits(parts[1]))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day in %q", token)
	}
	day = fixImpossibleDay(day)

	if len(parts) == 3 {
		y, err := strconv.Atoi(fixDigits(parts[2]))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid year in %q", token)
		}
		if y < 100 {
			y += 2000
		}
		year = y
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("date %q is not a calendar date", token)
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject normalized overflow like 02/31 -> 03/02.
	if int(date.Month()) != month || date.Day() != day {
		return time.Time{}, fmt.Errorf("date %q is not a calendar date", token)
	}
	return date, nil
}

// fixImpossibleDay repairs day values that can only come from a misread
// leading digit: 9O -> 90, 6l -> 61, 3l -> 31+.
func fixImpossibleDay(day int) int {
	switch {
	case day > 31 && day >= 90:
		return day - 90
	case day > 31 && day >= 60:
		return day - 60
	case day > 31 && day >= 32:
		return day - 30
	default:
		return day
	}
}

var (
	dateTokenRe = regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`)
	anyAmountRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})*\.\d{2}`)
)

// IsDailyBalanceLine detects the running-balance tables many statements
// print between sections: several dates on one line, or a large bare amount
// with no transaction wording around it.
func IsDailyBalanceLine(line string) bool {
	if len(dateTokenRe.FindAllString(line, -1)) >= 2 {
		return true
	}
	lower := strings.ToLower(line)
	for _, kw := range []string{"deposit", "check", "debit", "credit", "ach", "transfer", "fee", "withdrawal", "payment", "wire"} {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	amounts := anyAmountRe.FindAllString(line, -1)
	if len(amounts) == 0 {
		return false
	}
	last, err := ParseAmount(amounts[len(amounts)-1])
	return err == nil && last >= 10_000
}

// ShouldSkipLine applies a template's ignore list with word-boundary
// matching so "total" skips totals rows without eating words that merely
// contain it.
func ShouldSkipLine(line string, skipPatterns []string) bool {
	lower := strings.ToLower(line)
	for _, pattern := range skipPatterns {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(pattern) + `\b`)
		if err != nil {
			continue
		}
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}
