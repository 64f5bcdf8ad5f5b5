package common

import "regexp"

// MatchRegex compiles and matches a regex pattern against a string.
// Returns an error if the pattern is invalid. Callers that match in a
// loop should compile once instead; this is for one-off checks against
// user-supplied patterns.
func MatchRegex(pattern, text string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(text), nil
}
