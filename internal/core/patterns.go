// ABOUTME: Fixed pattern tables used by the validator, checker, generator and handler
// ABOUTME: Regexes are compiled once at package init
package core

import (
	"fmt"
	"regexp"
)

// suspiciousPatterns each cut data confidence by suspiciousPenalty when matched
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)as an ai`),
	regexp.MustCompile(`(?i)i cannot`),
	regexp.MustCompile(`(?i)i don't have access`),
	regexp.MustCompile(`\[PLACEHOLDER\]`),
	regexp.MustCompile(`\[INSERT.*HERE\]`),
}

const (
	missingSourcePenalty = 0.5
	suspiciousPenalty    = 0.3
	driftPenalty         = 0.7
)

var negationWords = []string{"not", "isn't", "aren't", "wasn't", "weren't", "never", "no"}

type antonymPair struct {
	a, b string
}

var antonymPairs = []antonymPair{
	{"always", "never"},
	{"all", "none"},
	{"everyone", "no one"},
	{"true", "false"},
	{"yes", "no"},
}

// hallucinationPhrases are removed verbatim from validated content
var hallucinationPhrases = []string{
	"As an AI assistant",
	"I don't have access to",
	"I cannot provide",
	"[PLACEHOLDER]",
	"[INSERT HERE]",
}

// uncertaintyPhrases are stripped from regenerated drafts
var uncertaintyPhrases = []string{
	"might be",
	"could be",
	"possibly",
	"maybe",
	"I think",
	"I believe",
}

// patternRule is one row of the handler's last-resort pattern detector.
// Rules are evaluated in order and the first match wins.
type patternRule struct {
	re         *regexp.Regexp
	confidence float64
	reason     string
}

var hallucinationRules = []patternRule{
	{regexp.MustCompile(`(?i)as an ai|as a language model`), 0.95, "Self-referential AI pattern"},
	{regexp.MustCompile(`(?i)i don't have access|cannot access`), 0.9, "Access limitation pattern"},
	{regexp.MustCompile(`\[.*?\]|\{.*?\}`), 0.8, "Placeholder pattern"},
	{regexp.MustCompile(`(?i)hypothetically|theoretically|in theory`), 0.7, "Speculative language pattern"},
}

var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)DROP\s+TABLE`),
	regexp.MustCompile(`(?i)DELETE\s+FROM`),
	regexp.MustCompile(`(?i)INSERT\s+INTO`),
}

// stringify renders arbitrary data the way it is hashed and pattern-matched
func stringify(data any) string {
	switch v := data.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
