package cpe

import (
	"regexp"
	"strings"
)

// versionPatterns are tried in order, most specific first, per spec §4.A.
var versionPatterns = []*regexp.Regexp{
	// v?D+.D+.D+(.D+)?([a-z]D*)?  e.g. 2.4.51, 1.2.3.4
	regexp.MustCompile(`(?i)v?\d+\.\d+\.\d+(?:\.\d+)?(?:[a-z]\d*)?`),
	// v?D+.D+([a-z]D*)?  e.g. 2.4, 1.0a, 10.0s0
	regexp.MustCompile(`(?i)v?\d+\.\d+(?:[a-z]\d*)?`),
	// vD+(.D+)*  e.g. v2, v2.3
	regexp.MustCompile(`(?i)v\d+(?:\.\d+)*`),
}

// nonAlnumRE and nonAlnumNoDotRE match anything normalizeText drops once
// underscores/hyphens have been turned into spaces (with and without dots
// preserved).
var nonAlnumRE = regexp.MustCompile(`[^a-z0-9 .]+`)
var nonAlnumNoDotRE = regexp.MustCompile(`[^a-z0-9 ]+`)

// extractVersion scans raw text for the first (most specific) version-shaped
// substring, strips it out, and returns the canonical version (leading v/V
// removed) alongside the remaining text. If nothing matches, version is
// empty and rest equals raw.
func extractVersion(raw string) (version string, rest string) {
	for _, pattern := range versionPatterns {
		loc := pattern.FindStringIndex(raw)
		if loc == nil {
			continue
		}
		match := raw[loc[0]:loc[1]]
		rest = raw[:loc[0]] + " " + raw[loc[1]:]
		version = strings.TrimPrefix(strings.TrimPrefix(match, "v"), "V")
		return version, rest
	}
	return "", raw
}

// normalizeText lowercases, replaces underscores/hyphens with spaces,
// collapses whitespace, and drops all other non-alphanumerics. When
// preserveDots is true, '.' is retained (the version-preserving mode of
// spec §4.A); otherwise it too is stripped.
func normalizeText(s string, preserveDots bool) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	if preserveDots {
		s = nonAlnumRE.ReplaceAllString(s, "")
	} else {
		s = nonAlnumNoDotRE.ReplaceAllString(s, "")
	}

	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// tokenize splits normalized text on whitespace into a token slice.
func tokenize(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}
