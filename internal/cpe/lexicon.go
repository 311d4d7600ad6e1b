package cpe

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed data/lexicon.yaml
var lexiconYAML []byte

// lexicon holds the fixed vendor/stop-word vocabulary from spec §6. It is
// loaded once from an embedded resource so the word lists can evolve
// without touching the parser.
type lexicon struct {
	KnownVendors   []string `yaml:"known_vendors"`
	NonVendorWords []string `yaml:"non_vendor_words"`
}

var (
	knownVendors   map[string]struct{}
	nonVendorWords map[string]struct{}

	// corporateSuffixRE strips a trailing corporate suffix before vendor
	// comparison, per spec §6.
	corporateSuffixRE = regexp.MustCompile(`(?i)(inc|corp|ltd|llc|gmbh|co)$`)
)

func init() {
	var l lexicon
	if err := yaml.Unmarshal(lexiconYAML, &l); err != nil {
		panic(fmt.Sprintf("cpe: failed to load embedded lexicon: %v", err))
	}

	knownVendors = make(map[string]struct{}, len(l.KnownVendors))
	for _, v := range l.KnownVendors {
		knownVendors[v] = struct{}{}
	}

	nonVendorWords = make(map[string]struct{}, len(l.NonVendorWords))
	for _, w := range l.NonVendorWords {
		nonVendorWords[w] = struct{}{}
	}
}

// isKnownVendor reports whether the corporate-suffix-stripped token is a
// recognized vendor name.
func isKnownVendor(stripped string) bool {
	_, ok := knownVendors[stripped]
	return ok
}

// isNonVendorWord reports whether a token is a stop-word that should never
// be chosen as a vendor.
func isNonVendorWord(token string) bool {
	_, ok := nonVendorWords[token]
	return ok
}

// stripCorporateSuffix removes a trailing corporate suffix (inc, corp,
// ltd, llc, gmbh, co) from a token, case-insensitively.
func stripCorporateSuffix(token string) string {
	return corporateSuffixRE.ReplaceAllString(token, "")
}
