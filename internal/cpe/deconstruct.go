package cpe

import "strings"

// Wildcard is the CPE 2.3 "any value" sentinel.
const Wildcard = "*"

// cpePrefix is the mandatory CPE 2.3 URI prefix.
const cpePrefix = "cpe:2.3:"

// DeconstructedCpe is an immutable view of a CPE 2.3 URI split into its 11
// attributes plus comparison tokens (spec §3/§4.C).
type DeconstructedCpe struct {
	Raw   string
	Valid bool

	Part      string
	Vendor    string
	Product   string
	Version   string
	Update    string
	Edition   string
	Language  string
	SWEdition string
	TargetSW  string
	TargetHW  string
	Other     string

	Tokens []string
}

// Deconstruct splits a CPE 2.3 URI into its attributes. If raw does not
// begin with "cpe:2.3:" with at least 5 colon-separated fields, it returns
// a sentinel deconstruction with Valid=false, empty attributes, and no
// tokens — the scorer can still run against it and will contribute zero.
func Deconstruct(raw string) DeconstructedCpe {
	fields := strings.Split(raw, ":")

	if !strings.HasPrefix(raw, cpePrefix) || len(fields) < 5 {
		return DeconstructedCpe{Raw: raw, Valid: false}
	}

	get := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return Wildcard
	}

	d := DeconstructedCpe{
		Raw:       raw,
		Valid:     true,
		Part:      get(2),
		Vendor:    get(3),
		Product:   get(4),
		Version:   get(5),
		Update:    get(6),
		Edition:   get(7),
		Language:  get(8),
		SWEdition: get(9),
		TargetSW:  get(10),
		TargetHW:  get(11),
		Other:     get(12),
	}

	d.Tokens = cpeTokens(d.Vendor, d.Product, d.Version)

	return d
}

// splitTokensRE-equivalent splitter: lowercase and split on '_', '-', '.',
// and whitespace, dropping empty segments.
func cpeTokens(parts ...string) []string {
	var tokens []string
	for _, part := range parts {
		if part == "" || part == Wildcard {
			continue
		}
		lower := strings.ToLower(part)
		for _, seg := range strings.FieldsFunc(lower, func(r rune) bool {
			switch r {
			case '_', '-', '.', ' ', '\t', '\n':
				return true
			default:
				return false
			}
		}) {
			if seg != "" {
				tokens = append(tokens, seg)
			}
		}
	}
	return tokens
}
