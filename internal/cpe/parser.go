package cpe

import "regexp"

// ParsedAsset is the immutable output of parsing a free-text asset
// descriptor (spec §3). Optional fields use the empty string to mean
// "absent" — callers test for that explicitly rather than using pointers,
// since every field is meaningful as a plain string in downstream scoring.
type ParsedAsset struct {
	Raw               string
	Normalized        string
	Tokens            []string
	Vendor            string
	Product           string
	Version           string
	VersionCandidates []string
}

// HasVendor reports whether a vendor guess was made.
func (p ParsedAsset) HasVendor() bool { return p.Vendor != "" }

// HasProduct reports whether a product guess was made.
func (p ParsedAsset) HasProduct() bool { return p.Product != "" }

// HasVersion reports whether a version was extracted.
func (p ParsedAsset) HasVersion() bool { return p.Version != "" }

// versionShapeRE matches a whole token that looks like a version string,
// used only as the fallback source for VersionCandidates when primary
// version extraction found nothing.
var versionShapeRE = regexp.MustCompile(`(?i)^v?\d+(?:\.\d+)*[a-z]?\d*$`)

// ParseAsset produces a ParsedAsset from raw free text per spec §4.B.
func ParseAsset(raw string) ParsedAsset {
	version, rest := extractVersion(raw)
	normalizedRest := normalizeText(rest, false)
	tokens := tokenize(normalizedRest)

	asset := ParsedAsset{
		Raw:        raw,
		Normalized: normalizeText(raw, false),
		Tokens:     tokens,
		Version:    version,
	}

	vendorIdx := -1
	if len(tokens) > 0 {
		vendor, idx := chooseVendor(tokens)
		asset.Vendor = vendor
		vendorIdx = idx
	}

	asset.Product = chooseProduct(tokens, vendorIdx, asset.Vendor)

	if version != "" {
		asset.VersionCandidates = []string{version}
	} else {
		for _, tok := range tokens {
			if versionShapeRE.MatchString(tok) {
				asset.VersionCandidates = append(asset.VersionCandidates, tok)
			}
		}
	}

	return asset
}

// chooseVendor implements spec §4.B step 3: known-vendor table, then first
// non-stop-word token longer than one character, then the first token as a
// last resort. Returns the chosen vendor string and the index it was taken
// from (so product extraction can exclude it).
func chooseVendor(tokens []string) (vendor string, index int) {
	for i, tok := range tokens {
		stripped := stripCorporateSuffix(tok)
		if isKnownVendor(stripped) {
			return stripped, i
		}
	}

	for i, tok := range tokens {
		if len(tok) > 1 && !isNonVendorWord(tok) {
			return stripCorporateSuffix(tok), i
		}
	}

	return tokens[0], 0
}

// chooseProduct implements spec §4.B step 4.
func chooseProduct(tokens []string, vendorIdx int, vendor string) string {
	remaining := make([]string, 0, len(tokens))
	for i, tok := range tokens {
		if i == vendorIdx {
			continue
		}
		remaining = append(remaining, tok)
	}

	if len(remaining) == 0 {
		return vendor
	}

	leading := remaining[0]
	if isKnownVendor(stripCorporateSuffix(leading)) {
		return leading
	}

	for _, tok := range remaining {
		if len(tok) > 1 && !isNonVendorWord(tok) {
			return tok
		}
	}

	if len(remaining) == 1 {
		return remaining[0]
	}
	return remaining[0] + " " + remaining[1]
}
