package cpe

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ScoreBreakdown holds the four [0,1] sub-scores computed for one
// (ParsedAsset, DeconstructedCpe) pair (spec §3/§4.H).
type ScoreBreakdown struct {
	Vendor       float64
	Product      float64
	Version      float64
	TokenOverlap float64
}

// Composite combines the sub-scores with w into a percentage in [0,100],
// rounded to two decimal places.
func (b ScoreBreakdown) Composite(w ScoringWeights) float64 {
	raw := 100 * (w.Vendor*b.Vendor + w.Product*b.Product + w.Version*b.Version + w.TokenOverlap*b.TokenOverlap)
	return math.Round(raw*100) / 100
}

// score computes the full breakdown for one candidate against the parsed
// asset, per spec §4.H.
func score(asset ParsedAsset, cpe DeconstructedCpe) ScoreBreakdown {
	return ScoreBreakdown{
		Vendor:       scoreVendor(asset.Vendor, cpe.Vendor),
		Product:      scoreProduct(asset.Product, cpe.Product),
		Version:      scoreVersion(asset.Version, cpe.Version),
		TokenOverlap: jaccard(toSet(asset.Tokens), toSet(cpe.Tokens)),
	}
}

// scoreVendor implements the vendor sub-score ladder of spec §4.H.
func scoreVendor(assetVendor, cpeVendor string) float64 {
	if assetVendor == "" {
		return 0
	}
	if cpeVendor == Wildcard {
		return 0.3
	}

	a := strings.ToLower(assetVendor)
	c := strings.ToLower(cpeVendor)

	if a == c {
		return 1.0
	}
	if strings.Contains(a, c) || strings.Contains(c, a) {
		return 0.7
	}
	if levenshteinDistance(a, c) <= 2 {
		return 0.5
	}
	return 0
}

// scoreProduct implements the product sub-score of spec §4.H: the max of
// tokenized Jaccard and a Levenshtein ratio, with absence/wildcard
// short-circuits.
func scoreProduct(assetProduct, cpeProduct string) float64 {
	if assetProduct == "" {
		return 0
	}
	if cpeProduct == Wildcard {
		return 0.2
	}

	jaccardScore := jaccard(productTokenSet(assetProduct), productTokenSet(cpeProduct))

	a := strings.ToLower(assetProduct)
	c := strings.ToLower(strings.ReplaceAll(cpeProduct, "_", " "))
	ratioScore := levenshteinRatio(a, c)

	if ratioScore > jaccardScore {
		return ratioScore
	}
	return jaccardScore
}

var productTokenSplitRE = regexp.MustCompile(`[_\-\s]+`)

// productTokenSet tokenizes a product string for Jaccard comparison: split
// on '_', '-', and whitespace, lowercase, drop empties.
func productTokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range productTokenSplitRE.Split(strings.ToLower(s), -1) {
		if tok != "" {
			set[tok] = struct{}{}
		}
	}
	return set
}

// yearRE matches a bare 4-digit year form.
var yearRE = regexp.MustCompile(`^\d{4}$`)

// scoreVersion implements the version sub-score ladder of spec §4.H.
func scoreVersion(assetVersion, cpeVersion string) float64 {
	if assetVersion == "" {
		return 0.3
	}
	if cpeVersion == Wildcard {
		return 0.3
	}

	a := strings.ToLower(assetVersion)
	c := strings.ToLower(cpeVersion)

	if a == c {
		return 1.0
	}

	if yearRE.MatchString(a) && yearRE.MatchString(c) {
		ai, _ := strconv.Atoi(a)
		ci, _ := strconv.Atoi(c)
		delta := ai - ci
		if delta == 0 {
			return 1.0
		}
		if delta == 1 || delta == -1 {
			return 0.6
		}
		return 0
	}

	av := parseVersion(a)
	cv := parseVersion(c)

	if av.Major == cv.Major && av.Minor == cv.Minor && av.Patch == cv.Patch && av.Suffix == cv.Suffix {
		return 0.95
	}
	if av.Major == cv.Major && av.Minor == cv.Minor {
		return 0.8
	}
	if av.Major == cv.Major {
		return 0.5
	}
	return 0
}

// parsedVersion is the {major, minor, patch, suffix} decomposition of spec
// §4.H, e.g. "10.0s0" -> major=10, minor=0, patch=0, suffix="s0".
type parsedVersion struct {
	Major  int
	Minor  int
	Patch  int
	Suffix string
}

var versionComponentRE = regexp.MustCompile(`^(\d+)([a-z]\d*)?$`)

// parseVersion splits a (lowercased, leading-v-stripped) version string on
// '.' into up to three numeric components plus a trailing-letter suffix on
// the last present component.
func parseVersion(v string) parsedVersion {
	v = strings.TrimPrefix(strings.TrimPrefix(v, "v"), "V")

	parts := strings.Split(v, ".")
	var pv parsedVersion

	get := func(i int) (int, string) {
		if i >= len(parts) {
			return 0, ""
		}
		m := versionComponentRE.FindStringSubmatch(parts[i])
		if m == nil {
			return 0, ""
		}
		n, _ := strconv.Atoi(m[1])
		return n, m[2]
	}

	var minorSuffix, patchSuffix string
	pv.Major, _ = get(0)
	pv.Minor, minorSuffix = get(1)
	pv.Patch, patchSuffix = get(2)

	switch {
	case patchSuffix != "":
		pv.Suffix = patchSuffix
	case minorSuffix != "":
		pv.Suffix = minorSuffix
	}

	return pv
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[strings.ToLower(t)] = struct{}{}
	}
	return set
}

// jaccard computes |A ∩ B| / |A ∪ B|, 0 when both sets are empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
