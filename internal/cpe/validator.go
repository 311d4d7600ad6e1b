package cpe

import (
	"context"
	"strings"
)

// legacyCpePrefix is the CPE 2.2 URI-binding prefix this validator
// explicitly rejects rather than auto-upgrading (spec §4.D).
const legacyCpePrefix = "cpe:/"

// ValidationResult is the return value of ValidateCpe (spec §6.2).
type ValidationResult struct {
	IsValid         bool
	ExistsInCatalog bool
	ExactMatch      bool
	Deprecated      bool
	Parsed          DeconstructedCpe
	MatchesFound    int
	Message         string
}

// ValidateCpe is the validateCpe entry point of spec §6.2. When checkCatalog
// is true and the syntactic phase passes, it issues an exact-match catalog
// query through the client; an upstream failure there does not invalidate
// the CPE — it is reported as syntactically valid but unverified (§7).
func ValidateCpe(ctx context.Context, cpeString string, client *Client, checkCatalog bool) ValidationResult {
	if strings.HasPrefix(cpeString, legacyCpePrefix) {
		return ValidationResult{
			IsValid: false,
			Parsed:  DeconstructedCpe{Raw: cpeString, Valid: false},
			Message: "CPE 2.2 format; please supply 2.3",
		}
	}

	deconstructed := Deconstruct(cpeString)

	if reason := syntaxViolation(deconstructed); reason != "" {
		return ValidationResult{
			IsValid: false,
			Parsed:  deconstructed,
			Message: reason,
		}
	}

	result := ValidationResult{
		IsValid: true,
		Parsed:  deconstructed,
		Message: "syntactically valid CPE 2.3 URI",
	}

	if !checkCatalog || client == nil {
		return result
	}

	catalog, err := client.QueryExact(ctx, cpeString)
	if err != nil {
		result.Message = "syntactically valid; catalog verification unavailable: " + err.Error()
		return result
	}

	result.MatchesFound = len(catalog.Products)
	result.ExistsInCatalog = len(catalog.Products) > 0

	for _, p := range catalog.Products {
		if strings.EqualFold(p.CPEName, cpeString) {
			result.ExactMatch = true
			result.Deprecated = p.Deprecated
			break
		}
	}

	switch {
	case result.ExactMatch:
		result.Message = "exact match found in catalog"
	case result.ExistsInCatalog:
		result.Message = "partial match: similar entries found in catalog, no exact match"
	default:
		result.Message = "syntactically valid; not found in catalog"
	}

	return result
}

// syntaxViolation implements the syntactic phase of spec §4.D, returning a
// human-readable reason or "" when the CPE is well-formed.
func syntaxViolation(d DeconstructedCpe) string {
	if !strings.HasPrefix(d.Raw, cpePrefix) {
		return "CPE must begin with \"cpe:2.3:\""
	}
	if !d.Valid {
		return "CPE must have at least 5 colon-separated fields"
	}
	switch d.Part {
	case "a", "o", "h":
	default:
		return "part must be one of: a, o, h"
	}
	if d.Vendor == "" || d.Vendor == Wildcard {
		return "vendor attribute must be present"
	}
	return ""
}
