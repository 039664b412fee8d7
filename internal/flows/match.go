package flows

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/gustavo-meilus/flowgate/internal/page"
)

// Normalize lowercases a string, applies Unicode NFC, and collapses
// whitespace runs to single spaces, so markup-driven differences in
// casing and spacing cannot defeat message comparison.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// ContainsNormalized reports whether hay contains needle once both are
// normalized. An empty needle never matches.
func ContainsNormalized(hay, needle string) bool {
	if strings.TrimSpace(needle) == "" {
		return false
	}
	return strings.Contains(Normalize(hay), Normalize(needle))
}

// Keywords extracts the meaningful tokens of an expected message: the
// normalized words longer than two characters, with surrounding
// punctuation trimmed. Short glue words ("a", "to", "do") drop out so
// partial rewordings of a banner still match on substance.
func Keywords(s string) []string {
	var out []string
	for _, f := range strings.Fields(Normalize(s)) {
		f = strings.Trim(f, `.,:;!?"'()[]`)
		if len(f) > 2 {
			out = append(out, f)
		}
	}
	return out
}

func containsAllKeywords(hay, expected string) bool {
	kws := Keywords(expected)
	if len(kws) == 0 {
		return false
	}
	h := Normalize(hay)
	for _, kw := range kws {
		if !strings.Contains(h, kw) {
			return false
		}
	}
	return true
}

// MatchMessage looks for an expected message on the page through four
// layers, most exact first:
//
//  1. the literal string anywhere in the body, normalized
//  2. the same with a trailing period stripped
//  3. each alert region, matching the full string or all keywords
//  4. the whole body, matching all keywords
//
// It returns whether anything matched and the layer that did ("direct",
// "trailing-period", "alert", "keywords"), which goes to the debug log
// so flaky matches are explainable. Read errors on a layer skip it
// rather than failing the check.
func MatchMessage(ctx context.Context, p page.Page, expected string) (bool, string) {
	if strings.TrimSpace(expected) == "" {
		return false, ""
	}

	body, err := p.BodyText(ctx)
	if err != nil {
		body = ""
	}

	if ContainsNormalized(body, expected) {
		return true, "direct"
	}

	if trimmed := strings.TrimSuffix(strings.TrimSpace(expected), "."); trimmed != "" && ContainsNormalized(body, trimmed) {
		return true, "trailing-period"
	}

	alerts, err := p.TextAll(ctx, alertRegions)
	if err == nil {
		for _, a := range alerts {
			if ContainsNormalized(a, expected) || containsAllKeywords(a, expected) {
				return true, "alert"
			}
		}
	}

	if containsAllKeywords(body, expected) {
		return true, "keywords"
	}

	return false, ""
}
