// Package countries maps ISO 3166 alpha-2 codes to display names for
// the country filter dropdown.
package countries

import (
	"sort"

	"github.com/biter777/countries"
)

// UnknownName is shown for codes the ISO table does not know.
// The upstream API occasionally carries stale or bogus codes.
const UnknownName = "Unknown"

// Country pairs an alpha-2 code with its display name.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Resolve maps alpha-2 codes to named countries, sorted by name.
// Unknown codes are kept with the name "Unknown" so players filtered
// by them stay reachable.
func Resolve(codes []string) []Country {
	out := make([]Country, 0, len(codes))
	for _, code := range codes {
		out = append(out, Country{Code: code, Name: nameFor(code)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].Code < out[j].Code
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func nameFor(code string) string {
	cc := countries.ByName(code)
	// ByName does not report misses as Unknown; validity is the only
	// reliable signal for a bogus code.
	if cc == countries.Unknown || !cc.IsValid() {
		return UnknownName
	}
	return cc.String()
}
