package domain

// Region identifies one of the four ranked leaderboard divisions
// published by the Dota 2 web API.
type Region string

const (
	RegionAmericas Region = "americas"
	RegionEurope   Region = "europe"
	RegionSEAsia   Region = "se_asia"
	RegionChina    Region = "china"
)

// DefaultRegion is where the landing page redirects when no region
// preference is known.
const DefaultRegion = RegionEurope

// Regions lists all divisions in display order.
func Regions() []Region {
	return []Region{RegionAmericas, RegionEurope, RegionSEAsia, RegionChina}
}

// ParseRegion validates a region slug from a URL path or query.
func ParseRegion(s string) (Region, error) {
	switch Region(s) {
	case RegionAmericas, RegionEurope, RegionSEAsia, RegionChina:
		return Region(s), nil
	}
	return "", ErrUnknownRegion
}

func (r Region) String() string { return string(r) }
