// Package citydata serves the static province/city/district gazetteer used
// for keyword search and for stitching full administrative names onto geo
// lookup candidates. The data is a province → city → districts mapping with
// the provider's naming quirks (市辖区, 县, 省直辖县级行政区划) normalized
// at read time.
package citydata

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed pca.json
var gazetteerJSON []byte

// Store holds the loaded gazetteer. Immutable after Load.
type Store struct {
	provinces map[string]map[string][]string
}

// Load parses the embedded gazetteer. A parse failure is a build defect, not
// an operational condition, so it is returned rather than tolerated.
func Load() (*Store, error) {
	var provinces map[string]map[string][]string
	if err := json.Unmarshal(gazetteerJSON, &provinces); err != nil {
		return nil, fmt.Errorf("parsing embedded gazetteer: %w", err)
	}

	log.Info().Int("provinces", len(provinces)).Msg("gazetteer loaded")
	return &Store{provinces: provinces}, nil
}

// Provinces returns all first-level division names.
func (s *Store) Provinces() []string {
	names := make([]string, 0, len(s.provinces))
	for name := range s.provinces {
		names = append(names, name)
	}
	return names
}

// CityDistricts returns the city → districts map for a province, normalized:
// the 市辖区/县 placeholder groupings of municipalities take the province's
// own name, and 省直辖县级行政区划 entries are flattened so each directly
// administered division stands as its own city.
func (s *Store) CityDistricts(province string) map[string][]string {
	if province == "" {
		return map[string][]string{}
	}

	cities, ok := s.provinces[province]
	if !ok {
		return map[string][]string{}
	}

	result := make(map[string][]string, len(cities))
	for city, districts := range cities {
		switch city {
		case "市辖区", "县":
			city = province
		case "省直辖县级行政区划":
			for _, district := range districts {
				result[district] = []string{district}
			}
			continue
		}

		result[city] = append(result[city], districts...)
	}

	return result
}

// SearchDistrict returns "名称-上级" entries whose city or district name
// contains the keyword.
func (s *Store) SearchDistrict(keyword string) []string {
	if strings.TrimSpace(keyword) == "" {
		return nil
	}

	var results []string
	for province := range s.provinces {
		for city, districts := range s.CityDistricts(province) {
			if strings.Contains(city, keyword) {
				results = append(results, city+"-"+province)
			}
			for _, district := range districts {
				if district == city {
					continue
				}
				if strings.Contains(district, keyword) {
					results = append(results, district+"-"+city)
				}
			}
		}
	}

	return results
}

// ResolveDistrict stitches full administrative names onto a lookup candidate.
// The provider returns truncated city and district names (e.g. 海淀 for
// 海淀区); the first gazetteer entry the truncated name is a prefix of wins.
// Returns the full city name and the full candidate name, falling back to
// the inputs when no match is found.
func (s *Store) ResolveDistrict(province, city, name string) (fullCity string, fullName string) {
	fullCity, fullName = city, name

	districts := s.CityDistricts(province)
	for candidate, list := range districts {
		if !strings.HasPrefix(candidate, city) {
			continue
		}

		fullCity = candidate
		if name == city {
			fullName = candidate
			return
		}
		for _, district := range list {
			if strings.HasPrefix(district, name) {
				fullName = district
				return
			}
		}
		return
	}

	return
}
