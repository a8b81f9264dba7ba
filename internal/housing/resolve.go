package housing

import (
	"strings"
)

var stopWords = map[string]bool{
	"the": true, "of": true, "in": true, "at": true,
	"to": true, "for": true, "on": true, "with": true,
}

// Common short forms users type that never appear in region names verbatim.
var regionAliases = map[string]string{
	"nyc":       "New York",
	"ny":        "New York",
	"la":        "Los Angeles",
	"sf":        "San Francisco",
	"dc":        "Washington",
	"philly":    "Philadelphia",
	"boston":    "Boston",
	"chicago":   "Chicago",
	"miami":     "Miami",
	"atlanta":   "Atlanta",
	"dallas":    "Dallas",
	"houston":   "Houston",
	"phoenix":   "Phoenix",
	"denver":    "Denver",
	"seattle":   "Seattle",
	"nashville": "Nashville",
}

// Resolve maps a free-text location to a loaded region. Matching runs in
// three passes: exact substring match on extracted terms, then the alias
// table, then failure. Successful resolutions are cached for the process
// lifetime.
func (ds *Dataset) Resolve(location string) (*Region, bool) {
	key := strings.ToLower(location)
	if cached, ok := ds.cache.Load(key); ok {
		return ds.regions[cached.(string)], true
	}

	terms := searchTerms(location)

	for _, name := range ds.names {
		lower := strings.ToLower(name)
		for _, term := range terms {
			if strings.Contains(lower, strings.ToLower(term)) {
				ds.cache.Store(key, name)
				return ds.regions[name], true
			}
		}
	}

	for _, term := range terms {
		alias, ok := regionAliases[strings.ToLower(term)]
		if !ok {
			continue
		}
		for _, name := range ds.names {
			if strings.Contains(strings.ToLower(name), strings.ToLower(alias)) {
				ds.cache.Store(key, name)
				return ds.regions[name], true
			}
		}
	}

	return nil, false
}

// searchTerms splits a location query into candidate match terms: individual
// words plus adjacent pairs (for names like "New York"), with punctuation and
// stop words dropped.
func searchTerms(location string) []string {
	cleaned := strings.NewReplacer(",", " ", "-", " ", ".", " ").Replace(location)
	parts := strings.Fields(cleaned)

	terms := make([]string, 0, len(parts)*2)
	terms = append(terms, parts...)
	for i := 0; i+1 < len(parts); i++ {
		terms = append(terms, parts[i]+" "+parts[i+1])
	}

	out := terms[:0]
	for _, t := range terms {
		if len(t) > 1 && !stopWords[strings.ToLower(t)] {
			out = append(out, t)
		}
	}
	return out
}
