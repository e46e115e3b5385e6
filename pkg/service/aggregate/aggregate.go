// Package aggregate turns dataset records into chart-ready series.
// Every function is pure and never mutates its input.
package aggregate

import (
	"sort"
	"strings"

	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
)

// ByYear sums records of the country per year, ascending by year
func ByYear(records []*model.Record, country string) []model.YearTotal {
	byYear := make(map[int]*model.YearTotal)
	for _, r := range records {
		if r.Country != country {
			continue
		}
		yt, ok := byYear[r.Year]
		if !ok {
			yt = &model.YearTotal{Year: r.Year}
			byYear[r.Year] = yt
		}
		yt.Total += r.SuicideCount
		switch r.Sex {
		case types.SexMale:
			yt.Male += r.SuicideCount
		case types.SexFemale:
			yt.Female += r.SuicideCount
		}
	}

	result := make([]model.YearTotal, 0, len(byYear))
	for _, yt := range byYear {
		result = append(result, *yt)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Year < result[j].Year })
	return result
}

// ByAgeBracket sums records of the country and year per age bracket.
// The bracket set comes from every year of the country in first-observed order,
// so brackets absent in the selected year are present with zero.
func ByAgeBracket(records []*model.Record, country string, year int) *model.BracketSeries {
	var keys []string
	index := make(map[string]int)
	for _, r := range records {
		if r.Country != country {
			continue
		}
		key := BracketKey(r.AgeBracket)
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = len(keys)
		keys = append(keys, key)
	}

	series := &model.BracketSeries{Brackets: make([]model.BracketTotal, len(keys))}
	if len(keys) == 0 {
		return series
	}
	for i, k := range keys {
		series.Brackets[i] = model.BracketTotal{Key: k}
	}

	for _, r := range records {
		if r.Country != country || r.Year != year {
			continue
		}
		if i, ok := index[BracketKey(r.AgeBracket)]; ok {
			series.Brackets[i].Total += r.SuicideCount
		}
	}

	series.Lowest = series.Brackets[0]
	series.Highest = series.Brackets[0]
	for _, b := range series.Brackets {
		series.GrandTotal += b.Total
		if b.Total < series.Lowest.Total {
			series.Lowest = b
		}
		if b.Total > series.Highest.Total {
			series.Highest = b
		}
	}
	series.Average = float64(series.GrandTotal) / float64(len(keys))

	return series
}

// BracketKey normalizes an age label to its leading run of digits, e.g. "15-24 years" to "15".
// A label without leading digits keeps its first whitespace-delimited token.
func BracketKey(label string) string {
	label = strings.TrimSpace(label)
	end := 0
	for end < len(label) && label[end] >= '0' && label[end] <= '9' {
		end++
	}
	if end > 0 {
		return label[:end]
	}

	if fields := strings.Fields(label); len(fields) > 0 {
		return fields[0]
	}
	return label
}

// Countries returns distinct countries in first-observed order
func Countries(records []*model.Record) []string {
	seen := make(map[string]struct{})
	var countries []string
	for _, r := range records {
		if _, ok := seen[r.Country]; ok {
			continue
		}
		seen[r.Country] = struct{}{}
		countries = append(countries, r.Country)
	}
	return countries
}

// Years returns the distinct years observed for the country, ascending
func Years(records []*model.Record, country string) []int {
	seen := make(map[int]struct{})
	var years []int
	for _, r := range records {
		if r.Country != country {
			continue
		}
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		years = append(years, r.Year)
	}
	sort.Ints(years)
	return years
}
