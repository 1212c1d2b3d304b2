package app

import (
	"context"
	"sort"
	"strings"
)

type LocationLister interface {
	ListLocations(ctx context.Context) ([]string, error)
}

type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

type CommunitySummary struct {
	Total        int            `json:"total"`
	CountryCount int            `json:"country_count"`
	TopCountries []CountryCount `json:"top_countries"`
}

type StatisticsService struct {
	users LocationLister
}

func NewStatisticsService(users LocationLister) *StatisticsService {
	return &StatisticsService{users: users}
}

func (s *StatisticsService) Summary(ctx context.Context) (*CommunitySummary, error) {
	locations, err := s.users.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	return SummarizeLocations(locations), nil
}

// SummarizeLocations counts members per country, taking the country as the
// last comma separated part of the free-text location. Countries are sorted
// by count, then name.
func SummarizeLocations(locations []string) *CommunitySummary {
	counts := make(map[string]int)
	for _, loc := range locations {
		if strings.TrimSpace(loc) == "" {
			continue
		}
		parts := strings.Split(loc, ",")
		if country := strings.TrimSpace(parts[len(parts)-1]); country != "" {
			counts[country]++
		}
	}

	top := make([]CountryCount, 0, len(counts))
	for country, n := range counts {
		top = append(top, CountryCount{Country: country, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Country < top[j].Country
	})

	return &CommunitySummary{
		Total:        len(locations),
		CountryCount: len(top),
		TopCountries: top,
	}
}
