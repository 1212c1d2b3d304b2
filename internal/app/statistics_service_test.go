package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iga-community/internal/model"
)

func TestSummarizeLocations(t *testing.T) {
	summary := SummarizeLocations([]string{
		"Newark, NJ, USA",
		"Accra, Ghana",
		"Brooklyn, NY, USA",
		"",
		"Ghana",
		"Monrovia, Liberia",
	})

	assert.Equal(t, 6, summary.Total)
	assert.Equal(t, 3, summary.CountryCount)
	assert.Equal(t, []CountryCount{
		{Country: "Ghana", Count: 2},
		{Country: "USA", Count: 2},
		{Country: "Liberia", Count: 1},
	}, summary.TopCountries)
}

func TestStatisticsSummary(t *testing.T) {
	users := newFakeUserStore()
	for _, u := range []model.User{
		{Email: "a@example.org", Location: "Accra, Ghana"},
		{Email: "b@example.org", Location: "Georgetown, Guyana"},
	} {
		require.NoError(t, users.Create(context.Background(), &u))
	}

	summary, err := NewStatisticsService(users).Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, "Ghana", summary.TopCountries[0].Country)

	users.lookupErr = errors.New("db down")
	_, err = NewStatisticsService(users).Summary(context.Background())
	assert.Error(t, err)
}
