package main

import (
	"testing"

	"github.com/alejandrodnm/flipscore/config"
	"github.com/alejandrodnm/flipscore/internal/adapters/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComparables(t *testing.T) {
	got, err := parseComparables(" 950, 1020.5,,990 ")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "1020.50", got[1].StringFixed(2))

	none, err := parseComparables("")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = parseComparables("900,abc")
	require.Error(t, err)
}

func TestNewProvider_FilePreferred(t *testing.T) {
	p := newProvider(config.FeedConfig{File: "x.yaml", URL: "https://feed.example.com"})
	assert.IsType(t, &feed.FileProvider{}, p)

	p = newProvider(config.FeedConfig{URL: "https://feed.example.com"})
	assert.IsType(t, &feed.HTTPProvider{}, p)
}

func TestFilterConfig(t *testing.T) {
	f := filterConfig(config.ScannerConfig{MinDealScore: 40, MinNetProfit: 75.5, MaxRisk: 6, MaxDistanceMiles: 30})
	assert.Equal(t, 40.0, f.MinDealScore)
	assert.Equal(t, "75.50", f.MinNetProfit.StringFixed(2))
	assert.Equal(t, 6.0, f.MaxRisk)
	assert.Equal(t, 30.0, f.MaxDistance)
}
