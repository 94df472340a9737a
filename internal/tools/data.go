// Package tools implements the mock travel tool server: canned weather,
// attraction, and currency data served over plain JSON endpoints for the
// planner and over MCP for MCP-compatible agents.
package tools

import (
	"sort"
	"strings"
)

// Weather is a canned weather report for a city.
type Weather struct {
	City       string `json:"city"`
	Condition  string `json:"condition"`
	TempC      int    `json:"temp_c"`
	Humidity   int    `json:"humidity"`
	WindKph    int    `json:"wind_kph"`
	BestSeason string `json:"best_season"`
}

// Attraction is one sight in a city.
type Attraction struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Duration string `json:"suggested_duration"`
}

// Conversion is the result of a currency conversion.
type Conversion struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Amount    float64 `json:"amount"`
	Converted float64 `json:"converted"`
	Rate      float64 `json:"rate"`
}

var weatherByCity = map[string]Weather{
	"tokyo":     {City: "Tokyo", Condition: "partly cloudy", TempC: 22, Humidity: 60, WindKph: 11, BestSeason: "spring"},
	"kyoto":     {City: "Kyoto", Condition: "clear", TempC: 24, Humidity: 55, WindKph: 7, BestSeason: "autumn"},
	"paris":     {City: "Paris", Condition: "light rain", TempC: 16, Humidity: 72, WindKph: 18, BestSeason: "late spring"},
	"rome":      {City: "Rome", Condition: "sunny", TempC: 27, Humidity: 45, WindKph: 9, BestSeason: "early autumn"},
	"barcelona": {City: "Barcelona", Condition: "sunny", TempC: 25, Humidity: 58, WindKph: 14, BestSeason: "summer"},
	"reykjavik": {City: "Reykjavik", Condition: "overcast", TempC: 8, Humidity: 80, WindKph: 26, BestSeason: "summer"},
}

var attractionsByCity = map[string][]Attraction{
	"tokyo": {
		{Name: "Senso-ji Temple", Kind: "temple", Duration: "2h"},
		{Name: "Shibuya Crossing", Kind: "landmark", Duration: "1h"},
		{Name: "Meiji Jingu", Kind: "shrine", Duration: "2h"},
	},
	"kyoto": {
		{Name: "Fushimi Inari Taisha", Kind: "shrine", Duration: "3h"},
		{Name: "Arashiyama Bamboo Grove", Kind: "nature", Duration: "2h"},
		{Name: "Kinkaku-ji", Kind: "temple", Duration: "1h30m"},
	},
	"paris": {
		{Name: "Louvre Museum", Kind: "museum", Duration: "4h"},
		{Name: "Eiffel Tower", Kind: "landmark", Duration: "2h"},
		{Name: "Montmartre", Kind: "district", Duration: "3h"},
	},
	"rome": {
		{Name: "Colosseum", Kind: "landmark", Duration: "3h"},
		{Name: "Vatican Museums", Kind: "museum", Duration: "4h"},
		{Name: "Trastevere", Kind: "district", Duration: "3h"},
	},
	"barcelona": {
		{Name: "Sagrada Familia", Kind: "landmark", Duration: "2h"},
		{Name: "Park Guell", Kind: "park", Duration: "2h"},
		{Name: "Gothic Quarter", Kind: "district", Duration: "3h"},
	},
	"reykjavik": {
		{Name: "Hallgrimskirkja", Kind: "landmark", Duration: "1h"},
		{Name: "Blue Lagoon", Kind: "nature", Duration: "4h"},
		{Name: "Golden Circle", Kind: "day trip", Duration: "8h"},
	},
}

// ratesToUSD maps currency codes to their USD value.
var ratesToUSD = map[string]float64{
	"USD": 1.0,
	"EUR": 1.09,
	"JPY": 0.0067,
	"GBP": 1.27,
	"ISK": 0.0072,
	"CHF": 1.12,
}

// Cities returns the display names of every city with canned data.
func Cities() []string {
	names := make([]string, 0, len(weatherByCity))
	for _, w := range weatherByCity {
		names = append(names, w.City)
	}
	sort.Strings(names)
	return names
}

func lookupWeather(city string) (Weather, bool) {
	w, ok := weatherByCity[strings.ToLower(strings.TrimSpace(city))]
	return w, ok
}

func lookupAttractions(city string) ([]Attraction, bool) {
	a, ok := attractionsByCity[strings.ToLower(strings.TrimSpace(city))]
	return a, ok
}

func convert(from, to string, amount float64) (Conversion, bool) {
	fromRate, ok := ratesToUSD[strings.ToUpper(strings.TrimSpace(from))]
	if !ok {
		return Conversion{}, false
	}
	toRate, ok := ratesToUSD[strings.ToUpper(strings.TrimSpace(to))]
	if !ok {
		return Conversion{}, false
	}
	rate := fromRate / toRate
	return Conversion{
		From:      strings.ToUpper(strings.TrimSpace(from)),
		To:        strings.ToUpper(strings.TrimSpace(to)),
		Amount:    amount,
		Converted: amount * rate,
		Rate:      rate,
	}, true
}
