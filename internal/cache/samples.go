package cache

import (
	_ "embed"
	"encoding/json"

	"github.com/eventboard/eventboard/internal/model"
)

var (
	//go:embed samples.json
	samplesJSON []byte
	//go:embed cities.json
	citiesJSON []byte
)

// DefaultSamples returns the built-in sample events used to seed a fresh
// cache. Each call returns a new slice.
func DefaultSamples() []model.Event {
	var samples []model.Event
	mustDecode("samples.json", samplesJSON, &samples)
	return samples
}

// DefaultCities returns the built-in city catalogue in display order.
func DefaultCities() []model.City {
	var cities []model.City
	mustDecode("cities.json", citiesJSON, &cities)
	return cities
}

func mustDecode(name string, data []byte, v any) {
	if err := json.Unmarshal(data, v); err != nil {
		panic("cache: embedded " + name + " is invalid: " + err.Error())
	}
}
