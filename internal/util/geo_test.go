package util

import (
	"testing"

	"salesroute/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	// Montreal to Quebec City, roughly 233 km
	d := HaversineDistance(45.5017, -73.5673, 46.8139, -71.2080)
	assert.InDelta(t, 233000, d, 3000)

	assert.Zero(t, HaversineDistance(10, 10, 10, 10))
}

func TestPathLength(t *testing.T) {
	assert.Zero(t, PathLength(nil))
	assert.Zero(t, PathLength(model.CoordinateSequence{{Lat: 1, Lon: 1}}))

	seq := model.CoordinateSequence{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 0, Lon: 2}}
	// One degree of longitude on the equator is ~111.2 km
	assert.InDelta(t, 2*111195, PathLength(seq), 100)
}

func TestMeanCenter(t *testing.T) {
	_, ok := MeanCenter(model.CoordinateSequence{})
	assert.False(t, ok)

	center, ok := MeanCenter(model.CoordinateSequence{{Lat: 10, Lon: -20}, {Lat: 20, Lon: -40}})
	assert.True(t, ok)
	assert.Equal(t, model.Coordinate{Lat: 15, Lon: -30}, center)
}

func TestShortUUID(t *testing.T) {
	id := ShortUUID()
	assert.Len(t, id, 22)
	assert.True(t, IsShortUUID(id))
	assert.NotEqual(t, id, ShortUUID())

	assert.False(t, IsShortUUID("not-an-id"))
	assert.False(t, IsShortUUID("!!!!!!!!!!!!!!!!!!!!!!"))
}
