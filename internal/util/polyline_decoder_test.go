package util

import (
	"errors"
	"sync"
	"testing"

	"salesroute/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-polyline"
)

const referencePolyline = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"

var referenceCoords = model.CoordinateSequence{
	{Lat: 38.5, Lon: -120.2},
	{Lat: 40.7, Lon: -120.95},
	{Lat: 43.252, Lon: -126.453},
}

func TestDecodePolyline_ReferenceVector(t *testing.T) {
	coords, err := DecodePolyline(referencePolyline)
	require.NoError(t, err)
	assert.Equal(t, referenceCoords, coords)
}

func TestDecodePolyline_Empty(t *testing.T) {
	coords, err := DecodePolyline("")
	require.NoError(t, err)
	assert.NotNil(t, coords)
	assert.Empty(t, coords)
}

func TestDecodePolyline_RoundTripWithReferenceEncoder(t *testing.T) {
	input := [][]float64{
		{45.5017, -73.5673},
		{45.502, -73.567},
		{-33.86785, 151.20732},
		{0, 0},
		{-0.00001, 0.00001},
	}
	encoded := string(polyline.EncodeCoords(input))

	coords, err := DecodePolyline(encoded)
	require.NoError(t, err)
	require.Len(t, coords, len(input))
	for i, want := range input {
		assert.InDelta(t, want[0], coords[i].Lat, 1e-5, "lat %d", i)
		assert.InDelta(t, want[1], coords[i].Lon, 1e-5, "lon %d", i)
	}
}

func TestEncodePolyline_MatchesReference(t *testing.T) {
	assert.Equal(t, referencePolyline, EncodePolyline(referenceCoords))

	ours := EncodePolyline(model.CoordinateSequence{{Lat: 45.5017, Lon: -73.5673}, {Lat: 45.502, Lon: -73.567}})
	theirs := polyline.EncodeCoords([][]float64{{45.5017, -73.5673}, {45.502, -73.567}})
	assert.Equal(t, string(theirs), ours)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	seq := model.CoordinateSequence{
		{Lat: 48.85661, Lon: 2.35222},
		{Lat: 48.8584, Lon: 2.2945},
		{Lat: -89.99999, Lon: 179.99999},
	}

	coords, err := DecodePolyline(EncodePolyline(seq))
	require.NoError(t, err)
	require.Len(t, coords, len(seq))
	for i := range seq {
		assert.InDelta(t, seq[i].Lat, coords[i].Lat, 1e-5)
		assert.InDelta(t, seq[i].Lon, coords[i].Lon, 1e-5)
	}
}

func TestDecodePolylineWithPrecision(t *testing.T) {
	seq := model.CoordinateSequence{{Lat: 52.520008, Lon: 13.404954}}

	coords, err := DecodePolylineWithPrecision(EncodePolylineWithPrecision(seq, 6), 6)
	require.NoError(t, err)
	require.Len(t, coords, 1)
	assert.InDelta(t, 52.520008, coords[0].Lat, 1e-6)
	assert.InDelta(t, 13.404954, coords[0].Lon, 1e-6)
}

func TestDecodePolyline_Truncated(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"missing longitude", "_p~iF"},
		{"cut inside latitude", "_p~"},
		{"cut inside second point", referencePolyline[:12]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coords, err := DecodePolyline(tt.encoded)
			assert.Nil(t, coords)

			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr))
			assert.Equal(t, "truncated polyline", decodeErr.Reason)
		})
	}
}

func TestDecodePolyline_InvalidCharacter(t *testing.T) {
	_, err := DecodePolyline("_p~iF ps|U")

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, 5, decodeErr.Offset)
	assert.Contains(t, err.Error(), "invalid character")
}

func TestDecodePolyline_NonASCIIByteIsQuotedRaw(t *testing.T) {
	_, err := DecodePolyline("é?")

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, 0, decodeErr.Offset)
	assert.Equal(t, `invalid character "\xc3"`, decodeErr.Reason)
}

func TestDecodePolyline_ConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]model.CoordinateSequence, 32)
	errs := make([]error, len(results))

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = DecodePolyline(referencePolyline)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, referenceCoords, results[i])
	}
}
