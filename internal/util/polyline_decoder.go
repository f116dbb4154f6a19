package util

import (
	"fmt"
	"math"
	"strings"

	"salesroute/internal/model"
)

// DefaultPrecision is the Google/HERE polyline standard (scale 1e-5)
const DefaultPrecision = 5

// DecodeError reports a malformed encoded polyline
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode polyline: %s at offset %d", e.Reason, e.Offset)
}

// DecodePolyline converts an encoded polyline string to a sequence of lat/lng coordinates
// Implementation based on Google's Encoded Polyline Algorithm Format
func DecodePolyline(encoded string) (model.CoordinateSequence, error) {
	return DecodePolylineWithPrecision(encoded, DefaultPrecision)
}

// DecodePolylineWithPrecision decodes a polyline with a custom number of decimal places.
// For GraphHopper API, use 6.
func DecodePolylineWithPrecision(encoded string, precision int) (model.CoordinateSequence, error) {
	factor := math.Pow10(precision)
	points := make(model.CoordinateSequence, 0, len(encoded)/4)
	index, lat, lng := 0, 0, 0

	for index < len(encoded) {
		var delta int
		var err error

		delta, index, err = decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		lat += delta

		delta, index, err = decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		lng += delta

		// Divide rather than multiply so 3850000 becomes exactly 38.5
		points = append(points, model.Coordinate{
			Lat: float64(lat) / factor,
			Lon: float64(lng) / factor,
		})
	}

	return points, nil
}

// decodeValue reads one zig-zag varint starting at index.
// Returns the signed delta and the index of the next unread byte.
func decodeValue(encoded string, index int) (int, int, error) {
	shift, result := 0, 0
	start := index

	for {
		if index >= len(encoded) {
			return 0, index, &DecodeError{Offset: start, Reason: "truncated polyline"}
		}
		c := encoded[index]
		if c < 63 || c > 126 {
			return 0, index, &DecodeError{Offset: index, Reason: fmt.Sprintf("invalid character %q", encoded[index:index+1])}
		}
		b := int(c) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}

// EncodePolyline is the inverse of DecodePolyline (precision 5)
func EncodePolyline(coords []model.Coordinate) string {
	return EncodePolylineWithPrecision(coords, DefaultPrecision)
}

// EncodePolylineWithPrecision encodes coordinates rounding each axis to the given decimal places
func EncodePolylineWithPrecision(coords []model.Coordinate, precision int) string {
	factor := math.Pow10(precision)
	var sb strings.Builder
	sb.Grow(len(coords) * 8)

	prevLat, prevLng := 0, 0
	for _, c := range coords {
		lat := int(math.Round(c.Lat * factor))
		lng := int(math.Round(c.Lon * factor))

		encodeValue(&sb, lat-prevLat)
		encodeValue(&sb, lng-prevLng)

		prevLat, prevLng = lat, lng
	}

	return sb.String()
}

func encodeValue(sb *strings.Builder, value int) {
	v := value << 1
	if value < 0 {
		v = ^v
	}
	for v >= 0x20 {
		sb.WriteByte(byte((v&0x1f)|0x20) + 63)
		v >>= 5
	}
	sb.WriteByte(byte(v) + 63)
}
