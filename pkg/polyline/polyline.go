// Package polyline implements the compact lat/lon polyline encoding used by
// the directions provider: signed deltas at 1e-5 degree precision, zigzag
// encoded, split into 5-bit groups carried in printable ASCII offset by 63,
// with bit 0x20 flagging that more groups follow.
package polyline

import (
	"github.com/lintang-b-s/navigo/pkg"
	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/lintang-b-s/navigo/pkg/util"
)

// Decode decodes an encoded polyline into coordinates, in input order. An
// empty input yields an empty path. Truncated input (a delta whose last group
// still has the continuation bit set, or a latitude delta without its paired
// longitude delta) and bytes below the ASCII offset fail with a
// util.ErrPolylineCorrupt error, no partial path is returned.
func Decode(encoded string) ([]datastructure.Coordinate, error) {
	coords := make([]datastructure.Coordinate, 0, len(encoded)/4)

	var lat, lon int64
	pos := 0
	for pos < len(encoded) {
		dLat, n, err := decodeDelta(encoded, pos)
		if err != nil {
			return nil, err
		}
		pos += n

		dLon, n, err := decodeDelta(encoded, pos)
		if err != nil {
			return nil, err
		}
		pos += n

		lat += dLat
		lon += dLon
		coords = append(coords, datastructure.NewCoordinate(
			float64(lat)/pkg.POLYLINE_PRECISION,
			float64(lon)/pkg.POLYLINE_PRECISION,
		))
	}

	return coords, nil
}

// decodeDelta reads one zigzag encoded signed delta starting at pos and
// returns the delta plus the number of bytes consumed.
func decodeDelta(encoded string, pos int) (int64, int, error) {
	var raw uint64
	shift := uint(0)
	i := pos
	for {
		if i >= len(encoded) {
			return 0, 0, util.WrapErrorf(nil, util.ErrPolylineCorrupt,
				"polyline truncated at byte %d", i)
		}
		b := int32(encoded[i]) - 63
		if b < 0 {
			return 0, 0, util.WrapErrorf(nil, util.ErrPolylineCorrupt,
				"polyline byte %d out of range: %q", i, encoded[i])
		}
		i++

		raw |= uint64(b&0x1f) << shift
		shift += 5

		if b&0x20 == 0 {
			break
		}
	}

	delta := int64(raw >> 1)
	if raw&1 != 0 {
		delta = ^delta
	}
	return delta, i - pos, nil
}

// Encode is the inverse of Decode.
func Encode(path []datastructure.Coordinate) string {
	buf := make([]byte, 0, len(path)*4)

	var prevLat, prevLon int64
	for _, c := range path {
		lat := scale(c.GetLat())
		lon := scale(c.GetLon())

		buf = encodeDelta(lat-prevLat, buf)
		buf = encodeDelta(lon-prevLon, buf)

		prevLat = lat
		prevLon = lon
	}

	return string(buf)
}

func scale(degree float64) int64 {
	return int64(util.RoundFloat(degree*pkg.POLYLINE_PRECISION, 0))
}

func encodeDelta(delta int64, buf []byte) []byte {
	raw := uint64(delta) << 1
	if delta < 0 {
		raw = ^raw
	}
	for raw >= 0x20 {
		buf = append(buf, byte(0x20|(raw&0x1f))+63)
		raw >>= 5
	}
	return append(buf, byte(raw)+63)
}
