// Package tracklog records and replays coordinate streams as bzip2-compressed
// track files. Each record is one line "lat,lon,unix_ms" in sample order.
package tracklog

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/lintang-b-s/navigo/pkg/geo"
)

const FileExtension = ".trk.bz2"

type Writer struct {
	f   *os.File
	bz  *bzip2.Writer
	buf *bufio.Writer
}

func NewWriter(filename string) (*Writer, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Writer{
		f:   f,
		bz:  bz,
		buf: bufio.NewWriter(bz),
	}, nil
}

func (w *Writer) Write(loc datastructure.Coordinate, t time.Time) error {
	_, err := fmt.Fprintf(w.buf, "%f,%f,%d\n", loc.GetLat(), loc.GetLon(), t.UnixMilli())
	return err
}

func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		return err
	}
	if err := w.bz.Close(); err != nil {
		return err
	}
	return w.f.Close()
}

// ReadFile reads a whole track back, in record order. Speed of each point is
// derived from the haversine distance and the timestamps of the previous
// record, the first point of a track has speed 0.
func ReadFile(filename string) ([]datastructure.TrackPoint, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, err
	}
	defer bz.Close()

	track := make([]datastructure.TrackPoint, 0)

	scanner := bufio.NewScanner(bz)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var (
			lat, lon float64
			unixMs   int64
		)
		if _, err := fmt.Sscanf(line, "%f,%f,%d", &lat, &lon, &unixMs); err != nil {
			return nil, fmt.Errorf("invalid track record %q: %w", line, err)
		}

		t := time.UnixMilli(unixMs)
		speed := 0.0
		if len(track) > 0 {
			prev := track[len(track)-1]
			dt := t.Sub(prev.Time()).Seconds()
			if dt > 0 {
				speed = geo.CalculateHaversineDistance(prev.Lat(), prev.Lon(), lat, lon) / dt
			}
		}

		track = append(track, datastructure.NewTrackPoint(lat, lon, t, speed))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return track, nil
}
