// Package gpsfeed decodes a recorded NMEA sentence log into GPS
// samples for the sensor-path CLI. It reads a plain io.Reader — no
// serial driver, no hardware I/O.
package gpsfeed

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/relabs-tech/kartpower/internal/sensor"
)

// ParseLog reads newline-separated NMEA sentences and returns one
// GPSSample per RMC sentence, in file order. Non-RMC sentences and
// unparseable lines are skipped.
func ParseLog(r io.Reader) ([]sensor.GPSSample, error) {
	scanner := bufio.NewScanner(r)
	out := make([]sensor.GPSSample, 0)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			continue
		}

		if sentence.DataType() != nmea.TypeRMC {
			continue
		}
		m := sentence.(nmea.RMC)

		out = append(out, sensor.GPSSample{
			SpeedMps: m.Speed * knotsToMps,
			Lat:      m.Latitude,
			Lon:      m.Longitude,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read NMEA log: %w", err)
	}
	return out, nil
}

const knotsToMps = 0.514444
