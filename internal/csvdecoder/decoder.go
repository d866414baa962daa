// Package csvdecoder tokenizes a logger CSV file, extracts its
// metadata block, locates the header row, and yields the data rows.
package csvdecoder

import (
	"bytes"
	"encoding/csv"
	"math"
	"strconv"
	"strings"

	"github.com/relabs-tech/kartpower/internal/apperr"
	"github.com/relabs-tech/kartpower/internal/channelmap"
	"github.com/relabs-tech/kartpower/internal/telemetry"
)

const component = "csvdecoder"

// maxHeaderScanRows is how many leading rows are scanned for the
// header row before giving up.
const maxHeaderScanRows = 30

// minHeaderAliasMatches is how many cells in a candidate header row
// must match a known channel alias for the row to qualify.
const minHeaderAliasMatches = 3

// reservedMetadataKeys never qualify as the first cell of a header row.
var reservedMetadataKeys = map[string]bool{
	"format": true, "venue": true, "vehicle": true, "user": true,
	"driver": true, "data source": true, "comment": true, "date": true,
	"sample rate": true, "duration": true, "segment": true,
	"beacon markers": true, "segment times": true, "session": true,
}

// unitCells mark a post-header row as a units row when any cell
// (case-folded) is one of these.
var unitCells = map[string]bool{
	"sec": true, "km": true, "km/h": true, "rpm": true, "g": true,
	"m/s": true, "m": true, "%": true, "°c": true,
}

// Metadata is the typed metadata block preceding the header row.
type Metadata struct {
	Format        string
	Venue         string
	Vehicle       string
	Driver        string
	Date          string
	Time          string
	SampleRateHz  float64
	DurationSec   float64
	BeaconMarkers []float64
	SegmentTimes  []float64
}

// Decoded is the tokenized, metadata-extracted result of a CSV file.
type Decoded struct {
	Metadata Metadata
	Headers  []string
	Rows     [][]string
}

func normalizeCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// Decode tokenizes raw CSV bytes and extracts the metadata block,
// header row, and data rows.
func Decode(data []byte) (*Decoded, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, apperr.Newf(apperr.MalformedInput, component, "failed to tokenize CSV: %v", err)
	}

	headerIdx, ok := findHeaderRow(allRows)
	if !ok {
		return nil, apperr.New(apperr.MalformedInput, component, "no header row found in first 30 rows")
	}

	meta := parseMetadata(allRows[:headerIdx])
	headers := allRows[headerIdx]

	dataStart := skipPostHeaderNoise(allRows, headerIdx, headers)
	dataRows := collectDataRows(allRows[dataStart:], len(headers))

	if len(dataRows) == 0 {
		return nil, apperr.New(apperr.MalformedInput, component, "no data rows found")
	}

	return &Decoded{Metadata: meta, Headers: headers, Rows: dataRows}, nil
}

func findHeaderRow(rows [][]string) (int, bool) {
	limit := len(rows)
	if limit > maxHeaderScanRows {
		limit = maxHeaderScanRows
	}

	for i := 0; i < limit; i++ {
		row := rows[i]
		nonEmpty := 0
		for _, c := range row {
			if normalizeCell(c) != "" {
				nonEmpty++
			}
		}
		if nonEmpty < 3 {
			continue
		}

		first := strings.ToLower(normalizeCell(row[0]))
		if reservedMetadataKeys[first] {
			continue
		}

		aliasMatches := 0
		for _, c := range row {
			if channelmap.IsKnownAlias(c) {
				aliasMatches++
			}
		}

		if aliasMatches >= minHeaderAliasMatches || first == "time" || first == "distance" {
			return i, true
		}
	}
	return 0, false
}

func parseMetadata(rows [][]string) Metadata {
	var m Metadata
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		key := strings.ToLower(normalizeCell(row[0]))
		values := row[1:]

		switch key {
		case "format":
			m.Format = normalizeCell(values[0])
		case "venue":
			m.Venue = normalizeCell(values[0])
		case "vehicle":
			m.Vehicle = normalizeCell(values[0])
		case "driver":
			m.Driver = normalizeCell(values[0])
		case "date":
			m.Date = normalizeCell(values[0])
		case "time":
			m.Time = normalizeCell(values[0])
		case "sample rate":
			m.SampleRateHz = firstFloat(values)
		case "duration":
			m.DurationSec = firstFloat(values)
		case "beacon markers":
			m.BeaconMarkers = parseFloatList(values)
		case "segment times":
			m.SegmentTimes = parseTimeList(values)
		}
	}
	return m
}

// firstFloat parses the leading numeric token of the first value cell
// (metadata values like "50 Hz" carry a trailing unit).
func firstFloat(values []string) float64 {
	if len(values) == 0 {
		return 0
	}
	fields := strings.Fields(normalizeCell(values[0]))
	if len(fields) == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	return v
}

func parseFloatList(values []string) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		v = normalizeCell(v)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

// parseTimeList parses each cell either as plain seconds or as an
// mm:ss.xxx duration, for the segment-times metadata field.
func parseTimeList(values []string) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		v = normalizeCell(v)
		if v == "" {
			continue
		}
		if strings.Contains(v, ":") {
			out = append(out, parseMinSec(v))
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

func parseMinSec(v string) float64 {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	minutes, err1 := strconv.ParseFloat(parts[0], 64)
	seconds, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return 0
	}
	return minutes*60 + seconds
}

func rowsEqualFold(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(normalizeCell(a[i]), normalizeCell(b[i])) {
			return false
		}
	}
	return true
}

func isUnitRow(row []string) bool {
	for _, c := range row {
		if unitCells[strings.ToLower(normalizeCell(c))] {
			return true
		}
	}
	return false
}

func isChannelIndexRow(row []string) bool {
	seenAny := false
	for _, c := range row {
		c = normalizeCell(c)
		if c == "" {
			continue
		}
		seenAny = true
		n, err := strconv.Atoi(c)
		if err != nil || n < 0 || n > 20 {
			return false
		}
	}
	return seenAny
}

func skipPostHeaderNoise(rows [][]string, headerIdx int, headers []string) int {
	idx := headerIdx + 1
	for idx < len(rows) {
		row := rows[idx]
		if rowsEqualFold(row, headers) || isUnitRow(row) || isChannelIndexRow(row) {
			idx++
			continue
		}
		break
	}
	return idx
}

func isFiniteNumber(s string) bool {
	f, err := strconv.ParseFloat(normalizeCell(s), 64)
	if err != nil {
		return false
	}
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func collectDataRows(rows [][]string, headerLen int) [][]string {
	minLen := headerLen
	if minLen > 3 {
		minLen = 3
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) < minLen {
			continue
		}
		if len(row) == 0 || !isFiniteNumber(row[0]) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// Materialize maps the decoded headers/rows through a channel mapping
// into dense, equal-length numeric channel arrays. Missing optional
// channels are left as nil slices; a cell that fails to parse as a
// number is treated as zero.
func Materialize(headers []string, rows [][]string, mapping telemetry.ChannelMap) telemetry.Channels {
	colIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		colIndex[h] = i
	}

	column := func(name telemetry.ChannelName) []float64 {
		mp, ok := mapping[name]
		if !ok || mp.Header == "" {
			return nil
		}
		idx, ok := colIndex[mp.Header]
		if !ok {
			return nil
		}
		mult := mp.Multiplier
		if mult == 0 {
			mult = 1
		}
		out := make([]float64, len(rows))
		for i, row := range rows {
			if idx >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(normalizeCell(row[idx]), 64)
			if err != nil {
				continue
			}
			out[i] = v * mult
		}
		return out
	}

	return telemetry.Channels{
		Time:        column(telemetry.ChTime),
		EngineRPM:   column(telemetry.ChEngineRPM),
		GPSSpeedKmh: column(telemetry.ChGPSSpeed),
		LonAccelG:   column(telemetry.ChLonAccel),
		LatAccelG:   column(telemetry.ChLatAccel),
		Distance:    column(telemetry.ChDistance),
		Slope:       column(telemetry.ChSlope),
		HeadTemp:    column(telemetry.ChHeadTemp),
		CoolantTemp: column(telemetry.ChCoolantTemp),
		ExhaustTemp: column(telemetry.ChExhaustTemp),
		Lambda:      column(telemetry.ChLambda),
		Throttle:    column(telemetry.ChThrottle),
		LapIndex:    column(telemetry.ChLapIndex),
	}
}
