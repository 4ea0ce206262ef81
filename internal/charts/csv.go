package charts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wavenation/wavenation/internal/models"
)

// ParseEntriesCSV reads an editorial bulk import. The header must contain
// title and artist; isrc, label, release_date, movement and score are
// optional. Row order is chart order, so ranks are assigned on save.
func ParseEntriesCSV(reader io.Reader) ([]models.ChartEntry, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("csv must include a header row")
	}

	headers := make(map[string]int, len(records[0]))
	for idx, col := range records[0] {
		headers[strings.ToLower(strings.TrimSpace(col))] = idx
	}

	for _, col := range []string{"title", "artist"} {
		if _, ok := headers[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	entries := make([]models.ChartEntry, 0, len(records)-1)
	for i, record := range records[1:] {
		lineNo := i + 2

		title := readValue(record, headers["title"])
		artist := readValue(record, headers["artist"])
		if title == "" {
			return nil, fmt.Errorf("line %d title: required", lineNo)
		}
		if artist == "" {
			return nil, fmt.Errorf("line %d artist: required", lineNo)
		}

		entry := models.ChartEntry{
			Track: models.Track{
				Title:       title,
				Artist:      artist,
				ISRC:        optional(record, headers, "isrc"),
				Label:       optional(record, headers, "label"),
				ReleaseDate: optional(record, headers, "release_date"),
			},
		}

		if mv := models.Movement(strings.ToLower(optional(record, headers, "movement"))); mv != "" {
			if !mv.Valid() {
				return nil, fmt.Errorf("line %d movement: invalid value %q", lineNo, mv)
			}
			entry.Movement = mv
		}

		if value := optional(record, headers, "score"); value != "" {
			score, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d score: invalid float %q", lineNo, value)
			}
			entry.Score = &score
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func optional(record []string, headers map[string]int, col string) string {
	idx, ok := headers[col]
	if !ok {
		return ""
	}
	return readValue(record, idx)
}

func readValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
