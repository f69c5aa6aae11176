package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"autohome-scraper/models"
)

// Columns the review workflow requires in its input file.
const (
	ColSeriesID = "车型ID"
	ColRank     = "销量排名"
	ColName     = "车型名称"
)

// ErrMissingColumns is returned when the input CSV lacks a required column.
var ErrMissingColumns = errors.New("input csv is missing required columns")

// ReadCarInfo loads the vehicles to review from the CSV at path, sorted by
// rank. The file may be UTF-8 (with or without BOM) or GBK, as saved by
// spreadsheet tools on Chinese Windows.
func ReadCarInfo(path string) ([]models.CarInfo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input %q: %w", path, err)
	}
	return ParseCarInfo(raw)
}

// ParseCarInfo is ReadCarInfo over file contents.
func ParseCarInfo(raw []byte) ([]models.CarInfo, error) {
	text, err := decodeInput(raw)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse input csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s, %s, %s (file is empty)", ErrMissingColumns, ColSeriesID, ColRank, ColName)
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, col := range []string{ColSeriesID, ColRank, ColName} {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	cars := make([]models.CarInfo, 0, len(rows)-1)
	for line, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rank, err := parseRank(cell(row, index[ColRank]))
		if err != nil {
			return nil, fmt.Errorf("input csv line %d: %w", line+2, err)
		}
		cars = append(cars, models.CarInfo{
			SeriesID: cell(row, index[ColSeriesID]),
			Rank:     rank,
			Name:     cell(row, index[ColName]),
		})
	}

	sort.SliceStable(cars, func(i, j int) bool { return cars[i].Rank < cars[j].Rank })
	return cars, nil
}

func decodeInput(raw []byte) (string, error) {
	if b, ok := bytes.CutPrefix(raw, []byte(utf8BOM)); ok {
		return string(b), nil
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), simplifiedchinese.GBK.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("decode GBK input: %w", err)
	}
	return string(out), nil
}

// parseRank accepts "7" and the "7.0" a spreadsheet may write back.
func parseRank(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid rank %q", s)
	}
	return int(f), nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
