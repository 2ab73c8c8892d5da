package timedataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingColumn = errors.New("column not found in csv header")
	ErrUnparsedTime  = errors.New("unable to parse time")
)

// CSVOptions specifies which columns of a csv hold the time and value of a series
type CSVOptions struct {
	TimeColumn  string
	ValueColumn string
	TimeFormats []string
	Delimiter   rune
}

// NewDefaultCSVOptions expects a header with a "ds" time column and a "y" value column
func NewDefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		TimeColumn:  "ds",
		ValueColumn: "y",
		TimeFormats: []string{
			"2006-01-02",
			time.RFC3339,
			"2006-01-02 15:04:05",
			"2006-01",
			"2006",
		},
		Delimiter: ',',
	}
}

// LoadCSV reads a univariate dataset from a csv file. Missing values ("", NA, NaN) are kept
// as NaN so the index stays aligned with the file.
func LoadCSV(path string, opt *CSVOptions) (*TimeDataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file, opt)
}

// ReadCSV reads a univariate dataset from csv formatted input with a header row
func ReadCSV(r io.Reader, opt *CSVOptions) (*TimeDataset, error) {
	if opt == nil {
		opt = NewDefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	if opt.Delimiter != 0 {
		reader.Comma = opt.Delimiter
	}
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to read csv header, %w", err)
	}

	timeIdx, valueIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case opt.TimeColumn:
			timeIdx = i
		case opt.ValueColumn:
			valueIdx = i
		}
	}
	if timeIdx < 0 {
		return nil, fmt.Errorf("%s, %w", opt.TimeColumn, ErrMissingColumn)
	}
	if valueIdx < 0 {
		return nil, fmt.Errorf("%s, %w", opt.ValueColumn, ErrMissingColumn)
	}

	var t []time.Time
	var y []float64
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		ts, err := parseTime(record[timeIdx], opt.TimeFormats)
		if err != nil {
			return nil, fmt.Errorf("row %d, %w", row, err)
		}

		val := math.NaN()
		switch valStr := strings.TrimSpace(record[valueIdx]); valStr {
		case "", "NA", "NaN", "null":
		default:
			val, err = strconv.ParseFloat(valStr, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, unable to parse value %q, %w", row, valStr, err)
			}
		}
		t = append(t, ts)
		y = append(y, val)
	}

	return NewUnivariateDataset(t, y)
}

func parseTime(s string, formats []string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, format := range formats {
		ts, err := time.Parse(format, s)
		if err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q, %w", s, ErrUnparsedTime)
}
