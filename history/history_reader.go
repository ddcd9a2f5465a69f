package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/WinPooh32/fixed"
	"github.com/hashicorp/go-multierror"

	"github.com/rleiva87/candlesim/candle"
	"github.com/rleiva87/candlesim/platform"
)

type HistoryReader struct {
	r     *csv.Reader
	count int
}

func NewReader(r io.Reader) (*HistoryReader, error) {
	rcsv := csv.NewReader(r)
	rcsv.Comma = ','
	rcsv.ReuseRecord = true

	return &HistoryReader{
		r: rcsv,
	}, nil
}

func (hr *HistoryReader) Read() (c platform.Candle, err error) {
	const (
		Time   = 0
		Open   = 1
		High   = 2
		Low    = 3
		Close  = 4
		Volume = 5
	)

	hr.count++

	record, err := hr.r.Read()
	if err == io.EOF {
		return c, err
	}
	if err != nil {
		return c, fmt.Errorf("read csv record: %w", err)
	}
	if len(record) < recordLen {
		return c, fmt.Errorf("record on line %d: wrong number of fields %d, expected not less than %d", hr.count, len(record), recordLen)
	}

	var merr *multierror.Error

	c.Time, err = strconv.ParseInt(record[Time], 10, 64)
	merr = multierror.Append(merr, err)

	c.Open, err = fixed.NewSErr(record[Open])
	merr = multierror.Append(merr, err)

	c.High, err = fixed.NewSErr(record[High])
	merr = multierror.Append(merr, err)

	c.Low, err = fixed.NewSErr(record[Low])
	merr = multierror.Append(merr, err)

	c.Close, err = fixed.NewSErr(record[Close])
	merr = multierror.Append(merr, err)

	c.Volume, err = fixed.NewSErr(record[Volume])
	merr = multierror.Append(merr, err)

	return c, merr.ErrorOrNil()
}

// ReadSeries drains the reader into a validated candle series.
func ReadSeries(r io.Reader, symbol string) (*candle.Series, error) {
	hr, err := NewReader(r)
	if err != nil {
		return nil, err
	}

	s := candle.NewSeries(symbol)
	for {
		c, err := hr.Read()
		if err == io.EOF {
			return s, nil
		}
		if err != nil {
			return nil, fmt.Errorf("history: line %d: %w", hr.count, err)
		}
		if err := s.Append(c); err != nil {
			return nil, fmt.Errorf("history: line %d: %w", hr.count, err)
		}
	}
}
