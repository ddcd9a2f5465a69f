// Package file replays a CSV candle history as a provider event stream.
package file

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rleiva87/candlesim/history"
	"github.com/rleiva87/candlesim/platform"
)

type File struct{ file *os.File }

func Open(name string) (f File, err error) {
	f.file, err = os.OpenFile(name, os.O_RDONLY, 0666)
	if err != nil {
		return f, fmt.Errorf("failed to open: %w", err)
	}
	return f, nil
}

func (f File) Close() error {
	return f.file.Close()
}

// Subscribe streams the file's candles in order. The symbol argument is
// ignored; a file holds exactly one instrument.
func (f File) Subscribe(ctx context.Context, symbol string) <-chan platform.EventContainer {
	events := make(chan platform.EventContainer, 1024)

	r, err := history.NewReader(f.file)
	if err != nil {
		events <- platform.MakeError(fmt.Errorf("history new reader: %w", err))
		close(events)
		return events
	}

	go func() {
		defer close(events)

		for {
			select {
			case <-ctx.Done():
				events <- platform.MakeError(ctx.Err())
				return
			default:
			}

			c, err := r.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				events <- platform.MakeError(fmt.Errorf("read candles: %w", err))
				return
			}

			events <- platform.MakeCandle(c)
		}
	}()

	return events
}
