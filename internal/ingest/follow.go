package ingest

import (
	"context"
	"io"
	"time"

	"github.com/nxadm/tail"

	"boqview/internal/model"
	"boqview/internal/util/logx"
)

// Follow streams rows appended to a CSV file after the initial load. Lines are
// decoded with the header captured at load; undecodable lines are reported on
// the error channel and skipped.
func Follow(ctx context.Context, path string, header []string) (<-chan model.Row, <-chan error) {
	out := make(chan model.Row, 256)
	errs := make(chan error, 16)

	go func() {
		defer close(out)
		defer close(errs)

		t, err := tail.TailFile(path, tail.Config{
			Follow:    true,
			ReOpen:    true,
			MustExist: true,
			Logger:    tail.DiscardingLogger,
			Poll:      true,
			Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		})
		if err != nil {
			errs <- err
			return
		}
		defer t.Cleanup()
		for {
			select {
			case <-ctx.Done():
				_ = t.Stop()
				return
			case l, ok := <-t.Lines:
				if !ok {
					return
				}
				if l.Err != nil {
					report(errs, l.Err)
					continue
				}
				row, keep, err := DecodeLine(header, l.Text)
				if err != nil {
					report(errs, err)
					continue
				}
				if !keep {
					continue
				}
				select {
				case out <- row:
				case <-ctx.Done():
					_ = t.Stop()
					return
				}
			}
		}
	}()

	return out, errs
}

// FollowDemo emits a synthetic row every interval until ctx is done.
func FollowDemo(ctx context.Context, every time.Duration) <-chan model.Row {
	out := make(chan model.Row, 16)
	if every <= 0 {
		every = 2 * time.Second
	}
	go func() {
		defer close(out)
		next := DemoStream(time.Now().UnixNano())
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case out <- next():
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// report never blocks the reader on a slow consumer.
func report(errs chan<- error, err error) {
	select {
	case errs <- err:
	default:
		logx.Warnf("ingest: dropped follow error: %v", err)
	}
}
