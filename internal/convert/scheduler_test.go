package convert

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackzampolin/flatbed/internal/extract"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunPages_OrderedResults(t *testing.T) {
	const pages = 8
	// Later pages finish first.
	fn := func(ctx context.Context, page int) extract.Outcome {
		time.Sleep(time.Duration(pages-page) * 2 * time.Millisecond)
		return extract.Outcome{Page: page}
	}

	outcomes := runPages(context.Background(), pages, 4, quietLogger(), fn)

	if len(outcomes) != pages {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), pages)
	}
	for i, o := range outcomes {
		if o.Page != i+1 {
			t.Errorf("outcomes[%d].Page = %d, want %d", i, o.Page, i+1)
		}
	}
}

func TestRunPages_PanicBecomesErrorOutcome(t *testing.T) {
	fn := func(ctx context.Context, page int) extract.Outcome {
		if page == 2 {
			panic("malformed content stream")
		}
		return extract.Outcome{Page: page}
	}

	outcomes := runPages(context.Background(), 3, 2, quietLogger(), fn)

	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}
	if outcomes[0].Failed() || outcomes[2].Failed() {
		t.Error("sibling pages failed alongside the panicking page")
	}
	if !outcomes[1].Failed() {
		t.Fatal("panicking page did not produce an error outcome")
	}
	block := outcomes[1].Blocks[0]
	if block.Name != "p2_error" {
		t.Errorf("error block name = %q, want p2_error", block.Name)
	}
	if cause := block.Rows[1][1]; !strings.Contains(cause, "malformed content stream") {
		t.Errorf("error cause = %q, want the panic message in it", cause)
	}
}

func TestRunPages_Empty(t *testing.T) {
	fn := func(ctx context.Context, page int) extract.Outcome {
		t.Error("worker called for an empty document")
		return extract.Outcome{Page: page}
	}
	if outcomes := runPages(context.Background(), 0, 4, quietLogger(), fn); outcomes != nil {
		t.Errorf("got %d outcomes, want nil", len(outcomes))
	}
}

func TestRunPages_BoundedConcurrency(t *testing.T) {
	const workers = 2
	var current, peak int32

	fn := func(ctx context.Context, page int) extract.Outcome {
		cur := atomic.AddInt32(&current, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&current, -1)
		return extract.Outcome{Page: page}
	}

	runPages(context.Background(), 10, workers, quietLogger(), fn)

	if got := atomic.LoadInt32(&peak); got > workers {
		t.Errorf("peak concurrency = %d, want at most %d", got, workers)
	}
}
