package convert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackzampolin/flatbed/internal/extract"
)

// pageFunc extracts one page. Workers run it concurrently; everything
// it touches besides the shared read-only inputs must be page-local.
type pageFunc func(ctx context.Context, page int) extract.Outcome

// runPages fans pages 1..pageCount out to at most workers goroutines
// and returns outcomes in ascending page order regardless of
// completion order.
func runPages(ctx context.Context, pageCount, workers int, log *slog.Logger, fn pageFunc) []extract.Outcome {
	if pageCount <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}

	type result struct {
		page    int
		outcome extract.Outcome
	}

	results := make(chan result, pageCount)
	sem := make(chan struct{}, workers)

	for page := 1; page <= pageCount; page++ {
		sem <- struct{}{} // acquire
		go func(page int) {
			defer func() { <-sem }() // release
			results <- result{page: page, outcome: runPage(ctx, page, log, fn)}
		}(page)
	}

	outcomes := make([]extract.Outcome, pageCount)
	for i := 0; i < pageCount; i++ {
		r := <-results
		outcomes[r.page-1] = r.outcome
	}
	return outcomes
}

// runPage isolates one worker call. A panic from the PDF or detector
// layers becomes that page's error outcome and never reaches sibling
// pages.
func runPage(ctx context.Context, page int, log *slog.Logger, fn pageFunc) (out extract.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("page processing failed", "page", page, "cause", r)
			out = extract.ErrorOutcome(page, fmt.Errorf("page processing panicked: %v", r))
		}
	}()
	return fn(ctx, page)
}
