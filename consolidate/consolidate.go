/*
Package consolidate merges monthly extractions into one table per year.

PURPOSE:
  A department sends one PDF per month. Consolidation parses every month's
  tables, stamps each record with Year, Month and Month_Num, and stacks the
  months of a year into a single table sorted by month. The result renders
  as a workbook with one worksheet per year, optionally merged into an
  earlier consolidated workbook so years not present in this call survive.

PERIODS:
  Year and month come from the caller. File names are not parsed.

CONCURRENCY:
  Sources share nothing, so each one is parsed in its own goroutine under an
  errgroup bounded by Limit. The first failure cancels the rest.

SEE ALSO:
  - extract/parser.go: table parsing
  - export/workbook.go: Workbook, ReadWorkbook
*/
package consolidate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/warp/attendance-engine/extract"
	"github.com/warp/attendance-engine/grid"
	"golang.org/x/sync/errgroup"
)

// DefaultLimit bounds concurrent source parsing when none is configured.
const DefaultLimit = 4

// ErrNoSources is returned when there is nothing to consolidate.
var ErrNoSources = errors.New("no sources to consolidate")

// ErrInvalidPeriod is returned for a month outside 1-12 or a non-positive year.
var ErrInvalidPeriod = errors.New("invalid period")

// Source is one month of one department.
type Source struct {
	Year   int             `json:"year"`
	Month  int             `json:"month"`
	Layout string          `json:"layout,omitempty"` // blank uses the consolidator's parser
	Tables []grid.RawTable `json:"tables"`
}

// Year is the consolidated table of one year.
type Year struct {
	Year    int         `json:"year"`
	Months  []string    `json:"months"`
	Records int         `json:"records"`
	Table   *grid.Table `json:"table"`
}

// Result holds every consolidated year, ascending.
type Result struct {
	Years []Year `json:"years"`
}

// Consolidator parses sources and stacks them by year.
type Consolidator struct {
	Parser *extract.Parser
	Limit  int
}

// New creates a consolidator. A nil parser means the simple layout.
func New(parser *extract.Parser, limit int) *Consolidator {
	if parser == nil {
		parser = extract.NewParser(extract.LayoutSimple)
	}
	return &Consolidator{Parser: parser, Limit: limit}
}

type month struct {
	src   Source
	batch extract.Batch
}

// Consolidate parses every source and groups the records by year. Sources
// that yield no records still count towards their year's month list.
func (c *Consolidator) Consolidate(ctx context.Context, sources []Source) (*Result, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	for i, src := range sources {
		if src.Year <= 0 || src.Month < 1 || src.Month > 12 {
			return nil, fmt.Errorf("%w: source %d has %d-%02d", ErrInvalidPeriod, i, src.Year, src.Month)
		}
	}

	limit := c.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	months := make([]month, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			parser, err := c.parserFor(src)
			if err != nil {
				return fmt.Errorf("source %d: %w", i, err)
			}
			months[i] = month{src: src, batch: extract.Normalize(parser.Parse(src.Tables))}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(months, func(a, b int) bool {
		ma, mb := months[a].src, months[b].src
		if ma.Year != mb.Year {
			return ma.Year < mb.Year
		}
		return ma.Month < mb.Month
	})

	res := &Result{}
	for _, m := range months {
		if len(res.Years) == 0 || res.Years[len(res.Years)-1].Year != m.src.Year {
			res.Years = append(res.Years, Year{
				Year:  m.src.Year,
				Table: grid.NewTable("Year", "Month", "Month_Num"),
			})
		}
		y := &res.Years[len(res.Years)-1]
		name := MonthName(m.src.Month)
		if len(y.Months) == 0 || y.Months[len(y.Months)-1] != name {
			y.Months = append(y.Months, name)
		}
		appendBatch(y.Table, m.src, m.batch)
		y.Records += len(m.batch.Records)
	}
	return res, nil
}

func (c *Consolidator) parserFor(src Source) (*extract.Parser, error) {
	if src.Layout == "" {
		return c.Parser, nil
	}
	layout, err := extract.ParseLayout(src.Layout)
	if err != nil {
		return nil, err
	}
	return &extract.Parser{Layout: layout, ShiftColumns: c.Parser.ShiftColumns}, nil
}

// appendBatch copies the batch's record table under the period columns.
func appendBatch(t *grid.Table, src Source, b extract.Batch) {
	records := b.Table()
	for _, r := range records.Records {
		rec := grid.NewRecord().
			Set("Year", src.Year).
			Set("Month", MonthName(src.Month)).
			Set("Month_Num", src.Month)
		for _, col := range records.Columns {
			v, _ := r.Get(col)
			rec.Set(col, v)
		}
		t.Append(rec)
	}
}

// MonthName returns the three-letter month name, "Jan" for 1.
func MonthName(m int) string {
	return time.Month(m).String()[:3]
}

// =============================================================================
// WORKBOOK
// =============================================================================

// Sheets renders one sheet per year, named by the year.
func (r *Result) Sheets() []grid.Sheet {
	sheets := make([]grid.Sheet, len(r.Years))
	for i, y := range r.Years {
		sheets[i] = grid.Sheet{Name: strconv.Itoa(y.Year), Table: y.Table}
	}
	return sheets
}

// Merge combines r with the sheets of an earlier consolidated workbook.
// Years in r replace sheets of the same name; other sheets are kept. The
// result is ordered by sheet name.
func (r *Result) Merge(existing []grid.Sheet) []grid.Sheet {
	out := r.Sheets()
	fresh := make(map[string]bool, len(out))
	for _, s := range out {
		fresh[s.Name] = true
	}
	for _, s := range existing {
		if !fresh[s.Name] {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}
