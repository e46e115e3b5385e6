// Package dataset loads the tabular dataset once and keeps it for the process lifetime.
package dataset

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/domain/interfaces"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
	"golang.org/x/sync/singleflight"
)

const loadKey = "dataset"

// Cache memoizes the parsed dataset. Failed loads are not memoized.
type Cache struct {
	source interfaces.TabularSource
	group  singleflight.Group

	mu      sync.RWMutex
	records []*model.Record
	loaded  bool
}

// NewCache creates a cache reading from source
func NewCache(source interfaces.TabularSource) *Cache {
	return &Cache{source: source}
}

// Load returns the dataset, reading and parsing it on first use.
// Concurrent first calls share a single read. The shared read is not bound to
// any caller's cancellation; a cancelled caller stops waiting and the others
// still receive the records.
func (c *Cache) Load(ctx context.Context) ([]*model.Record, error) {
	if records, ok := c.Cached(); ok {
		return records, nil
	}

	readCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(loadKey, func() (any, error) {
		return c.read(readCtx)
	})

	select {
	case <-ctx.Done():
		return nil, goerr.Wrap(ctx.Err(), "stopped waiting for dataset load")

	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			ctxlog.From(ctx).Debug("Joined in-flight dataset load")
		}
		return res.Val.([]*model.Record), nil
	}
}

func (c *Cache) read(ctx context.Context) ([]*model.Record, error) {
	if records, ok := c.Cached(); ok {
		return records, nil
	}

	rows, err := c.source.ReadRows(ctx)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(model.ErrLoad, err), "failed to read dataset rows")
	}

	records, err := ParseRows(rows)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.records = records
	c.loaded = true
	c.mu.Unlock()

	ctxlog.From(ctx).Info("Dataset loaded", "records", len(records))
	return records, nil
}

// Cached returns the memoized dataset without triggering a load
func (c *Cache) Cached() ([]*model.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.records, c.loaded
}

// ParseRows converts raw rows into records. Year and count text are coerced to integers;
// an empty count is zero.
func ParseRows(rows []model.Row) ([]*model.Record, error) {
	records := make([]*model.Record, 0, len(rows))
	for i, row := range rows {
		record, err := parseRow(row)
		if err != nil {
			return nil, goerr.Wrap(errors.Join(model.ErrLoad, err), "malformed dataset row",
				goerr.V("row", i))
		}
		records = append(records, record)
	}
	return records, nil
}

func parseRow(row model.Row) (*model.Record, error) {
	country, ok := lookup(row, model.ColumnCountry)
	if !ok {
		return nil, goerr.New("missing column", goerr.V("column", model.ColumnCountry))
	}

	yearText, ok := lookup(row, model.ColumnYear)
	if !ok {
		return nil, goerr.New("missing column", goerr.V("column", model.ColumnYear))
	}
	year, err := parseCount(yearText)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid year",
			goerr.V("column", model.ColumnYear),
			goerr.V("value", yearText))
	}

	countText, ok := lookup(row, model.ColumnSuicidesNo)
	if !ok {
		countText, ok = lookup(row, model.ColumnSuicideNoV1)
	}
	if !ok {
		return nil, goerr.New("missing column", goerr.V("column", model.ColumnSuicidesNo))
	}
	count, err := parseCount(countText)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid suicide count",
			goerr.V("column", model.ColumnSuicidesNo),
			goerr.V("value", countText))
	}

	sexText, _ := lookup(row, model.ColumnSex)
	age, _ := lookup(row, model.ColumnAge)

	return &model.Record{
		Country:      strings.TrimSpace(country),
		Year:         year,
		Sex:          types.ParseSex(sexText),
		AgeBracket:   strings.TrimSpace(age),
		SuicideCount: count,
	}, nil
}

// lookup finds a column by case-insensitive name
func lookup(row model.Row, column string) (string, bool) {
	if v, ok := row[column]; ok {
		return v, true
	}
	for k, v := range row {
		if strings.EqualFold(strings.TrimSpace(k), column) {
			return v, true
		}
	}
	return "", false
}

// parseCount parses a non-negative integer. Empty text is zero and
// integral float text such as "12.0" is accepted.
func parseCount(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(text)
	if err != nil {
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, goerr.Wrap(err, "not an integer")
		}
		n = int(f)
	}
	if n < 0 {
		return 0, goerr.New("negative value", goerr.V("value", n))
	}
	return n, nil
}
