package common

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkit/store"
	"github.com/sirupsen/logrus"
	"github.com/youta-t/flarc"
)

// Id parses the first value of the named argument as a positive id.
//
// A malformed id is a usage error.
func Id(args map[string][]string, name string) (int, error) {
	vals := args[name]
	if len(vals) == 0 {
		return 0, fmt.Errorf("%w: %s is required", flarc.ErrUsage, name)
	}
	id, err := strconv.Atoi(vals[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s should be a positive integer: %s", flarc.ErrUsage, name, vals[0])
	}
	return id, nil
}

// PrintJSON writes v into w as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}

// LoadAggregate returns a loaded store of the dataset.
//
// The caller should Close it.
func LoadAggregate(
	ctx context.Context, logger logrus.FieldLogger, client rest.Client, datasetId int,
) (*store.Aggregate, error) {
	agg := store.NewAggregate(client, datasetId, store.WithLogger(logger))
	if err := agg.Load(ctx); err != nil {
		agg.Close()
		return nil, fmt.Errorf("dataset %d: %w", datasetId, err)
	}
	return agg, nil
}
