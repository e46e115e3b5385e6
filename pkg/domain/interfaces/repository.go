package interfaces

import (
	"context"

	"github.com/secmon-lab/suistat/pkg/domain/model"
)

// TabularSource provides raw dataset rows. Column names are lowercased by implementations.
type TabularSource interface {
	// ReadRows reads every row of the dataset
	ReadRows(ctx context.Context) ([]model.Row, error)

	// Close releases the underlying connection
	Close() error
}
