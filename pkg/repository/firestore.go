package repository

import (
	"context"
	"fmt"
	"strconv"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/domain/interfaces"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore reads the dataset from a collection, one document per row.
// Documents are read in document ID order.
type Firestore struct {
	client     *firestore.Client
	collection string
}

var _ interfaces.TabularSource = (*Firestore)(nil)

// NewFirestore creates a new Firestore source
func NewFirestore(ctx context.Context, projectID, databaseID, collection string) (*Firestore, error) {
	logger := ctxlog.From(ctx)

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	// Fail fast on invalid project or missing permission
	_, err = client.Collection(collection).Limit(1).Documents(ctx).Next()
	if err != nil && err != iterator.Done {
		if status.Code(err) == codes.PermissionDenied || status.Code(err) == codes.Unauthenticated {
			_ = client.Close()
			return nil, goerr.Wrap(err, "failed to connect to firestore project",
				goerr.V("firestore error code", status.Code(err).String()),
			)
		}
		logger.Debug("Firestore connection test returned error (may be empty collection)",
			"error", err,
			"errorCode", status.Code(err).String(),
		)
	}

	logger.Info("Firestore source initialized successfully",
		"projectID", projectID,
		"databaseID", databaseID,
		"collection", collection,
	)

	return &Firestore{client: client, collection: collection}, nil
}

// ReadRows reads every document of the collection
func (f *Firestore) ReadRows(ctx context.Context) ([]model.Row, error) {
	iter := f.client.Collection(f.collection).OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var rows []model.Row
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents", goerr.V("collection", f.collection))
		}

		data := doc.Data()
		row := make(model.Row, len(data))
		for k, v := range data {
			row[normalizeColumn(k)] = fieldText(v)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Import writes rows as documents with zero-padded sequential IDs after offset
func (f *Firestore) Import(ctx context.Context, rows []model.Row, offset int) error {
	bw := f.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(rows))
	for i, row := range rows {
		data := make(map[string]any, len(row))
		for k, v := range row {
			data[k] = v
		}
		doc := f.client.Collection(f.collection).Doc(fmt.Sprintf("%09d", offset+i))
		job, err := bw.Set(doc, data)
		if err != nil {
			bw.End()
			return goerr.Wrap(err, "failed to enqueue document", goerr.V("index", i))
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return goerr.Wrap(err, "failed to write document", goerr.V("index", i))
		}
	}
	return nil
}

// Close closes the Firestore client
func (f *Firestore) Close() error {
	if err := f.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}

func fieldText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
