package database

import (
	"context"
	"fmt"

	"cloud.google.com/go/datastore"
	"github.com/locvowork/employee_records/internal/domain"
)

// ChangeKind is the Datastore kind holding change log entries.
const ChangeKind = "ChangeRecord"

// datastore rejects batches larger than this.
const maxBatch = 500

// DatastoreClient wraps the cloud datastore client
type DatastoreClient struct {
	client *datastore.Client
}

// NewDatastoreClient dials Datastore for projectID.
func NewDatastoreClient(ctx context.Context, projectID string) (*DatastoreClient, error) {
	client, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}
	return &DatastoreClient{client: client}, nil
}

// RecordChange appends one entry under an auto-allocated key.
func (dc *DatastoreClient) RecordChange(ctx context.Context, rec domain.ChangeRecord) error {
	if dc == nil || dc.client == nil {
		return fmt.Errorf("datastore client is nil")
	}

	if _, err := dc.client.Put(ctx, datastore.IncompleteKey(ChangeKind, nil), &rec); err != nil {
		return fmt.Errorf("failed to record %s %s change: %w", rec.Entity, rec.Key, err)
	}
	return nil
}

// ListChanges returns the change history of one record, newest first.
func (dc *DatastoreClient) ListChanges(ctx context.Context, entity, key string, limit int) ([]domain.ChangeRecord, error) {
	if dc == nil || dc.client == nil {
		return nil, fmt.Errorf("datastore client is nil")
	}

	q := datastore.NewQuery(ChangeKind).
		FilterField("Entity", "=", entity).
		FilterField("Key", "=", key).
		Order("-At")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var result []domain.ChangeRecord
	if _, err := dc.client.GetAll(ctx, q, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ClearChanges deletes every change log entry and returns how many were removed.
func (dc *DatastoreClient) ClearChanges(ctx context.Context) (int, error) {
	if dc == nil || dc.client == nil {
		return 0, fmt.Errorf("datastore client is nil")
	}

	keys, err := dc.client.GetAll(ctx, datastore.NewQuery(ChangeKind).KeysOnly(), nil)
	if err != nil {
		return 0, err
	}

	for start := 0; start < len(keys); start += maxBatch {
		end := min(start+maxBatch, len(keys))
		if err := dc.client.DeleteMulti(ctx, keys[start:end]); err != nil {
			return start, err
		}
	}
	return len(keys), nil
}

func (dc *DatastoreClient) Close() error {
	if dc == nil || dc.client == nil {
		return nil
	}
	return dc.client.Close()
}
