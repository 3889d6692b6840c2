package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"

	"family-connections/internal/domain"
	"family-connections/internal/service/graph"
)

// ObjectStore is the part of *minio.Client the export needs.
type ObjectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type Snapshot struct {
	ExportedAt   time.Time                        `json:"exported_at"`
	FamilyTreeID string                           `json:"family_tree_id"`
	Persons      []domain.Person                  `json:"persons"`
	Connections  []domain.Connection              `json:"connections"`
	Generations  map[string]domain.GenerationInfo `json:"generations"`
	Unions       *domain.UnionProcessedData       `json:"unions"`
	Stats        domain.FamilyTreeStats           `json:"stats"`
}

type Service interface {
	ExportTree(ctx context.Context, treeID string) (string, error)
}

type service struct {
	graphSvc graph.Service
	store    ObjectStore
	bucket   string
	now      func() time.Time
}

func NewService(graphSvc graph.Service, store ObjectStore, bucket string) Service {
	return &service{
		graphSvc: graphSvc,
		store:    store,
		bucket:   bucket,
		now:      time.Now,
	}
}

// ExportTree writes a JSON snapshot of the tree to the bucket and returns the
// object key.
func (s *service) ExportTree(ctx context.Context, treeID string) (string, error) {
	view, err := s.graphSvc.GetTreeView(ctx, treeID)
	if err != nil {
		return "", err
	}

	exportedAt := s.now().UTC()
	snapshot := Snapshot{
		ExportedAt:   exportedAt,
		FamilyTreeID: treeID,
		Persons:      view.Persons,
		Connections:  view.Connections,
		Generations:  view.Generations,
		Unions:       view.Unions,
		Stats:        view.Stats,
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	objectKey := fmt.Sprintf("exports/%s/%s.json", treeID, exportedAt.Format("20060102T150405Z"))
	_, err = s.store.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	return objectKey, nil
}
