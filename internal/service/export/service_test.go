package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"family-connections/internal/domain"
	"family-connections/internal/service/graph"
)

type fakeGraph struct {
	graph.Service
	view *domain.TreeView
	err  error
}

func (f fakeGraph) GetTreeView(context.Context, string) (*domain.TreeView, error) {
	return f.view, f.err
}

type memStore struct {
	bucket, key, contentType string
	body                     []byte
	err                      error
}

func (m *memStore) PutObject(_ context.Context, bucket, key string, r io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if m.err != nil {
		return minio.UploadInfo{}, m.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	m.bucket, m.key, m.contentType, m.body = bucket, key, opts.ContentType, body
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: int64(len(body))}, nil
}

func TestService_ExportTree(t *testing.T) {
	ctx := context.Background()
	view := &domain.TreeView{
		FamilyTreeID: "tree-1",
		Persons:      []domain.Person{{ID: "a", Name: "Ann"}},
		Connections:  []domain.Connection{},
		Generations:  map[string]domain.GenerationInfo{"a": {Generation: 0, Color: "#2563eb"}},
		Stats:        domain.FamilyTreeStats{TotalPersons: 1},
	}
	store := &memStore{}
	svc := &service{
		graphSvc: fakeGraph{view: view},
		store:    store,
		bucket:   "family-exports",
		now:      func() time.Time { return time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC) },
	}

	key, err := svc.ExportTree(ctx, "tree-1")
	require.NoError(t, err)

	assert.Equal(t, "exports/tree-1/20240309T140506Z.json", key)
	assert.Equal(t, "family-exports", store.bucket)
	assert.Equal(t, "application/json", store.contentType)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(store.body, &snap))
	assert.Equal(t, "tree-1", snap.FamilyTreeID)
	assert.Equal(t, 1, snap.Stats.TotalPersons)
	assert.Len(t, snap.Persons, 1)
}

func TestService_ExportTreeErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("View failure", func(t *testing.T) {
		boom := errors.New("db down")
		svc := NewService(fakeGraph{err: boom}, &memStore{}, "b")

		_, err := svc.ExportTree(ctx, "tree-1")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("Upload failure", func(t *testing.T) {
		boom := errors.New("bucket gone")
		svc := NewService(fakeGraph{view: &domain.TreeView{}}, &memStore{err: boom}, "b")

		_, err := svc.ExportTree(ctx, "tree-1")
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "upload snapshot")
	})
}
