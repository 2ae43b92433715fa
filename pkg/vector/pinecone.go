package vector

import (
	"context"
	"fmt"

	"github.com/pinecone-io/go-pinecone/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/config"
)

// PineconeStore talks to a pre-provisioned Pinecone index. Index creation
// is managed outside the service; the config points at the index host.
type PineconeStore struct {
	client    *pinecone.Client
	indexHost string
	namespace string
}

func NewPineconeStore(cfg config.PineconeConfig) (*PineconeStore, error) {
	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("creating pinecone client: %w", err)
	}
	return &PineconeStore{
		client:    client,
		indexHost: cfg.IndexHost,
		namespace: cfg.Namespace,
	}, nil
}

func (s *PineconeStore) conn() (*pinecone.IndexConnection, error) {
	conn, err := s.client.Index(pinecone.NewIndexConnParams{
		Host:      s.indexHost,
		Namespace: s.namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to index: %w", err)
	}
	return conn, nil
}

// EnsureCollection is a no-op: Pinecone indexes must exist before the
// service starts.
func (s *PineconeStore) EnsureCollection(context.Context, string, int) error {
	return nil
}

func (s *PineconeStore) Upsert(ctx context.Context, _ string, docs []Document) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	defer conn.Close()

	vectors := make([]*pinecone.Vector, 0, len(docs))
	for _, d := range docs {
		md := make(map[string]any, len(d.Metadata)+1)
		for k, v := range d.Metadata {
			md[k] = v
		}
		md["content"] = d.Content
		metadata, err := structpb.NewStruct(md)
		if err != nil {
			return fmt.Errorf("converting metadata: %w", err)
		}
		vectors = append(vectors, &pinecone.Vector{
			Id:       d.ID,
			Values:   d.Vector,
			Metadata: metadata,
		})
	}

	if _, err := conn.UpsertVectors(ctx, vectors); err != nil {
		return fmt.Errorf("upserting vectors: %w", err)
	}
	return nil
}

func (s *PineconeStore) Search(ctx context.Context, _ string, vector []float32, topK int) ([]Result, error) {
	conn, err := s.conn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	resp, err := conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	out := make([]Result, 0, len(resp.Matches))
	for _, match := range resp.Matches {
		if match.Vector == nil {
			continue
		}
		result := Result{
			ID:       match.Vector.Id,
			Score:    match.Score,
			Metadata: map[string]any{},
		}
		if match.Vector.Metadata != nil {
			for k, v := range match.Vector.Metadata.AsMap() {
				if k == "content" {
					result.Content, _ = v.(string)
					continue
				}
				result.Metadata[k] = v
			}
		}
		out = append(out, result)
	}
	return out, nil
}

func (s *PineconeStore) DeleteByFilter(ctx context.Context, _ string, filter map[string]any) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	defer conn.Close()

	metadataFilter, err := structpb.NewStruct(filter)
	if err != nil {
		return fmt.Errorf("converting filter: %w", err)
	}
	if err := conn.DeleteVectorsByFilter(ctx, metadataFilter); err != nil {
		return fmt.Errorf("deleting vectors: %w", err)
	}
	return nil
}

func (s *PineconeStore) Close() error { return nil }
