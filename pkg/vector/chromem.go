package vector

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/philippgille/chromem-go"
)

// ChromemStore keeps vectors in-process with optional gzip-compressed file
// persistence. Single-process and memory-bound, which suits the default
// single-container deployment.
type ChromemStore struct {
	db *chromem.DB

	mu          sync.Mutex
	collections map[string]*chromem.Collection
}

// NewChromemStore opens an embedded store. An empty persistPath keeps
// vectors in memory only.
func NewChromemStore(persistPath string) (*ChromemStore, error) {
	var (
		db  *chromem.DB
		err error
	)
	if persistPath != "" {
		db, err = chromem.NewPersistentDB(persistPath, true)
		if err != nil {
			return nil, fmt.Errorf("opening persistent store: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}
	return &ChromemStore{
		db:          db,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

// noEmbed rejects implicit embedding. All vectors are computed by the
// embedders package before they reach the store.
func noEmbed(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("embeddings must be precomputed")
}

func (s *ChromemStore) collection(name string) (*chromem.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if col, ok := s.collections[name]; ok {
		return col, nil
	}
	col, err := s.db.GetOrCreateCollection(name, nil, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("opening collection %q: %w", name, err)
	}
	s.collections[name] = col
	return col, nil
}

func (s *ChromemStore) EnsureCollection(_ context.Context, collection string, _ int) error {
	_, err := s.collection(collection)
	return err
}

func (s *ChromemStore) Upsert(ctx context.Context, collection string, docs []Document) error {
	col, err := s.collection(collection)
	if err != nil {
		return err
	}
	out := make([]chromem.Document, 0, len(docs))
	for _, d := range docs {
		md := make(map[string]string, len(d.Metadata))
		for k, v := range d.Metadata {
			md[k] = fmt.Sprint(v)
		}
		out = append(out, chromem.Document{
			ID:        d.ID,
			Content:   d.Content,
			Metadata:  md,
			Embedding: d.Vector,
		})
	}
	if err := col.AddDocuments(ctx, out, runtime.NumCPU()); err != nil {
		return fmt.Errorf("upserting documents: %w", err)
	}
	return nil
}

func (s *ChromemStore) Search(ctx context.Context, collection string, vector []float32, topK int) ([]Result, error) {
	col, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	// chromem rejects queries asking for more results than stored.
	if count := col.Count(); topK > count {
		topK = count
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	out := make([]Result, 0, len(results))
	for _, r := range results {
		md := make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			md[k] = v
		}
		out = append(out, Result{
			ID:       r.ID,
			Content:  r.Content,
			Score:    r.Similarity,
			Metadata: md,
		})
	}
	return out, nil
}

func (s *ChromemStore) DeleteByFilter(ctx context.Context, collection string, filter map[string]any) error {
	col, err := s.collection(collection)
	if err != nil {
		return err
	}
	where := make(map[string]string, len(filter))
	for k, v := range filter {
		where[k] = fmt.Sprint(v)
	}
	if err := col.Delete(ctx, where, nil); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}
	return nil
}

func (s *ChromemStore) Close() error { return nil }
