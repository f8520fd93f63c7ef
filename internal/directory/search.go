package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/gogogo1024/accesskit"
	"github.com/gogogo1024/accesskit/acl"
)

const (
	principalCollectionName = "accesskit_principals"

	vectorDim = 384
)

// Search is a Milvus-backed principal search index. Principals are keyed
// as "type:id" and indexed over their id, name and login/description text.
// Callers should fall back to Static.Search when construction fails.
type Search struct {
	client client.Client
}

func NewSearch(milvusAddr string) (*Search, error) {
	c, err := client.NewGrpcClient(context.Background(), milvusAddr)
	if err != nil {
		return nil, fmt.Errorf("connect to Milvus: %w", err)
	}
	s := &Search{client: c}
	if err := s.initCollection(); err != nil {
		return nil, fmt.Errorf("init principal collection: %w", err)
	}
	return s, nil
}

func (s *Search) initCollection() error {
	ctx := context.Background()

	has, err := s.client.HasCollection(ctx, principalCollectionName)
	if err != nil {
		return err
	}
	if has {
		return s.client.LoadCollection(ctx, principalCollectionName, false)
	}

	schema := &entity.Schema{
		CollectionName: principalCollectionName,
		Description:    "Principal search index (users and groups)",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{"max_length": "200"},
			},
			{
				Name:       "text",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "1000"},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", vectorDim),
				},
			},
		},
	}
	if err := s.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return err
	}

	idx, err := entity.NewIndexHNSW(entity.L2, 16, 200)
	if err != nil {
		return err
	}
	if err := s.client.CreateIndex(ctx, principalCollectionName, "embedding", idx, false); err != nil {
		return err
	}
	return s.client.LoadCollection(ctx, principalCollectionName, false)
}

// Index adds or updates a principal in the search index.
func (s *Search) Index(ctx context.Context, ref acl.Ref, info accesskit.PrincipalInfo) error {
	if !ref.Valid() {
		return fmt.Errorf("invalid principal ref %+v", ref)
	}
	subtitle := info.Login
	if ref.Type == acl.TypeGroup {
		subtitle = info.Description
	}
	text := fmt.Sprintf("%s %s %s", ref.ID, info.Name, subtitle)
	embedding := generateSimpleEmbedding(text)

	idColumn := entity.NewColumnVarChar("id", []string{searchKey(ref)})
	textColumn := entity.NewColumnVarChar("text", []string{text})
	embeddingColumn := entity.NewColumnFloatVector("embedding", vectorDim, [][]float32{embedding})

	_, err := s.client.Insert(ctx, principalCollectionName, "",
		idColumn, textColumn, embeddingColumn)
	return err
}

// Query runs a similarity search and returns up to topK principal refs.
func (s *Search) Query(ctx context.Context, keyword string, topK int) ([]acl.Ref, error) {
	if keyword == "" || topK <= 0 {
		return nil, nil
	}

	embedding := generateSimpleEmbedding(keyword)
	sp, _ := entity.NewIndexHNSWSearchParam(hnswEF(keyword))

	result, err := s.client.Search(
		ctx,
		principalCollectionName,
		[]string{},
		"",
		[]string{"id"},
		[]entity.Vector{entity.FloatVector(embedding)},
		"embedding",
		entity.L2,
		topK,
		sp,
	)
	if err != nil {
		return nil, err
	}

	var refs []acl.Ref
	if len(result) > 0 {
		for i := 0; i < result[0].ResultCount; i++ {
			id, err := result[0].IDs.Get(i)
			if err != nil {
				continue
			}
			key, _ := id.(string)
			if ref, ok := parseSearchKey(key); ok {
				refs = append(refs, ref)
			}
		}
	}
	return refs, nil
}

// Remove deletes a principal from the index.
func (s *Search) Remove(ctx context.Context, ref acl.Ref) error {
	expr := fmt.Sprintf("id == '%s'", searchKey(ref))
	return s.client.Delete(ctx, principalCollectionName, "", expr)
}

func (s *Search) Close() error {
	return s.client.Close()
}

func searchKey(ref acl.Ref) string {
	return string(ref.Type) + ":" + ref.ID
}

func parseSearchKey(key string) (acl.Ref, bool) {
	t, id, ok := strings.Cut(key, ":")
	if !ok {
		return acl.Ref{}, false
	}
	ref := acl.Ref{Type: acl.PrincipalType(t), ID: id}
	return ref, ref.Valid()
}

// hnswEF picks the HNSW probe width from the keyword length: short
// keywords search fast and broad, long ones narrow and precise.
func hnswEF(keyword string) int {
	switch n := len(strings.TrimSpace(keyword)); {
	case n <= 3:
		return 20
	case n <= 8:
		return 30
	default:
		return 50
	}
}

// generateSimpleEmbedding hashes characters into a pseudo-vector. A real
// deployment substitutes an embedding model here; the index layout and
// search path stay the same.
func generateSimpleEmbedding(text string) []float32 {
	embedding := make([]float32, vectorDim)
	for i, c := range text {
		idx := i % vectorDim
		embedding[idx] += float32(c) / 1000.0
	}
	var sum float32
	for _, v := range embedding {
		sum += v * v
	}
	if sum > 0 {
		norm := float32(1.0) / float32(len(text))
		for i := range embedding {
			embedding[i] *= norm
		}
	}
	return embedding
}
