package database

import (
	"context"
	"errors"
	"testing"

	"github.com/tieubaoca/manualbot/types"
)

func newTestStore(t *testing.T) *ChromemStore {
	t.Helper()
	store, err := NewChromemStore("", false)
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	return store
}

func meta(title string, n int) []map[string]string {
	out := make([]map[string]string, n)
	for i := range out {
		out[i] = map[string]string{types.MetadataTitle: title}
	}
	return out
}

func TestChromemGetOrCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, err := store.GetOrCreateCollection(ctx, "invoices")
	if err != nil {
		t.Fatalf("GetOrCreateCollection: %v", err)
	}
	err = first.Add(ctx, []string{"invoices_1"}, []string{"Total: $50"}, [][]float32{{1, 0, 0}}, meta("invoices", 1))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	second, err := store.GetOrCreateCollection(ctx, "invoices")
	if err != nil {
		t.Fatalf("GetOrCreateCollection again: %v", err)
	}
	count, _ := second.Count(ctx)
	if count != 1 {
		t.Fatalf("count: want=1 got=%d", count)
	}

	titles, err := store.ListCollections(ctx)
	if err != nil {
		t.Fatalf("ListCollections: %v", err)
	}
	if len(titles) != 1 || titles[0] != "invoices" {
		t.Fatalf("titles: want=[invoices] got=%v", titles)
	}
}

func TestChromemAccumulatesUploads(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	for i, id := range []string{"a_1", "a_2"} {
		c, err := store.GetOrCreateCollection(ctx, "a")
		if err != nil {
			t.Fatalf("GetOrCreateCollection: %v", err)
		}
		emb := [][]float32{{1, float32(i + 1)}}
		if err := c.Add(ctx, []string{id}, []string{id}, emb, meta("a", 1)); err != nil {
			t.Fatalf("Add %s: %v", id, err)
		}
	}
	c, _ := store.GetCollection(ctx, "a")
	if n, _ := c.Count(ctx); n != 2 {
		t.Fatalf("count: want=2 got=%d", n)
	}
	titles, _ := store.ListCollections(ctx)
	if len(titles) != 1 {
		t.Fatalf("titles: want one entry got=%v", titles)
	}
}

func TestChromemQueryEmptyCollection(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	c, err := store.GetOrCreateCollection(ctx, "empty")
	if err != nil {
		t.Fatalf("GetOrCreateCollection: %v", err)
	}
	res, err := c.Query(ctx, []float32{1, 0}, 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Len() != 0 {
		t.Fatalf("results: want=0 got=%d", res.Len())
	}
}

func TestChromemQueryOrdersBySimilarity(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	c, _ := store.GetOrCreateCollection(ctx, "m")
	ids := []string{"m_x", "m_y", "m_z"}
	docs := []string{"x axis", "y axis", "z axis"}
	embs := [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	if err := c.Add(ctx, ids, docs, embs, meta("m", 3)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	res, err := c.Query(ctx, []float32{0.1, 0.9, 0}, 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Len() != 3 {
		t.Fatalf("results: want=3 (clamped to count) got=%d", res.Len())
	}
	if res.Documents[0] != "y axis" {
		t.Fatalf("nearest: want=y axis got=%s", res.Documents[0])
	}
	if res.Metadatas[0][types.MetadataTitle] != "m" {
		t.Fatalf("metadata title: got=%v", res.Metadatas[0])
	}
	if res.Distances[0] > res.Distances[1] {
		t.Fatalf("distances not ascending: %v", res.Distances)
	}

	res, err = c.Query(ctx, []float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Query top1: %v", err)
	}
	if res.Len() != 1 || res.IDs[0] != "m_x" {
		t.Fatalf("top1: got=%v", res.IDs)
	}
}

func TestChromemAddLengthMismatch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	c, _ := store.GetOrCreateCollection(ctx, "m")
	err := c.Add(ctx, []string{"a", "b"}, []string{"a"}, [][]float32{{1}}, meta("m", 1))
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("want ErrLengthMismatch got=%v", err)
	}
}

func TestChromemMissingAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	if _, err := store.GetCollection(ctx, "nope"); !errors.Is(err, ErrCollectionNotFound) {
		t.Fatalf("GetCollection: want ErrCollectionNotFound got=%v", err)
	}
	if err := store.DeleteCollection(ctx, "nope"); !errors.Is(err, ErrCollectionNotFound) {
		t.Fatalf("DeleteCollection: want ErrCollectionNotFound got=%v", err)
	}
	if _, err := store.GetOrCreateCollection(ctx, "gone"); err != nil {
		t.Fatalf("GetOrCreateCollection: %v", err)
	}
	if err := store.DeleteCollection(ctx, "gone"); err != nil {
		t.Fatalf("DeleteCollection: %v", err)
	}
	titles, _ := store.ListCollections(ctx)
	if len(titles) != 0 {
		t.Fatalf("titles after delete: got=%v", titles)
	}
}

func TestChromemPersistent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewChromemStore(dir, false)
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	c, _ := store.GetOrCreateCollection(ctx, "kept")
	if err := c.Add(ctx, []string{"kept_1"}, []string{"hello"}, [][]float32{{1, 1}}, meta("kept", 1)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	reopened, err := NewChromemStore(dir, false)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	rc, err := reopened.GetCollection(ctx, "kept")
	if err != nil {
		t.Fatalf("GetCollection after reopen: %v", err)
	}
	if n, _ := rc.Count(ctx); n != 1 {
		t.Fatalf("count after reopen: want=1 got=%d", n)
	}
	hb, _ := reopened.Heartbeat(ctx)
	if hb != "chromem ("+dir+")" {
		t.Fatalf("heartbeat: got=%s", hb)
	}
}
