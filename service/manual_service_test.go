package service

import (
	"context"
	"errors"
	"testing"

	"github.com/tieubaoca/manualbot/database"
	"github.com/tieubaoca/manualbot/types"
)

func TestManualServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture(t, 10000, 1000)
	manuals := NewManualService(f.store, f.uploads)

	if _, err := manuals.GetManual(ctx, "pump"); !errors.Is(err, database.ErrCollectionNotFound) {
		t.Fatalf("GetManual before upload: want ErrCollectionNotFound got=%v", err)
	}

	if _, err := f.ingest.Ingest(ctx, "pump", []types.SourceFile{pdfFile("pump.pdf", "Prime the pump before use.")}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if _, err := f.ingest.Ingest(ctx, "pump", []types.SourceFile{pdfFile("pump2.pdf", "Replace the seal yearly.")}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	titles, err := manuals.ListManuals(ctx)
	if err != nil || len(titles) != 1 || titles[0] != "pump" {
		t.Fatalf("ListManuals: got=%v err=%v", titles, err)
	}
	m, err := manuals.GetManual(ctx, "pump")
	if err != nil {
		t.Fatalf("GetManual: %v", err)
	}
	if m.NumChunks != 2 || len(m.Uploads) != 2 {
		t.Fatalf("manual: want 2 chunks and 2 uploads got=%+v", m)
	}

	if err := manuals.DeleteManual(ctx, "pump"); err != nil {
		t.Fatalf("DeleteManual: %v", err)
	}
	if titles, _ := manuals.ListManuals(ctx); len(titles) != 0 {
		t.Fatalf("titles after delete: got=%v", titles)
	}
	if recs, _ := f.uploads.ListUploads(ctx, "pump"); len(recs) != 0 {
		t.Fatalf("upload records after delete: got=%d", len(recs))
	}
	if err := manuals.DeleteManual(ctx, "pump"); !errors.Is(err, database.ErrCollectionNotFound) {
		t.Fatalf("second delete: want ErrCollectionNotFound got=%v", err)
	}

	hb, err := manuals.Health(ctx)
	if err != nil || hb == "" {
		t.Fatalf("Health: got=%q err=%v", hb, err)
	}
}

func TestManualServiceWithoutUploadRepo(t *testing.T) {
	ctx := context.Background()
	store, _ := database.NewChromemStore("", false)
	if _, err := store.GetOrCreateCollection(ctx, "m"); err != nil {
		t.Fatalf("GetOrCreateCollection: %v", err)
	}
	m, err := NewManualService(store, nil).GetManual(ctx, "m")
	if err != nil {
		t.Fatalf("GetManual: %v", err)
	}
	if m.Uploads == nil || len(m.Uploads) != 0 {
		t.Fatalf("uploads: want empty list got=%v", m.Uploads)
	}
}
