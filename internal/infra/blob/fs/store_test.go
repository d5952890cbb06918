package fs

import (
	"context"
	"io"
	"strings"
	"testing"

	"trackcore/internal/infra/blob"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	info, err := s.Put(ctx, "journal/2024/entry.json", strings.NewReader("payload"), blob.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len("payload")) {
		t.Fatalf("size = %d", info.Size)
	}
	if info.ETag == "" {
		t.Fatalf("expected sha256 etag")
	}
	got, rc, err := s.Get(ctx, "journal/2024/entry.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "payload" {
		t.Fatalf("body = %q", body)
	}
	if got.ContentType != "application/json" {
		t.Fatalf("content type = %q", got.ContentType)
	}
}

func TestPutRejectsDuplicateKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Put(ctx, "k.json", strings.NewReader("a"), blob.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Put(ctx, "k.json", strings.NewReader("b"), blob.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestKeySanitization(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, bad := range []string{"", "../escape", "/abs/path", "a/../../b"} {
		if _, err := s.Put(ctx, bad, strings.NewReader("x"), blob.PutOptions{}); err == nil {
			t.Fatalf("key %q should be rejected", bad)
		}
	}
}

func TestDeleteAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, k := range []string{"j/1.json", "j/2.json", "other/x.json"} {
		if _, err := s.Put(ctx, k, strings.NewReader(k), blob.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	infos, err := s.List(ctx, "j/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(infos))
	}
	ok, err := s.Delete(ctx, "j/1.json")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = s.Delete(ctx, "missing")
	if err != nil || ok {
		t.Fatalf("missing delete: ok=%v err=%v", ok, err)
	}
}
