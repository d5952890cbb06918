package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"trackcore/internal/infra/blob"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()
	info, err := s.Put(ctx, "journal/one.json", strings.NewReader(`{"a":1}`), blob.PutOptions{ContentType: "application/json", Metadata: map[string]string{"origin": "test"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 7 || info.ContentType != "application/json" {
		t.Fatalf("unexpected info: %+v", info)
	}
	got, rc, err := s.Get(ctx, "journal/one.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != `{"a":1}` {
		t.Fatalf("unexpected body %q", body)
	}
	if got.Metadata["origin"] != "test" {
		t.Fatalf("metadata lost: %+v", got.Metadata)
	}
}

func TestPutRejectsDuplicateKey(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.Put(ctx, "k", strings.NewReader("x"), blob.PutOptions{}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := s.Put(ctx, "k", strings.NewReader("y"), blob.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestDeleteAndList(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, k := range []string{"a/1", "a/2", "b/1"} {
		if _, err := s.Put(ctx, k, strings.NewReader(k), blob.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	infos, err := s.List(ctx, "a/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "a/1" || infos[1].Key != "a/2" {
		t.Fatalf("unexpected list: %+v", infos)
	}
	ok, err := s.Delete(ctx, "a/1")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = s.Delete(ctx, "a/1")
	if err != nil || ok {
		t.Fatalf("second delete should report missing: ok=%v err=%v", ok, err)
	}
	if _, err := s.Head(ctx, "a/1"); err == nil {
		t.Fatalf("head after delete should fail")
	}
}
