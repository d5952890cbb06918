package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDomainImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"example.com/mod/pkg/domain", true},
		{"example.com/mod/pkg/domain@v1", true},
		{"example.com/mod/pkg/notdomain", false},
	}
	for _, c := range cases {
		if got := DomainImportForbidden(c.in); got != c.want {
			t.Fatalf("DomainImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestInternalImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"example.com/mod/internal/x", true},
		{"example.com/mod/pkg/x", false},
	}
	for _, c := range cases {
		if got := InternalImportForbidden(c.in); got != c.want {
			t.Fatalf("InternalImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestAssertNoDirectImportsFlagsViolations(t *testing.T) {
	dir := t.TempDir()
	src := `package probe

import (
	_ "example.com/mod/internal/hidden"
	_ "example.com/mod/pkg/ok"
)
`
	if err := os.WriteFile(filepath.Join(dir, "probe.go"), []byte(src), 0o644); err != nil {
		t.Fatalf("write probe: %v", err)
	}

	rec := &recordingTB{TB: t}
	AssertNoDirectImports(rec, dir, InternalImportForbidden, "probe boundary")
	if !rec.failed {
		t.Fatalf("expected violation to be reported")
	}

	rec = &recordingTB{TB: t}
	AssertNoDirectImports(rec, dir, func(string) bool { return false }, "probe boundary")
	if rec.failed {
		t.Fatalf("unexpected violation")
	}
}

// recordingTB captures Fatalf calls instead of failing the enclosing test.
type recordingTB struct {
	testing.TB
	failed bool
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Fatalf(string, ...any) {
	r.failed = true
}
