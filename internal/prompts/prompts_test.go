package prompts

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestExtractVariables(t *testing.T) {
	got := ExtractVariables("Hello {{.Name}}, {{ .Doc.Title }} and {{.Name}} again {{range .Groups}}{{end}}")
	want := []string{"Doc.Title", "Name"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractVariables() = %v, want %v", got, want)
	}
}

func TestRender(t *testing.T) {
	got, err := Render("t", "Hi {{.Name}}", map[string]string{"Name": "Ada"})
	if err != nil || got != "Hi Ada" {
		t.Fatalf("Render() = %q, %v", got, err)
	}
	if _, err := Render("t", "Hi {{.Missing}}", map[string]string{}); err == nil {
		t.Error("expected error for missing key")
	}
	if _, err := Render("t", "Hi {{.Name", nil); err == nil {
		t.Error("expected parse error")
	}
}

func TestIndentJSON(t *testing.T) {
	got, err := IndentJSON(map[string]any{"name": "Jane & Co"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "{\n  \"name\": \"Jane & Co\"\n}" {
		t.Errorf("IndentJSON() = %q", got)
	}
}

func TestStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")
	s := NewStore(dir, nil)

	if o, err := s.Get("analysis.analyze.user"); err != nil || o != nil {
		t.Fatalf("Get() on empty store = %v, %v", o, err)
	}
	if list, err := s.List(); err != nil || len(list) != 0 {
		t.Fatalf("List() on missing dir = %v, %v", list, err)
	}

	if err := s.Set("b.key", "two"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set("a.key", "one"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	list, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Key != "a.key" || list[1].Text != "two" {
		t.Errorf("List() = %+v", list)
	}

	if err := s.Clear("a.key"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if err := s.Clear("a.key"); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
	if o, _ := s.Get("a.key"); o != nil {
		t.Error("override still present after Clear")
	}

	for _, bad := range []string{"../escape", "", "1abc", "a/b"} {
		if err := s.Set(bad, "x"); err == nil {
			t.Errorf("Set(%q) expected error", bad)
		}
	}
}

func TestResolver(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	r := NewResolver(store, nil)
	r.Register(EmbeddedPrompt{Key: "x.system", Text: "embedded {{.Doc}}"})
	r.Register(EmbeddedPrompt{Key: "a.system", Text: "first"})

	t.Run("embedded default", func(t *testing.T) {
		p, err := r.Resolve("x.system")
		if err != nil {
			t.Fatal(err)
		}
		if p.IsOverride || p.Text != "embedded {{.Doc}}" || p.Hash != HashText(p.Text) {
			t.Errorf("Resolve() = %+v", p)
		}
		if !reflect.DeepEqual(p.Variables, []string{"Doc"}) {
			t.Errorf("Variables = %v", p.Variables)
		}
	})

	t.Run("override wins", func(t *testing.T) {
		if err := store.Set("x.system", "override"); err != nil {
			t.Fatal(err)
		}
		p, err := r.Resolve("x.system")
		if err != nil {
			t.Fatal(err)
		}
		if !p.IsOverride || p.Text != "override" {
			t.Errorf("Resolve() = %+v", p)
		}
		if e, ok := r.GetEmbedded("x.system"); !ok || strings.Contains(e.Text, "override") {
			t.Errorf("GetEmbedded() = %+v, %v", e, ok)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		if _, err := r.Resolve("nope"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("sorted listing", func(t *testing.T) {
		all := r.AllEmbedded()
		if len(all) != 2 || all[0].Key != "a.system" {
			t.Errorf("AllEmbedded() = %+v", all)
		}
	})

	t.Run("no store", func(t *testing.T) {
		r := NewResolver(nil, nil)
		r.Register(EmbeddedPrompt{Key: "k", Text: "t"})
		if p, err := r.Resolve("k"); err != nil || p.Text != "t" {
			t.Errorf("Resolve() = %+v, %v", p, err)
		}
	})
}
