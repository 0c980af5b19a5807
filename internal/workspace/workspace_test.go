package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestDirRead(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "requirement_leader.md", "# Split\n\ncontent\n")

	d := New(root)
	got := d.Read("requirement_leader.md")
	want := "=== File: requirement_leader.md ===\n# Split\n\ncontent\n=== End of file: requirement_leader.md ===\n"
	if got != want {
		t.Errorf("Read() = %q, want %q", got, want)
	}
}

func TestDirReadMissing(t *testing.T) {
	d := New(t.TempDir())
	got := d.Read("nope.md")
	if got != "[missing file: nope.md]" {
		t.Errorf("Read() = %q", got)
	}
}

func TestRequirementDocs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "requirement/b_orders.md", "orders")
	writeFile(t, root, "requirement/a_users.txt", "users")
	writeFile(t, root, "requirement/flow.pdf", "%PDF")

	got := New(root).RequirementDocs()

	usersAt := strings.Index(got, "=== File: requirement/a_users.txt ===")
	ordersAt := strings.Index(got, "=== File: requirement/b_orders.md ===")
	if usersAt < 0 || ordersAt < 0 {
		t.Fatalf("missing inlined docs:\n%s", got)
	}
	if usersAt > ordersAt {
		t.Error("requirement docs should be inlined in sorted order")
	}
	if !strings.Contains(got, "read them directly") || !strings.Contains(got, "requirement/flow.pdf") {
		t.Errorf("non-text file not listed:\n%s", got)
	}
}

func TestRequirementDocsEmpty(t *testing.T) {
	got := New(t.TempDir()).RequirementDocs()
	if got != "[no requirement documents found]" {
		t.Errorf("RequirementDocs() = %q", got)
	}
}

func TestModuleDocs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "design_module_billing.md", "billing doc")
	writeFile(t, root, "design_module_auth.md", "auth doc")
	writeFile(t, root, "design_overall.md", "overall")

	d := New(root)
	got := d.ModuleDocs()
	if !strings.Contains(got, "billing doc") || !strings.Contains(got, "auth doc") {
		t.Errorf("ModuleDocs() missing content:\n%s", got)
	}
	if strings.Contains(got, "overall") {
		t.Error("ModuleDocs() should not include design_overall.md")
	}

	got = d.ModuleDocs("design_module_billing.md")
	if strings.Contains(got, "billing doc") {
		t.Error("excluded module still present")
	}

	if got := New(t.TempDir()).ModuleDocs(); got != "[no module design documents found]" {
		t.Errorf("empty ModuleDocs() = %q", got)
	}
}

func TestExtractSections(t *testing.T) {
	content := strings.Join([]string{
		"# Module design",
		"intro",
		"## Entities and relationships",
		"User(id, name)",
		"### Keys",
		"primary key id",
		"## Business logic",
		"irrelevant",
		"## Exposed interfaces",
		"CreateUser(req) -> User",
	}, "\n")

	tests := []struct {
		name     string
		keywords []string
		contains []string
		excludes []string
	}{
		{
			name:     "entity section with nested heading",
			keywords: []string{"entities"},
			contains: []string{"## Entities and relationships", "User(id, name)", "### Keys", "primary key id"},
			excludes: []string{"Business logic", "CreateUser"},
		},
		{
			name:     "interface section at end of document",
			keywords: []string{"exposed interface"},
			contains: []string{"## Exposed interfaces", "CreateUser(req) -> User"},
			excludes: []string{"User(id, name)"},
		},
		{
			name:     "case insensitive match",
			keywords: []string{"ENTITIES"},
			contains: []string{"User(id, name)"},
		},
		{
			name:     "no match",
			keywords: []string{"deployment"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractSections(content, tt.keywords)
			if len(tt.contains) == 0 && got != "" {
				t.Fatalf("expected empty extraction, got:\n%s", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("extraction missing %q:\n%s", want, got)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("extraction should not contain %q:\n%s", bad, got)
				}
			}
		})
	}
}

func TestModuleContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "design_module_auth.md", strings.Join([]string{
		"# Auth module",
		"## Entities and relationships",
		"Credential(id, hash)",
		"## Exposed interfaces",
		"Login(req) -> Session",
	}, "\n"))

	d := New(root)
	got := d.ModuleContext([]string{"auth"})
	if !strings.Contains(got, "--- Module: auth (file: design_module_auth.md) ---") {
		t.Errorf("missing module header:\n%s", got)
	}
	if !strings.Contains(got, "Credential(id, hash)") || !strings.Contains(got, "Login(req) -> Session") {
		t.Errorf("missing extracted sections:\n%s", got)
	}
}

func TestModuleContextFallback(t *testing.T) {
	root := t.TempDir()
	long := strings.Repeat("x", 600)
	writeFile(t, root, "design_module_odd.md", "no recognizable headings\n"+long)

	got := New(root).ModuleContext([]string{"odd"})
	if !strings.Contains(got, "document head follows") {
		t.Errorf("expected head fallback marker:\n%s", got)
	}
	if strings.Contains(got, long) {
		t.Error("fallback should truncate to 500 runes")
	}
}

func TestModuleContextEmpty(t *testing.T) {
	d := New(t.TempDir())
	if got := d.ModuleContext(nil); got != "" {
		t.Errorf("ModuleContext(nil) = %q", got)
	}
	// Only missing files: header alone collapses to "".
	if got := d.ModuleContext([]string{"ghost"}); got != "" {
		t.Errorf("ModuleContext of missing modules = %q", got)
	}
}
