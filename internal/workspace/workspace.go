// Package workspace names and reads the documents a pipeline run works on.
// Generation agents write these files themselves; this package only ever
// reads them back for prompt embedding.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Well-known artifact names, relative to the run directory.
const (
	RequirementDir   = "requirement"
	LeaderFile       = "requirement_leader.md"
	OverallFile      = "design_overall.md"
	InsufficientFile = "requirement_insufficient.md"
)

func LeaderCandidateFile(i int) string {
	return fmt.Sprintf("requirement_leader_%d.md", i)
}

func OverallCandidateFile(i int) string {
	return fmt.Sprintf("design_overall_%d.md", i)
}

func ModuleFile(module string) string {
	return fmt.Sprintf("design_module_%s.md", module)
}

func InsufficientReportFile(i int) string {
	return fmt.Sprintf("requirement_insufficient_%d.md", i)
}

// Dir is the working directory of one run.
type Dir struct {
	root string
}

func New(root string) *Dir {
	if root == "" {
		root = "."
	}
	return &Dir{root: root}
}

func (d *Dir) Root() string {
	return d.root
}

func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, name)
}

// Read returns the file's content wrapped in name headers, ready for prompt
// embedding. Missing or unreadable files yield a bracketed placeholder so
// the prompt still says what should have been there.
func (d *Dir) Read(name string) string {
	data, err := os.ReadFile(d.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("[missing file: %s]", name)
		}
		return fmt.Sprintf("[failed to read file %s: %v]", name, err)
	}
	content := strings.TrimSpace(string(data))
	return fmt.Sprintf("=== File: %s ===\n%s\n=== End of file: %s ===\n", name, content, name)
}

// ReadRaw returns the bare file content without headers.
func (d *Dir) ReadRaw(name string) (string, error) {
	data, err := os.ReadFile(d.Path(name))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

// RequirementDocs gathers everything under requirement/. Markdown and plain
// text files are inlined with headers; any other format is listed by path
// for the agent to read itself.
func (d *Dir) RequirementDocs() string {
	matches, _ := filepath.Glob(filepath.Join(d.root, RequirementDir, "*"))
	sort.Strings(matches)

	var textParts []string
	var otherPaths []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		rel, err := filepath.Rel(d.root, m)
		if err != nil {
			continue
		}
		switch strings.ToLower(filepath.Ext(m)) {
		case ".md", ".txt":
			textParts = append(textParts, d.Read(rel))
		default:
			otherPaths = append(otherPaths, rel)
		}
	}

	if len(textParts) == 0 && len(otherPaths) == 0 {
		return "[no requirement documents found]"
	}

	result := strings.Join(textParts, "\n")
	if len(otherPaths) > 0 {
		var b strings.Builder
		b.WriteString("The following requirement files are not plain text; read them directly:\n")
		for _, p := range otherPaths {
			fmt.Fprintf(&b, "- %s\n", p)
		}
		result = strings.TrimSpace(result + "\n\n" + strings.TrimRight(b.String(), "\n"))
	}
	return strings.TrimSpace(result)
}

// ModuleDocs concatenates every design_module_*.md with headers, skipping
// any file names in exclude.
func (d *Dir) ModuleDocs(exclude ...string) string {
	matches, _ := filepath.Glob(filepath.Join(d.root, "design_module_*.md"))
	sort.Strings(matches)

	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}

	var parts []string
	for _, m := range matches {
		name := filepath.Base(m)
		if skip[name] {
			continue
		}
		parts = append(parts, d.Read(name))
	}
	if len(parts) == 0 {
		return "[no module design documents found]"
	}
	return strings.Join(parts, "\n")
}

var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*)`)

// ExtractSections returns the markdown sections whose heading contains any
// keyword, case-insensitively. A section runs from its heading to the next
// heading of equal or higher level.
func ExtractSections(content string, keywords []string) string {
	var extracted []string
	inside := false
	currentLevel := 0

	for _, line := range strings.Split(content, "\n") {
		m := headingRe.FindStringSubmatch(line)
		if m != nil {
			level := len(m[1])
			title := strings.ToLower(m[2])
			matched := false
			for _, kw := range keywords {
				if strings.Contains(title, strings.ToLower(kw)) {
					matched = true
					break
				}
			}
			switch {
			case matched:
				inside = true
				currentLevel = level
				extracted = append(extracted, line)
			case inside && level <= currentLevel:
				inside = false
			case inside:
				extracted = append(extracted, line)
			}
		} else if inside {
			extracted = append(extracted, line)
		}
	}
	return strings.TrimSpace(strings.Join(extracted, "\n"))
}

// Section keyword sets cover the heading variants the drafting prompts ask
// for plus the usual paraphrases models produce.
var (
	interfaceKeywords = []string{"exposed interface", "interface definition", "interfaces", "api"}
	entityKeywords    = []string{"entity", "entities", "data model"}
)

// ModuleContext digests already-written module documents down to their
// entity and interface sections for embedding in later drafting prompts.
// A document where neither section is found contributes its first 500 runes
// instead, so later modules never design blind against it.
func (d *Dir) ModuleContext(modules []string) string {
	if len(modules) == 0 {
		return ""
	}

	parts := []string{"Entities and interfaces from modules designed so far (reference only; do not introduce conflicting definitions):"}
	for _, module := range modules {
		fname := ModuleFile(module)
		raw, err := d.ReadRaw(fname)
		if err != nil {
			continue
		}

		entitySection := ExtractSections(raw, entityKeywords)
		interfaceSection := ExtractSections(raw, interfaceKeywords)

		if entitySection == "" && interfaceSection == "" {
			fallback := headRunes(strings.TrimSpace(raw), 500)
			parts = append(parts, fmt.Sprintf(
				"--- Module: %s (file: %s; sections not found, document head follows) ---\n%s",
				module, fname, fallback))
			continue
		}

		var b strings.Builder
		if entitySection != "" {
			fmt.Fprintf(&b, "### Entities (from %s)\n%s\n\n", fname, entitySection)
		}
		if interfaceSection != "" {
			fmt.Fprintf(&b, "### Exposed interfaces (from %s)\n%s\n", fname, interfaceSection)
		}
		parts = append(parts, fmt.Sprintf("--- Module: %s (file: %s) ---\n%s", module, fname, b.String()))
	}

	if len(parts) == 1 {
		return ""
	}
	return strings.Join(parts, "\n\n")
}

func headRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
