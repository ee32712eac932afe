package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const upTemplate = `-- {{.Name}}
-- Created: {{.Timestamp}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`

const downTemplate = `-- Rollback of {{.Name}}

`

// MigrationFile describes a created up/down pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty up/down pair numbered after the highest
// existing migration in dir, e.g. 000002_add_product_sku.up.sql
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}
	next := 1
	if len(existing) > 0 {
		last := existing[len(existing)-1]
		if n, err := strconv.Atoi(strings.SplitN(last, "_", 2)[0]); err == nil {
			next = n + 1
		}
	}

	version := fmt.Sprintf("%06d", next)
	base := version + "_" + slug
	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		UpPath:      filepath.Join(dir, base+".up.sql"),
		DownPath:    filepath.Join(dir, base+".down.sql"),
	}

	if err := writeTemplate(mf.UpPath, upTemplate, mf); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := writeTemplate(mf.DownPath, downTemplate, mf); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return mf, nil
}

func writeTemplate(path, text string, data *MigrationFile) error {
	tmpl, err := template.New(filepath.Base(path)).Parse(text)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return tmpl.Execute(f, data)
}

// sanitizeName lowercases name and collapses every run of other characters
// into one underscore
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// ListMigrations returns the base names of the migrations in dir, sorted
func ListMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			names = append(names, base)
		}
	}
	sort.Strings(names)
	return names, nil
}
