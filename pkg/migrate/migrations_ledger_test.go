package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestDocumentsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_documents.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS documents",
		"CHECK (kind IN ('receipt', 'shipment'))",
		"CHECK (state IN ('draft', 'signed'))",
		"FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"DROP TABLE IF EXISTS document_items",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestBalancesMigrationContainsUniquePair(t *testing.T) {
	content := readMigration(t, "*_create_balances.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS balances",
		"CONSTRAINT idx_balances_resource_unit UNIQUE (resource_id, unit_id)",
		"FOREIGN KEY (resource_id) REFERENCES resources(id)",
		"DROP TABLE IF EXISTS balances",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCatalogMigrationContainsUniqueNames(t *testing.T) {
	content := readMigration(t, "*_create_catalog.sql")

	for _, sub := range []string{
		"CONSTRAINT uq_resources_name UNIQUE (name)",
		"CONSTRAINT uq_units_name UNIQUE (name)",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
