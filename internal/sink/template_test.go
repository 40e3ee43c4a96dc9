package sink

import (
	"errors"
	"testing"
)

func TestParseTemplateRewritesPlaceholdersWithPositionalBinds(t *testing.T) {
	parsed, err := ParseTemplate(
		"INSERT INTO sink_rows (product_id, quantity, duplicate_id) VALUES ({product_id}, {quantity}, {product_id})",
	)
	if err != nil {
		t.Fatalf("ParseTemplate() error = %v", err)
	}

	wantSQL := "INSERT INTO sink_rows (product_id, quantity, duplicate_id) VALUES ($1, $2, $3)"
	if parsed.SQL != wantSQL {
		t.Errorf("SQL = %q, want %q", parsed.SQL, wantSQL)
	}

	wantPlaceholders := []Placeholder{ProductID, Quantity, ProductID}
	if len(parsed.Placeholders) != len(wantPlaceholders) {
		t.Fatalf("Placeholders = %v, want %v", parsed.Placeholders, wantPlaceholders)
	}
	for i, p := range wantPlaceholders {
		if parsed.Placeholders[i] != p {
			t.Errorf("Placeholders[%d] = %v, want %v", i, parsed.Placeholders[i], p)
		}
	}
}

func TestParseTemplateAcceptsWhitespaceInsidePlaceholders(t *testing.T) {
	parsed, err := ParseTemplate("VALUES ({ product_id }, { quantity })")
	if err != nil {
		t.Fatalf("ParseTemplate() error = %v", err)
	}
	if parsed.SQL != "VALUES ($1, $2)" {
		t.Errorf("SQL = %q, want %q", parsed.SQL, "VALUES ($1, $2)")
	}
}

func TestParseTemplateRejectsUnknownPlaceholder(t *testing.T) {
	_, err := ParseTemplate("SELECT {does_not_exist}")
	var unknown *ErrUnknownPlaceholder
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownPlaceholder, got %v (%T)", err, err)
	}
	if unknown.Name != "does_not_exist" {
		t.Errorf("Name = %q, want %q", unknown.Name, "does_not_exist")
	}
}

func TestParseTemplateRequiresAtLeastOnePlaceholder(t *testing.T) {
	_, err := ParseTemplate("SELECT 1")
	var want *ErrNoPlaceholders
	if !errors.As(err, &want) {
		t.Fatalf("expected ErrNoPlaceholders, got %v (%T)", err, err)
	}
}

func TestParseTemplateRejectsMalformedBraces(t *testing.T) {
	_, err := ParseTemplate("VALUES ({product_id")
	var unclosed *ErrUnclosedPlaceholder
	if !errors.As(err, &unclosed) {
		t.Fatalf("expected ErrUnclosedPlaceholder, got %v (%T)", err, err)
	}

	_, err = ParseTemplate("VALUES (product_id})")
	var unmatched *ErrUnmatchedBrace
	if !errors.As(err, &unmatched) {
		t.Fatalf("expected ErrUnmatchedBrace, got %v (%T)", err, err)
	}
}

func TestParseTemplateRejectsEmptyPlaceholder(t *testing.T) {
	_, err := ParseTemplate("VALUES ({})")
	var want *ErrEmptyPlaceholder
	if !errors.As(err, &want) {
		t.Fatalf("expected ErrEmptyPlaceholder, got %v (%T)", err, err)
	}
}
