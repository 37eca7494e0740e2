package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"placeholders kept", "SELECT * FROM goals WHERE id = $1 AND child_id = $12", "SELECT * FROM goals WHERE id = $1 AND child_id = $12"},
		{"string literal", "UPDATE goals SET status = 'completed'", "UPDATE goals SET status = '?'"},
		{"escaped quote", "SELECT 'it''s'", "SELECT '?'"},
		{"numeric literal", "SELECT * FROM expenses LIMIT 10", "SELECT * FROM expenses LIMIT ?"},
		{"decimal literal", "SELECT 12.50", "SELECT ?"},
		{"identifier digits", "SELECT col1 FROM t2", "SELECT col1 FROM t2"},
		{"whitespace collapsed", "SELECT id\n\t\tFROM goals", "SELECT id FROM goals"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeQuery(tt.query); got != tt.want {
				t.Errorf("sanitizeQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestExtractSQLVerb(t *testing.T) {
	tests := map[string]string{
		"select 1":                        "SELECT",
		"\n\t INSERT INTO goals":          "INSERT",
		"SELECT delete_user_and_data($1)": "SELECT",
		"":                                "",
	}
	for query, want := range tests {
		if got := extractSQLVerb(query); got != want {
			t.Errorf("extractSQLVerb(%q) = %q, want %q", query, got, want)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})) {
		t.Error("expected wrapped 23505 to be a unique violation")
	}
	if IsUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("foreign key violation reported as unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Error("plain error reported as unique violation")
	}
}
