package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/hugr-lab/memquery/record"
)

func TestEncodeSimpleEquality(t *testing.T) {
	enc := NewDuckDBEncoder(nil)
	sql, err := enc.Encode(Eq("id", 42))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	expected := "id = 42"
	if sql != expected {
		t.Errorf("expected '%s', got '%s'", expected, sql)
	}
}

func TestEncodeComparisonOperators(t *testing.T) {
	tests := []struct {
		node     Node
		expected string
	}{
		{Eq("col", 42), "col = 42"},
		{Neq("col", 42), "col IS DISTINCT FROM 42"},
		{Compare("col", OpLt, 42), "col < 42"},
		{Compare("col", OpLte, 42), "col <= 42"},
		{Compare("col", OpGt, 4.5), "col > 4.5"},
		{Compare("col", OpGte, 42), "col >= 42"},
		{Is("col", true), "col = TRUE"},
		{Compare("col", OpIsNot, false), "col IS DISTINCT FROM FALSE"},
		{Between("col", 1, 10), "col BETWEEN 1 AND 10"},
		{&Comparison{Field: "col", Op: OpNotBetween, Lower: record.NumberValue(1), Upper: record.NumberValue(10)}, "col NOT BETWEEN 1 AND 10"},
	}

	enc := NewDuckDBEncoder(nil)
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			sql, err := enc.Encode(tt.node)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if sql != tt.expected {
				t.Errorf("expected '%s', got '%s'", tt.expected, sql)
			}
		})
	}
}

func TestEncodeNullValue(t *testing.T) {
	tests := []struct {
		node     Node
		expected string
	}{
		{Eq("col", nil), "col IS NULL"},
		{Is("col", nil), "col IS NULL"},
		{Neq("col", nil), "col IS NOT NULL"},
		{Compare("col", OpIsNot, nil), "col IS NOT NULL"},
	}

	enc := NewDuckDBEncoder(nil)
	for _, tt := range tests {
		sql, err := enc.Encode(tt.node)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if sql != tt.expected {
			t.Errorf("expected '%s', got '%s'", tt.expected, sql)
		}
	}
}

func TestEncodeIn(t *testing.T) {
	tests := []struct {
		node     Node
		expected string
	}{
		{In("col", 1, 2, 3), "col IN (1, 2, 3)"},
		{In("col", "a", nil), "(col IN ('a') OR col IS NULL)"},
		{In("col", nil), "col IS NULL"},
		{In("col"), "FALSE"},
		{NotIn("col", 1, 2), "(col IS NULL OR col NOT IN (1, 2))"},
		{NotIn("col", 1, nil), "(col IS NOT NULL AND col NOT IN (1))"},
		{NotIn("col", nil), "col IS NOT NULL"},
		{NotIn("col"), "TRUE"},
	}

	enc := NewDuckDBEncoder(nil)
	for _, tt := range tests {
		sql, err := enc.Encode(tt.node)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if sql != tt.expected {
			t.Errorf("expected '%s', got '%s'", tt.expected, sql)
		}
	}
}

func TestEncodeLike(t *testing.T) {
	tests := []struct {
		node     Node
		expected string
	}{
		{Compare("name", OpLike, "A%"), `name LIKE 'A%' ESCAPE '\'`},
		{Compare("name", OpNotLike, "%_x"), `name NOT LIKE '%\_x' ESCAPE '\'`},
		{Compare("name", OpILike, `a\b`), `name ILIKE 'a\\b' ESCAPE '\'`},
		{Compare("name", OpNotILike, "it's"), `name NOT ILIKE 'it''s' ESCAPE '\'`},
		{Compare("name", OpLike, 5), "FALSE"},
	}

	enc := NewDuckDBEncoder(nil)
	for _, tt := range tests {
		sql, err := enc.Encode(tt.node)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if sql != tt.expected {
			t.Errorf("expected '%s', got '%s'", tt.expected, sql)
		}
	}
}

func TestEncodeGroups(t *testing.T) {
	tests := []struct {
		name     string
		node     Node
		expected string
	}{
		{"nil", nil, "TRUE"},
		{"empty and", AllOf(), "TRUE"},
		{"empty or", AnyOf(), "FALSE"},
		{"single child", AllOf(Eq("a", 1)), "a = 1"},
		{"and", AllOf(Eq("a", 1), Compare("b", OpGt, 2)), "(a = 1 AND b > 2)"},
		{"or", AnyOf(Eq("a", 1), Eq("a", 2)), "(a = 1 OR a = 2)"},
		{"nested", AllOf(Is("ok", true), AnyOf(Eq("a", 1), AllOf())), "(ok = TRUE AND (a = 1 OR TRUE))"},
	}

	enc := NewDuckDBEncoder(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, err := enc.Encode(tt.node)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if sql != tt.expected {
				t.Errorf("expected '%s', got '%s'", tt.expected, sql)
			}
		})
	}
}

func TestEncodeStringEscaping(t *testing.T) {
	enc := NewDuckDBEncoder(nil)
	sql, err := enc.Encode(Eq("name", "O'Brien"))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	expected := "name = 'O''Brien'"
	if sql != expected {
		t.Errorf("expected '%s', got '%s'", expected, sql)
	}
}

func TestEncodeTimestamp(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 500000000, time.FixedZone("CET", 3600))

	enc := NewDuckDBEncoder(nil)
	sql, err := enc.Encode(Compare("created", OpGte, ts))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	expected := "created >= TIMESTAMPTZ '2024-01-15 09:30:00.5+00'"
	if sql != expected {
		t.Errorf("expected '%s', got '%s'", expected, sql)
	}
}

func TestEncodeColumnMapping(t *testing.T) {
	enc := NewDuckDBEncoder(&EncoderOptions{
		ColumnMapping: FieldMap{"userName": "user_name", "ts": "created at"},
	})

	sql, err := enc.Encode(AllOf(Eq("userName", "bob"), Compare("ts", OpGt, 1), Eq("other", 2)))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	expected := `(user_name = 'bob' AND "created at" > 1 AND other = 2)`
	if sql != expected {
		t.Errorf("expected '%s', got '%s'", expected, sql)
	}
}

func TestEncodeExpressionTakesPrecedence(t *testing.T) {
	enc := NewDuckDBEncoder(&EncoderOptions{
		ColumnMapping:     FieldMap{"name": "user_name"},
		ColumnExpressions: map[string]string{"name": "lower(user_name)"},
	})

	sql, err := enc.Encode(Eq("name", "bob"))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	expected := "lower(user_name) = 'bob'"
	if sql != expected {
		t.Errorf("expected '%s', got '%s'", expected, sql)
	}
}

func TestEncodeIdentifierQuoting(t *testing.T) {
	tests := map[string]string{
		"id":         "id",
		"_private":   "_private",
		"firstName":  `"firstName"`,
		"order":      `"order"`,
		"2fast":      `"2fast"`,
		`say "hi"`:   `"say ""hi"""`,
		"snake_case": "snake_case",
	}
	for in, want := range tests {
		if got := QuoteIdentifier(in); got != want {
			t.Errorf("QuoteIdentifier(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestEncodeUnsupported(t *testing.T) {
	enc := NewDuckDBEncoder(nil)

	_, err := enc.Encode(AllOf(Eq("a", 1), &Comparison{Field: "a", Op: "regex"}))
	if !errors.Is(err, ErrUnsupportedOperator) {
		t.Errorf("expected ErrUnsupportedOperator, got %v", err)
	}

	_, err = enc.Encode(&Group{Connective: "xor"})
	if !errors.Is(err, ErrUnsupportedOperator) {
		t.Errorf("expected ErrUnsupportedOperator for connective, got %v", err)
	}
}
