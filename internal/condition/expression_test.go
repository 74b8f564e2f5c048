package condition

import (
	"errors"
	"testing"
)

// fields implements EvalContext over a flat map.
type fields map[string]interface{}

func (f fields) Resolve(path []string) (interface{}, bool) {
	if len(path) != 1 {
		return nil, false
	}
	v, ok := f[path[0]]
	return v, ok
}

var mascara = fields{
	"id":       float64(1),
	"title":    "Essence Mascara Lash Princess",
	"category": "beauty",
	"price":    9.99,
	"images":   float64(1),
	"in_stock": true,
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name string
		expr string
		want bool
	}{
		{"lt", "price < 10", true},
		{"gte boundary", "price >= 9.99", true},
		{"gt false", "price > 100", false},
		{"negative literal", "price > -1", true},
		{"eq number", "id == 1", true},
		{"eq string", `category == "beauty"`, true},
		{"eq string is exact", `category == "Beauty"`, false},
		{"neq string", `category != "groceries"`, true},
		{"single quotes", `category == 'beauty'`, true},
		{"bool", "in_stock == true", true},
		{"bool vs string", `in_stock == "true"`, false},
		{"contains ignores case", `title contains "mascara"`, true},
		{"contains false", `title contains "lipstick"`, false},
		{"matches", `title matches "^Essence .*Princess$"`, true},
		{"matches false", `title matches "^Lash"`, false},
		{"and", `price < 20 AND title contains "Mascara"`, true},
		{"and short", `price > 20 AND title contains "Mascara"`, false},
		{"or", `price > 20 OR images >= 1`, true},
		{"or both false", `price > 20 OR images > 1`, false},
		{"not", `NOT price > 20`, true},
		{"lower-case keywords", `not (price > 20 or category == "food") and id == 1`, true},
		{"precedence", `price > 20 AND id == 2 OR category == "beauty"`, true},
		{"grouping", `price > 20 AND (id == 2 OR category == "beauty")`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Compile(tc.expr)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", tc.expr, err)
			}
			got, err := f.Match(mascara)
			if err != nil {
				t.Fatalf("Match error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Match(%q) = %v, want %v", tc.expr, got, tc.want)
			}
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	cases := []struct {
		name string
		expr string
	}{
		{"unknown field", "rating > 4"},
		{"numeric op on string", `title > 3`},
		{"contains on number", `price contains "9"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Compile(tc.expr)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", tc.expr, err)
			}
			if _, err := f.Match(mascara); err == nil {
				t.Fatalf("expected evaluation error for %q", tc.expr)
			}
		})
	}

	f, _ := Compile("rating > 4")
	if _, err := f.Match(mascara); !errors.Is(err, ErrUnknownField) {
		t.Errorf("want ErrUnknownField, got %v", err)
	}
}

func TestShortCircuitSkipsUnknownField(t *testing.T) {
	f, err := Compile(`price < 20 OR rating > 4`)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := f.Match(mascara)
	if err != nil || !ok {
		t.Fatalf("got %v, %v; want true, nil", ok, err)
	}
}

func TestCompile_EmptyMatchesEverything(t *testing.T) {
	for _, src := range []string{"", "   "} {
		f, err := Compile(src)
		if err != nil {
			t.Fatalf("Compile(%q): %v", src, err)
		}
		ok, err := f.Match(fields{})
		if err != nil || !ok {
			t.Errorf("empty filter: got %v, %v", ok, err)
		}
	}
	var nilFilter *Filter
	if ok, _ := nilFilter.Match(mascara); !ok {
		t.Error("nil filter should match")
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []string{
		`"unterminated`,
		`price 10`,
		`price = 10`,
		`(price < 10`,
		`price < 10)`,
		`price <`,
		`title matches "("`,
		`price < 10 AND`,
		`price # 3`,
	}
	for _, expr := range cases {
		t.Run(expr, func(t *testing.T) {
			_, err := Compile(expr)
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Errorf("Compile(%q): want *SyntaxError, got %v", expr, err)
			}
		})
	}
}
