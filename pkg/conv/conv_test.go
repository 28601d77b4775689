package conv

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantNaN bool
	}{
		{in: "0.75", want: 0.75},
		{in: " 1 ", want: 1},
		{in: "0", want: 0},
		{in: "", wantNaN: true},
		{in: "n/a", wantNaN: true},
		{in: "NaN", wantNaN: true},
		{in: "Inf", wantNaN: true},
		{in: "+Infinity", wantNaN: true},
		{in: "-inf", wantNaN: true},
		{in: "1.5", want: 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseScore(tt.in)
			if tt.wantNaN {
				if !math.IsNaN(got) {
					t.Errorf("ParseScore(%q) = %v, want NaN", tt.in, got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseScore(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseUnitScore(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantNaN bool
	}{
		{in: "0", want: 0},
		{in: "1", want: 1},
		{in: "0.42", want: 0.42},
		{in: "1.5", wantNaN: true},
		{in: "-0.2", wantNaN: true},
		{in: "Inf", wantNaN: true},
		{in: "", wantNaN: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseUnitScore(tt.in)
			if tt.wantNaN {
				if !math.IsNaN(got) {
					t.Errorf("ParseUnitScore(%q) = %v, want NaN", tt.in, got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseUnitScore(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitKeywords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "blank", in: "  ", want: nil},
		{name: "trim and drop empty", in: " campus , ,food,", want: []string{"campus", "food"}},
		{name: "dedupe keeps first order", in: "food,campus,food", want: []string{"food", "campus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitKeywords(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitKeywords(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"ITEM_ID":           "ITEM_ID",
		"itemId":            "ITEM_ID",
		"item_id":           "ITEM_ID",
		" USER_ID ":         "USER_ID",
		"\ufeffITEM_ID":     "ITEM_ID",
		"positiveKeywords":  "POSITIVE_KEYWORDS",
		"POSITIVE_KEYWORDS": "POSITIVE_KEYWORDS",
	}
	for in, want := range tests {
		if got := NormalizeKey(in); got != want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLookup(t *testing.T) {
	row := map[string]string{"itemId": "A", "USER_ID": "u1"}
	if v, ok := Lookup(row, "ITEM_ID"); !ok || v != "A" {
		t.Errorf("Lookup(ITEM_ID) = %q, %v", v, ok)
	}
	if v, ok := Lookup(row, "USER_ID"); !ok || v != "u1" {
		t.Errorf("Lookup(USER_ID) = %q, %v", v, ok)
	}
	if _, ok := Lookup(row, "EVENT_VALUE"); ok {
		t.Error("Lookup(EVENT_VALUE) should miss")
	}
}

func TestConfigGet(t *testing.T) {
	m := map[string]any{
		"name":    "matrix",
		"n":       float64(3),
		"ids":     []any{"a", 2, 1.5},
		"timeout": "2s",
		"wait":    3,
	}
	if got := ConfigGet[string](m, "name", ""); got != "matrix" {
		t.Errorf("ConfigGet(name) = %q", got)
	}
	if got := ConfigGet[bool](m, "name", true); got != true {
		t.Errorf("ConfigGet type mismatch should return default, got %v", got)
	}
	if got := ConfigGetInt(m, "n", 0); got != 3 {
		t.Errorf("ConfigGetInt(n) = %d", got)
	}
	if got := ConfigGetInt(nil, "n", 7); got != 7 {
		t.Errorf("ConfigGetInt(nil) = %d", got)
	}
	if got := ConfigGetStrings(m, "ids"); !reflect.DeepEqual(got, []string{"a", "2", "1.5"}) {
		t.Errorf("ConfigGetStrings(ids) = %v", got)
	}
	if got := ConfigGetDuration(m, "timeout", 0); got != 2*time.Second {
		t.Errorf("ConfigGetDuration(timeout) = %v", got)
	}
	if got := ConfigGetDuration(m, "wait", 0); got != 3*time.Second {
		t.Errorf("ConfigGetDuration(wait) = %v", got)
	}
	if got := ConfigGetDuration(m, "missing", time.Minute); got != time.Minute {
		t.Errorf("ConfigGetDuration(missing) = %v", got)
	}
}

func TestLookup_AliasCollision(t *testing.T) {
	// "itemId" 与 "item_id" 归一化后相同，总是取字典序最小的列
	for i := 0; i < 50; i++ {
		row := map[string]string{"item_id": "B", "itemId": "A", "USER_ID": "u1"}
		if v, ok := Lookup(row, "ITEM_ID"); !ok || v != "A" {
			t.Fatalf("Lookup(ITEM_ID) = %q, %v, want A", v, ok)
		}
	}
}

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(map[string]int{"b": 1, " a": 2, "a": 3})
	if !reflect.DeepEqual(got, []string{" a", "a", "b"}) {
		t.Errorf("SortedKeys() = %v", got)
	}
}
