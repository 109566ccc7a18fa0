package core

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1.00", true},
		{"1.0", "1.00", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.50", true},
		{".5", "0.50", true},
		{"-1", "", false},
		{"0", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.StringFixed() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got.StringFixed(), err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(MoneyFromCents(12345))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "123.45" {
		t.Fatalf("expected bare number, got %s", b)
	}

	for _, in := range []string{`99.5`, `"99.5"`} {
		var m Money
		if err := json.Unmarshal([]byte(in), &m); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if !m.Equal(MoneyFromCents(9950)) {
			t.Fatalf("unmarshal %s: got %s", in, m)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := MoneyFromInt(300)
	b := MoneyFromInt(150)
	if got := a.Sub(b); !got.Equal(MoneyFromInt(150)) {
		t.Fatalf("sub: got %s", got)
	}
	if got := a.Add(b).DivInt(3); !got.Equal(MoneyFromInt(150)) {
		t.Fatalf("div: got %s", got)
	}
	if got := a.DivInt(0); !got.IsZero() {
		t.Fatalf("div by zero should be zero, got %s", got)
	}
	if r := b.Ratio(a); r != 0.5 {
		t.Fatalf("ratio: got %v", r)
	}
	if r := a.Ratio(Money{}); r != 0 {
		t.Fatalf("ratio by zero: got %v", r)
	}
	var zero Money
	if zero.String() != "0" || zero.StringFixed() != "0.00" {
		t.Fatalf("zero value: %q %q", zero.String(), zero.StringFixed())
	}
}
