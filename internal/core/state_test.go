package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"
)

func seqID() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestDefaultState(t *testing.T) {
	now := time.Date(2025, 7, 20, 9, 0, 0, 0, time.UTC)
	s := DefaultState(now, seqID())
	if len(s.Categories) != 13 {
		t.Fatalf("expected 13 seed categories, got %d", len(s.Categories))
	}
	for _, c := range s.Categories {
		if c.IsCustom {
			t.Fatalf("seed category %s marked custom", c.ID)
		}
	}
	if len(s.Budgets) != 4 || len(s.Reminders) != 2 {
		t.Fatalf("unexpected seed sizes: %d budgets, %d reminders", len(s.Budgets), len(s.Reminders))
	}
	if s.Reminders[1].DueDate.Day() != 10 || s.Reminders[1].DueDate.Month() != time.July {
		t.Fatalf("unexpected reminder due date %v", s.Reminders[1].DueDate)
	}
	if s.Settings != DefaultSettings {
		t.Fatalf("unexpected settings %+v", s.Settings)
	}
}

func TestDecodeStateRoundTrip(t *testing.T) {
	in := `{
	  "transactions": [
	    {"id":"a","type":"expense","amount":12.5,"currency":"UAH","categoryId":"food",
	     "description":"lunch","date":"2025-03-05T10:00:00Z","isRecurring":true,"recurringInterval":"weekly","tags":["work"]},
	    {"id":"b","type":"income","amount":900,"currency":"UAH","categoryId":"salary",
	     "description":"","date":"2025-03-01T08:00:00Z","isRecurring":false},
	    {"id":"c","type":"expense","amount":3,"currency":"EUR","categoryId":"food",
	     "description":"tea","date":"2025-03-02T08:00:00Z"}
	  ],
	  "categories": [
	    {"id":"food","name":"Food","icon":"x","color":"#fff","type":"expense"},
	    {"id":"salary","name":"Salary","icon":"y","color":"#000","type":"income","isCustom":false},
	    {"id":"pets","name":"Pets","icon":"z","color":"#0f0","type":"both","isCustom":true}
	  ],
	  "budgets": [{"id":"b","categoryId":"food","amount":100,"currency":"UAH","period":"monthly","spent":0}],
	  "reminders": [],
	  "settings": {"defaultCurrency":"UAH","theme":"system","pinEnabled":false,"biometricEnabled":false,"language":"uk"}
	}`
	s, err := DecodeState([]byte(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	tx := s.Transactions[0]
	if !tx.IsRecurring || tx.RecurringInterval != Weekly || !reflect.DeepEqual(tx.Tags, []string{"work"}) {
		t.Fatalf("uninterpreted fields lost: %+v", tx)
	}

	out, err := EncodeState(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want, got := normalize(t, []byte(in)), normalize(t, out)
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("round trip changed document\nwant %v\ngot  %v", want, got)
	}

	again, err := DecodeState(out)
	if err != nil {
		t.Fatalf("decode again: %v", err)
	}
	if !reflect.DeepEqual(s, again) {
		t.Fatalf("second decode differs")
	}
}

func TestOptionalFlagsOmittedWhenUnset(t *testing.T) {
	b, err := json.Marshal([]any{
		Transaction{ID: "t", Type: Expense},
		Category{ID: "c", Type: CategoryExpense},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{"isRecurring", "isCustom"} {
		if bytes.Contains(b, []byte(key)) {
			t.Errorf("%s emitted for a value built in code: %s", key, b)
		}
	}
}

func normalize(t *testing.T, doc []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

func TestDecodeStateErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrNoState},
		{"whitespace", "  \n", ErrNoState},
		{"garbage", "{not json", ErrMalformedState},
		{"wrong shape", `{"transactions": 5}`, ErrMalformedState},
		{"bad type", `{"transactions":[{"id":"a","type":"gift","amount":1,"date":"2025-01-01T00:00:00Z"}]}`, ErrMalformedState},
		{"duplicate id", `{"categories":[{"id":"a","name":"A","type":"both"},{"id":"a","name":"B","type":"both"}]}`, ErrMalformedState},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeState([]byte(tc.in))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
