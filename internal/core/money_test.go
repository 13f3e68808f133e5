package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestMoneyFromString(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true},
		{"1.005", 101, true}, // half away from zero
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"-3.5", -350, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := MoneyFromString(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	var body struct {
		Amount Money `json:"amount"`
	}
	if err := json.Unmarshal([]byte(`{"amount": 12.5}`), &body); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if body.Amount.Cents != 1250 {
		t.Fatalf("expected 1250 cents, got %d", body.Amount.Cents)
	}
	if err := json.Unmarshal([]byte(`{"amount": "300"}`), &body); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if body.Amount.Cents != 30000 {
		t.Fatalf("expected 30000 cents, got %d", body.Amount.Cents)
	}

	out, err := json.Marshal(Money{Cents: 80000})
	if err != nil || string(out) != "800" {
		t.Fatalf("expected 800, got %s (err=%v)", out, err)
	}
	out, _ = json.Marshal(Money{Cents: 1234})
	if string(out) != "12.34" {
		t.Fatalf("expected 12.34, got %s", out)
	}

	err = json.Unmarshal([]byte(`{"amount": "lots"}`), &body)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	for _, c := range []int64{0, -5} {
		if err := (Money{Cents: c}).Validate(); !errors.Is(err, ErrValidation) {
			t.Fatalf("%d: expected validation error, got %v", c, err)
		}
	}
}

func TestProfitPercentage(t *testing.T) {
	cases := []struct {
		income, net int64
		want        float64
	}{
		{0, 0, 0},
		{0, -500, 0},
		{100000, 25000, 25},
		{30000, 10000, 33.33},
		{30000, 20000, 66.67},
		{10000, -5000, -50},
	}
	for _, tc := range cases {
		got := ProfitPercentage(Money{Cents: tc.income}, Money{Cents: tc.net})
		if got != tc.want {
			t.Fatalf("income=%d net=%d: expected %v, got %v", tc.income, tc.net, tc.want, got)
		}
	}
}
