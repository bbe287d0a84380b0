package types

import (
	"encoding/json"
	"testing"
)

func TestMoneyConstructors(t *testing.T) {
	tests := []struct {
		name     string
		money    Money
		amount   int64
		currency string
		display  string
	}{
		{"IDR", IDR(50000), 50000, "idr", "Rp50000"},
		{"USD", USD(4900), 4900, "usd", "$49.00"},
		{"EUR", EUR(19900), 19900, "eur", "€199.00"},
		{"SGD", SGD(12550), 12550, "sgd", "S$125.50"},
		{"MYR", MYR(2500), 2500, "myr", "RM25.00"},
		{"PHP", PHP(7550), 7550, "php", "₱75.50"},
		{"Zero IDR", Zero("IDR"), 0, "idr", "Rp0"},
		{"Zero USD", Zero("USD"), 0, "usd", "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.money.Amount != tt.amount {
				t.Errorf("Amount: got %d, want %d", tt.money.Amount, tt.amount)
			}
			if tt.money.Currency != tt.currency {
				t.Errorf("Currency: got %s, want %s", tt.money.Currency, tt.currency)
			}
			if tt.money.String() != tt.display {
				t.Errorf("Display: got %s, want %s", tt.money.String(), tt.display)
			}
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Money
		expected Money
	}{
		{"Add", func() Money { return IDR(100).Add(IDR(200)) }, IDR(300)},
		{"Subtract", func() Money { return IDR(500).Subtract(IDR(200)) }, IDR(300)},
		{"Multiply", func() Money { return IDR(100).Multiply(3) }, IDR(300)},
		{"Negate", func() Money { return IDR(100).Negate() }, IDR(-100)},
		{"Abs positive", func() Money { return IDR(100).Abs() }, IDR(100)},
		{"Abs negative", func() Money { return IDR(-100).Abs() }, IDR(100)},
		{"Complex", func() Money {
			return IDR(1000).Add(IDR(500)).Multiply(2).Subtract(IDR(1000))
		}, IDR(2000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op()
			if !result.Equal(tt.expected) {
				t.Errorf("Got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMoneyPercent(t *testing.T) {
	tests := []struct {
		name     string
		money    Money
		p        int64
		expected Money
	}{
		{"10 percent of 50000", IDR(50000), 10, IDR(5000)},
		{"Zero percent", IDR(50000), 0, IDR(0)},
		{"Full percent", IDR(50000), 100, IDR(50000)},
		{"Rounds half up", IDR(5), 10, IDR(1)},     // 0.5 -> 1
		{"Rounds down below half", IDR(4), 10, IDR(0)}, // 0.4 -> 0
		{"Rounds up above half", IDR(6), 10, IDR(1)},   // 0.6 -> 1
		{"Exact cents", USD(4900), 7, USD(343)},
		{"Negative rounds away from zero", IDR(-5), 10, IDR(-1)},
		{"Large amount", IDR(1_000_000_000), 11, IDR(110_000_000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.money.Percent(tt.p)
			if !result.Equal(tt.expected) {
				t.Errorf("Percent(%d): got %v, want %v", tt.p, result, tt.expected)
			}
		})
	}
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for currency mismatch")
		}
	}()

	// This should panic
	_ = USD(100).Add(EUR(100))
}

func TestMoneyComparison(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Money
		less    bool
		greater bool
		equal   bool
	}{
		{"Equal", IDR(100), IDR(100), false, false, true},
		{"Less", IDR(50), IDR(100), true, false, false},
		{"Greater", IDR(200), IDR(100), false, true, false},
		{"Zero equal", IDR(0), Zero("idr"), false, false, true},
		{"Negative less", IDR(-100), IDR(100), true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.LessThan(tt.b); got != tt.less {
				t.Errorf("LessThan: got %v, want %v", got, tt.less)
			}
			if got := tt.a.GreaterThan(tt.b); got != tt.greater {
				t.Errorf("GreaterThan: got %v, want %v", got, tt.greater)
			}
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Equal: got %v, want %v", got, tt.equal)
			}
		})
	}
}

func TestMoneyMinMax(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Money
		min, max Money
	}{
		{"First smaller", IDR(50), IDR(100), IDR(50), IDR(100)},
		{"Second smaller", IDR(100), IDR(50), IDR(50), IDR(100)},
		{"Equal", IDR(100), IDR(100), IDR(100), IDR(100)},
		{"Negative", IDR(-50), IDR(50), IDR(-50), IDR(50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if minVal := tt.a.Min(tt.b); !minVal.Equal(tt.min) {
				t.Errorf("Min: got %v, want %v", minVal, tt.min)
			}
			if maxVal := tt.a.Max(tt.b); !maxVal.Equal(tt.max) {
				t.Errorf("Max: got %v, want %v", maxVal, tt.max)
			}
		})
	}
}

func TestMoneyPredicates(t *testing.T) {
	tests := []struct {
		name       string
		money      Money
		isZero     bool
		isPositive bool
		isNegative bool
	}{
		{"Zero", IDR(0), true, false, false},
		{"Positive", IDR(100), false, true, false},
		{"Negative", IDR(-100), false, false, true},
		{"Large positive", IDR(999999999), false, true, false},
		{"Large negative", IDR(-999999999), false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.money.IsZero(); got != tt.isZero {
				t.Errorf("IsZero: got %v, want %v", got, tt.isZero)
			}
			if got := tt.money.IsPositive(); got != tt.isPositive {
				t.Errorf("IsPositive: got %v, want %v", got, tt.isPositive)
			}
			if got := tt.money.IsNegative(); got != tt.isNegative {
				t.Errorf("IsNegative: got %v, want %v", got, tt.isNegative)
			}
		})
	}
}

func TestMoneyFormatMajor(t *testing.T) {
	tests := []struct {
		money    Money
		expected string
	}{
		{USD(4900), "49.00"},
		{USD(100), "1.00"},
		{USD(1), "0.01"},
		{USD(0), "0.00"},
		{USD(-4900), "-49.00"},
		{USD(-1), "-0.01"},
		{EUR(9999), "99.99"},
		{IDR(50000), "50000"}, // No decimals
		{IDR(-250), "-250"},   // No decimals
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.money.FormatMajor(); got != tt.expected {
				t.Errorf("FormatMajor: got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestMoneyJSON(t *testing.T) {
	m := IDR(50000)

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	// Check JSON structure
	expected := `{"amount":50000,"currency":"idr","display":"Rp50000"}`
	if string(data) != expected {
		t.Errorf("JSON: got %s, want %s", string(data), expected)
	}

	// Unmarshal and verify
	var result struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Display  string `json:"display"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if result.Amount != 50000 || result.Currency != "idr" || result.Display != "Rp50000" {
		t.Errorf("Unmarshaled data incorrect: %+v", result)
	}
}

func TestSum(t *testing.T) {
	tests := []struct {
		name     string
		values   []Money
		expected Money
	}{
		{"Empty", []Money{}, Zero("idr")},
		{"Single", []Money{IDR(100)}, IDR(100)},
		{"Multiple", []Money{IDR(100), IDR(200), IDR(300)}, IDR(600)},
		{"With negatives", []Money{IDR(100), IDR(-50), IDR(200)}, IDR(250)},
		{"All zero", []Money{IDR(0), IDR(0), IDR(0)}, IDR(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Sum(tt.values...)
			if !result.Equal(tt.expected) {
				t.Errorf("Sum: got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestCurrencySymbols(t *testing.T) {
	tests := []struct {
		currency string
		symbol   string
	}{
		{"idr", "Rp"},
		{"usd", "$"},
		{"eur", "€"},
		{"sgd", "S$"},
		{"myr", "RM"},
		{"php", "₱"},
		{"unknown", "UNKNOWN "},
	}

	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			got := currencySymbol(tt.currency)
			if got != tt.symbol {
				t.Errorf("Symbol for %s: got %s, want %s", tt.currency, got, tt.symbol)
			}
		})
	}
}

func BenchmarkMoneyAdd(b *testing.B) {
	m1 := IDR(100)
	m2 := IDR(200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m1.Add(m2)
	}
}

func BenchmarkMoneyPercent(b *testing.B) {
	m := IDR(50000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Percent(10)
	}
}
