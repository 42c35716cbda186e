package parse

import (
	"errors"
	"testing"

	"cloud.google.com/go/civil"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"thousands and decimals", "1.234,56", 1234.56},
		{"millions", "12.345.678,90", 12345678.90},
		{"no separators", "500", 500},
		{"decimal only", "0,5", 0.5},
		{"currency sign", "$ 1.000,00", 1000},
		{"empty", "", 0},
		{"whitespace", "   ", 0},
		{"garbage", "abc", 0},
		{"mixed garbage", "12a,3", 0},
		{"negative", "-1.000,25", -1000.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Currency(tt.input); got != tt.want {
				t.Errorf("Currency(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPeriodOf(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Period
		wantErr bool
	}{
		{"range start wins", "1 abr. 2025 a 15 abr. 2025", Period{2025, 4}, false},
		{"cross month range", "16 dic. 2024 a 15 ene. 2025", Period{2024, 12}, false},
		{"no trailing dot", "1 mar 2023 a 15 mar 2023", Period{2023, 3}, false},
		{"uppercase month", "1 ENE. 2024 a 15 ENE. 2024", Period{2024, 1}, false},
		{"single date", "30 jun. 2022", Period{2022, 6}, false},
		{"garbage", "garbage", Period{}, true},
		{"empty", "", Period{}, true},
		{"unknown month", "1 xyz. 2024 a 15 xyz. 2024", Period{}, true},
		{"english month", "1 apr. 2025 a 15 apr. 2025", Period{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PeriodOf(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrPeriodFormat) {
					t.Fatalf("PeriodOf(%q) error = %v, want ErrPeriodFormat", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("PeriodOf(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("PeriodOf(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPeriodStart(t *testing.T) {
	p := Period{Year: 2025, Month: 4}
	want := civil.Date{Year: 2025, Month: 4, Day: 1}
	if got := p.Start(); got != want {
		t.Errorf("Start() = %v, want %v", got, want)
	}
}
