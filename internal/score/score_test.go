package score

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  int
		found bool
	}{
		{name: "minha nota", text: "3. Minha Nota: 87%\n4. Sugestão", want: 87, found: true},
		{name: "lowercase", text: "nota: 42%", want: 42, found: true},
		{name: "uppercase", text: "NOTA: 5%", want: 5, found: true},
		{name: "markdown bold", text: "**Minha Nota:** 91%", want: 91, found: true},
		{name: "asterisk before digits", text: "Nota: *73%", want: 73, found: true},
		{name: "no colon", text: "Minha Nota 60%", want: 60, found: true},
		{name: "english score", text: "Score: 64/100", want: 64, found: true},
		{name: "nota beats earlier score", text: "Your ATS score 3 keywords missing.\n3. Minha Nota: 87%", want: 87, found: true},
		{name: "first match wins", text: "Nota: 30%. Revised nota: 80%", want: 30, found: true},
		{name: "zero", text: "Minha Nota: 0%", want: 0, found: true},
		{name: "exactly hundred", text: "Nota: 100%", want: 100, found: true},
		{name: "clamped", text: "Nota: 150%", want: 100, found: true},
		{name: "overflow clamped", text: "Nota: 99999999999999999999999%", want: 100, found: true},
		{name: "no score", text: "A strong profile overall.", want: 0, found: false},
		{name: "empty", text: "", want: 0, found: false},
		{name: "word inside another word", text: "Anotações: 50%", want: 0, found: false},
		{name: "label without digits", text: "Minha Nota: alta", want: 0, found: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if got.Value != tt.want || got.Found != tt.found {
				t.Fatalf("Parse(%q) = %+v, want {%d %v}", tt.text, got, tt.want, tt.found)
			}
		})
	}
}

func TestResultPresentation(t *testing.T) {
	tests := []struct {
		in       Result
		display  string
		fraction float64
		band     string
	}{
		{in: Result{}, display: "N/A", fraction: 0, band: "unknown"},
		{in: Result{Value: 0, Found: true}, display: "0%", fraction: 0, band: "low"},
		{in: Result{Value: 49, Found: true}, display: "49%", fraction: 0.49, band: "low"},
		{in: Result{Value: 50, Found: true}, display: "50%", fraction: 0.5, band: "medium"},
		{in: Result{Value: 75, Found: true}, display: "75%", fraction: 0.75, band: "high"},
		{in: Result{Value: 100, Found: true}, display: "100%", fraction: 1, band: "high"},
	}
	for _, tt := range tests {
		if got := tt.in.Display(); got != tt.display {
			t.Fatalf("Display(%+v) = %q, want %q", tt.in, got, tt.display)
		}
		if got := tt.in.Fraction(); got != tt.fraction {
			t.Fatalf("Fraction(%+v) = %v, want %v", tt.in, got, tt.fraction)
		}
		if got := tt.in.Band(); got != tt.band {
			t.Fatalf("Band(%+v) = %q, want %q", tt.in, got, tt.band)
		}
	}
}
