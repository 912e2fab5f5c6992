package phone

import "testing"

func TestNormalizeAcceptedShapes(t *testing.T) {
	tests := map[string]string{
		"0712345678":      "+40712345678",
		"+40712345678":    "+40712345678",
		"0040712345678":   "+40712345678",
		"0712 345 678":    "+40712345678",
		"+40 712-345-678": "+40712345678",
	}
	for input, want := range tests {
		got, err := Normalize(input)
		if err != nil {
			t.Fatalf("Normalize(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeRejectsNonMobileShapes(t *testing.T) {
	tests := []string{
		"",
		"0212345678",   // landline prefix
		"071234567",    // too short
		"07123456789",  // too long
		"712345678",    // no prefix
		"+41712345678", // wrong country
		"07123a5678",   // non-digit
	}
	for _, input := range tests {
		if _, err := Normalize(input); err == nil {
			t.Fatalf("Normalize(%q) accepted invalid number", input)
		}
	}
}

func TestMask(t *testing.T) {
	if got := Mask("+40712345678"); got != "+4071***5678" {
		t.Fatalf("Mask returned %q", got)
	}
}
