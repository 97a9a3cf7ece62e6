package dataType

import "testing"

func TestHeadersCaseInsensitive(t *testing.T) {
	h := NewHeaders(map[string]string{"user-agent": "curl/8.0"})

	for _, key := range []string{"User-Agent", "user-agent", "USER-AGENT", "uSeR-aGeNt"} {
		if got := h.Get(key); got != "curl/8.0" {
			t.Errorf("Get(%q) = %q, want curl/8.0", key, got)
		}
	}
	if !h.Has("USER-AGENT") {
		t.Errorf("Has should be case-insensitive")
	}
	if h.Has("Accept") {
		t.Errorf("Has reported a missing key")
	}
}

func TestHeadersFirstValueWins(t *testing.T) {
	h := Headers{}
	h.Add("X-Forwarded-For", "1.2.3.4")
	h.Add("X-Forwarded-For", "5.6.7.8")

	if got := h.Get("X-Forwarded-For"); got != "1.2.3.4" {
		t.Errorf("Get = %q, want first value", got)
	}

	h.Set("X-Forwarded-For", "9.9.9.9")
	if got := h.Get("X-Forwarded-For"); got != "9.9.9.9" {
		t.Errorf("Get after Set = %q, want replacement", got)
	}
}

func TestHeadersNilSafe(t *testing.T) {
	var h Headers
	if h.Get("User-Agent") != "" {
		t.Errorf("nil Get should return empty string")
	}
	if h.Has("User-Agent") {
		t.Errorf("nil Has should report false")
	}
}

func TestParsePrecision(t *testing.T) {
	tests := []struct {
		in   string
		want PrecisionLevel
	}{
		{"country", PrecisionCountry},
		{"region", PrecisionRegion},
		{"city", PrecisionCity},
		{"full", PrecisionFull},
		{"", PrecisionCountry},
		{"bogus", PrecisionCountry},
	}
	for _, tt := range tests {
		if got := ParsePrecision(tt.in); got != tt.want {
			t.Errorf("ParsePrecision(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBotTypeString(t *testing.T) {
	tests := []struct {
		bt   BotType
		want string
	}{
		{BotTypeHuman, "human"},
		{BotTypeSearchEngine, "search_engine"},
		{BotTypeMonitoring, "monitoring"},
		{BotTypeUnknown, "unknown_bot"},
	}
	for _, tt := range tests {
		if got := tt.bt.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.bt, got, tt.want)
		}
	}
}
