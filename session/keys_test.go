package session

import "testing"

func TestKeyString(t *testing.T) {
	tests := []struct {
		name     string
		key      Key
		expected string
	}{
		{name: "first document first page", key: Key{Document: 0, Page: 1}, expected: "0-1"},
		{name: "multi digit parts", key: Key{Document: 12, Page: 345}, expected: "12-345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.expected {
				t.Errorf("Key%+v.String() = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Key
		wantErr bool
	}{
		{name: "valid key", input: "0-1", want: Key{Document: 0, Page: 1}},
		{name: "multi digit", input: "3-120", want: Key{Document: 3, Page: 120}},
		{name: "missing dash", input: "31", wantErr: true},
		{name: "empty page part", input: "3-", wantErr: true},
		{name: "empty document part", input: "-3", wantErr: true},
		{name: "non numeric", input: "a-b", wantErr: true},
		{name: "zero page rejected", input: "0-0", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKey(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseKey(%q) = %+v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKey(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseKey(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestKeyRoundTrip(t *testing.T) {
	keys := []Key{{0, 1}, {5, 99}, {10, 1000}}
	for _, k := range keys {
		parsed, err := ParseKey(k.String())
		if err != nil {
			t.Fatalf("round trip of %+v failed: %v", k, err)
		}
		if parsed != k {
			t.Errorf("round trip of %+v produced %+v", k, parsed)
		}
	}
}
