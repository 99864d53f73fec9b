package validator

import "testing"

func TestSanitizeHTMLKeepsTokens(t *testing.T) {
	input := `<p onclick="steal()">Welcome to {{store_name}}</p><script>alert(1)</script>`
	got := SanitizeHTML(input)
	if got != "<p>Welcome to {{store_name}}</p>" {
		t.Fatalf("unexpected sanitized output: %q", got)
	}
}

func TestCustomRules(t *testing.T) {
	type payload struct {
		Slug  string `validate:"omitempty,slug"`
		Color string `validate:"omitempty,hex_color"`
		Title string `validate:"no_html"`
	}

	tests := []struct {
		name    string
		input   payload
		wantErr bool
	}{
		{name: "valid", input: payload{Slug: "about-us", Color: "#fff", Title: "About"}},
		{name: "empty optional", input: payload{Title: "About"}},
		{name: "bad slug", input: payload{Slug: "About Us"}, wantErr: true},
		{name: "trailing dash", input: payload{Slug: "about-"}, wantErr: true},
		{name: "bad color", input: payload{Color: "red"}, wantErr: true},
		{name: "html title", input: payload{Title: "<b>x</b>"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if tt.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNormalizeSpaces(t *testing.T) {
	if got := NormalizeSpaces("  Tom \t and\n Jerry "); got != "Tom and Jerry" {
		t.Fatalf("unexpected result %q", got)
	}
}
