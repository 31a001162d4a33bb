package binding

import "testing"

func TestInterpolate(t *testing.T) {
	data := map[string]any{
		"title": "Liedermappe",
		"songs": 42,
		"meta": map[string]any{
			"authors": []string{"Anna", "Ben"},
		},
	}
	cases := []struct {
		in, want string
	}{
		{"${title}", "Liedermappe"},
		{"${songs} Lieder", "42 Lieder"},
		{"von ${meta.authors[1]}", "von Ben"},
		{"${missing}", "${missing}"},
		{"${meta.authors[5]}", "${meta.authors[5]}"},
		{"${meta.authors[x]}", "${meta.authors[x]}"},
		{"no placeholders", "no placeholders"},
	}
	for _, tc := range cases {
		if got := Interpolate(tc.in, data); got != tc.want {
			t.Fatalf("Interpolate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInterpolateWithoutData(t *testing.T) {
	if got := Interpolate("${title}", nil); got != "${title}" {
		t.Fatalf("got %q", got)
	}
}
