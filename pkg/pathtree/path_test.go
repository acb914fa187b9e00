package pathtree

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Path
		wantErr error
	}{
		{name: "root empty", input: "", want: Path{}},
		{name: "root separator", input: "/", want: Path{}},
		{name: "single segment", input: "user", want: Path{"user"}},
		{name: "nested", input: "user/profile/name", want: Path{"user", "profile", "name"}},
		{name: "leading separator", input: "/user/name", want: Path{"user", "name"}},
		{name: "surrounding space", input: "  user/name ", want: Path{"user", "name"}},
		{name: "segment with dash", input: "a-b/c", want: Path{"a-b", "c"}},
		{name: "double separator", input: "a//b", wantErr: ErrInvalidPath},
		{name: "trailing separator", input: "a/", wantErr: ErrInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPathString(t *testing.T) {
	if got := (Path{}).String(); got != "/" {
		t.Errorf("root String() = %q, want /", got)
	}
	if got := (Path{"a", "b"}).String(); got != "a/b" {
		t.Errorf("String() = %q, want a/b", got)
	}
}

func TestPathKeyDistinguishesJoinCollisions(t *testing.T) {
	pairs := [][2]Path{
		{{"a-b", "c"}, {"a", "b-c"}},
		{{"a/b"}, {"a", "b"}},
		{{"ab"}, {"a", "b"}},
		{{""}, {}},
		{{"1:a"}, {"a"}},
	}
	for _, pair := range pairs {
		if pair[0].Key() == pair[1].Key() {
			t.Errorf("Key(%q) == Key(%q) = %q", []string(pair[0]), []string(pair[1]), pair[0].Key())
		}
	}

	if (Path{"x", "y"}).Key() != (Path{"x", "y"}).Key() {
		t.Error("equal paths must produce equal keys")
	}
}

func TestPathClone(t *testing.T) {
	p := Path{"a", "b"}
	c := p.Clone()
	c[0] = "z"
	if p[0] != "a" {
		t.Error("Clone shares storage with the original")
	}

	var nilPath Path
	if got := nilPath.Clone(); got == nil || len(got) != 0 {
		t.Errorf("nil Clone() = %#v, want empty non-nil path", got)
	}
}
