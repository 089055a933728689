package routepath

import (
	"errors"
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"/", nil},
		{"//", nil},
		{"/user/login", []string{"user", "login"}},
		{"/user/login/", []string{"user", "login"}},
		{"user/login", []string{"user", "login"}},
		{"/app/edit/42", []string{"app", "edit", "42"}},
		{"/a//b", []string{"a", "", "b"}},
		{"/App/Edit", []string{"App", "Edit"}},
		{"/app/edit/a%20b", []string{"app", "edit", "a%20b"}},
	}

	for _, tt := range tests {
		got := Split(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Split(%q) = %#v, want %#v", tt.input, got, tt.want)
		}
	}
}

func TestSplitPathAndQuery(t *testing.T) {
	tests := []struct {
		input     string
		wantPath  string
		wantQuery string
	}{
		{"/users", "/users", ""},
		{"/users?page=2", "/users", "page=2"},
		{"/users?page=2#top", "/users", "page=2"},
		{"/users#top", "/users", ""},
		{"/users?", "/users", ""},
		{"?a=b", "", "a=b"},
	}

	for _, tt := range tests {
		path, query := SplitPathAndQuery(tt.input)
		if path != tt.wantPath || query != tt.wantQuery {
			t.Errorf("SplitPathAndQuery(%q) = (%q, %q), want (%q, %q)",
				tt.input, path, query, tt.wantPath, tt.wantQuery)
		}
	}
}

func TestValidateNavPath(t *testing.T) {
	tests := []struct {
		input   string
		wantErr error
	}{
		{"/", nil},
		{"/app/edit/42", nil},
		{"/search?q=%GG", nil},
		{"/a%20b", nil},
		{"", ErrInvalidPath},
		{"users", ErrInvalidPath},
		{"//evil.com/x", ErrInvalidPath},
		{"https://evil.com", ErrInvalidPath},
		{"/a\\b", ErrBackslashInPath},
		{"/a%00b", ErrNullByteInPath},
		{"/a%2", ErrInvalidPercentEscape},
		{"/a%zz", ErrInvalidPercentEscape},
	}

	for _, tt := range tests {
		err := ValidateNavPath(tt.input)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ValidateNavPath(%q) = %v, want %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestDecodeSegment(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr error
	}{
		{"42", "42", nil},
		{"hello%20world", "hello world", nil},
		{"%E4%BD%A0", "你", nil},
		{"a%2Fb", "", ErrEncodedSlashInSegment},
		{"%ZZ", "", ErrInvalidPercentEscape},
	}

	for _, tt := range tests {
		got, err := DecodeSegment(tt.input)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeSegment(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("DecodeSegment(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DecodeSegment(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBase(t *testing.T) {
	if got := CleanBase("/"); got != "" {
		t.Errorf("CleanBase(/) = %q, want empty", got)
	}
	if got := CleanBase("console/"); got != "/console" {
		t.Errorf("CleanBase(console/) = %q, want /console", got)
	}

	if got := WithBase("/console", "/user/login"); got != "/console/user/login" {
		t.Errorf("WithBase = %q", got)
	}
	if got := WithBase("/console", "/"); got != "/console/" {
		t.Errorf("WithBase root = %q", got)
	}
	if got := WithBase("", "/x"); got != "/x" {
		t.Errorf("WithBase no base = %q", got)
	}

	trimTests := []struct {
		base, location, want string
		ok                   bool
	}{
		{"", "/x", "/x", true},
		{"/console", "/console", "/", true},
		{"/console", "/console/", "/", true},
		{"/console", "/console/app/edit/1", "/app/edit/1", true},
		{"/console", "/console?tab=1", "/?tab=1", true},
		{"/console", "/consoles", "/consoles", false},
		{"/console", "/other", "/other", false},
	}
	for _, tt := range trimTests {
		got, ok := TrimBase(tt.base, tt.location)
		if got != tt.want || ok != tt.ok {
			t.Errorf("TrimBase(%q, %q) = (%q, %v), want (%q, %v)",
				tt.base, tt.location, got, ok, tt.want, tt.ok)
		}
	}
}
