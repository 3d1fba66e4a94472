package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "engine error",
			code:    "E001",
			wantMsg: "Runner work function failed",
			wantCat: CategoryEngine,
		},
		{
			name:    "timeline error",
			code:    "E021",
			wantMsg: "Timeline export failed",
			wantCat: CategoryTimeline,
		},
		{
			name:    "devtools error",
			code:    "E040",
			wantMsg: "WebSocket upgrade failed",
			wantCat: CategoryDevtools,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryConfig, "capacity %d out of range", -1)
	if err.Message != "capacity -1 out of range" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryConfig {
		t.Errorf("Category = %q, want %q", err.Category, CategoryConfig)
	}
}

func TestErrorString(t *testing.T) {
	err := New("E001")
	if got := err.Error(); got != "E001: Runner work function failed" {
		t.Errorf("Error() = %q", got)
	}

	cause := stderrors.New("boom")
	if got := New("E001").Wrap(cause).Error(); got != "E001: Runner work function failed: boom" {
		t.Errorf("Error() with cause = %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := New("E021").Wrap(cause)
	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E001") != nil {
		t.Error("FromError(nil) should be nil")
	}

	e := New("E020")
	if got := FromError(e, "E001"); got != e {
		t.Error("FromError should pass through coded errors unchanged")
	}

	cause := stderrors.New("boom")
	got := FromError(cause, "E001")
	if got.Code != "E001" || got.Wrapped != cause {
		t.Errorf("FromError wrapped = %+v", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New("E021").
		Wrap(stderrors.New("permission denied")).
		WithSuggestion("Check that the export directory is writable").
		Format()

	for _, want := range []string{
		"ERROR E021",
		"Timeline export failed",
		"Caused by: permission denied",
		"Hint: Check that the export directory is writable",
		"Learn more:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	DisableColors()
	defer EnableColors()

	if got := New("E040").FormatCompact(); got != "E040: WebSocket upgrade failed" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestFormatJSON(t *testing.T) {
	out := New("E001").WithSuggestion("retry").FormatJSON()
	for _, want := range []string{`"code":"E001"`, `"category":"engine"`, `"suggestion":"retry"`} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatJSON() missing %q: %s", want, out)
		}
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six seven eight nine ten", 20)
	for _, line := range lines {
		if len(line) > 20 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six seven eight nine ten" {
		t.Errorf("wrapped text lost words: %v", lines)
	}
}
