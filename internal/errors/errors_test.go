package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

type testPath string

func (p testPath) String() string { return string(p) }

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantMsg   string
		wantCat   Category
		wantFatal bool
	}{
		{
			name:      "path not found",
			code:      CodePathNotFound,
			wantMsg:   "Patch path not found in live tree",
			wantCat:   CategoryApply,
			wantFatal: true,
		},
		{
			name:    "protocol error",
			code:    CodeMalformedPayload,
			wantMsg: "Malformed wire payload",
			wantCat: CategoryProtocol,
		},
		{
			name:    "config error",
			code:    CodeConfigValidation,
			wantMsg: "Configuration validation failed",
			wantCat: CategoryConfig,
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
			if err.Fatal != tt.wantFatal {
				t.Errorf("Fatal = %v, want %v", err.Fatal, tt.wantFatal)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "tree.json")
	if err.Message != `file "tree.json" not found` {
		t.Errorf("Message = %q, want %q", err.Message, `file "tree.json" not found`)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestError_Error(t *testing.T) {
	err := New(CodeTagMismatch).AtPath(testPath("[0,2]"))
	want := "E101: Tag assertion failed at [0,2]"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New(CodeSnapshotBackend).Wrap(fmt.Errorf("disk full"))
	if got := wrapped.Error(); got != "E501: Snapshot backend failure: disk full" {
		t.Errorf("Error() = %q", got)
	}

	// Without code
	plain := &Error{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestIsFatal(t *testing.T) {
	for _, code := range []string{"E100", "E101", "E102", "E103", "E104"} {
		if !IsFatal(New(code)) {
			t.Errorf("IsFatal(%s) = false, want true", code)
		}
		if !IsFatal(fmt.Errorf("apply: %w", New(code))) {
			t.Errorf("IsFatal(wrapped %s) = false, want true", code)
		}
	}
	for _, code := range []string{"E200", "E300", "E400", "E500"} {
		if IsFatal(New(code)) {
			t.Errorf("IsFatal(%s) = true, want false", code)
		}
	}
	if IsFatal(stderrors.New("plain")) || IsFatal(nil) {
		t.Errorf("plain errors are never fatal")
	}
}

func TestCodeAndIs(t *testing.T) {
	err := fmt.Errorf("load: %w", New(CodeSnapshotNotFound))
	if got := Code(err); got != CodeSnapshotNotFound {
		t.Errorf("Code = %q, want %q", got, CodeSnapshotNotFound)
	}
	if !Is(err, CodeSnapshotNotFound) {
		t.Errorf("Is(err, E500) = false")
	}
	if Is(err, CodeSnapshotBackend) {
		t.Errorf("Is(err, E501) = true")
	}
	if Code(stderrors.New("x")) != "" {
		t.Errorf("Code of a plain error should be empty")
	}
}

func TestBuilders(t *testing.T) {
	err := New(CodeNoParent).
		WithDetailf("op %s", "MoveBeforeNode").
		WithSuggestion("remount")
	if err.Detail != "op MoveBeforeNode" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Suggestion != "remount" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
	if New(CodeNoParent).WithDetail("d").Detail != "d" {
		t.Errorf("WithDetail did not set detail")
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	inner := New(CodeMalformedPayload)
	outer := New(CodeUnsupportedFrame).Wrap(inner)

	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
	if !stderrors.Is(outer, inner) {
		t.Error("errors.Is should find the wrapped error")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, CodeUnreadableInput) != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	e := New(CodeUnreadableInput)
	if FromError(fmt.Errorf("ctx: %w", e), CodeUnsupportedInput) != e {
		t.Error("FromError should return an existing *Error as-is")
	}

	stdErr := stderrors.New("test error")
	if result := FromError(stdErr, CodeUnreadableInput); result.Wrapped != stdErr {
		t.Error("Standard error should be wrapped")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	formatted := New(CodeTagMismatch).
		AtPath(testPath("[1]")).
		WithDetail("want <li>, got <p>").
		Format()

	for _, want := range []string{"E101", "Tag assertion failed", "at path [1]", "want <li>, got <p>", "fatal", "Hint:"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	got := New(CodePathNotFound).AtPath(testPath("[0]")).FormatCompact()
	want := "E100: Patch path not found in live tree at [0]"
	if got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(New(CodePathNotFound).AtPath(testPath("[0]")))
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if decoded["code"] != "E100" || decoded["category"] != "apply" || decoded["path"] != "[0]" || decoded["fatal"] != true {
		t.Errorf("unexpected JSON: %s", data)
	}
}

func TestGetAllCodesSorted(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("GetAllCodes() should return codes")
	}
	if codes[0] != CodePathNotFound {
		t.Errorf("first code = %q, want %q", codes[0], CodePathNotFound)
	}
	for i := 1; i < len(codes); i++ {
		if codes[i] < codes[i-1] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
}

func TestGetTemplate(t *testing.T) {
	template, ok := GetTemplate(CodeTagMismatch)
	if !ok || !template.Fatal {
		t.Error("E101 should exist and be fatal")
	}
	if _, ok := GetTemplate("E999"); ok {
		t.Error("E999 should not exist")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	if got = wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}

	DisableColors()
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var b strings.Builder
	PrintError(&b, New(CodeConfigInvalid))
	if !strings.Contains(b.String(), "E400") {
		t.Errorf("PrintError output missing code: %q", b.String())
	}

	b.Reset()
	PrintError(&b, stderrors.New("boom"))
	if !strings.Contains(b.String(), "ERROR: boom") {
		t.Errorf("PrintError output = %q", b.String())
	}
}
