package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
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
		{"scope missing", CodeScopeMissing, "No active filter scope", CategoryScope},
		{"unsupported type", CodeUnsupportedType, "Unsupported filter type", CategoryBinding},
		{"protocol", CodeProtocolViolation, "Protocol violation", CategoryProtocol},
		{"config", CodeConfigInvalid, "Invalid configuration", CategoryConfig},
		{"unknown error code", "F999", "Unknown error", ""},
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

func TestIsMatchesByCode(t *testing.T) {
	sentinel := New(CodeScopeMissing)
	err := fmt.Errorf("render list: %w", New(CodeScopeMissing).WithSuggestion("provide it"))

	if !stderrors.Is(err, sentinel) {
		t.Fatal("errors.Is should match FilterErrors with the same code")
	}
	if stderrors.Is(err, New(CodeConfigInvalid)) {
		t.Fatal("errors.Is should not match a different code")
	}
	if stderrors.Is(err, Newf(CategoryScope, "no code")) {
		t.Fatal("errors.Is should not match an uncoded FilterError")
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	inner := stderrors.New("bad json")
	err := FromError(inner, CodeConfigInvalid)

	if !stderrors.Is(err, inner) {
		t.Fatal("wrapped error should unwrap to inner")
	}
	if got := err.Error(); got != "F005: Invalid configuration: bad json" {
		t.Fatalf("Error() = %q", got)
	}
	if FromError(nil, CodeConfigInvalid) != nil {
		t.Fatal("FromError(nil) should be nil")
	}
	if FromError(err, CodeScopeMissing) != err {
		t.Fatal("FromError should return existing FilterErrors unchanged")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New(CodeScopeMissing).WithSuggestion("Call Provide first").Format()
	for _, want := range []string{"ERROR F001: No active filter scope", "Hint: Call Provide first", "Learn more: https://vango.dev/docs/filtersync/errors/F001"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}

	if got := New(CodeScopeMissing).FormatCompact(); got != "F001: No active filter scope" {
		t.Errorf("FormatCompact() = %q", got)
	}
	if got := New(CodeScopeMissing).FormatJSON(); !strings.Contains(got, `"code":"F001"`) {
		t.Errorf("FormatJSON() = %s", got)
	}
}

func TestWriteErrorJSON(t *testing.T) {
	var b bytes.Buffer
	WriteErrorJSON(&b, fmt.Errorf("load: %w", New(CodeConfigInvalid).Wrap(stderrors.New("bad json"))))
	var got map[string]string
	if err := json.Unmarshal(b.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, b.String())
	}
	if got["code"] != CodeConfigInvalid || got["category"] != string(CategoryConfig) || got["cause"] != "bad json" {
		t.Errorf("WriteErrorJSON() = %v", got)
	}

	b.Reset()
	WriteErrorJSON(&b, stderrors.New("unknown flag"))
	got = nil
	if err := json.Unmarshal(b.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if _, ok := got["code"]; ok || got["category"] != string(CategoryCLI) || got["message"] != "unknown flag" {
		t.Errorf("WriteErrorJSON(plain) = %v", got)
	}
}

func TestGetTemplate(t *testing.T) {
	tmpl, ok := GetTemplate(CodeInvalidField)
	if !ok || tmpl.Category != CategoryBinding || tmpl.DocURL == "" {
		t.Errorf("GetTemplate(F003) = %+v, %v", tmpl, ok)
	}
	if _, ok := GetTemplate("F999"); ok {
		t.Error("GetTemplate(F999) should not be registered")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line too long: %q", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}
