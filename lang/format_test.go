package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestFormat_Numbers(t *testing.T) {
	tests := []struct {
		name   string
		value  Value
		param  string
		locale string
		want   string
	}{
		{name: "int without param", value: Int(42), want: "42"},
		{name: "float without param", value: Float(3.5), want: "3.5"},
		{name: "fixed english", value: Float(3.5), param: "F2", locale: "en", want: "3.50"},
		{name: "fixed german", value: Float(3.5), param: "F2", locale: "de", want: "3,50"},
		{name: "lower-case letter", value: Float(3.5), param: "f1", locale: "en", want: "3.5"},
		{name: "grouped english", value: Float(1234.5), param: "N2", locale: "en", want: "1,234.50"},
		{name: "grouped german", value: Float(1234.5), param: "N2", locale: "de", want: "1.234,50"},
		{name: "zero padded", value: Int(7), param: "D3", locale: "en", want: "007"},
		{name: "percent", value: Float(0.25), param: "P0", locale: "en", want: "25%"},
		{name: "pattern", value: Float(1234.5), param: "#,##0.00", locale: "en", want: "1,234.50"},
		{name: "printf verb", value: Float(2.5), param: "%.2f", locale: "en", want: "2.50"},
		{name: "posix locale", value: Float(3.5), param: "F2", locale: "de_DE.UTF-8", want: "3,50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := NewScope(nil, WithLocale(language.English))
			if tt.locale != "" {
				scope.Set(LocaleName, String(tt.locale))
			}

			param := Undefined()
			if tt.param != "" {
				param = String(tt.param)
			}

			got, ok, err := Format(t.Context(), tt.value, param, scope)
			if err != nil {
				t.Fatalf("format error: %v", err)
			}

			if !ok {
				t.Fatal("format reported not-found")
			}

			if got != tt.want {
				t.Errorf("format mismatch:\nwant: %q\ngot:  %q", tt.want, got)
			}
		})
	}
}

func TestFormat_LocaleTagValue(t *testing.T) {
	scope := NewScope(map[string]Value{LocaleName: External(language.German)})

	got, _, err := Format(t.Context(), Float(0.5), String("F2"), scope)
	if err != nil {
		t.Fatalf("format error: %v", err)
	}

	if got != "0,50" {
		t.Errorf("want 0,50, got %q", got)
	}
}

func TestFormat_InvalidSpecifier(t *testing.T) {
	scope := NewScope(nil)

	tests := []struct {
		name  string
		value Value
		spec  string
	}{
		{name: "unknown letter", value: Float(1), spec: "Q"},
		{name: "integer specifier on fraction", value: Float(1.5), spec: "D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Format(t.Context(), tt.value, String(tt.spec), scope)
			if err != nil {
				t.Fatalf("rejected specifier aborted formatting: %v", err)
			}

			if ok || got != "" {
				t.Errorf("want not-found, got %q (ok=%v)", got, ok)
			}

			f := formatter{scope: scope, opts: scope.options()}

			_, _, err = f.formatSpec(tt.value, tt.spec)
			if !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("want ErrInvalidFormat, got %v", err)
			}

			if msg := err.Error(); msg != ErrInvalidFormat.Error() {
				t.Errorf("Error() = %q, want a single %q", msg, ErrInvalidFormat.Error())
			}
		})
	}
}

func TestFormat_Time(t *testing.T) {
	when := Time(time.Date(2024, 3, 1, 15, 4, 0, 0, time.UTC))

	tests := []struct {
		param string
		want  string
	}{
		{param: "%Y-%m-%d", want: "2024-03-01"},
		{param: "date", want: "2024-03-01"},
		{param: "Kitchen", want: "3:04PM"},
		{param: "2006/01", want: "2024/03"},
	}

	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			got, _, err := Format(t.Context(), when, String(tt.param), NewScope(nil))
			if err != nil {
				t.Fatalf("format error: %v", err)
			}

			if got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFormat_NotFound(t *testing.T) {
	got, ok, err := Format(t.Context(), Undefined(), String("F2"), NewScope(nil))
	if err != nil || ok || got != "" {
		t.Errorf("undefined: got %q, %v, %v", got, ok, err)
	}
}

func TestFormat_Callable(t *testing.T) {
	var seen Value

	greet := CallableFunc(func(_ context.Context, param Value, _ *Scope) (Value, error) {
		seen = param

		return Float(2), nil
	})

	got, ok, err := Format(t.Context(), Func(greet), String("F1"), NewScope(nil))
	if err != nil || !ok {
		t.Fatalf("format: %v, %v", ok, err)
	}

	if s, _ := seen.AsString(); s != "F1" {
		t.Errorf("callable param: want F1, got %v", seen)
	}

	// The result is formatted without the parameter.
	if got != "2" {
		t.Errorf("want 2, got %q", got)
	}
}

func TestFormat_CallableNotFound(t *testing.T) {
	none := CallableFunc(func(context.Context, Value, *Scope) (Value, error) {
		return Undefined(), nil
	})

	_, ok, err := Format(t.Context(), Func(none), Undefined(), NewScope(nil))
	if err != nil || ok {
		t.Errorf("want not-found, got %v, %v", ok, err)
	}
}

func TestFormat_CallableError(t *testing.T) {
	cause := errors.New("boom")
	fail := CallableFunc(func(context.Context, Value, *Scope) (Value, error) {
		return Undefined(), cause
	})

	_, _, err := Format(t.Context(), Func(fail), Undefined(), NewScope(nil))
	if !errors.Is(err, ErrCallable) {
		t.Errorf("want ErrCallable, got %v", err)
	}

	if !errors.Is(err, cause) {
		t.Errorf("want wrapped cause, got %v", err)
	}
}

type loop struct{}

func (l loop) ImplicitValue(context.Context) (Value, error) { return External(l), nil }

func TestFormat_MaxDepth(t *testing.T) {
	scope := NewScope(nil, WithMaxDepth(8))

	_, _, err := Format(t.Context(), External(loop{}), Undefined(), scope)
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("want ErrMaxDepthExceeded, got %v", err)
	}
}

func TestFormat_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, _, err := Format(ctx, Int(1), Undefined(), NewScope(nil))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
}

func TestFormat_Collections(t *testing.T) {
	scope := NewScope(nil, WithLocale(language.English))

	tests := []struct {
		name  string
		value Value
		param Value
		want  string
	}{
		{name: "list", value: List(Int(1), String("b")), param: Undefined(), want: "1,b"},
		{
			name:  "list with param",
			value: List(Float(1), Float(2)),
			param: String("F1"),
			want:  "1.0,2.0",
		},
		{
			name:  "map values by key",
			value: Map(map[string]Value{"z": Int(26), "a": Int(1)}),
			param: Undefined(),
			want:  "1,26",
		},
		{name: "string is not split", value: String("abc"), param: Undefined(), want: "abc"},
		{name: "null", value: Null(), param: Undefined(), want: ""},
		{name: "bool", value: Bool(true), param: String("F2"), want: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Format(t.Context(), tt.value, tt.param, scope)
			if err != nil || !ok {
				t.Fatalf("format: %v, %v", ok, err)
			}

			if got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}

type money float64

func (m money) FormatValue(spec string, tag language.Tag) (string, error) {
	return spec + "@" + tag.String(), nil
}

func TestFormat_Formatter(t *testing.T) {
	scope := NewScope(map[string]Value{LocaleName: String("fr")})

	got, _, err := Format(t.Context(), External(money(1)), String("EUR"), scope)
	if err != nil {
		t.Fatalf("format error: %v", err)
	}

	if got != "EUR@fr" {
		t.Errorf("want EUR@fr, got %q", got)
	}
}

func TestFormat_RawWithoutRegistry(t *testing.T) {
	got, ok, err := Format(t.Context(), Raw("<b>x</b>"), Undefined(), NewScope(nil))
	if err != nil || !ok {
		t.Fatalf("format: %v, %v", ok, err)
	}

	if got != "<b>x</b>" {
		t.Errorf("want raw payload, got %q", got)
	}
}

func TestFormat_IteratorImplicit(t *testing.T) {
	it := External(&Iterator{Index: 1, Count: 2, Value: String("v")})

	got, _, err := Format(t.Context(), it, Undefined(), NewScope(nil))
	if err != nil {
		t.Fatalf("format error: %v", err)
	}

	if got != "v" {
		t.Errorf("want v, got %q", got)
	}

	if last, _ := Property(it, "last"); !strings.EqualFold(last.String(), "true") {
		t.Errorf("want last=true, got %v", last)
	}
}

func TestParseLocale(t *testing.T) {
	tests := []struct {
		input string
		want  language.Tag
		fails bool
	}{
		{input: "de", want: language.German},
		{input: "en_US.UTF-8", want: language.AmericanEnglish},
		{input: "C", fails: true},
		{input: "", fails: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLocale(tt.input)
			if tt.fails {
				if !errors.Is(err, ErrInvalidLocale) {
					t.Errorf("want ErrInvalidLocale, got %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if got != tt.want {
				t.Errorf("want %v, got %v", tt.want, got)
			}
		})
	}
}
