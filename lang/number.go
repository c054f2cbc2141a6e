package lang

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Standard numeric format letters. Each accepts an optional precision, as in
// "F2" or "n0".
const (
	numberGrouped    = 'N'
	numberFixed      = 'F'
	numberInteger    = 'D'
	numberPercent    = 'P'
	numberScientific = 'E'
	numberGeneral    = 'G'
)

// formatNumber formats a numeric value according to spec under tag.
//
// spec is either a standard letter with optional precision, a custom pattern
// of '0', '#', ',' and '.', or a printf verb.
func formatNumber(v Value, spec string, tag language.Tag) (string, error) {
	p := message.NewPrinter(tag)

	if strings.ContainsRune(spec, '%') {
		return p.Sprintf(spec, v.data), nil
	}

	x, _ := v.AsFloat()

	if letter, prec, ok := parseStandard(spec); ok {
		return formatStandard(p, v, x, letter, prec, spec)
	}

	if opts, ok := parsePattern(spec); ok {
		return p.Sprint(number.Decimal(x, opts...)), nil
	}

	return "", ErrInvalidFormat.With(slog.String("spec", spec))
}

func formatStandard(
	p *message.Printer,
	v Value,
	x float64,
	letter rune,
	prec int,
	spec string,
) (string, error) {
	digits := func(def int) int {
		if prec < 0 {
			return def
		}

		return prec
	}

	switch letter {
	case numberGrouped:
		d := digits(2)

		return p.Sprint(number.Decimal(x,
			number.MinFractionDigits(d),
			number.MaxFractionDigits(d),
		)), nil

	case numberFixed:
		d := digits(2)

		return p.Sprint(number.Decimal(x,
			number.MinFractionDigits(d),
			number.MaxFractionDigits(d),
			number.NoSeparator(),
		)), nil

	case numberInteger:
		i, ok := v.AsInt()
		if !ok {
			if x != math.Trunc(x) {
				return "", ErrInvalidFormat.With(
					slog.String("spec", spec),
					slog.String("reason", "integer specifier applied to fraction"),
				)
			}

			i = int64(x)
		}

		return p.Sprint(number.Decimal(i,
			number.MinIntegerDigits(max(digits(1), 1)),
			number.NoSeparator(),
		)), nil

	case numberPercent:
		d := digits(0)

		return p.Sprint(number.Percent(x,
			number.MinFractionDigits(d),
			number.MaxFractionDigits(d),
		)), nil

	case numberScientific:
		d := digits(6)

		return p.Sprint(number.Scientific(x,
			number.MinFractionDigits(d),
			number.MaxFractionDigits(d),
		)), nil

	case numberGeneral:
		return p.Sprint(number.Decimal(x,
			number.MaxFractionDigits(digits(15)),
			number.NoSeparator(),
		)), nil
	}

	return "", ErrInvalidFormat.With(slog.String("spec", spec))
}

// parseStandard splits a standard specifier into its upper-case letter and
// precision. The precision is -1 when omitted.
func parseStandard(spec string) (rune, int, bool) {
	if spec == "" {
		return 0, 0, false
	}

	letter := rune(spec[0]) &^ 0x20 // ASCII upper case

	switch letter {
	case numberGrouped, numberFixed, numberInteger,
		numberPercent, numberScientific, numberGeneral:
	default:
		return 0, 0, false
	}

	if len(spec) == 1 {
		return letter, -1, true
	}

	prec, err := strconv.Atoi(spec[1:])
	if err != nil || prec < 0 || prec > 99 {
		return 0, 0, false
	}

	return letter, prec, true
}

// parsePattern converts a custom pattern such as "#,##0.00" into number
// options.
func parsePattern(spec string) ([]number.Option, bool) {
	if spec == "" {
		return nil, false
	}

	intPart, fracPart, hasFrac := strings.Cut(spec, ".")

	var (
		grouping bool
		minInt   int
		minFrac  int
		maxFrac  int
	)

	for _, c := range intPart {
		switch c {
		case ',':
			grouping = true
		case '0':
			minInt++
		case '#':
		default:
			return nil, false
		}
	}

	if hasFrac {
		for _, c := range fracPart {
			switch c {
			case '0':
				if maxFrac > minFrac {
					return nil, false
				}

				minFrac++
				maxFrac++
			case '#':
				maxFrac++
			default:
				return nil, false
			}
		}
	}

	opts := []number.Option{
		number.MinFractionDigits(minFrac),
		number.MaxFractionDigits(maxFrac),
	}

	if minInt > 0 {
		opts = append(opts, number.MinIntegerDigits(minInt))
	}

	if !grouping {
		opts = append(opts, number.NoSeparator())
	}

	return opts, true
}
