// Package csvexport writes tabular exports of the list screens.
package csvexport

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ErrNoRows is returned when there is nothing to export. Nothing is written.
var ErrNoRows = errors.New("no data to export")

// Encode writes headers and rows as CSV. Fields containing a comma, a double
// quote or a newline are quoted with inner quotes doubled; any other field is
// written as is. Lines are separated by "\n" with no trailing newline.
func Encode(w io.Writer, headers []string, rows [][]any) error {
	if len(rows) == 0 {
		return ErrNoRows
	}

	var b strings.Builder
	writeLine(&b, toAny(headers))
	for _, row := range rows {
		b.WriteByte('\n')
		writeLine(&b, row)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// EncodeString is Encode into a string.
func EncodeString(headers []string, rows [][]any) (string, error) {
	var b strings.Builder
	if err := Encode(&b, headers, rows); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeLine(b *strings.Builder, fields []any) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Quote(Format(f)))
	}
}

// Quote applies the field quoting rule.
func Quote(field string) string {
	if !strings.ContainsAny(field, ",\"\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// Format renders a scalar the way it appears in an export.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case *int64:
		if x == nil {
			return ""
		}
		return strconv.FormatInt(*x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
