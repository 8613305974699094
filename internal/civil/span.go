package civil

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Span is an elapsed duration rendered as [-][d.]hh:mm:ss[.fffffff].
type Span time.Duration

// Duration returns s as a time.Duration.
func (s Span) Duration() time.Duration {
	return time.Duration(s)
}

// ParseSpan parses [-][d.]hh:mm[:ss[.fffffff]].
func ParseSpan(raw string) (Span, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("civil: empty time span")
	}

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var days int64
	clock := s
	if dot := strings.Index(s, "."); dot >= 0 && dot < strings.Index(s, ":") {
		d, err := strconv.ParseInt(s[:dot], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("civil: invalid time span %q", raw)
		}
		days, clock = d, s[dot+1:]
	}

	parts := strings.Split(clock, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("civil: invalid time span %q", raw)
	}

	hours, err := parseClockField(parts[0], 23)
	if err != nil {
		return 0, fmt.Errorf("civil: invalid time span %q", raw)
	}
	minutes, err := parseClockField(parts[1], 59)
	if err != nil {
		return 0, fmt.Errorf("civil: invalid time span %q", raw)
	}

	var seconds int64
	var fraction time.Duration
	if len(parts) == 3 {
		secPart := parts[2]
		if dot := strings.Index(secPart, "."); dot >= 0 {
			digits := secPart[dot+1:]
			if digits == "" || len(digits) > 7 {
				return 0, fmt.Errorf("civil: invalid time span %q", raw)
			}
			ticks, ferr := strconv.ParseInt(digits+strings.Repeat("0", 7-len(digits)), 10, 64)
			if ferr != nil {
				return 0, fmt.Errorf("civil: invalid time span %q", raw)
			}
			fraction = time.Duration(ticks) * 100 * time.Nanosecond
			secPart = secPart[:dot]
		}
		if seconds, err = parseClockField(secPart, 59); err != nil {
			return 0, fmt.Errorf("civil: invalid time span %q", raw)
		}
	}

	total := time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		fraction
	if negative {
		total = -total
	}
	return Span(total), nil
}

func parseClockField(s string, max int64) (int64, error) {
	if s == "" || len(s) > 2 {
		return 0, fmt.Errorf("bad field %q", s)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 || v > max {
		return 0, fmt.Errorf("bad field %q", s)
	}
	return v, nil
}

// String renders s in constant format, e.g. 00:30:00 or 1.02:03:04.5000000.
func (s Span) String() string {
	d := time.Duration(s)
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	ticks := d / (100 * time.Nanosecond)

	var b strings.Builder
	b.WriteString(sign)
	if days > 0 {
		fmt.Fprintf(&b, "%d.", days)
	}
	fmt.Fprintf(&b, "%02d:%02d:%02d", hours, minutes, seconds)
	if ticks > 0 {
		fmt.Fprintf(&b, ".%07d", ticks)
	}
	return b.String()
}

func (s Span) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Span) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return invalidJSON(data, *s)
	}
	parsed, err := ParseSpan(raw)
	if err != nil {
		return invalidJSON(data, *s)
	}
	*s = parsed
	return nil
}

// GormDataType stores spans as nanosecond counts.
func (Span) GormDataType() string {
	return "bigint"
}

func (s Span) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *Span) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*s = Span(v)
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("civil: scan span: %w", err)
		}
		*s = Span(n)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("civil: scan span: %w", err)
		}
		*s = Span(n)
	default:
		return fmt.Errorf("civil: scan span: unsupported type %T", src)
	}
	return nil
}
