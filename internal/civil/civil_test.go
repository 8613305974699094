package civil

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateFormats(t *testing.T) {
	d, err := ParseDate("2024-01-01")
	require.NoError(t, err)
	require.Equal(t, Date{Year: 2024, Month: time.January, Day: 1}, d)
	require.Equal(t, "2024-01-01", d.String())
	require.Equal(t, "24-01-01", d.Short())

	_, err = ParseDate("01/01/2024")
	require.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2023-12-31"}`), &payload))
	require.Equal(t, "2023-12-31", payload.Date.String())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	require.JSONEq(t, `{"date":"2023-12-31"}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"date":""}`), &payload))
	require.True(t, payload.Date.IsZero())

	require.Error(t, json.Unmarshal([]byte(`{"date":20240101}`), &payload))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, "2024-03-05", d.String())

	require.NoError(t, d.Scan("2024-03-06 00:00:00+00:00"))
	require.Equal(t, "2024-03-06", d.String())

	require.NoError(t, d.Scan([]byte("2024-03-07")))
	require.Equal(t, "2024-03-07", d.String())

	require.Error(t, d.Scan(42))
}

func TestParseSpan(t *testing.T) {
	cases := map[string]time.Duration{
		"00:30:00":           30 * time.Minute,
		"00:00:30":           30 * time.Second,
		"01:15":              75 * time.Minute,
		"1.02:03:04":         26*time.Hour + 3*time.Minute + 4*time.Second,
		"-00:00:05":          -5 * time.Second,
		"00:00:01.5":         1500 * time.Millisecond,
		"00:00:00.0000001":   100 * time.Nanosecond,
		" 00:10:00 ":         10 * time.Minute,
		"10.00:00:00.250000": 240*time.Hour + 250*time.Millisecond,
	}
	for raw, want := range cases {
		got, err := ParseSpan(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got.Duration(), raw)
	}

	for _, raw := range []string{"", "30", "24:00:00", "00:60:00", "00:00:61", "abc", "00:00:00.12345678", "1.2.3:00"} {
		_, err := ParseSpan(raw)
		require.Error(t, err, raw)
	}
}

func TestSpanString(t *testing.T) {
	require.Equal(t, "00:30:00", Span(30*time.Minute).String())
	require.Equal(t, "1.02:03:04", Span(26*time.Hour+3*time.Minute+4*time.Second).String())
	require.Equal(t, "-00:00:05", Span(-5*time.Second).String())
	require.Equal(t, "00:00:01.5000000", Span(1500*time.Millisecond).String())
}

func TestSpanJSONAndSQL(t *testing.T) {
	var s Span
	require.NoError(t, json.Unmarshal([]byte(`"00:45:00"`), &s))
	require.Equal(t, 45*time.Minute, s.Duration())

	out, err := json.Marshal(s)
	require.NoError(t, err)
	require.Equal(t, `"00:45:00"`, string(out))

	v, err := s.Value()
	require.NoError(t, err)
	require.Equal(t, int64(45*time.Minute), v)

	var scanned Span
	require.NoError(t, scanned.Scan(int64(time.Minute)))
	require.Equal(t, time.Minute, scanned.Duration())
	require.NoError(t, scanned.Scan([]byte("1000000000")))
	require.Equal(t, time.Second, scanned.Duration())
	require.Error(t, scanned.Scan(1.5))

	require.Error(t, json.Unmarshal([]byte(`1800`), &s))
}

func TestTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2024-01-01T08:00:00")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), ts.Time)
	require.Equal(t, "2024-01-01T08:00:00", ts.String())

	withOffset, err := ParseTimestamp("2024-01-01T10:00:00+02:00")
	require.NoError(t, err)
	require.True(t, withOffset.Equal(ts.Time))

	frac, err := ParseTimestamp("2024-01-01T08:00:00.25")
	require.NoError(t, err)
	require.Equal(t, "2024-01-01T08:00:00.25", frac.String())

	_, err = ParseTimestamp("yesterday")
	require.Error(t, err)
}

func TestTimestampJSONAndScan(t *testing.T) {
	var payload struct {
		Start Timestamp `json:"startTime"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"startTime":"2024-01-01T09:00:00"}`), &payload))

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	require.JSONEq(t, `{"startTime":"2024-01-01T09:00:00"}`, string(out))

	var scanned Timestamp
	require.NoError(t, scanned.Scan("2024-01-01 09:00:00+00:00"))
	require.True(t, scanned.Equal(payload.Start.Time))

	local := time.Date(2024, 1, 1, 11, 0, 0, 0, time.FixedZone("EET", 2*60*60))
	require.NoError(t, scanned.Scan(local))
	require.Equal(t, time.UTC, scanned.Location())
	require.Equal(t, "2024-01-01T09:00:00", scanned.String())
}

func TestUnparseableJSONNamesTheField(t *testing.T) {
	var payload struct {
		Date     Date      `json:"date"`
		Duration Span      `json:"duration"`
		Start    Timestamp `json:"startTime"`
	}

	cases := []struct{ body, field string }{
		{`{"date":"01/01/2024"}`, "date"},
		{`{"duration":"half an hour"}`, "duration"},
		{`{"duration":1800}`, "duration"},
		{`{"startTime":"tomorrow"}`, "startTime"},
		{`{"startTime":{"at":"noon"}}`, "startTime"},
	}
	for _, tc := range cases {
		body, field := tc.body, tc.field
		err := json.Unmarshal([]byte(body), &payload)
		var typeErr *json.UnmarshalTypeError
		require.True(t, errors.As(err, &typeErr), body)
		require.Equal(t, field, typeErr.Field, body)
		require.NotContains(t, err.Error(), "civil:", body)
	}
}
