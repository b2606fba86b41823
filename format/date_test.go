package format

import (
	"testing"
	"time"

	"github.com/midbel/sheetcalc/value"
)

func TestFormatDate(t *testing.T) {
	tests := map[string]string{
		"YYYY":                         "2026",
		"YY":                           "26",
		"MM":                           "2",
		"0MM":                          "02",
		"MMM":                          "Feb",
		"MMMM":                         "February",
		"DD":                           "20",
		"DDD":                          "Fri",
		"DDDD":                         "Friday",
		"JJJ":                          "51",
		"0JJJ":                         "051",
		"hh":                           "14",
		"0mm":                          "05",
		"0ss":                          "09",
		"YYYY-0MM-0DD":                 "2026-02-20",
		"DD/MM/YYYY hh:mm:ss":          "20/2/2026 14:5:9",
		"0DD  MMM  YYYY":               "20  Feb  2026",
		"Report YYYY-MM-DD at 0hh:0mm": "Report 2026-2-20 at 14:05",
	}
	serial := value.Float(SerialFromDate(time.Date(2026, 2, 20, 14, 5, 9, 0, time.UTC)))
	for pattern, want := range tests {
		p, err := ParseDateFormatter(pattern)
		if err != nil {
			t.Errorf("%s: error parsing pattern: %s", pattern, err)
			continue
		}
		got, err := p.Format(serial)
		if err != nil {
			t.Errorf("%s: fail to format date: %s", pattern, err)
			continue
		}
		if got != want {
			t.Errorf("%s: results mismatched! want %s - got %s", pattern, want, got)
		}
	}
}

func TestSerial(t *testing.T) {
	tests := []struct {
		Serial float64
		Want   time.Time
	}{
		{Serial: 0, Want: epoch},
		{Serial: 1, Want: time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)},
		{Serial: 46073.5, Want: time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)},
	}
	for _, c := range tests {
		got := DateFromSerial(c.Serial)
		if !got.Equal(c.Want) {
			t.Errorf("%f: results mismatched! want %s - got %s", c.Serial, c.Want, got)
		}
		if back := SerialFromDate(got); back != c.Serial {
			t.Errorf("%s: serial mismatched! want %f - got %f", got, c.Serial, back)
		}
	}
	if _, err := (dateFormatter{}).Format(value.Text("x")); err == nil {
		t.Errorf("expected error formatting text as date")
	}
}
