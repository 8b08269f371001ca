package numbering

import (
	"reflect"
	"testing"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
)

func TestParseSubRange(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"simple", "Support 10-12", []string{"10", "11", "12"}},
		{"en dash and spaces", "Line 100 – 102", []string{"100", "101", "102"}},
		{"em dash", "50—51", []string{"50", "51"}},
		{"exactly 25", "Line 100-124", nil},
		{"26 values", "Line 100-125", []string{}},
		{"31 values", "Line 100-130", []string{}},
		{"101 values", "Line 100-200", []string{}},
		{"reversed", "Line 20-10", []string{}},
		{"single digit sides", "Line 1-5", []string{}},
		{"first valid wins", "99-10 then 30-31", []string{"30", "31"}},
		{"no range", "Sales", []string{}},
		{"huge span", "Line 00-9223372036854775807", []string{}},
		{"near max", "9223372036854775800-9223372036854775807", []string{}},
		{"top of uint64", "18446744073709551613-18446744073709551615",
			[]string{"18446744073709551613", "18446744073709551614", "18446744073709551615"}},
		{"beyond uint64", "Line 10-99999999999999999999999", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseSubRange(tc.text)
			if tc.want == nil {
				if len(got) != MaxOptions || got[0] != "100" || got[24] != "124" {
					t.Fatalf("expected 25 values 100..124, got %v", got)
				}
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseSubRange(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestLineOptionsPrefersTitle(t *testing.T) {
	line := &domain.Line{ID: "70-71", Title: "Support 10-11"}
	if got := LineOptions(line); !reflect.DeepEqual(got, []string{"10", "11"}) {
		t.Fatalf("got %v", got)
	}
	line.Title = "Support"
	if got := LineOptions(line); !reflect.DeepEqual(got, []string{"70", "71"}) {
		t.Fatalf("expected id fallback, got %v", got)
	}
	if !Contains(line, "71") || Contains(line, "72") {
		t.Fatalf("Contains wrong")
	}
}

func TestRows(t *testing.T) {
	got := Rows([]string{"1", "2", "3", "4", "5", "6", "7"}, 3)
	want := [][]string{{"1", "2", "3"}, {"4", "5", "6"}, {"7"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Rows = %v", got)
	}
}
