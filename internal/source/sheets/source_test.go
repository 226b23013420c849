package sheets

import "testing"

func TestSpreadsheetIDFromURL(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "sharing url", input: "https://docs.google.com/spreadsheets/d/1AbC-def_123/edit#gid=0", want: "1AbC-def_123"},
		{name: "export url", input: "https://docs.google.com/spreadsheets/d/1AbC/export?format=xlsx", want: "1AbC"},
		{name: "bare id", input: "1AbC-def_123", want: "1AbC-def_123"},
		{name: "unrelated url", input: "https://example.com/some/path", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SpreadsheetIDFromURL(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestQuoteRange(t *testing.T) {
	if got := quoteRange("transfers"); got != "'transfers'" {
		t.Fatalf("got %q", got)
	}
	if got := quoteRange("it's"); got != "'it''s'" {
		t.Fatalf("got %q", got)
	}
}
