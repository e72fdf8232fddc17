package customers

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	data := "Name, \"Email\",Tags\n" +
		"\"Jane Doe\",jane@example.com,Recycling;Paperless\n" +
		"\n" +
		"John Smith ,john@example.com\n" +
		"  \n"

	rows, err := ParseFeed([]byte(data))
	if err != nil {
		t.Fatalf("ParseFeed() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ParseFeed() rows = %d, want 2", len(rows))
	}

	tests := []struct {
		row  int
		col  string
		want string
	}{
		{0, "Name", "Jane Doe"},
		{0, "Email", "jane@example.com"},
		{0, "Tags", "Recycling;Paperless"},
		{1, "Name", "John Smith"},
		{1, "Tags", ""},
	}
	for _, tt := range tests {
		got, ok := rows[tt.row][tt.col]
		if !ok || got != tt.want {
			t.Errorf("rows[%d][%q] = %q (present %v), want %q", tt.row, tt.col, got, ok, tt.want)
		}
	}
}

func TestParseCSV_Empty(t *testing.T) {
	rows, err := ParseFeed(nil)
	if err != nil {
		t.Fatalf("ParseFeed(nil) error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("ParseFeed(nil) = %v, want no rows", rows)
	}
}

func TestCleanField(t *testing.T) {
	tests := map[string]string{
		`  plain `:   "plain",
		`"quoted"`:   "quoted",
		`""double""`: `"double"`,
		`"`:          `"`,
		`"left only`: `"left only`,
	}
	for in, want := range tests {
		if got := cleanField(in); got != want {
			t.Errorf("cleanField(%q) = %q, want %q", in, got, want)
		}
	}
}

func buildWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("CoordinatesToCellName() error = %v", err)
			}
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				t.Fatalf("SetCellValue() error = %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}
	return buf.Bytes()
}

func TestParseXLSX(t *testing.T) {
	data := buildWorkbook(t, [][]string{
		{"Name", "Type", "AR Balance"},
		{"Acme Corp", "Commercial", "450.10"},
		{"Jane Doe"},
	})

	rows, err := ParseFeed(data)
	if err != nil {
		t.Fatalf("ParseFeed(xlsx) error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ParseFeed(xlsx) rows = %d, want 2", len(rows))
	}
	if rows[0]["Type"] != "Commercial" || rows[0]["AR Balance"] != "450.10" {
		t.Errorf("rows[0] = %v", rows[0])
	}
	if got, ok := rows[1]["AR Balance"]; !ok || got != "" {
		t.Errorf("rows[1][AR Balance] = %q (present %v), want padded empty", got, ok)
	}
}
