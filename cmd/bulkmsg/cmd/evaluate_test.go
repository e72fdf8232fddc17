package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEvaluateCommand(t *testing.T) {
	dir := t.TempDir()
	feed := filepath.Join(dir, "customers.csv")
	csv := "Name,Email,Tags\nAcme Hauling,ops@acme.test,VIP\nJane Doe,jane@example.com,\nAcme Two,two@acme.test,\n"
	if err := os.WriteFile(feed, []byte(csv), 0o600); err != nil {
		t.Fatal(err)
	}
	filterPath := filepath.Join(dir, "filter.json")
	filterJSON := `{"isGroup":true,"logicalOperator":"AND","conditions":[
		{"id":"n1","field":"name","operator":"contains","value":"acme"}]}`
	if err := os.WriteFile(filterPath, []byte(filterJSON), 0o600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"evaluate", filterPath, "--feed-path", feed, "--ids", "--log-level", "error"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "2 of 3 customers match") {
		t.Errorf("output = %q, want match count", got)
	}
	if !strings.Contains(got, "csv-1\ncsv-3") {
		t.Errorf("output = %q, want ids csv-1 and csv-3", got)
	}
}
