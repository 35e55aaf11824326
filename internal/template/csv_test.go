package template

import (
	"strings"
	"testing"
)

func TestVariablesCSV(t *testing.T) {
	out, err := VariablesCSV([]Variable{
		{Key: "client_name", Label: "Client Name", Description: "Full legal name", Example: "Acme Corp", DataType: "text", Required: true},
		{Key: "term_months", DataType: "number", Default: "12"},
	})
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "key,label,description,example,data_type,is_required,default_value" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != "client_name,Client Name,Full legal name,Acme Corp,text,true," {
		t.Fatalf("unexpected row: %q", lines[1])
	}
	if lines[2] != "term_months,term_months,,,number,false,12" {
		t.Fatalf("label should fall back to key: %q", lines[2])
	}
}

func TestVariablesCSVEmpty(t *testing.T) {
	out, err := VariablesCSV(nil)
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if strings.TrimRight(out, "\n") != "key,label,description,example,data_type,is_required,default_value" {
		t.Fatalf("expected header only, got %q", out)
	}
}
