package template

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// VariablesCSV exports a template's variable descriptors as CSV with a
// header row, one row per variable.
func VariablesCSV(variables []Variable) (string, error) {
	var buf strings.Builder
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"key", "label", "description", "example", "data_type", "is_required", "default_value"}); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, v := range variables {
		label := v.Label
		if label == "" {
			label = v.Key
		}
		record := []string{v.Key, label, v.Description, v.Example, v.DataType, strconv.FormatBool(v.Required), v.Default}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return buf.String(), nil
}
