package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// The roster interchange format is RFC 4180 CSV with a header row. Values
// containing commas, quotes or newlines are quoted on export and unquoted on
// import, so joined email lists survive a round trip.

func unparseCSV(header []string, rows [][]string) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return sb.String(), nil
}

// parseCSVRecords reads a header-bearing CSV and returns one column->value
// map per data row. Rows with a different field count than the header are
// rejected by the csv reader itself.
func parseCSVRecords(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("csv file is empty")
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	records := make([]map[string]string, 0)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		record := make(map[string]string, len(header))
		for i, column := range header {
			record[column] = row[i]
		}
		records = append(records, record)
	}
	return records, nil
}

// splitEmailList reverses the ", " joining used on export, tolerating plain
// comma separation as well. Empty entries are dropped.
func splitEmailList(joined string) []string {
	parts := strings.Split(joined, ",")
	emails := make([]string, 0, len(parts))
	for _, part := range parts {
		if email := strings.TrimSpace(part); email != "" {
			emails = append(emails, email)
		}
	}
	return emails
}
