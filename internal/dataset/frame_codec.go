package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"demandcli/pkg/contracts/domain"
)

// ReadFrame parses CSV content into a frame. The first record is the
// header; every following record must have the same number of fields.
// A reader with no content at all is an error, a header-only file yields
// an empty frame.
func ReadFrame(r io.Reader) (*domain.Frame, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	// Strip a UTF-8 BOM left by spreadsheet tools
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	frame := domain.NewFrame(header...)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse row %d: %w", frame.RowCount()+2, err)
		}
		if err := frame.AppendRow(record); err != nil {
			return nil, fmt.Errorf("failed to parse row %d: %w", frame.RowCount()+2, err)
		}
	}

	return frame, nil
}

// ReadFrameFile opens and parses a CSV file into a frame.
func ReadFrameFile(path string) (*domain.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	frame, err := ReadFrame(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return frame, nil
}
