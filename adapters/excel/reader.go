package excel

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"flavortag/domain/dataset"
	"flavortag/internal/errors"
	"flavortag/internal/logging"

	"github.com/xuri/excelize/v2"
)

// DataReader loads tagging ntuples exported to Excel or CSV into the
// canonical columnar table. All cells must be numeric; the header row
// names the columns.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	log      *logging.Logger
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		log:      logging.DefaultLogger,
	}
}

// Read loads the file into a table
func (r *DataReader) Read() (*dataset.Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.InvalidInput("dataset file not found: " + r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	default:
		return r.readExcel()
	}
}

func (r *DataReader) readExcel() (*dataset.Table, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", sheet)
	}
	r.log.Info("read %d rows from %s (%s)", len(rows), r.filePath, sheet)

	return r.buildTable(rows)
}

func (r *DataReader) readCSV() (*dataset.Table, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse CSV file")
	}
	r.log.Info("read %d rows from %s", len(rows), r.filePath)

	return r.buildTable(rows)
}

// buildTable converts a header row plus data rows into a columnar table
func (r *DataReader) buildTable(rows [][]string) (*dataset.Table, error) {
	if len(rows) < 2 {
		return nil, errors.InvalidInput("dataset must have a header row and at least one data row")
	}

	header := rows[0]
	columns := make([][]float64, len(header))
	for i := range columns {
		columns[i] = make([]float64, 0, len(rows)-1)
	}

	for rowIdx, row := range rows[1:] {
		for col := range header {
			cell := ""
			if col < len(row) {
				cell = strings.TrimSpace(row[col])
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "non-numeric cell at row %d column %q", rowIdx+2, header[col])
			}
			columns[col] = append(columns[col], v)
		}
	}

	tbl := dataset.NewTable()
	for i, name := range header {
		if err := tbl.AddColumn(strings.TrimSpace(name), columns[i]); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}
