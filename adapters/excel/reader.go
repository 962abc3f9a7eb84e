package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gopermute/domain/permutation"
	"gopermute/internal/errors"
)

// DataReader reads datasets from Excel and CSV files. It implements
// ports.DatasetReader: the engine only ever sees ordered
// (response, group-or-covariate) pairs.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadTwoSample extracts a grouped dataset from the named columns
func (r *DataReader) ReadTwoSample(ctx context.Context, responseCol, groupCol string) (permutation.Dataset, error) {
	rows, err := r.readRows()
	if err != nil {
		return permutation.Dataset{}, err
	}

	respIdx, err := columnIndex(rows[0], responseCol)
	if err != nil {
		return permutation.Dataset{}, err
	}
	groupIdx, err := columnIndex(rows[0], groupCol)
	if err != nil {
		return permutation.Dataset{}, err
	}

	var response []float64
	var group []string
	for i, row := range rows[1:] {
		v, g, err := cellPair(row, respIdx, groupIdx)
		if err != nil {
			return permutation.Dataset{}, errors.Wrapf(err, "row %d", i+2)
		}
		response = append(response, v)
		group = append(group, g)
	}

	return permutation.NewTwoSample(response, group)
}

// ReadRegression extracts a (covariate, response) dataset from the named
// columns
func (r *DataReader) ReadRegression(ctx context.Context, responseCol, covariateCol string) (permutation.Dataset, error) {
	rows, err := r.readRows()
	if err != nil {
		return permutation.Dataset{}, err
	}

	respIdx, err := columnIndex(rows[0], responseCol)
	if err != nil {
		return permutation.Dataset{}, err
	}
	covIdx, err := columnIndex(rows[0], covariateCol)
	if err != nil {
		return permutation.Dataset{}, err
	}

	var response []float64
	var covariate []float64
	for i, row := range rows[1:] {
		v, c, err := cellPair(row, respIdx, covIdx)
		if err != nil {
			return permutation.Dataset{}, errors.Wrapf(err, "row %d", i+2)
		}
		cv, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return permutation.Dataset{}, errors.InvalidInputf("row %d: covariate %q is not numeric", i+2, c)
		}
		response = append(response, v)
		covariate = append(covariate, cv)
	}

	return permutation.NewRegression(response, covariate)
}

// readRows loads the raw string grid, header row first
func (r *DataReader) readRows() ([][]string, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.filePath))
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, errors.InvalidInputf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, errors.InvalidInputf("%s file must have a header row and at least one data row", strings.ToUpper(r.fileType))
	}
	return rows, nil
}

func (r *DataReader) readExcelRows() ([][]string, error) {
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
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV file")
	}
	return rows, nil
}

// columnIndex locates a header by case-insensitive name
func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, nil
		}
	}
	return 0, errors.InvalidInputf("column %q not found in header %v", name, header)
}

// cellPair pulls the response value and the companion cell from one row
func cellPair(row []string, respIdx, otherIdx int) (float64, string, error) {
	if respIdx >= len(row) || otherIdx >= len(row) {
		return 0, "", errors.InvalidInput("row has fewer cells than the header")
	}
	raw := strings.TrimSpace(row[respIdx])
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, "", errors.InvalidInputf("response %q is not numeric", raw)
	}
	return v, strings.TrimSpace(row[otherIdx]), nil
}
