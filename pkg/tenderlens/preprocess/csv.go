package preprocess

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/cognicore/tenderlens/pkg/tenderlens/internalerr"
)

// Raw dataset column names.
const (
	ColTenderID     = "TENDER_ID"
	ColEntity       = "ENTITY"
	ColVendor       = "VENDOR"
	ColStartDate    = "TENDER_START_DATE"
	ColCloseDate    = "TENDER_CLOSE_DATE"
	ColAwardedDate  = "AWARDED_DATE"
	ColAmount       = "AWARDED_AMOUNT"
	ColDescription  = "TENDER_DESCRIPTION"
	ColGoods        = "GOODS"
	ColService      = "SERVICE"
	ColConstruction = "CONSTRUCTION"
)

// RequiredColumns must all be present in the raw dataset header.
var RequiredColumns = []string{
	ColTenderID, ColEntity, ColVendor,
	ColStartDate, ColCloseDate, ColAwardedDate,
	ColAmount, ColDescription,
	ColGoods, ColService, ColConstruction,
}

// RawRow is one unparsed row of the raw dataset.
type RawRow struct {
	TenderID     string
	Entity       string
	Vendor       string
	StartDate    string
	CloseDate    string
	AwardedDate  string
	Amount       string
	Description  string
	Goods        string
	Service      string
	Construction string
}

// ReadCSV reads the raw tender dataset. A header missing any required column
// fails with ErrSchema.
func ReadCSV(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.Wrap(internalerr.ErrSchema, "dataset: empty file, no header")
	}
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read header")
	}

	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\uFEFF"))
		if _, dup := colIdx[col]; !dup {
			colIdx[col] = i
		}
	}
	for _, col := range RequiredColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, eris.Wrapf(internalerr.ErrSchema, "dataset: missing required column %q", col)
		}
	}

	var rows []RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: read row %d", len(rows)+2)
		}
		rows = append(rows, RawRow{
			TenderID:     getCol(record, colIdx, ColTenderID),
			Entity:       getCol(record, colIdx, ColEntity),
			Vendor:       getCol(record, colIdx, ColVendor),
			StartDate:    getCol(record, colIdx, ColStartDate),
			CloseDate:    getCol(record, colIdx, ColCloseDate),
			AwardedDate:  getCol(record, colIdx, ColAwardedDate),
			Amount:       getCol(record, colIdx, ColAmount),
			Description:  getCol(record, colIdx, ColDescription),
			Goods:        getCol(record, colIdx, ColGoods),
			Service:      getCol(record, colIdx, ColService),
			Construction: getCol(record, colIdx, ColConstruction),
		})
	}
	return rows, nil
}

// getCol returns the raw (untrimmed) cell, or "" for short rows.
func getCol(row []string, colIdx map[string]int, col string) string {
	idx, ok := colIdx[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}
