package transaction

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// exportRow is the flattened shape written to CSV exports.
type exportRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Currency    string `csv:"currency"`
	Type        string `csv:"type"`
	Category    string `csv:"category"`
}

func toExportRows(transactions []Transaction) []exportRow {
	rows := make([]exportRow, len(transactions))
	for i, t := range transactions {
		categoryName := ""
		if t.Category != nil {
			categoryName = t.Category.Name
		}
		rows[i] = exportRow{
			Date:        t.Date.Format("2006-01-02"),
			Description: t.Description,
			Amount:      t.Amount.String(),
			Currency:    t.Currency,
			Type:        t.Type,
			Category:    categoryName,
		}
	}
	return rows
}

// ExportCSV renders the user's filtered transactions as a CSV file.
func (s *Service) ExportCSV(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]byte, error) {
	transactions, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	out, err := gocsv.MarshalBytes(toExportRows(transactions))
	if err != nil {
		return nil, fmt.Errorf("marshal CSV export: %w", err)
	}
	return out, nil
}

// ExportXLSX renders the user's filtered transactions as an Excel workbook.
func (s *Service) ExportXLSX(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]byte, error) {
	transactions, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transactions"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create export sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headers := []string{"Date", "Description", "Amount", "Currency", "Type", "Category"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, row := range toExportRows(transactions) {
		values := []any{row.Date, row.Description, row.Amount, row.Currency, row.Type, row.Category}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write export workbook: %w", err)
	}
	return buf.Bytes(), nil
}
