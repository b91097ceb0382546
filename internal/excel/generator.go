package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/gigledger/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the best-clients ranking as a single-sheet workbook.
func (g *Generator) Generate(report model.ClientReport) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Best clients"
	file.SetSheetName("Sheet1", sheet)

	period := fmt.Sprintf("%s — %s",
		report.PeriodStart.Format("2006-01-02"),
		report.PeriodEnd.Format("2006-01-02"))
	if err := file.SetCellValue(sheet, "A1", "Top paying clients"); err != nil {
		return nil, err
	}
	if err := file.SetCellValue(sheet, "A2", period); err != nil {
		return nil, err
	}

	headers := []string{"Rank", "Client", "Total paid"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 4)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, client := range report.Clients {
		row := 5 + i
		values := []interface{}{i + 1, client.FullName, client.Paid.StringFixed(2)}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	if err := file.SetColWidth(sheet, "A", "A", 8); err != nil {
		return nil, err
	}
	if err := file.SetColWidth(sheet, "B", "C", 28); err != nil {
		return nil, err
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
