package export

import (
	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the worksheet in xlsx exports.
const SheetName = "Codon Frequencies"

func writeXLSX(path string, rows []Row) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err = f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err = f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{r.AminoAcid, r.Codon, r.Count, r.Freq, r.SpecialType}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
