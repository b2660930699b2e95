package inspect

import (
	"encoding/json"

	"github.com/crhntr/inspect/expression"
)

type EncodedCell struct {
	ID         string `json:"id"`
	Expression string `json:"ex"`
}

type EncodedTable struct {
	Cells []EncodedCell `json:"cells"`
}

func (sheet *Sheet) MarshalJSON() ([]byte, error) {
	encoded := EncodedTable{Cells: make([]EncodedCell, 0, len(sheet.cells))}
	for _, address := range sheet.Addresses() {
		encoded.Cells = append(encoded.Cells, EncodedCell{
			ID:         address.String(),
			Expression: sheet.cells[address].formula,
		})
	}
	return json.Marshal(encoded)
}

// UnmarshalJSON replaces the formulas of the sheet. Values are calculated by
// the next call to Recalculate.
func (sheet *Sheet) UnmarshalJSON(in []byte) error {
	var encoded EncodedTable
	if err := json.Unmarshal(in, &encoded); err != nil {
		return err
	}
	cells := make(map[Address]*cell, len(encoded.Cells))
	for _, c := range encoded.Cells {
		address, err := expression.ParseAddress(c.ID)
		if err != nil {
			return err
		}
		cells[address] = &cell{formula: c.Expression}
	}
	if sheet.recalculating.IsSet() {
		return ErrRecalculating
	}
	sheet.cells = cells
	return nil
}
