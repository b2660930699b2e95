package inspect

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/fatih/color"
	"github.com/tevino/abool/v2"

	"github.com/crhntr/inspect/expression"
)

type Address = expression.Address

type cell struct {
	formula string
	value   string

	// pass is the generation of the last recalculation that visited the
	// cell. processed is only meaningful while pass equals Sheet.pass.
	pass      uint64
	processed bool
}

// Sheet stores cell formulas and their last calculated values.
//
// The zero value is an empty sheet ready to use. A Sheet is not safe for
// concurrent use. Callers that share one must serialize every method call.
type Sheet struct {
	cells map[Address]*cell
	pass  uint64

	recalculating abool.AtomicBool
}

func NewSheet() *Sheet {
	return &Sheet{cells: make(map[Address]*cell)}
}

// SetFormula stores the formula for the cell at address. The value of the
// cell is not updated until the next call to Recalculate. It returns false
// only when called during a recalculation.
func (sheet *Sheet) SetFormula(address Address, formula string) bool {
	if sheet.recalculating.IsSet() {
		return false
	}
	if c, ok := sheet.cells[address]; ok {
		c.formula = formula
		return true
	}
	if sheet.cells == nil {
		sheet.cells = make(map[Address]*cell)
	}
	sheet.cells[address] = &cell{formula: formula}
	return true
}

func (sheet *Sheet) Formula(address Address) string {
	if c, ok := sheet.cells[address]; ok {
		return c.formula
	}
	return ""
}

func (sheet *Sheet) Value(address Address) string {
	if c, ok := sheet.cells[address]; ok {
		return c.value
	}
	return ""
}

func (sheet *Sheet) IsSet(address Address) bool {
	_, ok := sheet.cells[address]
	return ok
}

func (sheet *Sheet) Erase(address Address) bool {
	if sheet.recalculating.IsSet() {
		return false
	}
	if _, ok := sheet.cells[address]; !ok {
		return false
	}
	delete(sheet.cells, address)
	return true
}

func (sheet *Sheet) Len() int { return len(sheet.cells) }

// Addresses returns the addresses of all set cells ordered by column then row.
func (sheet *Sheet) Addresses() []Address {
	return slices.SortedFunc(maps.Keys(sheet.cells), Address.Compare)
}

// Print writes the value of every cell in address order.
func (sheet *Sheet) Print(w io.Writer) error {
	label := color.New(color.FgCyan)
	for _, address := range sheet.Addresses() {
		if _, err := label.Fprint(w, address.String()); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, ": %s\n", sheet.cells[address].value); err != nil {
			return err
		}
	}
	return nil
}
