package inspect

import (
	"errors"
	"fmt"

	"github.com/crhntr/inspect/expression"
)

var ErrRecalculating = errors.New("sheet recalculation already in progress")

// CycleError is returned when a cell depends on its own value.
type CycleError struct {
	Address Address
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("recursive reference to %s", e.Address)
}

// Recalculate evaluates every cell formula in address order, computing
// referenced cells first. The first error stops the pass. Cells computed
// before the error keep their new values, the rest keep their old ones.
func (sheet *Sheet) Recalculate() error {
	if !sheet.recalculating.SetToIf(false, true) {
		return ErrRecalculating
	}
	defer sheet.recalculating.UnSet()

	sheet.pass++
	p := &pass{cells: sheet.cells, generation: sheet.pass}
	for _, address := range sheet.Addresses() {
		if _, err := p.resolve(address, sheet.cells[address]); err != nil {
			return err
		}
	}
	return nil
}

// pass holds the cells exclusively for the duration of one Recalculate call.
type pass struct {
	cells      map[Address]*cell
	generation uint64
}

func (p *pass) resolve(address Address, c *cell) (string, error) {
	if c.pass == p.generation {
		if c.processed {
			return c.value, nil
		}
		return "", &CycleError{Address: address}
	}
	c.pass = p.generation
	c.processed = false

	formula, err := expression.NewFormula(c.formula)
	if err != nil {
		return "", fmt.Errorf("cell %s: %w", address, err)
	}
	value, err := formula.Evaluate(p)
	if err != nil {
		return "", err
	}
	c.value = value
	c.processed = true
	return value, nil
}

func (p *pass) ResolveAddress(address Address) (string, error) {
	c, ok := p.cells[address]
	if !ok {
		return "", nil
	}
	return p.resolve(address, c)
}

func (p *pass) CallFunction(name string, _ []string) (string, error) {
	return "", &expression.UnsupportedFunctionError{Name: name}
}
