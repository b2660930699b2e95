package main

import (
	"strconv"

	"github.com/crhntr/inspect"
	"github.com/crhntr/inspect/expression"
)

type Table struct {
	ColumnCount, RowCount int

	sheet *inspect.Sheet
}

type Column struct {
	Number uint
}

func (column Column) Label() string {
	return expression.ColumnLabel(column.Number)
}

type Row struct {
	Number uint
}

func (row Row) Label() string {
	return strconv.FormatUint(uint64(row.Number), 10)
}

type Cell struct {
	Address expression.Address
	Formula,
	Value string
}

func (cell Cell) ID() string {
	return "cell-" + cell.Address.String()
}

func (table *Table) Cell(column, row uint) Cell {
	address := expression.Address{Column: column, Row: row}
	return Cell{
		Address: address,
		Formula: table.sheet.Formula(address),
		Value:   table.sheet.Value(address),
	}
}

func (table *Table) Rows() []Row {
	result := make([]Row, table.RowCount)
	for i := range result {
		result[i].Number = uint(i + 1)
	}
	return result
}

func (table *Table) Columns() []Column {
	result := make([]Column, table.ColumnCount)
	for i := range result {
		result[i].Number = uint(i + 1)
	}
	return result
}
