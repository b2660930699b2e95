package expression

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var addressPattern = regexp.MustCompile("^(?P<column>[A-Za-z]+)(?P<row>[0-9]+)$")

// Address identifies a cell. Columns decoded from text start at 1 (A=1).
type Address struct {
	Column, Row uint
}

type AddressFormatError struct {
	Input string
	Err   error
}

func (e *AddressFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed cell address %q: %s", e.Input, e.Err)
	}
	return fmt.Sprintf("malformed cell address %q expected something like A4", e.Input)
}

func (e *AddressFormatError) Unwrap() error { return e.Err }

func IsAddress(in string) bool {
	return addressPattern.MatchString(in)
}

func ParseAddress(in string) (Address, error) {
	parts := addressPattern.FindStringSubmatch(in)
	if parts == nil {
		return Address{}, &AddressFormatError{Input: in}
	}
	row, err := strconv.ParseUint(parts[addressPattern.SubexpIndex("row")], 10, strconv.IntSize)
	if err != nil {
		return Address{}, &AddressFormatError{Input: in, Err: fmt.Errorf("failed to parse row number: %w", err)}
	}
	column, err := columnNumber(parts[addressPattern.SubexpIndex("column")])
	if err != nil {
		return Address{}, &AddressFormatError{Input: in, Err: err}
	}
	return Address{Column: column, Row: uint(row)}, nil
}

func columnNumber(label string) (uint, error) {
	const maxColumn = ^uint(0)
	var result uint
	for _, char := range strings.ToUpper(label) {
		digit := uint(char-'A') + 1
		if result > (maxColumn-digit)/26 {
			return 0, fmt.Errorf("column %s out of range", label)
		}
		result = result*26 + digit
	}
	return result, nil
}

// ColumnLabel returns the letters for a 1-based column number. Column 0 has no label.
func ColumnLabel(n uint) string {
	var buf []byte
	for n > 0 {
		n--
		buf = append(buf, byte('A'+n%26))
		n /= 26
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

func (address Address) String() string {
	return ColumnLabel(address.Column) + strconv.FormatUint(uint64(address.Row), 10)
}

func (address Address) Compare(other Address) int {
	if c := cmp.Compare(address.Column, other.Column); c != 0 {
		return c
	}
	return cmp.Compare(address.Row, other.Row)
}

func (address Address) Less(other Address) bool {
	return address.Compare(other) < 0
}
