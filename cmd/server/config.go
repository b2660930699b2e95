package main

import (
	"fmt"
	"strconv"

	"git.sr.ht/~sircmpwn/getopt"
)

type config struct {
	address  string
	columns  int
	rows     int
	database string
	name     string
}

// parseConfig reads options from argv, which includes the program name.
//
//	-a address   listen address (default :8080)
//	-c columns   number of table columns (default 10)
//	-r rows      number of table rows (default 10)
//	-d path      sqlite database used to load and save the sheet
//	-n name      sheet name in the database (default "default")
func parseConfig(argv []string) (config, error) {
	c := config{
		address: ":8080",
		columns: 10,
		rows:    10,
		name:    "default",
	}
	opts, _, err := getopt.Getopts(argv, "a:c:r:d:n:")
	if err != nil {
		return c, err
	}
	for _, opt := range opts {
		switch opt.Option {
		case 'a':
			c.address = opt.Value
		case 'c':
			if c.columns, err = positiveInt(opt.Value); err != nil {
				return c, fmt.Errorf("invalid -c parameter: %w", err)
			}
		case 'r':
			if c.rows, err = positiveInt(opt.Value); err != nil {
				return c, fmt.Errorf("invalid -r parameter: %w", err)
			}
		case 'd':
			c.database = opt.Value
		case 'n':
			c.name = opt.Value
		}
	}
	return c, nil
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("%d is less than 1", n)
	}
	return n, nil
}
