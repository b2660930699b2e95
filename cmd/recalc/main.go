// Command recalc recalculates a sheet and prints the value of every cell.
//
//	recalc [-n] table.json
//	recalc [-n] -d sheets.db name
//	recalc -d sheets.db -l
//	recalc -d sheets.db -x name
//
// With -d the sheet is read from a database written by the server. -l lists
// the stored sheet names and -x deletes a stored sheet. -n disables color.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"

	"github.com/crhntr/inspect"
	"github.com/crhntr/inspect/store"
)

const usage = "usage: recalc [-n] [-d database [-l | -x name]] table.json | name"

type options struct {
	database string
	list     bool
	remove   string
}

func main() {
	opts, optind, err := getopt.Getopts(os.Args, "nd:lx:")
	if err != nil {
		log.Fatalln(err)
	}
	var o options
	for _, opt := range opts {
		switch opt.Option {
		case 'n':
			color.NoColor = true
		case 'd':
			o.database = opt.Value
		case 'l':
			o.list = true
		case 'x':
			o.remove = opt.Value
		}
	}
	if err := o.run(context.Background(), os.Stdout, os.Args[optind:]); err != nil {
		log.Fatalln(err)
	}
}

var errUsage = errors.New(usage)

func (o options) run(ctx context.Context, out io.Writer, args []string) error {
	if o.database == "" {
		if o.list || o.remove != "" || len(args) != 1 {
			return errUsage
		}
		return run(out, args[0])
	}
	db, err := store.Open(o.database)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()
	switch {
	case o.list:
		if o.remove != "" || len(args) != 0 {
			return errUsage
		}
		return listSheets(ctx, out, db)
	case o.remove != "":
		if len(args) != 0 {
			return errUsage
		}
		return db.Delete(ctx, o.remove)
	case len(args) == 1:
		sheet, err := db.Load(ctx, args[0])
		if err != nil {
			return err
		}
		return printRecalculated(out, sheet)
	default:
		return errUsage
	}
}

func listSheets(ctx context.Context, out io.Writer, db *store.Store) error {
	names, err := db.Names(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := fmt.Fprintln(out, name); err != nil {
			return err
		}
	}
	return nil
}

func run(out io.Writer, path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	sheet := inspect.NewSheet()
	if err := json.Unmarshal(buf, sheet); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return printRecalculated(out, sheet)
}

func printRecalculated(out io.Writer, sheet *inspect.Sheet) error {
	recalcErr := sheet.Recalculate()
	if err := sheet.Print(out); err != nil {
		return err
	}
	return recalcErr
}
