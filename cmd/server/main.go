package main

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/segmentio/fasthash/fnv1a"

	"github.com/crhntr/inspect"
	"github.com/crhntr/inspect/expression"
	"github.com/crhntr/inspect/store"
)

//go:embed index.html.template
var indexHTMLTemplate string

func main() {
	config, err := parseConfig(os.Args)
	if err != nil {
		log.Fatal(err)
	}
	s := &server{
		sheet:     inspect.NewSheet(),
		columns:   config.columns,
		rows:      config.rows,
		name:      config.name,
		templates: template.Must(template.New("index.html.template").Parse(indexHTMLTemplate)),
	}
	if config.database != "" {
		db, err := store.Open(config.database)
		if err != nil {
			log.Fatal(err)
		}
		defer closeAndIgnoreError(db)
		s.store = db
		if s.sheet, err = db.Load(context.Background(), config.name); err != nil {
			log.Fatal(err)
		}
		if err := s.sheet.Recalculate(); err != nil {
			log.Println(err)
		}
	}
	log.Println("starting server on", config.address)
	log.Fatal(http.ListenAndServe(config.address, s.routes()))
}

type server struct {
	mut   sync.RWMutex
	sheet *inspect.Sheet

	columns, rows int

	store *store.Store
	name  string

	templates *template.Template
}

func (server *server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", server.index)
	mux.HandleFunc("GET /table.json", server.getTableJSON)
	mux.HandleFunc("POST /table.json", server.postTableJSON)
	mux.HandleFunc("GET /cell/{id}", server.getCellEdit)
	mux.HandleFunc("DELETE /cell/{id}", server.deleteCell)
	mux.HandleFunc("PATCH /table", server.patchTable)

	return mux
}

func (server *server) render(res http.ResponseWriter, _ *http.Request, name string, status int, data any) {
	var buf bytes.Buffer
	if err := server.templates.ExecuteTemplate(&buf, name, data); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}
	header := res.Header()
	header.Set("content-type", "text/html")
	res.WriteHeader(status)
	_, _ = res.Write(buf.Bytes())
}

func (server *server) index(res http.ResponseWriter, req *http.Request) {
	server.mut.RLock()
	defer server.mut.RUnlock()
	server.render(res, req, "index.html.template", http.StatusOK, server.table())
}

func (server *server) getCellEdit(res http.ResponseWriter, req *http.Request) {
	server.mut.RLock()
	defer server.mut.RUnlock()

	address, err := server.cellAddress(req.PathValue("id"))
	if err != nil {
		http.Error(res, err.Error(), http.StatusBadRequest)
		return
	}
	server.render(res, req, "edit-cell", http.StatusOK, server.table().Cell(address.Column, address.Row))
}

func (server *server) deleteCell(res http.ResponseWriter, req *http.Request) {
	server.mut.Lock()
	defer server.mut.Unlock()

	address, err := server.cellAddress(req.PathValue("id"))
	if err != nil {
		http.Error(res, err.Error(), http.StatusBadRequest)
		return
	}
	removed := edit{address: address, previous: server.sheet.Formula(address), wasDefined: true}
	if !server.sheet.Erase(address) {
		http.Error(res, fmt.Sprintf("cell %s is not set", address), http.StatusNotFound)
		return
	}
	if err := server.sheet.Recalculate(); err != nil {
		log.Println(err)
		server.revert([]edit{removed})
		http.Error(res, err.Error(), http.StatusBadRequest)
		return
	}
	server.save(req.Context())
	server.render(res, req, "table", http.StatusOK, server.table())
}

func (server *server) getTableJSON(res http.ResponseWriter, req *http.Request) {
	server.mut.RLock()
	defer server.mut.RUnlock()

	buf, err := json.MarshalIndent(server.sheet, "", "\t")
	if err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}
	etag := `"` + strconv.FormatUint(fnv1a.HashBytes64(buf), 16) + `"`
	h := res.Header()
	h.Set("etag", etag)
	if req.Header.Get("if-none-match") == etag {
		res.WriteHeader(http.StatusNotModified)
		return
	}
	h.Set("content-type", "application/json")
	h.Set("content-length", strconv.Itoa(len(buf)))
	res.WriteHeader(http.StatusOK)
	_, _ = res.Write(buf)
}

func (server *server) postTableJSON(res http.ResponseWriter, req *http.Request) {
	if err := req.ParseMultipartForm((1 << 10) * 10); err != nil {
		http.Error(res, err.Error(), http.StatusBadRequest)
		return
	}
	tableJSONHeaders, ok := req.MultipartForm.File["table.json"]
	if !ok || len(tableJSONHeaders) == 0 {
		http.Error(res, "expected table.json file", http.StatusBadRequest)
		return
	}
	f, err := tableJSONHeaders[0].Open()
	if err != nil {
		http.Error(res, err.Error(), http.StatusBadRequest)
		return
	}
	defer closeAndIgnoreError(f)
	tableJSON, err := io.ReadAll(f)
	if err != nil {
		http.Error(res, err.Error(), http.StatusBadRequest)
		return
	}
	sheet := inspect.NewSheet()
	if err := json.Unmarshal(tableJSON, sheet); err != nil {
		http.Error(res, err.Error(), http.StatusBadRequest)
		return
	}
	for _, address := range sheet.Addresses() {
		if err := server.checkBounds(address); err != nil {
			http.Error(res, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if err := sheet.Recalculate(); err != nil {
		http.Error(res, err.Error(), http.StatusBadRequest)
		return
	}
	server.mut.Lock()
	defer server.mut.Unlock()
	server.sheet = sheet
	server.save(req.Context())
	server.render(res, req, "table", http.StatusOK, server.table())
}

func closeAndIgnoreError(c io.Closer) {
	_ = c.Close()
}

func (server *server) patchTable(res http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		http.Error(res, err.Error(), http.StatusBadRequest)
		return
	}
	server.mut.Lock()
	defer server.mut.Unlock()

	var edits []edit
	for key, value := range req.Form {
		id, ok := strings.CutPrefix(key, "cell-")
		if !ok {
			continue
		}
		address, err := server.cellAddress(id)
		if err != nil {
			http.Error(res, err.Error(), http.StatusBadRequest)
			return
		}
		edits = append(edits, edit{
			address:    address,
			formula:    value[0],
			previous:   server.sheet.Formula(address),
			wasDefined: server.sheet.IsSet(address),
		})
	}
	for _, e := range edits {
		if e.formula == "" {
			server.sheet.Erase(e.address)
			continue
		}
		server.sheet.SetFormula(e.address, e.formula)
	}
	if err := server.sheet.Recalculate(); err != nil {
		log.Println(err)
		server.revert(edits)
		http.Error(res, err.Error(), http.StatusBadRequest)
		return
	}
	server.save(req.Context())
	server.render(res, req, "table", http.StatusOK, server.table())
}

type edit struct {
	address           expression.Address
	formula, previous string
	wasDefined        bool
}

func (server *server) revert(edits []edit) {
	for _, e := range edits {
		if !e.wasDefined {
			server.sheet.Erase(e.address)
			continue
		}
		server.sheet.SetFormula(e.address, e.previous)
	}
	if err := server.sheet.Recalculate(); err != nil {
		log.Println(err)
	}
}

func (server *server) save(ctx context.Context) {
	if server.store == nil {
		return
	}
	if err := server.store.Save(ctx, server.name, server.sheet); err != nil {
		log.Println(err)
	}
}

func (server *server) cellAddress(id string) (expression.Address, error) {
	address, err := expression.ParseAddress(strings.TrimPrefix(id, "cell-"))
	if err != nil {
		return expression.Address{}, err
	}
	return address, server.checkBounds(address)
}

var errOutOfBounds = errors.New("out of bounds")

func (server *server) checkBounds(address expression.Address) error {
	if address.Column < 1 || address.Column > uint(server.columns) {
		return fmt.Errorf("column index %d %w [1, %d]", address.Column, errOutOfBounds, server.columns)
	}
	if address.Row < 1 || address.Row > uint(server.rows) {
		return fmt.Errorf("row index %d %w [1, %d]", address.Row, errOutOfBounds, server.rows)
	}
	return nil
}

func (server *server) table() *Table {
	return &Table{ColumnCount: server.columns, RowCount: server.rows, sheet: server.sheet}
}
