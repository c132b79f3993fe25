// Package recording provides a SQLite-backed recorder for simulation data.
// Entries are buffered in memory and flushed in batches; a flush is also
// registered on process exit.
package recording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	// SQLite driver used through database/sql.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder is a backend that can record and store data.
type DataRecorder interface {
	// CreateTable creates a new table that stores entries shaped like the
	// sample entry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers one entry for a table that already exists.
	InsertData(tableName string, entry any)

	// Flush writes all the buffered entries into the database.
	Flush()

	// Close flushes and closes the database.
	Close()
}

// NewDataRecorder creates a DataRecorder backed by a SQLite database at the
// given path. An empty path picks a unique name in the working directory.
func NewDataRecorder(path string) DataRecorder {
	if path == "" {
		path = "sramsim_" + xid.New().String()
	}

	filename := path
	if !strings.HasSuffix(filename, ".sqlite3") {
		filename += ".sqlite3"
	}

	if _, err := os.Stat(filename); err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	w := newSQLiteWriter(db)
	atexit.Register(func() { w.Flush() })

	return w
}

// NewDataRecorderWithDB creates a DataRecorder on an already opened
// database.
func NewDataRecorderWithDB(db *sql.DB) DataRecorder {
	return newSQLiteWriter(db)
}

type table struct {
	fields  []string
	entries []any
}

type sqliteWriter struct {
	db         *sql.DB
	tables     map[string]*table
	batchSize  int
	entryCount int
}

func newSQLiteWriter(db *sql.DB) *sqliteWriter {
	return &sqliteWriter{
		db:        db,
		tables:    make(map[string]*table),
		batchSize: 100000,
	}
}

func (w *sqliteWriter) CreateTable(tableName string, sampleEntry any) {
	fields := entryFields(sampleEntry)

	createTableSQL := "CREATE TABLE " + tableName +
		" (\n\t" + strings.Join(fields, ",\n\t") + "\n);"
	w.mustExecute(createTableSQL)

	w.tables[tableName] = &table{fields: fields}
}

func (w *sqliteWriter) InsertData(tableName string, entry any) {
	t, exists := w.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	t.entries = append(t.entries, entry)

	w.entryCount++
	if w.entryCount >= w.batchSize {
		w.Flush()
	}
}

func (w *sqliteWriter) Flush() {
	if w.entryCount == 0 {
		return
	}

	w.mustExecute("BEGIN TRANSACTION")
	defer w.mustExecute("COMMIT TRANSACTION")

	for tableName, t := range w.tables {
		if len(t.entries) == 0 {
			continue
		}

		w.flushTable(tableName, t)
		t.entries = t.entries[:0]
	}

	w.entryCount = 0
}

func (w *sqliteWriter) Close() {
	w.Flush()

	if err := w.db.Close(); err != nil {
		panic(err)
	}
}

func (w *sqliteWriter) flushTable(tableName string, t *table) {
	placeholders := strings.TrimSuffix(
		strings.Repeat("?, ", len(t.fields)), ", ")
	insertSQL := "INSERT INTO " + tableName +
		" VALUES (" + placeholders + ")"

	stmt, err := w.db.Prepare(insertSQL)
	if err != nil {
		panic(err)
	}
	defer stmt.Close()

	for _, entry := range t.entries {
		if _, err := stmt.Exec(entryValues(entry)...); err != nil {
			panic(err)
		}
	}
}

func (w *sqliteWriter) mustExecute(query string) {
	if _, err := w.db.Exec(query); err != nil {
		panic(fmt.Errorf("%w: %s", err, query))
	}
}

func entryFields(entry any) []string {
	t := reflect.TypeOf(entry)
	fields := make([]string, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !isAllowedKind(field.Type.Kind()) {
			panic(fmt.Sprintf(
				"field %s of %s cannot be recorded", field.Name, t.Name()))
		}

		fields = append(fields, field.Name)
	}

	return fields
}

func entryValues(entry any) []any {
	v := reflect.ValueOf(entry)
	values := make([]any, 0, v.NumField())

	for i := 0; i < v.NumField(); i++ {
		values = append(values, normalize(v.Field(i).Interface()))
	}

	return values
}

// normalize converts values that database/sql cannot bind directly.
func normalize(v any) any {
	switch value := v.(type) {
	case uint64:
		return int64(value)
	case uint32:
		return int64(value)
	case uint:
		return int64(value)
	default:
		return v
	}
}

func isAllowedKind(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16,
		reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}
