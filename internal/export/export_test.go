package export

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/reviewlens/internal/table"
)

func sampleTable() *table.Table {
	return &table.Table{
		Columns: []string{"id", "reviews.text", "cleaned_text", "sentiment"},
		Rows: []table.Row{
			{table.String("1"), table.String("I love this great product"), table.String("love great product"), table.String("Positive")},
			{table.String("2"), table.String(`Say "what", now`), table.String(`say " , `), table.String("Neutral")},
			{table.Null, table.String("awful"), table.String("awful"), table.String("Negative")},
		},
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		target string
		want   Kind
	}{
		{"out.csv", KindCSV},
		{"dir/OUT.XLSX", KindXLSX},
		{"sqlite:///tmp/x.db", KindSQLite},
		{"postgres://u:p@localhost/db", KindPostgres},
		{"postgresql://localhost/db?sslmode=disable", KindPostgres},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, err := Resolve(tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Resolve("out.parquet")
	require.ErrorIs(t, err, ErrUnsupportedTarget)
	_, err = New("mysql://x", Options{})
	require.ErrorIs(t, err, ErrUnsupportedTarget)
}

func TestNew_Defaults(t *testing.T) {
	e, err := New("sqlite://data.db", Options{})
	require.NoError(t, err)
	sqlExp, ok := e.(*SQLExporter)
	require.True(t, ok)
	assert.Equal(t, "data.db", sqlExp.DSN)
	assert.Equal(t, DefaultTable, sqlExp.Table)
	assert.Equal(t, driverSQLite, sqlExp.Driver)

	e, err = New("postgres://localhost/db", Options{Table: "annotated"})
	require.NoError(t, err)
	assert.Equal(t, &SQLExporter{Driver: driverPostgres, DSN: "postgres://localhost/db", Table: "annotated"}, e)
}

func TestCSVExporter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	e, err := New(path, Options{})
	require.NoError(t, err)
	require.NoError(t, e.Export(context.Background(), sampleTable()))

	r, err := table.Open(path, table.Options{})
	require.NoError(t, err)
	defer r.Close()
	b, err := table.ReadAll(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, sampleTable().Columns, b.Columns)
	assert.Equal(t, sampleTable().Rows, b.Rows)
}

func TestXLSXExporter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	e, err := New(path, Options{Sheet: "annotated"})
	require.NoError(t, err)
	require.NoError(t, e.Export(context.Background(), sampleTable()))

	r, err := table.Open(path, table.Options{Sheet: "annotated"})
	require.NoError(t, err)
	defer r.Close()
	b, err := table.ReadAll(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, sampleTable().Columns, b.Columns)
	assert.Equal(t, sampleTable().Rows, b.Rows)
}

func TestSQLExporter_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reviews.db")
	e, err := New("sqlite://"+dbPath, Options{Table: "annotated"})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, e.Export(ctx, sampleTable()))
	// A second export appends to the existing table.
	require.NoError(t, e.Export(ctx, sampleTable()))

	db, err := sql.Open(driverSQLite, dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "annotated"`).Scan(&count))
	assert.Equal(t, 6, count)

	var positives int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM "annotated" WHERE "sentiment" = 'Positive' AND "reviews.text" IS NOT NULL`).Scan(&positives))
	assert.Equal(t, 2, positives)

	var nullIDs int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "annotated" WHERE "id" IS NULL`).Scan(&nullIDs))
	assert.Equal(t, 2, nullIDs)
}

func TestSQLExporter_EmptyTable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	e, err := New("sqlite://"+dbPath, Options{})
	require.NoError(t, err)
	require.NoError(t, e.Export(context.Background(), &table.Table{Columns: []string{"a"}}))

	_, err = os.Stat(dbPath)
	require.NoError(t, err)
}

func TestQuoteIdentAndDDL(t *testing.T) {
	assert.Equal(t, `"reviews.text"`, quoteIdent("reviews.text"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "t" ("a" TEXT, "b.c" TEXT)`, createTableSQL("t", []string{"a", "b.c"}))
}
