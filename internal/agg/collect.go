package agg

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ohler55/ojg/oj"

	"github.com/agentic-research/nestly/internal/manifest"
)

// Row is one combination's column values.
type Row struct {
	Dir    string
	Values []any
}

// Collect walks root on fsys, decodes every file named controlName and
// evaluates cols against it. Rows are sorted by directory.
func Collect(fsys billy.Filesystem, root, controlName string, cols []Column) ([]Row, error) {
	var rows []Row
	err := util.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || info.Name() != controlName {
			return nil
		}
		data, err := util.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		record, err := oj.Parse(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		rows = append(rows, newRow(filepath.ToSlash(filepath.Dir(p)), record, cols))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Dir < rows[j].Dir })
	return rows, nil
}

// FromManifest evaluates cols against every record of a manifest, in
// build order.
func FromManifest(dbPath string, cols []Column) ([]Row, error) {
	var rows []Row
	err := manifest.Stream(dbPath, func(_ int, path string, control any) error {
		rows = append(rows, newRow(path, control, cols))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func newRow(dir string, record any, cols []Column) Row {
	values := make([]any, len(cols))
	for i, c := range cols {
		values[i] = c.Eval(record)
	}
	return Row{Dir: dir, Values: values}
}

// WriteTable writes a header line ("dir" plus column names) and one line
// per row. Strings are written as-is, other values as JSON, missing
// values as empty fields.
func WriteTable(w io.Writer, cols []Column, rows []Row, delim rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim

	header := make([]string, 0, len(cols)+1)
	header = append(header, "dir")
	for _, c := range cols {
		header = append(header, c.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		record := make([]string, 0, len(r.Values)+1)
		record = append(record, r.Dir)
		for _, v := range r.Values {
			record = append(record, format(v))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func format(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return oj.JSON(s)
	}
}
