package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"

	"github.com/roach88/sieve/internal/criteria"
)

// LoadCUE loads every entity declared in the CUE package in dir.
//
// Entities live under the top-level "entity" struct, keyed by entity name:
//
//	entity: Person: {
//		schema:      "dbo"
//		table:       "People"
//		primary_key: "Id"
//		columns: [
//			{property: "Id", type: "integer"},
//			{property: "Name", name: "full_name", type: "string"},
//		]
//	}
//
// A column's name defaults to its property; schema defaults per dialect.
func LoadCUE(dir string) (*Static, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &ResolveError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("schema directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &ResolveError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("not a directory: %s", dir)}
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil || len(files) == 0 {
		return nil, &ResolveError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &ResolveError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	if inst := instances[0]; inst.Err != nil {
		return nil, &ResolveError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := cuecontext.New().BuildInstance(instances[0])
	return compileEntities(value)
}

// CompileCUE is LoadCUE for a single in-memory source.
func CompileCUE(filename string, src []byte) (*Static, error) {
	value := cuecontext.New().CompileBytes(src, cue.Filename(filename))
	return compileEntities(value)
}

func compileEntities(value cue.Value) (*Static, error) {
	if err := value.Err(); err != nil {
		return nil, formatCUEError("", err)
	}

	entities := value.LookupPath(cue.ParsePath("entity"))
	if !entities.Exists() {
		return nil, &ResolveError{Code: ErrCodeLoadFailed, Message: "no entity declarations found"}
	}
	iter, err := entities.Fields()
	if err != nil {
		return nil, formatCUEError("", err)
	}

	static := &Static{maps: make(map[string]*EntityColumnMap)}
	for iter.Next() {
		m, err := compileEntity(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		if err := static.Register(m); err != nil {
			return nil, err
		}
	}
	return static, nil
}

func compileEntity(name string, v cue.Value) (*EntityColumnMap, error) {
	m := &EntityColumnMap{Entity: name}

	var err error
	if m.Schema, err = optionalString(name, v, "schema"); err != nil {
		return nil, err
	}
	if m.Table, err = optionalString(name, v, "table"); err != nil {
		return nil, err
	}
	if m.Table == "" {
		m.Table = name
	}
	if m.PrimaryKey, err = optionalString(name, v, "primary_key"); err != nil {
		return nil, err
	}

	cols := v.LookupPath(cue.ParsePath("columns"))
	if !cols.Exists() {
		return nil, &ResolveError{Entity: name, Code: ErrCodeInvalidMap, Message: "columns is required", Pos: v.Pos()}
	}
	list, err := cols.List()
	if err != nil {
		return nil, formatCUEError(name, err)
	}
	for list.Next() {
		col, err := compileColumn(name, list.Value())
		if err != nil {
			return nil, err
		}
		m.Columns = append(m.Columns, col)
	}

	if m.PrimaryKey == "" && len(m.Columns) > 0 {
		m.PrimaryKey = m.Columns[0].Name
	}
	return m, nil
}

func compileColumn(entity string, v cue.Value) (Column, error) {
	var col Column
	var err error
	if col.Property, err = optionalString(entity, v, "property"); err != nil {
		return col, err
	}
	if col.Property == "" {
		return col, &ResolveError{Entity: entity, Code: ErrCodeInvalidMap, Message: "column property is required", Pos: v.Pos()}
	}
	if col.Name, err = optionalString(entity, v, "name"); err != nil {
		return col, err
	}
	if col.Name == "" {
		col.Name = col.Property
	}

	typ, err := optionalString(entity, v, "type")
	if err != nil {
		return col, err
	}
	if col.Type, err = criteria.ParseValueType(typ); err != nil {
		return col, &ResolveError{Entity: entity, Code: ErrCodeInvalidMap, Message: err.Error(), Pos: v.Pos()}
	}
	return col, nil
}

func optionalString(entity string, v cue.Value, path string) (string, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(entity, err)
	}
	return s, nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(entity string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ResolveError{Entity: entity, Code: ErrCodeLoadFailed, Message: err.Error()}
	}
	first := errs[0]
	re := &ResolveError{Entity: entity, Code: ErrCodeLoadFailed, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		re.Pos = positions[0]
	}
	return re
}
