package resource

import (
	"encoding/json"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// jsonDialect renders predicates over the JSON data column. Filters match
// by type and value so "1" never equals 1.
type jsonDialect interface {
	// hasField keeps documents where field is present.
	hasField(tx *gorm.DB, field string) *gorm.DB
	// orderBy sorts by field then id.
	orderBy(field string, dir Direction) clause.Expression
	filter(tx *gorm.DB, field string, v any) *gorm.DB
}

func dialectFor(tx *gorm.DB) jsonDialect {
	if tx.Dialector.Name() == "postgres" {
		return postgresJSON{}
	}
	return sqliteJSON{}
}

func sqlDirection(d Direction) string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

type sqliteJSON struct{}

func sqlitePath(field string) string { return "$." + field }

func (sqliteJSON) hasField(tx *gorm.DB, field string) *gorm.DB {
	return tx.Where("json_type(data, ?) IS NOT NULL", sqlitePath(field))
}

func (sqliteJSON) orderBy(field string, dir Direction) clause.Expression {
	return clause.Expr{
		SQL:  "json_extract(data, ?) " + sqlDirection(dir) + ", id",
		Vars: []interface{}{sqlitePath(field)},
	}
}

func (sqliteJSON) filter(tx *gorm.DB, field string, v any) *gorm.DB {
	path := sqlitePath(field)
	switch val := v.(type) {
	case nil:
		return tx.Where("json_type(data, ?) = 'null'", path)
	case bool:
		return tx.Where("json_type(data, ?) = ?", path, map[bool]string{true: "true", false: "false"}[val])
	case float64:
		return tx.Where("json_type(data, ?) IN ('integer', 'real') AND json_extract(data, ?) = ?", path, path, val)
	case string:
		return tx.Where("json_type(data, ?) = 'text' AND json_extract(data, ?) = ?", path, path, val)
	default:
		raw, _ := json.Marshal(val)
		return tx.Where("json(json_extract(data, ?)) = json(?)", path, string(raw))
	}
}

// postgresJSON casts the text column to jsonb. Across types jsonb sorts
// strings before numbers, the reverse of sqlite.
type postgresJSON struct{}

func (postgresJSON) hasField(tx *gorm.DB, field string) *gorm.DB {
	return tx.Where("(data::jsonb -> ?) IS NOT NULL", field)
}

func (postgresJSON) orderBy(field string, dir Direction) clause.Expression {
	return clause.Expr{
		SQL:  "(data::jsonb -> ?) " + sqlDirection(dir) + ", id",
		Vars: []interface{}{field},
	}
}

func (postgresJSON) filter(tx *gorm.DB, field string, v any) *gorm.DB {
	switch val := v.(type) {
	case string:
		return tx.Where("jsonb_typeof(data::jsonb -> ?) = 'string' AND data::jsonb ->> ? = ?", field, field, val)
	default:
		raw, _ := json.Marshal(val)
		return tx.Where("(data::jsonb -> ?) = ?::jsonb", field, string(raw))
	}
}
