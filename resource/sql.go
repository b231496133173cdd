package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbukum/filmotheque/database"
)

// documentRecord is the table row behind SQLStore: one JSON blob per
// document, indexed by collection.
type documentRecord struct {
	database.BaseModel
	Collection string `gorm:"type:varchar(64);index;not null"`
	Data       string `gorm:"type:text;not null"`
}

func (documentRecord) TableName() string { return "documents" }

// Models returns the gorm models SQLStore needs migrated.
func Models() []interface{} { return []interface{}{&documentRecord{}} }

// DBProvider yields the connected database. database.Component satisfies it,
// which lets the store be built before the component starts.
type DBProvider interface {
	DB() *database.DB
}

// SQLStore stores documents in a single gorm table and pushes filters,
// ordering and limits down to the JSON functions of sqlite or postgres.
type SQLStore struct {
	db DBProvider
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a store over db.
func NewSQLStore(db DBProvider) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) conn(ctx context.Context) (*gorm.DB, error) {
	db := s.db.DB()
	if db == nil {
		return nil, errors.New("resource: database not started")
	}
	return db.WithContext(ctx), nil
}

func (s *SQLStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	tx, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	dialect := dialectFor(tx)
	tx = tx.Model(&documentRecord{}).Where("collection = ?", collection)
	for _, f := range q.Filters {
		v, err := normalizeValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("resource: filter %s: %w", f.Field, err)
		}
		tx = dialect.filter(tx, f.Field, v)
	}
	if q.OrderBy != "" {
		tx = dialect.hasField(tx, q.OrderBy)
		tx = tx.Order(clause.OrderBy{Expression: dialect.orderBy(q.OrderBy, q.Direction)})
	} else {
		tx = tx.Order("id")
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []documentRecord
	if err := tx.Find(&rows).Error; err != nil {
		return nil, database.FromDatabase(err, collection)
	}
	docs := make([]Document, 0, len(rows))
	for _, r := range rows {
		d, err := r.document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func (s *SQLStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	tx, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := s.find(tx, collection, id)
	if err != nil {
		return nil, err
	}
	d, err := rec.document()
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *SQLStore) find(tx *gorm.DB, collection, id string) (*documentRecord, error) {
	var rec documentRecord
	err := tx.Where("collection = ? AND id = ?", collection, id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, database.FromDatabase(err, collection)
	}
	return &rec, nil
}

func (s *SQLStore) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	f, err := normalize(fields)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	tx, err := s.conn(ctx)
	if err != nil {
		return "", err
	}
	rec := documentRecord{Collection: collection, Data: string(data)}
	if err := tx.Create(&rec).Error; err != nil {
		return "", database.FromDatabase(err, collection)
	}
	return rec.ID, nil
}

func (s *SQLStore) Update(ctx context.Context, collection, id string, patch Fields) error {
	p, err := normalize(patch)
	if err != nil {
		return err
	}
	db := s.db.DB()
	if db == nil {
		return errors.New("resource: database not started")
	}
	return db.WithTransaction(ctx, func(tx *gorm.DB) error {
		rec, err := s.find(tx, collection, id)
		if err != nil {
			return err
		}
		d, err := rec.document()
		if err != nil {
			return err
		}
		maps.Copy(d.Fields, p)
		data, err := json.Marshal(d.Fields)
		if err != nil {
			return err
		}
		if err := tx.Model(rec).Update("data", string(data)).Error; err != nil {
			return database.FromDatabase(err, collection)
		}
		return nil
	})
}

func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	tx, err := s.conn(ctx)
	if err != nil {
		return err
	}
	res := tx.Where("collection = ? AND id = ?", collection, id).Delete(&documentRecord{})
	if res.Error != nil {
		return database.FromDatabase(res.Error, collection)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r documentRecord) document() (Document, error) {
	var f Fields
	if err := json.Unmarshal([]byte(r.Data), &f); err != nil {
		return Document{}, fmt.Errorf("resource: decode document %s: %w", r.ID, err)
	}
	if f == nil {
		f = Fields{}
	}
	return Document{ID: r.ID, Fields: f}, nil
}
