package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/kbukum/filmotheque/component"
	apperrors "github.com/kbukum/filmotheque/errors"
	"github.com/kbukum/filmotheque/logger"
)

type widget struct {
	BaseModel
	Label string
}

func memoryConfig(t *testing.T) Config {
	return Config{DSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()), LogLevel: "silent"}
}

func TestComponent_Lifecycle(t *testing.T) {
	ctx := context.Background()
	c := NewComponent(memoryConfig(t), logger.Nop()).WithAutoMigrate(&widget{})

	if c.Name() != "database" {
		t.Errorf("expected name database, got %q", c.Name())
	}
	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if c.DB() != nil {
		t.Error("expected nil DB before start")
	}

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy after start, got %s (%s)", h.Status, h.Message)
	}

	w := widget{Label: "a"}
	if err := c.DB().WithContext(ctx).Create(&w).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if w.ID == "" {
		t.Error("expected BeforeCreate to assign an id")
	}

	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := c.DB().Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestComponent_StopBeforeStart(t *testing.T) {
	if err := NewComponent(memoryConfig(t), logger.Nop()).Stop(context.Background()); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestComponent_Describe(t *testing.T) {
	d := NewComponent(Config{DSN: "file:films.db"}, logger.Nop()).Describe()
	if d.Name != "SQLite" || d.Type != "database" || d.Details == "" {
		t.Errorf("unexpected description %+v", d)
	}
	d = NewComponent(Config{Dialect: DialectPostgres, DSN: "postgres://u:secret@db/films"}, logger.Nop()).Describe()
	if d.Name != "PostgreSQL" || strings.Contains(d.Details, "secret") {
		t.Errorf("unexpected description %+v", d)
	}
}

func TestNew_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(ctx, memoryConfig(t), nil, logger.Nop()); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestWithTransaction_Rollback(t *testing.T) {
	ctx := context.Background()
	db, err := New(ctx, memoryConfig(t), SQLite, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()
	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	boom := errors.New("boom")
	err = db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&widget{Label: "rolled back"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int64
	db.WithContext(ctx).Model(&widget{}).Count(&count)
	if count != 0 {
		t.Errorf("expected rollback, found %d rows", count)
	}
}

func TestFromDatabase(t *testing.T) {
	tests := []struct {
		err  error
		code apperrors.ErrorCode
	}{
		{gorm.ErrRecordNotFound, apperrors.ErrCodeNotFound},
		{gorm.ErrDuplicatedKey, apperrors.ErrCodeAlreadyExists},
		{errors.New("dial tcp: connection refused"), apperrors.ErrCodeServiceUnavailable},
		{errors.New("syntax error"), apperrors.ErrCodeDatabaseError},
		{&pgconn.PgError{Code: "23505"}, apperrors.ErrCodeAlreadyExists},
		{fmt.Errorf("insert: %w", &pgconn.PgError{Code: "08006"}), apperrors.ErrCodeServiceUnavailable},
		{&pgconn.PgError{Code: "42P01"}, apperrors.ErrCodeDatabaseError},
	}
	for _, tc := range tests {
		if got := FromDatabase(tc.err, "film"); got.Code != tc.code {
			t.Errorf("FromDatabase(%v) = %s, want %s", tc.err, got.Code, tc.code)
		}
	}
	if FromDatabase(nil, "film") != nil {
		t.Error("expected nil for nil error")
	}
	if !IsRetryableError(errors.New("database is locked")) {
		t.Error("expected locked database to be retryable")
	}
	if !IsRetryableError(&pgconn.PgError{Code: "40001"}) {
		t.Error("expected serialization failures to be retryable")
	}
	if IsRetryableError(&pgconn.PgError{Code: "23505"}) {
		t.Error("unique violations are not retryable")
	}
}

func TestDriverFor(t *testing.T) {
	if got := DriverFor(DialectPostgres)("postgres://u:p@localhost:5432/films").Name(); got != "postgres" {
		t.Errorf("expected postgres dialector, got %s", got)
	}
	if got := DriverFor(DialectSQLite)("file::memory:").Name(); got != "sqlite" {
		t.Errorf("expected sqlite dialector, got %s", got)
	}
}
