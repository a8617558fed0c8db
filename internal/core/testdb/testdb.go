// Package testdb opens throwaway in-memory stores for repository and service tests.
package testdb

import (
	"time"

	attendanceDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/attendance"
	breakDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/breaksession"
	companyDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/company"
	employeeDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/employee"
	processDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/process"
	qrDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/qrcode"
	userDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/user"
	sessionDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/worksession"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every row type the service persists, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&companyDatamodel.Company{},
		&employeeDatamodel.Employee{},
		&qrDatamodel.QRCode{},
		&attendanceDatamodel.AttendanceLog{},
		&sessionDatamodel.WorkSession{},
		&breakDatamodel.BreakSession{},
		&processDatamodel.Process{},
		&userDatamodel.User{},
	}
}

// Open returns a migrated SQLite in-memory database. The pool is pinned to one
// connection so every query sees the same in-memory store.
func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, err
	}
	return db, nil
}

// SQLX wraps the same connection for the raw-SQL read paths.
func SQLX(db *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(sqlDB, "sqlite3"), nil
}
