package database

import (
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TripRecord represents the trips table
type TripRecord struct {
	ID                string    `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"not null" json:"name"`
	LeadName          string    `json:"lead_name"`
	StartDate         string    `json:"start_date"`
	EndDate           string    `json:"end_date"`
	Status            string    `json:"status"`
	Capacity          int       `gorm:"default:0" json:"capacity"`
	DriverSeats       int       `gorm:"default:0" json:"driver_seats"`
	NonDriverCapacity int       `gorm:"default:0" json:"non_driver_capacity"`
	Cost              []float64 `gorm:"serializer:json" json:"cost"`
	TripTypes         []string  `gorm:"serializer:json" json:"trip_types"`
	Full              string    `json:"full"`
}

func (TripRecord) TableName() string { return "trips" }

// SignupRecord represents the signups table. Seq keeps insertion order,
// which is the order signups are returned in.
type SignupRecord struct {
	Seq       uint      `gorm:"primaryKey;autoIncrement" json:"seq"`
	SignupID  string    `gorm:"uniqueIndex;not null" json:"signup_id"`
	Name      string    `json:"name"`
	TripIDs   []string  `gorm:"column:trip_ids;serializer:json" json:"trip_ids"`
	IsDriver  bool      `gorm:"default:false" json:"is_driver"`
	Status    string    `json:"status"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SignupRecord) TableName() string { return "signups" }

// RosterEventRecord represents the roster_events table
type RosterEventRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TripID    string    `gorm:"index;not null" json:"trip_id"`
	SignupID  string    `gorm:"not null" json:"signup_id"`
	Status    string    `json:"status"`
	Action    string    `json:"action"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (RosterEventRecord) TableName() string { return "roster_events" }

// InitDB opens postgres when dsn is set, otherwise the sqlite file at
// dataPath, and migrates the schema
func InitDB(dsn, dataPath string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		if dataPath == "" {
			dataPath = "roster.db"
		}
		db, err = gorm.Open(sqlite.Open(dataPath), &gorm.Config{})
		if err == nil {
			// sqlite allows one writer; concurrent status writes queue on the pool
			var sqlDB *sql.DB
			if sqlDB, err = db.DB(); err == nil {
				sqlDB.SetMaxOpenConns(1)
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&TripRecord{}, &SignupRecord{}, &RosterEventRecord{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}
