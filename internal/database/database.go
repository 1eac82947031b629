package database

import (
	"database/sql"
	"log"
	"net/url"
	"strings"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/naturalpower/internal/models"
)

var db *gorm.DB

// Connect initializes the database connection, runs migrations and seeds
// the catalog when empty.
func Connect(dsn string) *gorm.DB {
	if db != nil {
		return db
	}

	if err := ensureDatabase(dsn); err != nil {
		log.Fatalf("failed to ensure database: %v", err)
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	if err := Seed(conn); err != nil {
		log.Fatalf("database seeding failed: %v", err)
	}

	db = conn
	return db
}

// DB exposes the initialized gorm.DB instance.
func DB() *gorm.DB {
	return db
}

// Migrate creates or updates the schema for all persisted entities.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.UserSession{},
		&models.UserActivity{},
		&models.PasswordResetToken{},
	)
}

// Seed inserts the starter catalog when the products table is empty.
func Seed(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	sample := []models.Product{
		{Name: "Verde Detox", Description: "Mezcla purificante", Price: 3990, Image: "/static/imagenes/jugo_verde.png", Stock: 10, Category: "detox"},
		{Name: "Naranja Boost", Description: "Energía y vitamina C", Price: 3990, Image: "/static/imagenes/jugo_naranja.png", Stock: 5, Category: "energia"},
		{Name: "Rojo Pasión", Description: "Antioxidante", Price: 4290, Image: "/static/imagenes/jugo_rojo.png", Stock: 0, Category: "antioxidante"},
		{Name: "Amanecer Tropical", Description: "Dulzura natural", Price: 4500, Image: "/static/imagenes/jugo_tropical.png", Stock: 15, Category: "energia"},
	}

	return conn.Create(&sample).Error
}

func ensureDatabase(dsn string) error {
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return err
	}

	dbName := strings.TrimPrefix(parsed.Path, "/")
	if dbName == "" {
		return nil
	}

	parsed.Path = "/postgres"
	masterDSN := parsed.String()

	sqlDB, err := sql.Open("postgres", masterDSN)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return err
	}

	var exists bool
	if err := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists); err != nil {
		return err
	}

	if exists {
		return nil
	}

	_, err = sqlDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName))
	return err
}
