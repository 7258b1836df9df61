package db

import (
	"log"

	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/config"
	"github.com/CheravGoyalShorthillsAI/Software-Architecture-Generator/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect initializes the canonical database connection
func Connect(cfg *config.Config) {
	var err error
	DB, err = Open(cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	log.Println("Database connected successfully")
}

// Open opens a gorm session against the given DSN. Used for both the
// canonical database and fork databases.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
}

// AutoMigrate runs database migrations on the canonical database
func AutoMigrate() {
	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Println("Database migrated successfully")
}

// Migrate creates the schema on the given session. Fork sessions run the
// same migration so a fresh fork can accept writes immediately.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.Project{},
		&models.Blueprint{},
		&models.Analysis{},
	); err != nil {
		return err
	}

	// Text index backing the lexical half of hybrid search.
	return conn.Exec(
		`CREATE INDEX IF NOT EXISTS idx_analyses_finding_tsv
		 ON analyses USING gin (to_tsvector('english', category || ' ' || finding))`,
	).Error
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
