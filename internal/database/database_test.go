package database

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/devboard-api/internal/config"
	"github.com/yukikurage/devboard-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Connect(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, Migrate(db, zerolog.Nop()))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: "mysql", Host: "db", Port: "3306", User: "u", Password: "p", Name: "devboard"}
	assert.Equal(t, "u:p@tcp(db:3306)/devboard?charset=utf8mb4&parseTime=True&loc=UTC", DSN(cfg))

	cfg.Driver = "postgres"
	cfg.Port = "5432"
	assert.Contains(t, DSN(cfg), "host=db port=5432 user=u")

	cfg.DSN = "custom"
	assert.Equal(t, "custom", DSN(cfg))
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "oracle"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestMigrate_CreatesIndexesOnce(t *testing.T) {
	db := setupTestDB(t)

	for _, idx := range lookupIndexes {
		assert.True(t, db.Migrator().HasIndex(idx.model, idx.name), idx.name)
	}

	// second run must skip existing indexes
	require.NoError(t, Migrate(db, zerolog.Nop()))
	assert.NoError(t, Ping(db))
}

func TestSeedSampleData(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, SeedSampleData(db, zerolog.Nop()))

	var admin models.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin123")))

	var tasks, comments int64
	db.Model(&models.Task{}).Count(&tasks)
	db.Model(&models.Comment{}).Count(&comments)
	assert.EqualValues(t, len(seedTasks), tasks)
	assert.EqualValues(t, len(seedComments), comments)

	// idempotent
	require.NoError(t, SeedSampleData(db, zerolog.Nop()))
	db.Model(&models.Task{}).Count(&tasks)
	assert.EqualValues(t, len(seedTasks), tasks)
}
