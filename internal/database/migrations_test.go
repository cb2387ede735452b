package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sam-D-04/access-control-building/internal/models"
)

func TestAutoMigrateCreatesAccessTables(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrate(db))

	migrator := db.Migrator()
	tables := []interface{}{
		&models.Department{},
		&models.User{},
		&models.Card{},
		&models.Door{},
		&models.Permission{},
		&models.CardPermission{},
		&models.AccessLog{},
	}

	for _, table := range tables {
		require.True(t, migrator.HasTable(table), "expected table for %T to exist", table)
	}
}

func TestSeedDataIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrateAndSeed(db))
	require.NoError(t, SeedData(db))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "admin").Count(&count).Error)
	require.Equal(t, int64(1), count)
}
