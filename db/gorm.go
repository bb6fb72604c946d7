package db

import (
	"fmt"

	"sonique/config"
	"sonique/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormDB exists alongside DB (*sql.DB) and is used only for schema
// migration; the repositories run plain SQL against DB.
var GormDB *gorm.DB

// ConnectGorm establishes the GORM connection used for migrations.
func ConnectGorm(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	GormDB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Referential fields are application-managed, not enforced FKs.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect database with GORM: %w", err)
	}
	return nil
}

// CloseGorm closes the migration connection.
func CloseGorm() error {
	if GormDB == nil {
		return nil
	}
	sqlDB, err := GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates or updates every table the application uses.
func Migrate() error {
	if GormDB == nil {
		return fmt.Errorf("GORM database not initialized")
	}

	err := GormDB.AutoMigrate(
		&model.User{},
		&model.Artist{},
		&model.Album{},
		&model.Song{},
		&model.Stream{},
		&model.Playlist{},
		&model.PlaylistSong{},
		&model.SongLike{},
		&model.AlbumLike{},
		&model.ArtistFollow{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	return nil
}
