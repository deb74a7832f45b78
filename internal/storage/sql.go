package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/benbeisheim/chess-backend/internal/chess"
	"github.com/benbeisheim/chess-backend/internal/model"
)

// gameRow is the games table. Timestamps come from the game itself, so gorm
// must not overwrite them.
type gameRow struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Placement string    `gorm:"size:90;not null"`
	ToMove    string    `gorm:"size:8;not null"`
	White     string    `gorm:"size:64;index"`
	Black     string    `gorm:"size:64;index"`
	Status    string    `gorm:"size:16;index"`
	Resolve   string    `gorm:"size:32"`
	Winner    string    `gorm:"size:8"`
	LastMove  string    `gorm:"type:text"`
	MoveCount int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (gameRow) TableName() string {
	return "games"
}

// SQL stores game records through gorm in sqlite or postgres.
type SQL struct {
	db *gorm.DB
}

func OpenSQL(driver, dsn string) (*SQL, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.AutoMigrate(&gameRow{}); err != nil {
		return nil, fmt.Errorf("migrate games table: %w", err)
	}
	return &SQL{db: db}, nil
}

func (s *SQL) Save(ctx context.Context, rec model.GameRecord) error {
	row, err := toRow(rec)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

func (s *SQL) Load(ctx context.Context, id string) (model.GameRecord, error) {
	var row gameRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.GameRecord{}, ErrNotFound
	}
	if err != nil {
		return model.GameRecord{}, err
	}
	return fromRow(row)
}

func (s *SQL) List(ctx context.Context) ([]model.GameRecord, error) {
	var rows []gameRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.GameRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *SQL) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&gameRow{}).Error
}

func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRow(rec model.GameRecord) (gameRow, error) {
	row := gameRow{
		ID:        rec.ID,
		Placement: rec.Placement,
		ToMove:    string(rec.ToMove),
		White:     rec.White,
		Black:     rec.Black,
		Status:    string(rec.Status),
		Resolve:   rec.Resolve,
		Winner:    string(rec.Winner),
		MoveCount: rec.MoveCount,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if rec.LastMove != nil {
		data, err := json.Marshal(rec.LastMove)
		if err != nil {
			return gameRow{}, err
		}
		row.LastMove = string(data)
	}
	return row, nil
}

func fromRow(row gameRow) (model.GameRecord, error) {
	rec := model.GameRecord{
		ID:        row.ID,
		Placement: row.Placement,
		ToMove:    chess.Color(row.ToMove),
		White:     row.White,
		Black:     row.Black,
		Status:    model.GameStatus(row.Status),
		Resolve:   row.Resolve,
		Winner:    chess.Color(row.Winner),
		MoveCount: row.MoveCount,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.LastMove != "" {
		var ply model.Ply
		if err := json.Unmarshal([]byte(row.LastMove), &ply); err != nil {
			return model.GameRecord{}, fmt.Errorf("decode last move of %s: %w", row.ID, err)
		}
		rec.LastMove = &ply
	}
	return rec, nil
}
