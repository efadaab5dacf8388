package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
)

type draftRow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code        string    `gorm:"index;not null"`
	Map         string    `gorm:"not null"`
	Mode        string
	FirstTeam   string `gorm:"not null"`
	SecondTeam  string `gorm:"not null"`
	Seed        uint64
	Status      string `gorm:"type:varchar(16);not null;default:'running'"`
	Error       string
	CreatedAt   time.Time
	CompletedAt *time.Time
	Records     []recordRow `gorm:"foreignKey:DraftID;constraint:OnDelete:CASCADE"`
}

func (draftRow) TableName() string { return "drafts" }

type recordRow struct {
	ID      uint      `gorm:"primaryKey"`
	DraftID uuid.UUID `gorm:"type:uuid;index;not null"`
	Seq     int       `gorm:"not null"`
	Slot    int       `gorm:"not null"`
	Kind    string    `gorm:"type:varchar(8);not null"`
	Team    string    `gorm:"not null"`
	Player  string    `gorm:"not null"`
	Hero    string    `gorm:"not null"`
	Score   float64
	Reason  string
}

func (recordRow) TableName() string { return "draft_records" }

// GormStore archives drafts in Postgres.
type GormStore struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewGormStore(db)
}

// NewGormStore migrates the schema on db and wraps it.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&draftRow{}, &recordRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Save(ctx context.Context, d *Draft) error {
	row := toRow(d)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Omit("Records").Create(&row).Error; err != nil {
			return err
		}
		if err := tx.Where("draft_id = ?", row.ID).Delete(&recordRow{}).Error; err != nil {
			return err
		}
		if len(row.Records) == 0 {
			return nil
		}
		return tx.Create(&row.Records).Error
	})
}

func (s *GormStore) Get(ctx context.Context, id uuid.UUID) (*Draft, error) {
	var row draftRow
	err := s.db.WithContext(ctx).Preload("Records", orderBySeq).First(&row, "id = ?", id).Error
	return fromResult(row, err)
}

func (s *GormStore) GetByCode(ctx context.Context, code string) (*Draft, error) {
	var row draftRow
	err := s.db.WithContext(ctx).Preload("Records", orderBySeq).
		Where("code = ?", code).Order("created_at DESC").First(&row).Error
	return fromResult(row, err)
}

func (s *GormStore) List(ctx context.Context, limit int) ([]Draft, error) {
	var rows []draftRow
	q := s.db.WithContext(ctx).Preload("Records", orderBySeq).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Draft, 0, len(rows))
	for _, r := range rows {
		out = append(out, *fromRow(r))
	}
	return out, nil
}

func orderBySeq(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }

func fromResult(row draftRow, err error) (*Draft, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromRow(row), nil
}

func toRow(d *Draft) draftRow {
	row := draftRow{
		ID:          d.ID,
		Code:        d.Code,
		Map:         d.Map,
		Mode:        d.Mode,
		FirstTeam:   d.FirstTeam,
		SecondTeam:  d.SecondTeam,
		Seed:        d.Seed,
		Status:      string(d.Status),
		Error:       d.Error,
		CreatedAt:   d.CreatedAt,
		CompletedAt: d.CompletedAt,
	}
	for i, r := range d.Records {
		row.Records = append(row.Records, recordRow{
			DraftID: d.ID,
			Seq:     i,
			Slot:    r.Slot,
			Kind:    string(r.Kind),
			Team:    r.Team,
			Player:  r.Player,
			Hero:    r.Hero,
			Score:   r.Score,
			Reason:  r.Reason,
		})
	}
	return row
}

func fromRow(row draftRow) *Draft {
	d := &Draft{
		ID:          row.ID,
		Code:        row.Code,
		Map:         row.Map,
		Mode:        row.Mode,
		FirstTeam:   row.FirstTeam,
		SecondTeam:  row.SecondTeam,
		Seed:        row.Seed,
		Status:      Status(row.Status),
		Error:       row.Error,
		CreatedAt:   row.CreatedAt,
		CompletedAt: row.CompletedAt,
	}
	for _, r := range row.Records {
		d.Records = append(d.Records, engine.DecisionRecord{
			Slot:   r.Slot,
			Kind:   engine.Kind(r.Kind),
			Team:   r.Team,
			Player: r.Player,
			Hero:   r.Hero,
			Score:  r.Score,
			Reason: r.Reason,
		})
	}
	return d
}
