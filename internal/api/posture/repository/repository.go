package postureRepository

import (
	"PostureIQ/internal/entity"
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var db sqlx.ExtContext
	var commitFunc, rollbackFunc func() error

	db = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		db = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Records:  &recordRepository{q: db, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

// RecordStats summarises every record a user owns.
type RecordStats struct {
	Total      int     `db:"total"`
	AvgScore   float64 `db:"avg_score"`
	FirstScore int     `db:"first_score"`
}

type RecordStore interface {
	CreateRecord(ctx context.Context, record entity.PostureRecord) error
	GetByIDForUser(ctx context.Context, id string, userID string) (entity.PostureRecord, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]entity.PostureRecord, error)
	StatsByUser(ctx context.Context, userID string) (RecordStats, error)
	SetSnapshotKey(ctx context.Context, id string, userID string, key string) error
}

type Client struct {
	Records RecordStore

	Commit   func() error
	Rollback func() error
}

type recordRepository struct {
	q   sqlx.ExtContext
	log *logrus.Logger
}
