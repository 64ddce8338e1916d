package postureRepository

import (
	"PostureIQ/internal/api/posture"
	"PostureIQ/internal/entity"
	contextPkg "PostureIQ/pkg/context"
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type RecordDB struct {
	ID            sql.NullString  `db:"id"`
	UserID        sql.NullString  `db:"user_id"`
	Source        sql.NullString  `db:"source"`
	ShoulderAngle sql.NullFloat64 `db:"shoulder_angle"`
	NeckAngle     sql.NullFloat64 `db:"neck_angle"`
	HeadTilt      sql.NullFloat64 `db:"head_tilt"`
	SpineAngle    sql.NullFloat64 `db:"spine_angle"`
	PostureScore  sql.NullInt64   `db:"posture_score"`
	PostureStatus sql.NullString  `db:"posture_status"`
	Feedback      pq.StringArray  `db:"feedback"`
	Confidence    sql.NullFloat64 `db:"confidence"`
	SnapshotKey   sql.NullString  `db:"snapshot_key"`
	CreatedAt     sql.NullTime    `db:"created_at"`
}

func (r *recordRepository) CreateRecord(c context.Context, record entity.PostureRecord) error {
	requestID := contextPkg.GetRequestID(c)

	feedback := record.Feedback
	if feedback == nil {
		feedback = []string{}
	}

	argsKV := map[string]interface{}{
		"id":             record.ID,
		"user_id":        record.UserID,
		"source":         string(record.Source),
		"shoulder_angle": nullFloat(record.ShoulderAngle),
		"neck_angle":     nullFloat(record.NeckAngle),
		"head_tilt":      nullFloat(record.HeadTilt),
		"spine_angle":    nullFloat(record.SpineAngle),
		"posture_score":  record.PostureScore,
		"posture_status": record.PostureStatus,
		"feedback":       pq.Array(feedback),
		"confidence":     record.Confidence,
		"snapshot_key":   sql.NullString{String: record.SnapshotKey, Valid: record.SnapshotKey != ""},
		"created_at":     record.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateRecord, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateRecord")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating posture record")
		return err
	}

	return nil
}

func (r *recordRepository) GetByIDForUser(c context.Context, id string, userID string) (entity.PostureRecord, error) {
	requestID := contextPkg.GetRequestID(c)
	var record RecordDB

	query, args, err := sqlx.Named(queryGetRecordForUser, map[string]interface{}{
		"id":      id,
		"user_id": userID,
	})
	if err != nil {
		return entity.PostureRecord{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"record_id":  id,
			}).Debug("GetByIDForUser no rows found")
			return entity.PostureRecord{}, posture.ErrRecordNotFound
		}

		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByIDForUser query err")
		return entity.PostureRecord{}, err
	}

	return r.makeRecord(record), nil
}

func (r *recordRepository) ListByUser(c context.Context, userID string, limit int) ([]entity.PostureRecord, error) {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(queryListRecordsByUser, map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
	})
	if err != nil {
		return nil, err
	}
	query = r.q.Rebind(query)

	var rows []RecordDB
	if err := sqlx.SelectContext(c, r.q, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListByUser query err")
		return nil, err
	}

	records := make([]entity.PostureRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, r.makeRecord(row))
	}

	return records, nil
}

func (r *recordRepository) StatsByUser(c context.Context, userID string) (RecordStats, error) {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(queryUserStats, map[string]interface{}{"user_id": userID})
	if err != nil {
		return RecordStats{}, err
	}
	query = r.q.Rebind(query)

	var stats RecordStats
	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&stats); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("StatsByUser query err")
		return RecordStats{}, err
	}

	return stats, nil
}

func (r *recordRepository) SetSnapshotKey(c context.Context, id string, userID string, key string) error {
	query, args, err := sqlx.Named(querySetSnapshotKey, map[string]interface{}{
		"id":           id,
		"user_id":      userID,
		"snapshot_key": key,
	})
	if err != nil {
		return err
	}
	query = r.q.Rebind(query)

	res, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(c),
			"error":      err.Error(),
		}).Error("SetSnapshotKey exec err")
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return posture.ErrRecordNotFound
	}

	return nil
}

func (r *recordRepository) makeRecord(rec RecordDB) entity.PostureRecord {
	return entity.PostureRecord{
		ID:            rec.ID.String,
		UserID:        rec.UserID.String,
		Source:        entity.RecordSource(rec.Source.String),
		ShoulderAngle: floatPtr(rec.ShoulderAngle),
		NeckAngle:     floatPtr(rec.NeckAngle),
		HeadTilt:      floatPtr(rec.HeadTilt),
		SpineAngle:    floatPtr(rec.SpineAngle),
		PostureScore:  int(rec.PostureScore.Int64),
		PostureStatus: rec.PostureStatus.String,
		Feedback:      []string(rec.Feedback),
		Confidence:    rec.Confidence.Float64,
		SnapshotKey:   rec.SnapshotKey.String,
		CreatedAt:     rec.CreatedAt.Time,
	}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
