package postureRepository

const (
	queryCreateRecord = `
INSERT INTO posture_records (id, user_id, source, shoulder_angle, neck_angle, head_tilt, spine_angle,
                             posture_score, posture_status, feedback, confidence, snapshot_key, created_at)
VALUES (:id, :user_id, :source, :shoulder_angle, :neck_angle, :head_tilt, :spine_angle,
        :posture_score, :posture_status, :feedback, :confidence, :snapshot_key, :created_at)`

	queryGetRecordForUser = `
SELECT id, user_id, source, shoulder_angle, neck_angle, head_tilt, spine_angle,
       posture_score, posture_status, feedback, confidence, snapshot_key, created_at
FROM posture_records
    WHERE id = :id AND user_id = :user_id`

	queryListRecordsByUser = `
SELECT id, user_id, source, shoulder_angle, neck_angle, head_tilt, spine_angle,
       posture_score, posture_status, feedback, confidence, snapshot_key, created_at
FROM posture_records
    WHERE user_id = :user_id
ORDER BY created_at DESC, id DESC
LIMIT :limit`

	queryUserStats = `
SELECT COUNT(*)                          AS total,
       COALESCE(AVG(posture_score), 0)   AS avg_score,
       COALESCE((SELECT oldest.posture_score
                 FROM posture_records oldest
                 WHERE oldest.user_id = :user_id
                 ORDER BY oldest.created_at ASC, oldest.id ASC
                 LIMIT 1), 0)            AS first_score
FROM posture_records
    WHERE user_id = :user_id`

	querySetSnapshotKey = `
UPDATE posture_records
SET snapshot_key = :snapshot_key
    WHERE id = :id AND user_id = :user_id`
)
