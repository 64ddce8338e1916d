package authRepository

const (
	queryCreateUser = `
INSERT INTO users (id, username, email, password_hash, created_at)
VALUES (:id, :username, :email, :password_hash, :created_at)`

	queryGetById = `
SELECT id, username, email, password_hash, created_at
FROM users
    WHERE id = :id`

	queryGetByUsername = `
SELECT id, username, email, password_hash, created_at
FROM users
    WHERE username = :username`

	queryListSnapshotKeys = `
SELECT snapshot_key
FROM posture_records
    WHERE user_id = :user_id AND snapshot_key IS NOT NULL`

	queryDeleteUser = `
DELETE FROM users
    WHERE id = :id`
)
