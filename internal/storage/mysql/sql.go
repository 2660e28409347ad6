package mysql

const upsertStateSQL = `
INSERT INTO connector_state (state_key, cursor_at, state)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  cursor_at = VALUES(cursor_at),
  state = VALUES(state),
  updated_at = CURRENT_TIMESTAMP`

const getStateSQL = `
SELECT state
FROM connector_state
WHERE state_key = ?`
