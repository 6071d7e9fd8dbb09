package mysql

const createSnapshotSQL = `
CREATE TABLE IF NOT EXISTS poi_snapshot (
  snapshot_key VARCHAR(128) NOT NULL,
  id           VARCHAR(191) NOT NULL,
  position     INT          NOT NULL DEFAULT 0,
  record       JSON         NOT NULL,
  PRIMARY KEY (snapshot_key, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

const createSnapshotMetaSQL = `
CREATE TABLE IF NOT EXISTS poi_snapshot_meta (
  snapshot_key VARCHAR(128) NOT NULL PRIMARY KEY,
  meta         JSON         NOT NULL,
  updated_at   TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

const deleteSnapshotSQL = `DELETE FROM poi_snapshot WHERE snapshot_key = ?`

const insertSnapshotPrefix = "INSERT INTO poi_snapshot\n  (snapshot_key, id, position, record)\nVALUES "

// Duplicate ids inside one snapshot collapse to the last record written.
const insertSnapshotOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  position = VALUES(position),\n" +
	"  record   = VALUES(record)\n"

const upsertMetaSQL = `
INSERT INTO poi_snapshot_meta (snapshot_key, meta)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE meta = VALUES(meta)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getMetaSQL = `SELECT meta FROM poi_snapshot_meta WHERE snapshot_key = ?`

const listSnapshotSQL = `
SELECT id, record
FROM poi_snapshot
WHERE snapshot_key = ?
ORDER BY position, id
`
