package sqlite

import (
	"context"
	"database/sql"

	"github.com/tverano/docqa"
)

// Compile-time interface verification.
var _ docqa.Recryptor = (*Recryptor)(nil)

// Recryptor rewrites every sensitive row from one cipher to another in a
// single transaction. Used when the vault is disabled and for key
// rotation.
type Recryptor struct {
	db *DB
}

// NewRecryptor creates a new Recryptor.
func NewRecryptor(db *DB) *Recryptor {
	return &Recryptor{db: db}
}

// sensitiveColumn describes one table's encrypted payload columns.
type sensitiveColumn struct {
	table   string
	columns []string
}

var sensitiveColumns = []sensitiveColumn{
	{table: "chunks", columns: []string{"text", "embedding"}},
	{table: "messages", columns: []string{"content", "citations"}},
	{table: "conversations", columns: []string{"title"}},
}

// RecryptSensitive re-persists all sensitive rows, decrypting with from
// and encrypting with to. Returns the number of rows rewritten. Either
// every row is rewritten or none are.
func (r *Recryptor) RecryptSensitive(ctx context.Context, from, to docqa.Cipher) (int, error) {
	fromCodec := codec{cipher: from}
	toCodec := codec{cipher: to}

	count := 0
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		for _, sc := range sensitiveColumns {
			n, err := recryptTable(ctx, tx, sc, fromCodec, toCodec)
			if err != nil {
				return err
			}
			count += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func recryptTable(ctx context.Context, tx *sql.Tx, sc sensitiveColumn, from, to codec) (int, error) {
	type row struct {
		id       int64
		payloads [][]byte
	}

	selectQuery := "SELECT id, is_encrypted"
	for _, col := range sc.columns {
		selectQuery += ", " + col
	}
	selectQuery += " FROM " + sc.table

	rows, err := tx.QueryContext(ctx, selectQuery)
	if err != nil {
		return 0, err
	}

	var rewritten []row
	for rows.Next() {
		var id int64
		var encrypted bool
		payloads := make([][]byte, len(sc.columns))

		dest := []any{&id, &encrypted}
		for i := range payloads {
			dest = append(dest, &payloads[i])
		}
		if err := rows.Scan(dest...); err != nil {
			rows.Close()
			return 0, err
		}

		for i, payload := range payloads {
			if payload == nil {
				continue
			}
			plain, err := from.open(payload, encrypted)
			if err != nil {
				rows.Close()
				return 0, err
			}
			sealed, _, err := to.seal(plain)
			if err != nil {
				rows.Close()
				return 0, err
			}
			payloads[i] = sealed
		}

		rewritten = append(rewritten, row{id: id, payloads: payloads})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	updateQuery := "UPDATE " + sc.table + " SET is_encrypted = ?"
	for _, col := range sc.columns {
		updateQuery += ", " + col + " = ?"
	}
	updateQuery += " WHERE id = ?"

	toEncrypted := to.state() == docqa.CipherReady
	for _, r := range rewritten {
		args := []any{toEncrypted}
		for _, payload := range r.payloads {
			args = append(args, payload)
		}
		args = append(args, r.id)
		if _, err := tx.ExecContext(ctx, updateQuery, args...); err != nil {
			return 0, err
		}
	}

	return len(rewritten), nil
}
