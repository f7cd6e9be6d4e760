package sqlite

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tverano/docqa"
)

// parseRFC3339 parses an RFC3339 formatted timestamp string.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// appendPagination appends LIMIT and OFFSET clauses to a query builder if values are > 0.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}

// codec applies the vault cipher to sensitive columns. Rows written
// through a disabled cipher stay plaintext and carry is_encrypted = 0;
// a locked cipher refuses the write entirely.
type codec struct {
	cipher docqa.Cipher
}

// state returns the cipher state, treating a nil cipher as disabled.
func (c codec) state() docqa.CipherState {
	if c.cipher == nil {
		return docqa.CipherDisabled
	}
	return c.cipher.State()
}

// seal encrypts data for storage. The bool result is the value for the
// row's is_encrypted column. Returns ELOCKED while the vault is enabled
// but locked: sensitive data must never land on disk in plaintext just
// because the key is absent.
func (c codec) seal(plaintext []byte) ([]byte, bool, error) {
	switch c.state() {
	case docqa.CipherReady:
		ciphertext, err := c.cipher.Encrypt(plaintext)
		if err != nil {
			return nil, false, err
		}
		return ciphertext, true, nil
	case docqa.CipherLocked:
		return nil, false, docqa.Errorf(docqa.ELOCKED, "vault is locked")
	default:
		return plaintext, false, nil
	}
}

// open reverses seal based on the stored is_encrypted flag. Reading an
// encrypted row without an unlocked cipher fails with ELOCKED.
func (c codec) open(data []byte, encrypted bool) ([]byte, error) {
	if !encrypted {
		return data, nil
	}
	if c.cipher == nil {
		return nil, docqa.Errorf(docqa.ELOCKED, "vault is locked")
	}
	return c.cipher.Decrypt(data)
}

// encodeEmbedding packs a float32 vector as little-endian bytes.
func encodeEmbedding(embedding []float32) []byte {
	buf := make([]byte, 4*len(embedding))
	for i, v := range embedding {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// decodeEmbedding unpacks a little-endian float32 vector.
func decodeEmbedding(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("malformed embedding: %d bytes", len(data))
	}
	embedding := make([]float32, len(data)/4)
	for i := range embedding {
		embedding[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return embedding, nil
}
