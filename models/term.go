package models

// DigestSize is the length of a blind-index digest (HMAC-SHA256).
const DigestSize = 32

// TermHash associates an entry with the keyed digest of one normalized token
// taken from the entry's plaintext.
type TermHash struct {
	EntryID int64
	Digest  []byte
}

// TableName returns the name of the database table
// associated with the TermHash model.
func (t TermHash) TableName() string {
	return "entry_terms"
}
