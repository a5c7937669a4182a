package badger

import (
	"encoding/binary"

	"github.com/LessGoh/Claude-QA-UI-v2/core"
)

// Key prefixes for different data types
const (
	documentRecordPrefix = "docrec:"
	documentRecordIDSeq  = "docrecseq"
	fragmentPrefix       = "frag:"
)

// indexKey is a fixed-width stand-in for an index name inside composite keys.
// Readers still compare the stored index name, so hash collisions cannot leak records.
func indexKey(indexName string) uint64 {
	return uint64(core.IDFromContent(indexName))
}

// makeDocumentRecordKey generates a composite key for a registry record.
// Format: prefix:indexKey:id, both BigEndian so records sort by ID within an index.
func makeDocumentRecordKey(indexName string, id core.ID) []byte {
	buf := make([]byte, len(documentRecordPrefix)+16)
	offset := copy(buf, documentRecordPrefix)
	binary.BigEndian.PutUint64(buf[offset:], indexKey(indexName))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDocumentRecordKey generates the scan prefix for one index's records.
// Format: prefix:indexKey
func makePartialDocumentRecordKey(indexName string) []byte {
	buf := make([]byte, len(documentRecordPrefix)+8)
	offset := copy(buf, documentRecordPrefix)
	binary.BigEndian.PutUint64(buf[offset:], indexKey(indexName))
	return buf
}

// makeFragmentKey generates a composite key for a stored fragment.
// Format: prefix:indexKey:fragmentID
func makeFragmentKey(indexName, fragmentID string) []byte {
	buf := make([]byte, len(fragmentPrefix)+8, len(fragmentPrefix)+8+len(fragmentID))
	offset := copy(buf, fragmentPrefix)
	binary.BigEndian.PutUint64(buf[offset:], indexKey(indexName))
	return append(buf, fragmentID...)
}

// makePartialFragmentKey generates the scan prefix for one index's fragments.
func makePartialFragmentKey(indexName string) []byte {
	buf := make([]byte, len(fragmentPrefix)+8)
	offset := copy(buf, fragmentPrefix)
	binary.BigEndian.PutUint64(buf[offset:], indexKey(indexName))
	return buf
}
