package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"
	"videorag/internal/domain"
)

// CurrentSchemaVersion is the corpus file layout version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 1

var keySchemaVersion = []byte("schema_version")

// ErrCorpusSchema reports a corpus written with an unsupported layout.
var ErrCorpusSchema = errors.New("unsupported corpus schema")

// SchemaInfo stores the layout version of a corpus file.
type SchemaInfo struct {
	Version int `json:"version"`
}

func getSchemaInfo(b *bbolt.Bucket) (SchemaInfo, error) {
	var info SchemaInfo
	data := b.Get(keySchemaVersion)
	if data == nil {
		return info, fmt.Errorf("%w: schema version missing", domain.ErrCorpusCorrupt)
	}
	if err := json.Unmarshal(data, &info.Version); err != nil {
		return info, fmt.Errorf("%w: schema version: %v", domain.ErrCorpusCorrupt, err)
	}
	return info, nil
}

func putSchemaInfo(b *bbolt.Bucket, info SchemaInfo) error {
	data, err := json.Marshal(info.Version)
	if err != nil {
		return err
	}
	return b.Put(keySchemaVersion, data)
}

// check rejects layouts this build cannot read. Older layouts would be
// migrated here; there are none yet, so a rebuild is the only remedy.
func (i SchemaInfo) check() error {
	switch {
	case i.Version == CurrentSchemaVersion:
		return nil
	case i.Version > CurrentSchemaVersion:
		return fmt.Errorf("%w: corpus created by newer version (v%d > v%d), re-run ingest",
			ErrCorpusSchema, i.Version, CurrentSchemaVersion)
	default:
		return fmt.Errorf("%w: v%d is no longer supported, re-run ingest", ErrCorpusSchema, i.Version)
	}
}
