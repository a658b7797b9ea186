package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"ragqa/internal/domain"
)

// CurrentSchemaVersion is the on-disk format of the collection file.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 1

var (
	keySchemaVersion = []byte("schema_version")
	keyCollection    = []byte("collection")
)

// readCollection loads the stored identity. ok is false for a file that
// never received a collection record.
func readCollection(tx *bbolt.Tx) (info domain.CollectionInfo, ok bool, err error) {
	b := tx.Bucket(bucketMeta)
	if b == nil {
		return info, false, nil
	}

	if versionData := b.Get(keySchemaVersion); versionData != nil {
		var version int
		if err := json.Unmarshal(versionData, &version); err != nil {
			return info, false, fmt.Errorf("corrupt schema version: %w", err)
		}
		if version != CurrentSchemaVersion {
			return info, false, fmt.Errorf("unsupported schema version %d (want %d), clear the index", version, CurrentSchemaVersion)
		}
	}

	data := b.Get(keyCollection)
	if data == nil {
		return info, false, nil
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return info, false, fmt.Errorf("corrupt collection record: %w", err)
	}
	return info, true, nil
}

func writeCollection(tx *bbolt.Tx, info domain.CollectionInfo) error {
	b := tx.Bucket(bucketMeta)

	versionData, err := json.Marshal(CurrentSchemaVersion)
	if err != nil {
		return err
	}
	if err := b.Put(keySchemaVersion, versionData); err != nil {
		return err
	}

	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return b.Put(keyCollection, data)
}

// CheckCompatible reports ErrEmbeddingMismatch when want cannot be stored
// in a collection created as have.
func CheckCompatible(have, want domain.CollectionInfo) error {
	if have.Model != want.Model || have.Dimension != want.Dimension {
		return fmt.Errorf("%w: collection %q uses %s/%d, got %s/%d",
			domain.ErrEmbeddingMismatch, have.Name, have.Model, have.Dimension, want.Model, want.Dimension)
	}
	return nil
}
