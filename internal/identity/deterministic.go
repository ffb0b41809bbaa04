package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-content-blocks"

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// BlockTypeUUID identifies catalog block types by keyname.
func BlockTypeUUID(keyname string) uuid.UUID {
	return UUID(namespace + ":block_type:" + strings.ToLower(strings.TrimSpace(keyname)))
}

// FieldUUID identifies catalog field nodes by their keyname path inside a block type.
func FieldUUID(blockKeyname, path string) uuid.UUID {
	return UUID(namespace + ":field:" + strings.ToLower(strings.TrimSpace(blockKeyname)) + ":" + strings.TrimSpace(path))
}

// VariantUUID identifies a theme, option or layout of a catalog block type.
func VariantUUID(blockKeyname, kind, keyname string) uuid.UUID {
	return UUID(namespace + ":variant:" + strings.ToLower(strings.TrimSpace(blockKeyname)) + ":" + kind + ":" + strings.TrimSpace(keyname))
}

// SyntheticValueUUID identifies a value node synthesized for a missing schema child.
func SyntheticValueUUID(ownerID, fieldID uuid.UUID) uuid.UUID {
	return UUID(namespace + ":synthetic_value:" + ownerID.String() + ":" + fieldID.String())
}

// ShowcaseUUID identifies a generated showcase node from its combination key.
func ShowcaseUUID(key string) uuid.UUID {
	return UUID(namespace + ":showcase:" + strings.TrimSpace(key))
}

// SyntheticGroupUUID identifies the repetition synthesized for a group value without one.
func SyntheticGroupUUID(valueID uuid.UUID) uuid.UUID {
	return UUID(namespace + ":synthetic_group:" + valueID.String())
}
