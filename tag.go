package okmongo

// Tag is a one-byte BSON element type discriminator, as it appears on the
// wire immediately before a field's key.
//
// See http://bsonspec.org/spec.html
type Tag int8

// The BSON element tags this package knows about. Any wire byte that doesn't
// decode to one of these (via ToTag) is reported as TagMinKey, the canonical
// invalid sentinel.
const (
	TagDouble      Tag = 0x01
	TagUTF8        Tag = 0x02
	TagDocument    Tag = 0x03
	TagArray       Tag = 0x04
	TagBindata     Tag = 0x05
	TagObjectID    Tag = 0x07
	TagBool        Tag = 0x08
	TagUTCDatetime Tag = 0x09
	TagNull        Tag = 0x0A
	TagRegexp      Tag = 0x0B
	TagJS          Tag = 0x0D
	TagScopedJS    Tag = 0x0F
	TagInt32       Tag = 0x10
	TagTimestamp   Tag = 0x11
	TagInt64       Tag = 0x12
	TagMinKey      Tag = -1
	TagMaxKey      Tag = 0x7F
)

func (t Tag) String() string {
	switch t {
	case TagDouble:
		return "double"
	case TagUTF8:
		return "utf8"
	case TagDocument:
		return "document"
	case TagArray:
		return "array"
	case TagBindata:
		return "bindata"
	case TagObjectID:
		return "objectId"
	case TagBool:
		return "bool"
	case TagUTCDatetime:
		return "utcDatetime"
	case TagNull:
		return "null"
	case TagRegexp:
		return "regexp"
	case TagJS:
		return "js"
	case TagScopedJS:
		return "scopedJs"
	case TagInt32:
		return "int32"
	case TagTimestamp:
		return "timestamp"
	case TagInt64:
		return "int64"
	case TagMaxKey:
		return "maxKey"
	default:
		return "minKey"
	}
}

// ObjectIDLen is the fixed length, in bytes, of a BSON ObjectId.
const ObjectIDLen = 12

// ToTag maps a raw wire byte to a Tag, validating it against the known set.
// Bytes that don't name a tag this package supports -- including the wire
// encodings of MinKey and MaxKey themselves -- decode to TagMinKey, per the
// source driver's own (slightly surprising) bounds check: a signed byte of
// -1 or of 127 and above is never returned as a concrete tag.
func ToTag(c byte) Tag {
	sc := int8(c)
	if sc <= int8(TagMinKey) || sc >= int8(TagMaxKey) {
		return TagMinKey
	}
	switch Tag(sc) {
	case TagDouble, TagUTF8, TagDocument, TagArray, TagBindata, TagObjectID,
		TagBool, TagUTCDatetime, TagNull, TagRegexp, TagJS, TagScopedJS,
		TagInt32, TagTimestamp, TagInt64:
		return Tag(sc)
	default:
		return TagMinKey
	}
}

// Subtype is the second-level type byte carried by a Bindata payload.
type Subtype byte

const (
	SubtypeGeneric  Subtype = 0x00
	SubtypeFunction Subtype = 0x01
	SubtypeBinary   Subtype = 0x02 // deprecated, old binary subtype
	SubtypeUUIDOld  Subtype = 0x03 // deprecated, old UUID subtype
	SubtypeUUID     Subtype = 0x04
	SubtypeMD5      Subtype = 0x05
	SubtypeMinUser  Subtype = 0x80
	SubtypeMaxUser  Subtype = 0xFF
)
