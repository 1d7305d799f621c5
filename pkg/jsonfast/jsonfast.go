/*
Package jsonfast offers a minimal JSON builder optimized for low-allocation encoding paths.
*/
package jsonfast

// Builder is a minimal JSON builder that operates on a reusable byte slice.
// It avoids allocations by appending directly into the buffer and supports
// nested objects and arrays through an explicit depth stack.
// Not a fully general-purpose JSON writer; tailored for known field sets.
type Builder struct {
	buf   []byte
	first []bool // one entry per open object/array; true until the first element is written
}

// New creates a new builder with initial capacity.
func New(capacity int) *Builder {
	if capacity <= 0 {
		capacity = 256
	}
	return &Builder{
		buf:   make([]byte, 0, capacity),
		first: make([]bool, 0, 4),
	}
}

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
	b.first = b.first[:0]
}

// Bytes returns the underlying buffer (do not modify after use).
func (b *Builder) Bytes() []byte {
	return b.buf
}

// BeginObject starts a JSON object, either at the top level or as the next
// element of an open array.
func (b *Builder) BeginObject() {
	b.sep()
	b.buf = append(b.buf, '{')
	b.first = append(b.first, true)
}

// EndObject ends the innermost open object.
func (b *Builder) EndObject() {
	b.buf = append(b.buf, '}')
	b.pop()
}

// BeginArrayField adds a "name":[ opener; elements follow until EndArray.
func (b *Builder) BeginArrayField(name string) {
	b.sep()
	b.key(name)
	b.buf = append(b.buf, '[')
	b.first = append(b.first, true)
}

// EndArray ends the innermost open array.
func (b *Builder) EndArray() {
	b.buf = append(b.buf, ']')
	b.pop()
}

// AddStringField adds a "name":"value" string field with escaping.
func (b *Builder) AddStringField(name, value string) {
	b.sep()
	b.key(name)
	b.buf = append(b.buf, '"')
	b.escapeString(value)
	b.buf = append(b.buf, '"')
}

// AddIntField adds a "name":int field.
func (b *Builder) AddIntField(name string, v int) {
	b.sep()
	b.key(name)
	b.buf = append(b.buf, itoa(v)...)
}

// AddRawJSONField adds a "name":<raw json> field without escaping.
// The value must be valid JSON.
func (b *Builder) AddRawJSONField(name string, rawJSON []byte) {
	b.sep()
	b.key(name)
	b.buf = append(b.buf, rawJSON...)
}

// AddIntArrayField adds a "name":[1,2,3] field.
func (b *Builder) AddIntArrayField(name string, vs []int) {
	b.sep()
	b.key(name)
	b.buf = append(b.buf, '[')
	for i, v := range vs {
		if i > 0 {
			b.buf = append(b.buf, ',')
		}
		b.buf = append(b.buf, itoa(v)...)
	}
	b.buf = append(b.buf, ']')
}

// key writes "name": without escaping; field names come from fixed schemas.
func (b *Builder) key(name string) {
	b.buf = append(b.buf, '"')
	b.buf = append(b.buf, name...)
	b.buf = append(b.buf, '"', ':')
}

// sep writes the element separator for the innermost open container.
func (b *Builder) sep() {
	if n := len(b.first); n > 0 {
		if b.first[n-1] {
			b.first[n-1] = false
		} else {
			b.buf = append(b.buf, ',')
		}
	}
}

func (b *Builder) pop() {
	if n := len(b.first); n > 0 {
		b.first = b.first[:n-1]
	}
}

// escapeString escapes JSON special characters.
func (b *Builder) escapeString(s string) {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '"':
			b.buf = append(b.buf, '\\', c)
		case '\b':
			b.buf = append(b.buf, '\\', 'b')
		case '\f':
			b.buf = append(b.buf, '\\', 'f')
		case '\n':
			b.buf = append(b.buf, '\\', 'n')
		case '\r':
			b.buf = append(b.buf, '\\', 'r')
		case '\t':
			b.buf = append(b.buf, '\\', 't')
		default:
			// Control characters (0x00..0x1f) need escaping
			if c < 0x20 {
				// \u00XX
				b.buf = append(b.buf, '\\', 'u', '0', '0', hex[c>>4], hex[c&0x0f])
			} else {
				b.buf = append(b.buf, c)
			}
		}
	}
}

// itoa converts a small int to ascii without allocation.
func itoa(x int) []byte {
	if x == 0 {
		return []byte{'0'}
	}
	var tmp [20]byte
	i := len(tmp)
	neg := x < 0
	u := uint64(x)
	if neg {
		u = uint64(-x)
	}
	for u > 0 {
		i--
		tmp[i] = byte('0' + u%10)
		u /= 10
	}
	if neg {
		i--
		tmp[i] = '-'
	}
	return tmp[i:]
}

var hex = "0123456789abcdef"
