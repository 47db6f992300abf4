package value

import "unicode/utf16"

// Bytes is a mutable byte vector (spec.md §4.5) supporting decode-to-string
// via encode(encoding) and join(iter), which interleaves the receiver
// between stringified items.
type Bytes struct {
	Data []byte
}

func NewBytes(data []byte) *Bytes {
	cp := make([]byte, len(data))
	copy(cp, data)
	return &Bytes{Data: cp}
}

func (b *Bytes) Len() int { return len(b.Data) }

// Encode decodes the receiver's bytes as the named encoding, producing a
// string (spec.md §4.5, supplemented per SPEC_FULL.md §9 from
// original_source/src/custom_types/bytes.rs: utf-8, utf-16-le, utf-16-be,
// utf-32-le, utf-32-be; anything else raises ValueError).
func (b *Bytes) Encode(encoding string) (string, error) {
	switch encoding {
	case "utf-8":
		return string(b.Data), nil
	case "utf-16-le":
		return decodeUTF16(b.Data, false)
	case "utf-16-be":
		return decodeUTF16(b.Data, true)
	case "utf-32-le":
		return decodeUTF32(b.Data, false)
	case "utf-32-be":
		return decodeUTF32(b.Data, true)
	default:
		return "", &DispatchError{Kind: "value_error", Message: "unrecognized encoding: " + encoding}
	}
}

func decodeUTF16(data []byte, bigEndian bool) (string, error) {
	if len(data)%2 != 0 {
		return "", &DispatchError{Kind: "value_error", Message: "utf-16 byte length must be even"}
	}
	units := make([]uint16, len(data)/2)
	for i := range units {
		if bigEndian {
			units[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
		} else {
			units[i] = uint16(data[2*i]) | uint16(data[2*i+1])<<8
		}
	}
	return string(utf16.Decode(units)), nil
}

func decodeUTF32(data []byte, bigEndian bool) (string, error) {
	if len(data)%4 != 0 {
		return "", &DispatchError{Kind: "value_error", Message: "utf-32 byte length must be a multiple of four"}
	}
	runes := make([]rune, len(data)/4)
	for i := range runes {
		var v uint32
		if bigEndian {
			v = uint32(data[4*i])<<24 | uint32(data[4*i+1])<<16 | uint32(data[4*i+2])<<8 | uint32(data[4*i+3])
		} else {
			v = uint32(data[4*i]) | uint32(data[4*i+1])<<8 | uint32(data[4*i+2])<<16 | uint32(data[4*i+3])<<24
		}
		runes[i] = rune(v)
	}
	return string(runes), nil
}

// Join interleaves the receiver between the stringified items (spec.md
// §4.5: "join(iter) interleaves the receiver between stringified items").
func (b *Bytes) Join(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += string(b.Data)
		}
		out += s
	}
	return out
}
