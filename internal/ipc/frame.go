package ipc

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WriteFrame writes tag || u32-LE length || payload to w as a single
// contiguous write, so a response frame is never interleaved with
// another. Callers serialize concurrent writers themselves (see
// internal/supervisor's stdin slot).
func WriteFrame(w io.Writer, tag FrameTag, payload []byte) error {
	header := make([]byte, 5)
	header[0] = byte(tag)
	binary.LittleEndian.PutUint32(header[1:], uint32(len(payload)))
	buf := make([]byte, 0, len(header)+len(payload))
	buf = append(buf, header...)
	buf = append(buf, payload...)
	_, err := w.Write(buf)
	return err
}

// ReadFrame reads one tag || length || payload frame from r. Returns
// ErrProtocolTruncated if the stream ends before a complete frame is
// read (a clean EOF right after the tag byte is a protocol error, not
// a clean stream close).
func ReadFrame(r io.Reader) (FrameTag, []byte, error) {
	var header [5]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return 0, nil, io.EOF // clean close before any header byte
		}
		return 0, nil, fmt.Errorf("%w: %v", ErrProtocolTruncated, err)
	}
	tag := FrameTag(header[0])
	length := binary.LittleEndian.Uint32(header[1:])
	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return 0, nil, fmt.Errorf("%w: %v", ErrProtocolTruncated, err)
		}
	}
	return tag, payload, nil
}

// WriteKeySetFrame writes a key-set response frame: tag(1 byte) ||
// payload, as a single contiguous write. Unlike WriteFrame, this carries
// no length field -- the key-set frame is exactly
// `0x01 || count(1) || (len-1(1) || key-bytes)*`, with the frame's
// extent implicit in the count and per-key lengths rather than an
// explicit length prefix. Only the metrics frame (tag 0x00) has one.
func WriteKeySetFrame(w io.Writer, payload []byte) error {
	buf := make([]byte, 0, 1+len(payload))
	buf = append(buf, byte(TagKeySet))
	buf = append(buf, payload...)
	_, err := w.Write(buf)
	return err
}

// ReadKeySetFrame reads one key-set response frame: the tag byte
// followed by the count-prefixed, per-key length-prefixed payload,
// with no length field to announce the frame's extent up front.
// Returns the tag (always TagKeySet in practice) and the raw payload,
// suitable for DecodeKeySet.
func ReadKeySetFrame(r io.Reader) (FrameTag, []byte, error) {
	var tagByte [1]byte
	if _, err := io.ReadFull(r, tagByte[:]); err != nil {
		if err == io.EOF {
			return 0, nil, io.EOF
		}
		return 0, nil, fmt.Errorf("%w: %v", ErrProtocolTruncated, err)
	}
	tag := FrameTag(tagByte[0])

	var countByte [1]byte
	if _, err := io.ReadFull(r, countByte[:]); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrProtocolTruncated, err)
	}
	count := int(countByte[0])

	payload := []byte{countByte[0]}
	for i := 0; i < count; i++ {
		var lenByte [1]byte
		if _, err := io.ReadFull(r, lenByte[:]); err != nil {
			return 0, nil, fmt.Errorf("%w: %v", ErrProtocolTruncated, err)
		}
		payload = append(payload, lenByte[0])
		key := make([]byte, int(lenByte[0])+1)
		if _, err := io.ReadFull(r, key); err != nil {
			return 0, nil, fmt.Errorf("%w: %v", ErrProtocolTruncated, err)
		}
		payload = append(payload, key...)
	}
	return tag, payload, nil
}

// EncodeKeySet serializes a list of key byte-strings into the key-set
// payload format: count(1) || for each: len-1(1) || key-bytes. The
// per-key length byte is the key length minus one, so a 16-byte key
// carries 0x0F; keys are never empty, which the caller guarantees (see
// internal/supervisor's key-directory scan, which drops empty and
// oversized files). This function assumes each key already satisfies
// 1 <= len <= MaxKeyLen and len(keys) <= MaxKeyCount.
func EncodeKeySet(keys [][]byte) []byte {
	n := len(keys)
	if n > MaxKeyCount {
		n = MaxKeyCount
	}
	total := 1
	for _, k := range keys[:n] {
		total += 1 + len(k)
	}
	buf := make([]byte, 0, total)
	buf = append(buf, byte(n))
	for _, k := range keys[:n] {
		l := len(k)
		if l > MaxKeyLen {
			l = MaxKeyLen
		}
		buf = append(buf, byte(l-1))
		buf = append(buf, k[:l]...)
	}
	return buf
}

// DecodeKeySet parses a key-set payload back into its component keys --
// used by tests exercising the frame round-trip property.
func DecodeKeySet(payload []byte) ([][]byte, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty key-set payload", ErrProtocolTruncated)
	}
	count := int(payload[0])
	pos := 1
	keys := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		if pos >= len(payload) {
			return nil, fmt.Errorf("%w: key-set truncated at key %d", ErrProtocolTruncated, i)
		}
		l := int(payload[pos]) + 1
		pos++
		if pos+l > len(payload) {
			return nil, fmt.Errorf("%w: key-set truncated at key %d", ErrProtocolTruncated, i)
		}
		keys = append(keys, payload[pos:pos+l])
		pos += l
	}
	return keys, nil
}
