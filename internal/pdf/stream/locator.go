package stream

import (
	"bytes"
	"iter"
	"regexp"
	"strconv"
)

var (
	// objectHeader matches "<num> 0 obj << dict >> stream" up to and including
	// the end-of-line that starts the stream body.
	objectHeader = regexp.MustCompile(`(?s)(\d+)\s+0\s+obj\s*<<(.*?)>>\s*stream\r?\n`)

	endStreamMarker = []byte("endstream")
)

// RawObject is one indirect object whose stream body was located in the file
type RawObject struct {
	ID         int
	Offset     int64
	Dictionary []byte
	Body       []byte
	// Terminated is false when no endstream marker follows the header.
	Terminated bool
}

// HasFilter reports whether the object dictionary names the given filter.
func (o RawObject) HasFilter(name string) bool {
	return bytes.Contains(o.Dictionary, []byte("/"+name))
}

// Locate scans the raw document bytes for stream objects in file order.
// Headers whose object number does not fit an int are skipped.
func Locate(data []byte) iter.Seq[RawObject] {
	return func(yield func(RawObject) bool) {
		for _, m := range objectHeader.FindAllSubmatchIndex(data, -1) {
			id, err := strconv.Atoi(string(data[m[2]:m[3]]))
			if err != nil {
				continue
			}

			obj := RawObject{
				ID:         id,
				Offset:     int64(m[0]),
				Dictionary: data[m[4]:m[5]],
			}

			start := m[1]
			if end := bytes.Index(data[start:], endStreamMarker); end >= 0 {
				obj.Body = TrimPadding(data[start : start+end])
				obj.Terminated = true
			}

			if !yield(obj) {
				return
			}
		}
	}
}

// TrimPadding drops the single line ending that separates a stream body
// from its endstream keyword.
func TrimPadding(body []byte) []byte {
	if bytes.HasSuffix(body, []byte("\r\n")) {
		return body[:len(body)-2]
	}
	if bytes.HasSuffix(body, []byte("\n")) {
		return body[:len(body)-1]
	}
	return body
}
