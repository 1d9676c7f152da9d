package stream

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"golang.org/x/text/encoding/charmap"
)

// FilterDecoder decodes a stream body encoded with one PDF filter
type FilterDecoder interface {
	Decode(data []byte) ([]byte, error)
	Name() string
}

// FilterRegistry holds the filters the extractor understands
var FilterRegistry = map[string]FilterDecoder{
	"FlateDecode": &FlateDecoder{},
}

// GetFilterDecoder returns a filter decoder by name
func GetFilterDecoder(name string) FilterDecoder {
	return FilterRegistry[name]
}

// FlateDecoder implements zlib decompression
type FlateDecoder struct{}

func (f *FlateDecoder) Name() string {
	return "FlateDecode"
}

func (f *FlateDecoder) Decode(data []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("flate decode error: %w", err)
	}
	defer reader.Close()

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("flate decode error: %w", err)
	}
	return decoded, nil
}

// DecodeLatin1 maps each byte to the code point of the same value. Content
// stream literals are raw bytes, not UTF-8.
func DecodeLatin1(data []byte) string {
	// Every byte has an ISO-8859-1 mapping, so decoding cannot fail.
	decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(data)
	return string(decoded)
}
