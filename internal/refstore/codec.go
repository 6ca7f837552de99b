package refstore

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
)

// EncodeEntry serializes a whole entry as a gob+gzip blob.
func EncodeEntry(e *Entry) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return encodeBlob(e)
}

// DecodeEntry is the inverse of EncodeEntry.
func DecodeEntry(blob []byte) (*Entry, error) {
	var e Entry
	if err := decodeBlob(blob, &e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// EncodeValues compresses a flattened component slice.
func EncodeValues(values []float64) ([]byte, error) {
	return encodeBlob(values)
}

// DecodeValues is the inverse of EncodeValues.
func DecodeValues(blob []byte) ([]float64, error) {
	var values []float64
	if err := decodeBlob(blob, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func encodeBlob(v any) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(v); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeBlob(blob []byte, v any) error {
	if len(blob) == 0 {
		return fmt.Errorf("empty reference blob")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	if err := gob.NewDecoder(gz).Decode(v); err != nil {
		return fmt.Errorf("failed to decode reference blob: %w", err)
	}
	return nil
}
