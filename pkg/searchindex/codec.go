package searchindex

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
)

var blobMagic = []byte("KGIX\x01")

// Encode writes the index as a compressed blob.
func (idx *Index) Encode(w io.Writer) error {
	if _, err := w.Write(blobMagic); err != nil {
		return fmt.Errorf("write index header: %w", err)
	}
	zw := gzip.NewWriter(w)
	if err := gob.NewEncoder(zw).Encode(idx); err != nil {
		zw.Close()
		return fmt.Errorf("encode index: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush index: %w", err)
	}
	return nil
}

// Decode reads a blob written by Encode.
func Decode(r io.Reader) (*Index, error) {
	br := bufio.NewReader(r)
	header := make([]byte, len(blobMagic))
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("read index header: %w", err)
	}
	if !bytes.Equal(header, blobMagic) {
		return nil, fmt.Errorf("not a search index blob (header %q)", header)
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("open index stream: %w", err)
	}
	defer zr.Close()

	var idx Index
	if err := gob.NewDecoder(zr).Decode(&idx); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	for _, f := range idx.Fields {
		if len(f.Lengths) < len(idx.Docs) {
			return nil, fmt.Errorf("decode index: field %s has %d lengths for %d documents", f.Name, len(f.Lengths), len(idx.Docs))
		}
	}
	return &idx, nil
}
