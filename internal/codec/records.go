package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Format selects the on-disk encoding of game records.
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// FormatFor picks the encoding from a file extension; anything but .cbor is JSON.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		return FormatCBOR
	}
	return FormatJSON
}

var cborEnc = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// WriteRecords encodes recs to w as a single JSON array or CBOR array.
func WriteRecords[T any](w io.Writer, f Format, recs []T) error {
	switch f {
	case FormatCBOR:
		return cborEnc.NewEncoder(w).Encode(recs)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	return fmt.Errorf("unknown record format %q", f)
}

func ReadRecords[T any](r io.Reader, f Format) ([]T, error) {
	var recs []T
	var err error
	switch f {
	case FormatCBOR:
		err = cbor.NewDecoder(r).Decode(&recs)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&recs)
	default:
		err = fmt.Errorf("unknown record format %q", f)
	}
	return recs, err
}

// SaveRecords writes recs to path in the format its extension names.
func SaveRecords[T any](path string, recs []T) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteRecords(f, FormatFor(path), recs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func SaveJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func LoadJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(v)
}
