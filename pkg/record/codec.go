package record

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/agentstation/marcmerge/pkg/errors"
)

// Format identifies a record serialization.
type Format string

// Supported record formats.
const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// filePermissions is used for records written by WriteFile.
const filePermissions = 0o644

// ParseFormat converts a string to a Format with validation.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatMsgpack:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "mp", "mpk":
		return FormatMsgpack, nil
	default:
		return "", &errors.ValidationError{
			Field:   "format",
			Value:   s,
			Message: "must be one of: json, yaml, msgpack",
		}
	}
}

// FormatFromPath infers the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return FormatJSON
}

// Decode parses a single record.
func Decode(data []byte, format Format) (*Record, error) {
	var rec Record
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &rec)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &rec)
	default:
		err = json.Unmarshal(data, &rec)
	}
	if err != nil {
		return nil, errors.WrapParse(string(format), "", err)
	}
	if err := rec.normalizeDecoded(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Encode serializes a record.
func Encode(rec *Record, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.MarshalWithOptions(rec, yaml.Indent(2), yaml.IndentSequence(false))
	case FormatMsgpack:
		return msgpack.Marshal(rec)
	default:
		return json.MarshalIndent(rec, "", "  ")
	}
}

// ReadFile loads a record, inferring the format from the extension.
func ReadFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	rec, err := Decode(data, FormatFromPath(path))
	if err != nil {
		if parseErr, ok := err.(*errors.ParseError); ok {
			parseErr.File = path
		}
		return nil, err
	}
	return rec, nil
}

// WriteFile stores a record, inferring the format from the extension.
func WriteFile(path string, rec *Record) error {
	return WriteFileFormat(path, rec, FormatFromPath(path))
}

// WriteFileFormat stores a record in the given format.
func WriteFileFormat(path string, rec *Record, format Format) error {
	data, err := Encode(rec, format)
	if err != nil {
		return err
	}
	return errors.WrapIO("write", path, os.WriteFile(path, data, filePermissions))
}

// normalizeDecoded treats a field with indicators but no subfield list as a
// data field, as hand-written input often omits it, and rejects fields
// carrying both shapes.
func (r *Record) normalizeDecoded() error {
	if r.Fields == nil {
		r.Fields = []*Field{}
	}
	for i, f := range r.Fields {
		if f == nil {
			return &errors.ValidationError{Field: fmt.Sprintf("fields[%d]", i), Message: "null field"}
		}
		if f.Subfields != nil && f.Value != "" {
			return &errors.ValidationError{
				Field:   fmt.Sprintf("fields[%d]", i),
				Value:   f.Tag,
				Message: "field has both value and subfields",
			}
		}
		if f.Subfields == nil && (f.Ind1 != "" || f.Ind2 != "") {
			f.Subfields = []Subfield{}
		}
		if !f.IsControl() {
			f.Ind1 = blankIndicator(f.Ind1)
			f.Ind2 = blankIndicator(f.Ind2)
		}
	}
	return nil
}
