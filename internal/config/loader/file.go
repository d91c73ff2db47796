package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileLoader decodes configuration files into a struct.
type FileLoader struct {
	fs FileSystem
}

// NewFileLoader creates a loader reading from the OS file system.
func NewFileLoader() *FileLoader {
	return &FileLoader{fs: DefaultFS()}
}

// NewFileLoaderWithFS creates a loader with a custom file system.
func NewFileLoaderWithFS(fs FileSystem) *FileLoader {
	return &FileLoader{fs: fs}
}

// LoadInto decodes the file at path into v. Fields absent from the file
// keep their values. The error wraps fs.ErrNotExist for a missing file.
func (l *FileLoader) LoadInto(path string, v any) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Decode(format, path, data, v)
}

// LoadReaderInto decodes configuration in the given format from r into v.
func LoadReaderInto(r io.Reader, format Format, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	return Decode(format, "<reader>", data, v)
}

// Decode parses data into v. source names the data in errors.
func Decode(format Format, source string, data []byte, v any) error {
	switch format {
	case FormatTOML:
		return decodeTOML(source, data, v)
	case FormatYAML:
		return decodeYAML(source, data, v)
	default:
		return fmt.Errorf("%s: %w", format, ErrUnsupportedFormat)
	}
}

func decodeTOML(source string, data []byte, v any) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			perr.Message = serr.String()
		}
		return perr
	}
	return nil
}

func decodeYAML(source string, data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var terr *yaml.TypeError
		if errors.As(err, &terr) && len(terr.Errors) > 0 {
			perr.Message = terr.Errors[0]
		}
		return perr
	}
	return nil
}
