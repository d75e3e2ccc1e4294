package model

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FieldReader is just a simple reader for whitespace separated values.
type FieldReader struct {
	Pos    int
	Fields []string
}

// NewFieldReader constructs a new field reader around the given data
func NewFieldReader(data string) *FieldReader {
	return &FieldReader{0, strings.Fields(data)}
}

// Read returns the next space-delimited field/token
func (fr *FieldReader) Read() (string, error) {
	if fr.Pos >= len(fr.Fields) {
		return "", io.EOF
	}
	p := fr.Pos
	fr.Pos++
	return fr.Fields[p], nil
}

// ReadFloat reads the next token as a float
func (fr *FieldReader) ReadFloat() (float64, error) {
	s, err := fr.Read()
	if err != nil {
		return 0, err
	}

	return strconv.ParseFloat(s, 64)
}

// ReadValues reads every whitespace separated number in r.
func ReadValues(r io.Reader) ([]float64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "Could not READ values")
	}

	fr := NewFieldReader(string(data))
	values := make([]float64, 0, len(fr.Fields))
	for {
		v, err := fr.ReadFloat()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "Could not PARSE value %d", fr.Pos)
		}
		values = append(values, v)
	}

	return values, nil
}

// ReadValuesFile reads every number in the named file.
func ReadValuesFile(filename string) ([]float64, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not open value file %s", filename)
	}
	defer f.Close()

	values, err := ReadValues(f)
	if err != nil {
		return nil, errors.Wrapf(err, "Bad value file %s", filename)
	}
	return values, nil
}
