package airodump

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/iyow2233/capstone/internal/core/domain"
	"golang.org/x/text/encoding/charmap"
)

var errInvalidUTF8 = errors.New("invalid UTF-8")

type textEncoding struct {
	name   string
	decode func([]byte) (string, error)
}

// artifactEncodings is tried in order. airodump-ng copies raw beacon bytes
// into the ESSID column, so non-UTF-8 names are common.
var artifactEncodings = []textEncoding{
	{"utf-8", decodeUTF8},
	{"windows-1252", charmapDecoder(charmap.Windows1252)},
	{"iso-8859-1", charmapDecoder(charmap.ISO8859_1)},
}

func decodeUTF8(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errInvalidUTF8
	}
	return string(b), nil
}

func charmapDecoder(cm *charmap.Charmap) func([]byte) (string, error) {
	return func(b []byte) (string, error) {
		out, err := cm.NewDecoder().Bytes(b)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

// DecodeArtifact returns the artifact text and the name of the encoding that
// decoded it.
func DecodeArtifact(data []byte) (string, string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	var errs []error
	for _, enc := range artifactEncodings {
		s, err := enc.decode(data)
		if err == nil {
			return s, enc.name, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", enc.name, err))
	}
	return "", "", fmt.Errorf("%w: %w", domain.ErrUndecodable, errors.Join(errs...))
}
