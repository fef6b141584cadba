package card

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/vcard-editor/internal/config"
)

const crlf = "\r\n"

// ErrParse is matched by every *ParseError.
var ErrParse = errors.New(config.ErrParse)

// ParseError reports a record that could not be decoded.
// Line is the 1-based line of the file where the record starts.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (line %d): %v", config.ErrParse, e.Line, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// Parse decodes one record. Text before BEGIN:VCARD is ignored; a record
// without VERSION is given the default version so it can be written back.
func Parse(chunk string) (*Card, error) {
	lines := strings.Split(strings.ReplaceAll(chunk, crlf, "\n"), "\n")

	begin := -1
	for i, l := range lines {
		if isSentinel(l, config.VCardBegin) {
			begin = i
			break
		}
	}
	if begin < 0 {
		return nil, &ParseError{Line: config.ChunkLineOffset, Err: errors.New(config.ErrNoBegin)}
	}
	if begin > 0 && strings.TrimSpace(strings.Join(lines[:begin], "")) != "" {
		slog.Warn(config.MsgStrayLines,
			config.LogKeyComponent, config.CompCard,
			config.LogKeyCount, begin)
	}

	record := make([]string, 0, len(lines)-begin)
	for _, l := range lines[begin:] {
		switch {
		case isSentinel(l, config.VCardBegin):
			l = config.VCardBegin
		case isSentinel(l, config.VCardEnd):
			l = config.VCardEnd
		default:
			l = strings.TrimSuffix(l, "\r")
		}
		record = append(record, l)
	}

	body := strings.Join(record, crlf)
	if !strings.HasSuffix(body, crlf) {
		body += crlf
	}

	vc, err := vcard.NewDecoder(strings.NewReader(body)).Decode()
	if err != nil {
		return nil, &ParseError{Line: begin + config.ChunkLineOffset, Err: err}
	}

	c := Wrap(vc)
	if c.Get(vcard.FieldVersion) == nil {
		slog.Debug(config.MsgMissingVersion, config.LogKeyComponent, config.CompCard)
		c.SetValue(vcard.FieldVersion, config.VCardVersion)
	}
	return c, nil
}

// isSentinel compares a raw line with BEGIN:VCARD or END:VCARD, ignoring
// trailing blanks and ASCII case.
func isSentinel(line, sentinel string) bool {
	return strings.EqualFold(strings.TrimRight(line, " \t\r"), sentinel)
}
