package card

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/tartampluch/vcard-editor/internal/config"
)

// Result is the outcome of splitting a file: the records that parsed, in
// file order, and one issue per record that was skipped.
type Result struct {
	Cards  []*Card
	Issues []*ParseError
}

// Split cuts a file's lines into records on the END:VCARD sentinel and parses
// each one. Record boundaries depend on that line alone, never on the syntax
// of the lines in between. Malformed records are skipped and reported so one
// bad entry does not hide the rest of the file.
func Split(lines []string) Result {
	var res Result
	var buf []string
	start, started := 0, false

	for i, line := range lines {
		if !started && strings.TrimSpace(line) != "" {
			start, started = i, true
		}
		buf = append(buf, line)
		if !isSentinel(line, config.VCardEnd) {
			continue
		}

		c, err := Parse(strings.Join(buf, crlf))
		if err != nil {
			res.Issues = append(res.Issues, issueAt(err, start))
		} else {
			res.Cards = append(res.Cards, c)
		}
		buf = buf[:0]
		started = false
	}

	if started {
		res.Issues = append(res.Issues, issueAt(errors.New(config.ErrUnterminated), start))
	}

	for _, issue := range res.Issues {
		slog.Warn(config.MsgSkippedChunk,
			config.LogKeyComponent, config.CompCard,
			config.LogKeyLine, issue.Line,
			config.LogKeyError, issue.Err)
	}
	return res
}

// issueAt anchors err on the file line where the record started.
func issueAt(err error, start int) *ParseError {
	var pe *ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: start + config.ChunkLineOffset, Err: pe.Err}
	}
	return &ParseError{Line: start + config.ChunkLineOffset, Err: err}
}
