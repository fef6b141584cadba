package card

import (
	"fmt"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/vcard-editor/internal/config"
)

// Write serializes c as one vCard: BEGIN, VERSION, one line per entry
// (cleared entries included, so their slot survives), END.
func Write(c *Card) (string, error) {
	var sb strings.Builder
	if err := vcard.NewEncoder(&sb).Encode(c.Card); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrEncodeCard, err)
	}
	// The encoder doubles every backslash, including the one of an escaped
	// semicolon the decoder kept verbatim.
	return strings.ReplaceAll(sb.String(), `\\;`, escapedSemicolon), nil
}
