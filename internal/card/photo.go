package card

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/vcard-editor/internal/config"
)

// Photo is an inline image carried by a card.
type Photo struct {
	Data []byte
	// Ext is the file extension matching the image format, dot included.
	Ext string
}

// ErrNoPhoto is returned when a card has no inline photo.
var ErrNoPhoto = errors.New(config.ErrNoPhoto)

var (
	extToType = map[string]string{
		config.ExtJPEG: "JPEG",
		".jpeg":        "JPEG",
		config.ExtPNG:  "PNG",
		config.ExtGIF:  "GIF",
		config.ExtBMP:  "BMP",
	}
	typeToExt = map[string]string{
		"jpeg":       config.ExtJPEG,
		"jpg":        config.ExtJPEG,
		"image/jpeg": config.ExtJPEG,
		"png":        config.ExtPNG,
		"image/png":  config.ExtPNG,
		"gif":        config.ExtGIF,
		"image/gif":  config.ExtGIF,
		"bmp":        config.ExtBMP,
		"image/bmp":  config.ExtBMP,
	}
)

// PhotoFields returns the PHOTO entries in file order.
func (c *Card) PhotoFields() []*vcard.Field {
	return c.Card[vcard.FieldPhoto]
}

// Photo decodes the first inline photo.
func (c *Card) Photo() (Photo, error) {
	fields := c.PhotoFields()
	if len(fields) == 0 {
		return Photo{}, ErrNoPhoto
	}
	return DecodePhoto(fields[0])
}

// SetPhoto replaces every photo of the card with one inline image.
// vCard 4.0 cards get a data URI; older versions get ENCODING=b.
func (c *Card) SetPhoto(data []byte, ext string) {
	ext = strings.ToLower(ext)
	typ, ok := extToType[ext]
	if !ok {
		typ = extToType[typeToExt[sniffType(data)]]
	}
	if typ == "" {
		typ = extToType[config.ExtJPEG]
	}
	enc := base64.StdEncoding.EncodeToString(data)

	var f *vcard.Field
	if c.Value(vcard.FieldVersion) == "4.0" {
		f = &vcard.Field{Value: config.VCardDataScheme + "image/" + strings.ToLower(typ) + config.VCardBase64Tag + enc}
	} else {
		f = &vcard.Field{
			Value: enc,
			Params: vcard.Params{
				config.VCardEncoding: {config.VCardEncodingB},
				vcard.ParamType:      {typ},
			},
		}
	}
	c.Card[vcard.FieldPhoto] = []*vcard.Field{f}
}

// DecodePhoto reads an inline PHOTO entry in either the vCard 3.0
// (ENCODING=b) or the vCard 4.0 (data URI) form.
func DecodePhoto(f *vcard.Field) (Photo, error) {
	value := f.Value
	var mediaType string

	if strings.HasPrefix(strings.ToLower(value), config.VCardDataScheme) {
		idx := strings.Index(strings.ToLower(value), config.VCardBase64Tag)
		if idx < 0 {
			return Photo{}, fmt.Errorf("%s: not a base64 data URI", config.ErrPhotoDecode)
		}
		mediaType = strings.ToLower(value[len(config.VCardDataScheme):idx])
		value = value[idx+len(config.VCardBase64Tag):]
	} else if !isBase64Encoded(f) {
		return Photo{}, fmt.Errorf("%s: %w", config.ErrPhotoDecode, ErrNoPhoto)
	} else {
		mediaType = firstType(f)
	}

	data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(value), ""))
	if err != nil {
		return Photo{}, fmt.Errorf("%s: %w", config.ErrPhotoDecode, err)
	}

	ext, ok := typeToExt[strings.ToLower(mediaType)]
	if !ok {
		ext = typeToExt[sniffType(data)]
	}
	if ext == "" {
		ext = config.ExtJPEG
	}
	return Photo{Data: data, Ext: ext}, nil
}

func isBase64Encoded(f *vcard.Field) bool {
	for k, vals := range f.Params {
		if !strings.EqualFold(k, config.VCardEncoding) {
			continue
		}
		for _, v := range vals {
			if strings.EqualFold(v, config.VCardEncodingB) || strings.EqualFold(v, config.VCardEncodingB64) {
				return true
			}
		}
	}
	return false
}

func firstType(f *vcard.Field) string {
	for k, vals := range f.Params {
		if strings.EqualFold(k, vcard.ParamType) && len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}

// sniffType guesses the MIME type from the image header bytes.
func sniffType(data []byte) string {
	return strings.ToLower(http.DetectContentType(data))
}
