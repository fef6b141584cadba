// Package card models a single contact record on top of go-vcard and holds
// the record-level algorithms: splitting a file into records, parsing,
// writing, and merging edited values back into a stored record.
package card

import (
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/vcard-editor/internal/config"
)

// Slot is a named sub-category of a repeated field, matched against the
// TYPE parameter (e.g. "home", "cell").
type Slot string

// Phone slots.
const (
	SlotHome  Slot = "home"
	SlotCell  Slot = "cell"
	SlotWork  Slot = "work"
	SlotFax   Slot = "fax"
	SlotPager Slot = "pager"
	SlotVoice Slot = "voice"
	SlotVideo Slot = "video"
	SlotText  Slot = "text"
)

// SlotInternet is the default email slot.
const SlotInternet Slot = "internet"

// Category describes one repeated field and its closed slot table.
// The slot order is the order the merger visits them in.
type Category struct {
	Name  string
	Field string
	Slots []Slot
}

// Known categories. These tables are the only slot types the editing
// surface can address; entries of any other type are carried untouched.
var (
	Phones = Category{
		Name:  "phone",
		Field: vcard.FieldTelephone,
		Slots: []Slot{SlotHome, SlotCell, SlotWork, SlotFax, SlotPager, SlotVoice, SlotVideo, SlotText},
	}
	Emails = Category{
		Name:  "email",
		Field: vcard.FieldEmail,
		Slots: []Slot{SlotInternet, SlotHome, SlotWork},
	}
	Websites = Category{
		Name:  "url",
		Field: vcard.FieldURL,
		Slots: []Slot{SlotHome, SlotWork},
	}
)

// Categories lists the categories handled by Merge, in merge order.
var Categories = []Category{Phones, Emails, Websites}

// HasSlot reports whether slot belongs to the category's table.
func (cat Category) HasSlot(slot Slot) bool {
	for _, s := range cat.Slots {
		if s == slot {
			return true
		}
	}
	return false
}

// Card is one contact record. Every property of the underlying vCard,
// modeled or not, is kept so that a write loses nothing.
type Card struct {
	vcard.Card
}

// New returns an empty card that can be written as-is.
func New() *Card {
	c := &Card{Card: make(vcard.Card)}
	c.SetValue(vcard.FieldVersion, config.VCardVersion)
	return c
}

// Wrap adopts an already decoded vCard.
func Wrap(vc vcard.Card) *Card {
	if vc == nil {
		vc = make(vcard.Card)
	}
	return &Card{Card: vc}
}

// Clone returns a deep copy. Mutating the copy never affects c.
func (c *Card) Clone() *Card {
	out := make(vcard.Card, len(c.Card))
	for k, fields := range c.Card {
		copied := make([]*vcard.Field, len(fields))
		for i, f := range fields {
			copied[i] = cloneField(f)
		}
		out[k] = copied
	}
	return &Card{Card: out}
}

func cloneField(f *vcard.Field) *vcard.Field {
	if f == nil {
		return nil
	}
	nf := &vcard.Field{Value: f.Value, Group: f.Group}
	if f.Params != nil {
		nf.Params = make(vcard.Params, len(f.Params))
		for k, v := range f.Params {
			nf.Params[k] = append([]string(nil), v...)
		}
	}
	return nf
}

// -----------------------------------------------------------------------------
// Scalars
// -----------------------------------------------------------------------------

// N components, in vCard order.
const (
	nFamily = iota
	nGiven
	nAdditional
	nPrefix
	nSuffix
	nParts
)

// Scalar accessors. Setters overwrite in place; see setScalar.

func (c *Card) FormattedName() string   { return c.Value(vcard.FieldFormattedName) }
func (c *Card) Title() string           { return c.Value(vcard.FieldTitle) }
func (c *Card) Birthday() string        { return c.Value(vcard.FieldBirthday) }
func (c *Card) UID() string             { return c.Value(vcard.FieldUID) }
func (c *Card) GivenName() string       { return c.nameParts()[nGiven] }
func (c *Card) FamilyName() string      { return c.nameParts()[nFamily] }
func (c *Card) AdditionalNames() string { return c.nameParts()[nAdditional] }

func (c *Card) SetFormattedName(v string) { setScalar(c, vcard.FieldFormattedName, v) }
func (c *Card) SetTitle(v string)         { setScalar(c, vcard.FieldTitle, v) }
func (c *Card) SetGivenName(v string)     { c.setNamePart(nGiven, v) }
func (c *Card) SetFamilyName(v string)    { c.setNamePart(nFamily, v) }
func (c *Card) SetAdditionalNames(v string) {
	c.setNamePart(nAdditional, v)
}

// DisplayName is the name shown in lists and matched by filters:
// the formatted name, or the structured name when FN is blank.
func (c *Card) DisplayName() string {
	if fn := strings.TrimSpace(c.FormattedName()); fn != "" {
		return fn
	}
	p := c.nameParts()
	var parts []string
	for _, s := range []string{p[nPrefix], p[nGiven], p[nAdditional], p[nFamily], p[nSuffix]} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// setScalar overwrites the first field in place, keeping its parameters and
// group. An empty value never creates a field.
func setScalar(c *Card, key, value string) {
	if f := c.Get(key); f != nil {
		f.Value = value
		return
	}
	if value != "" {
		c.Add(key, &vcard.Field{Value: value})
	}
}

// nameParts returns the N components with escaped semicolons resolved.
func (c *Card) nameParts() [nParts]string {
	p := c.rawNameParts()
	for i := range p {
		p[i] = strings.ReplaceAll(p[i], escapedSemicolon, ";")
	}
	return p
}

func (c *Card) rawNameParts() [nParts]string {
	var p [nParts]string
	f := c.Get(vcard.FieldName)
	if f == nil {
		return p
	}
	for i, s := range splitStructured(f.Value, nParts) {
		p[i] = s
	}
	return p
}

func (c *Card) setNamePart(idx int, value string) {
	f := c.Get(vcard.FieldName)
	if f == nil {
		if value == "" {
			return
		}
		f = &vcard.Field{}
		c.Add(vcard.FieldName, f)
	}
	p := c.rawNameParts()
	p[idx] = strings.ReplaceAll(value, ";", escapedSemicolon)
	f.Value = strings.Join(p[:], ";")
}

// go-vcard leaves "\;" undecoded, so inside a structured value it still
// marks a literal semicolon.
const escapedSemicolon = `\;`

// splitStructured splits a structured value on unescaped semicolons.
func splitStructured(v string, limit int) []string {
	var out []string
	var cur strings.Builder
	escaped := false
	for _, r := range v {
		switch {
		case escaped:
			cur.WriteRune('\\')
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ';' && len(out) < limit-1:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		cur.WriteRune('\\')
	}
	return append(out, cur.String())
}

// -----------------------------------------------------------------------------
// Typed categories
// -----------------------------------------------------------------------------

// Entries returns the category's fields in file order.
func (c *Card) Entries(cat Category) []*vcard.Field {
	return c.Card[cat.Field]
}

// First returns the first entry of the category typed as slot, or nil.
// This is the only entry the editing surface reads or writes for the slot.
func (c *Card) First(cat Category, slot Slot) *vcard.Field {
	for _, f := range c.Card[cat.Field] {
		if hasSlot(f, slot) {
			return f
		}
	}
	return nil
}

// SlotValue returns the value of the first entry for slot, or "".
func (c *Card) SlotValue(cat Category, slot Slot) string {
	if f := c.First(cat, slot); f != nil {
		return f.Value
	}
	return ""
}

// SetSlot writes value into the first entry for slot, appending a new entry
// when none exists. An empty value on a missing slot is a no-op.
func (c *Card) SetSlot(cat Category, slot Slot, value string) {
	if f := c.First(cat, slot); f != nil {
		f.Value = value
		return
	}
	if value != "" {
		c.Add(cat.Field, newSlotField(slot, value))
	}
}

func newSlotField(slot Slot, value string) *vcard.Field {
	return &vcard.Field{
		Value:  value,
		Params: vcard.Params{vcard.ParamType: {string(slot)}},
	}
}

// hasSlot matches TYPE values (comma lists included) and the bare
// parameters used by vCard 2.1 ("TEL;HOME:...").
func hasSlot(f *vcard.Field, slot Slot) bool {
	for k, vals := range f.Params {
		if strings.EqualFold(k, vcard.ParamType) {
			for _, v := range vals {
				for _, part := range strings.Split(v, ",") {
					if strings.EqualFold(strings.TrimSpace(part), string(slot)) {
						return true
					}
				}
			}
			continue
		}
		if strings.EqualFold(k, string(slot)) {
			return true
		}
	}
	return false
}

// AddressFields returns the raw ADR entries in file order.
func (c *Card) AddressFields() []*vcard.Field {
	return c.Card[vcard.FieldAddress]
}
