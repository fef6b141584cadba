package card

import (
	"github.com/emersion/go-vcard"
)

// Merge folds the values of an edited shadow card into stored.
//
// Scalars (FN, given/family/additional names, TITLE) are overwritten.
// Phones, emails and websites are reconciled slot by slot against the
// category tables:
//
//   - shadow has a value, stored has the slot: overwrite in place
//   - shadow has a value, stored lacks the slot: append an entry
//   - shadow is empty, stored has the slot: clear the value, keep the entry
//   - shadow is empty, stored lacks the slot: nothing
//
// Only the first entry per slot is ever touched. Duplicates, entries of
// unknown types and every other property are left as they were.
func Merge(stored, shadow *Card) {
	stored.SetFormattedName(shadow.FormattedName())
	stored.SetGivenName(shadow.GivenName())
	stored.SetFamilyName(shadow.FamilyName())
	stored.SetAdditionalNames(shadow.AdditionalNames())
	stored.SetTitle(shadow.Title())

	for _, cat := range Categories {
		mergeCategory(stored, shadow, cat)
	}
}

func mergeCategory(stored, shadow *Card, cat Category) {
	// An entry typed for several slots (TYPE=home,voice) is the first match
	// for each of them and receives one shadow value per slot. A value that
	// differs from the stored one wins over an unchanged one, and a new value
	// wins over a clear.
	type edit struct {
		orig, value string
		changed     bool
	}
	edits := make(map[*vcard.Field]*edit)

	for _, slot := range cat.Slots {
		want := shadow.SlotValue(cat, slot)
		have := stored.First(cat, slot)
		if have == nil {
			if want != "" {
				stored.Add(cat.Field, newSlotField(slot, want))
			}
			continue
		}

		e, ok := edits[have]
		if !ok {
			e = &edit{orig: have.Value, value: have.Value}
			edits[have] = e
		}
		if want == e.orig {
			continue
		}
		if !e.changed || (e.value == "" && want != "") {
			e.value, e.changed = want, true
		}
	}

	for f, e := range edits {
		f.Value = e.value
	}
}

// MergeAddresses applies the shadow's address list when it carries one.
// Addresses are edited as a whole list, so the shadow replaces the stored
// entries position by position; stored parameters are kept where the shadow
// entry has none. A shadow without ADR leaves the stored addresses alone.
func MergeAddresses(stored, shadow *Card) {
	incoming := shadow.AddressFields()
	if len(incoming) == 0 {
		return
	}

	current := stored.AddressFields()
	merged := make([]*vcard.Field, 0, len(incoming))
	for i, in := range incoming {
		if i < len(current) {
			f := current[i]
			f.Value = in.Value
			if len(in.Params) > 0 {
				f.Params = cloneField(in).Params
			}
			merged = append(merged, f)
			continue
		}
		merged = append(merged, cloneField(in))
	}
	stored.Card[vcard.FieldAddress] = merged
}
