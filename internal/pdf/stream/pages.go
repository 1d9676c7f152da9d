package stream

import (
	"iter"
	"strings"

	pdferrors "github.com/gridelectric/incident-extractor/internal/pdf/errors"
)

// DefaultFilter is the only compression filter ticket pages are written with
const DefaultFilter = "FlateDecode"

// Fingerprint turns caption words into the show-text literals that a
// qualifying page must contain, e.g. "Incident" -> "(Incident ) Tj".
func Fingerprint(captions []string) []string {
	literals := make([]string, len(captions))
	for i, word := range captions {
		literals[i] = "(" + word + " ) Tj"
	}
	return literals
}

// Matches reports whether decoded content carries every fingerprint literal
func Matches(text string, fingerprint []string) bool {
	for _, literal := range fingerprint {
		if !strings.Contains(text, literal) {
			return false
		}
	}
	return true
}

// Pages yields (object id, decoded content) for every compressed stream that
// decodes cleanly and carries the fingerprint. Objects that do not qualify are
// recorded in skips, which may be nil.
func Pages(data []byte, fingerprint []string, skips *pdferrors.ErrorCollection) iter.Seq2[int, string] {
	decoder := GetFilterDecoder(DefaultFilter)

	return func(yield func(int, string) bool) {
		for obj := range Locate(data) {
			if !obj.HasFilter(decoder.Name()) {
				skips.Add(pdferrors.NewObjectError(pdferrors.ErrorTypeInvalidFilter,
					"object has no "+decoder.Name()+" filter", obj.Offset, obj.ID))
				continue
			}
			if !obj.Terminated {
				skips.Add(pdferrors.NewObjectError(pdferrors.ErrorTypeMalformedObject,
					"stream has no endstream marker", obj.Offset, obj.ID))
				continue
			}

			decoded, err := decoder.Decode(obj.Body)
			if err != nil {
				skips.Add(pdferrors.NewObjectError(pdferrors.ErrorTypeInvalidStream,
					"stream failed to decompress", obj.Offset, obj.ID).WithContext(err.Error()))
				continue
			}

			text := DecodeLatin1(decoded)
			if !Matches(text, fingerprint) {
				skips.Add(pdferrors.NewObjectError(pdferrors.ErrorTypeNotApplicable,
					"stream is not an incident summary page", obj.Offset, obj.ID))
				continue
			}

			if !yield(obj.ID, text) {
				return
			}
		}
	}
}
