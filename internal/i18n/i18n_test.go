package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestT_BothLanguages(t *testing.T) {
	assert.Equal(t, "Winners", T(LangEnglish, "winners"))
	assert.Equal(t, "विजेताहरू", T(LangNepali, "winners"))
}

func TestT_FallbackToEnglish(t *testing.T) {
	// unknown language falls all the way back to the English catalog
	assert.Equal(t, "Winners", T("fr", "winners"))
}

func TestT_UnknownKeyReturnsKey(t *testing.T) {
	assert.Equal(t, "noSuchKey", T(LangEnglish, "noSuchKey"))
	assert.Equal(t, "noSuchKey", T(LangNepali, "noSuchKey"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, LangNepali, Normalize("ne"))
	assert.Equal(t, LangEnglish, Normalize(""))
	assert.Equal(t, LangEnglish, Normalize("de"))
}

func TestCatalogsCoverSameKeys(t *testing.T) {
	for key := range catalogs[LangEnglish] {
		_, ok := catalogs[LangNepali][key]
		assert.True(t, ok, "ne catalog missing key %q", key)
	}
	for key := range catalogs[LangNepali] {
		_, ok := catalogs[LangEnglish][key]
		assert.True(t, ok, "en catalog missing key %q", key)
	}
}
