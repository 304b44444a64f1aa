package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDictionary(t *testing.T) *Dictionary {
	t.Helper()
	d, err := Load()
	require.NoError(t, err)
	return d
}

func TestT_FallbackChain(t *testing.T) {
	d := loadDictionary(t)

	assert.Equal(t, "Panier", d.T(French, "nav.cart"))
	assert.Equal(t, "Carrito", d.T(Spanish, "nav.cart"))
	assert.Equal(t, "Cart", d.T(English, "nav.cart"))
	assert.Equal(t, "Cart", d.T(Locale("de"), "nav.cart"))
	assert.Equal(t, "missing.key", d.T(French, "missing.key"))
}

func TestT_TaqbaylitOverlaysFrench(t *testing.T) {
	d := loadDictionary(t)

	assert.Equal(t, "Tamacahut-nneɣ", d.T(Taqbaylit, "nav.our_story"))
	assert.Equal(t, "Streetwear s yiman amaziɣ", d.T(Taqbaylit, "hero.subtitle"))
	// keys without an override come from the French table
	assert.Equal(t, d.T(French, "nav.cart"), d.T(Taqbaylit, "nav.cart"))
}

func TestTable(t *testing.T) {
	d := loadDictionary(t)

	en := d.Table(English)
	fr := d.Table(French)
	assert.Len(t, fr, len(en))
	assert.Equal(t, "Accueil", fr["nav.home"])

	taq := d.Table(Taqbaylit)
	assert.Len(t, taq, len(en))
	assert.Equal(t, "Tamacahut-nneɣ", taq["nav.our_story"])

	// mutating a returned table must not leak into the dictionary
	fr["nav.home"] = "changed"
	assert.Equal(t, "Accueil", d.T(French, "nav.home"))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want Locale
	}{
		{"fr", French},
		{" ES ", Spanish},
		{"taq", Taqbaylit},
		{"en", English},
		{"de", English},
		{"", English},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   Locale
	}{
		{"empty", "", English},
		{"french canada", "fr-CA,fr;q=0.9,en;q=0.8", French},
		{"spanish first", "es-MX, en;q=0.5", Spanish},
		{"kabyle", "kab", Taqbaylit},
		{"unsupported", "ja-JP", English},
		{"garbage", ";;;q=abc", English},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Negotiate(tt.header))
		})
	}
}

func TestLanguages(t *testing.T) {
	langs := Languages()
	require.Len(t, langs, 4)
	assert.Equal(t, Language{Code: Taqbaylit, Label: "Taqbaylit"}, langs[3])
	assert.Equal(t, "Français", langs[1].Label)

	langs[0].Label = "changed"
	assert.Equal(t, "English", Languages()[0].Label)
}

func TestBackendLocales(t *testing.T) {
	assert.Equal(t, []BackendLocale{
		{Code: "fr", Name: "French"},
		{Code: "en", Name: "English"},
		{Code: "es", Name: "Spanish"},
	}, BackendLocales())
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("taq"))
	assert.False(t, Supported("kab"))
}
