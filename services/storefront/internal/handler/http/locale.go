package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iflis7/iyuc-store/pkg/httputil"
	"github.com/iflis7/iyuc-store/services/storefront/internal/i18n"
)

// LocaleHandler serves the locale list and translation tables.
type LocaleHandler struct {
	dict    *i18n.Dictionary
	locales localeResolver
}

// NewLocaleHandler creates a new locale HTTP handler.
func NewLocaleHandler(dict *i18n.Dictionary, locales localeResolver) *LocaleHandler {
	return &LocaleHandler{dict: dict, locales: locales}
}

// LocalesResponse lists the backend content locales, the UI languages and the
// locale resolved for the request.
type LocalesResponse struct {
	Locales   []i18n.BackendLocale `json:"locales"`
	Languages []i18n.Language      `json:"languages"`
	Current   i18n.Locale          `json:"current"`
}

// Messages is a full translation table.
type Messages struct {
	Locale   i18n.Locale       `json:"locale"`
	Messages map[string]string `json:"messages"`
}

// ListLocales handles GET /api/v1/locales
func (h *LocaleHandler) ListLocales(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, LocalesResponse{
		Locales:   i18n.BackendLocales(),
		Languages: i18n.Languages(),
		Current:   h.locales.locale(r),
	})
}

// GetMessages handles GET /api/v1/i18n/{locale}. Unknown locales get the
// English table.
func (h *LocaleHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	locale := i18n.Normalize(chi.URLParam(r, "locale"))
	httputil.WriteData(w, http.StatusOK, Messages{Locale: locale, Messages: h.dict.Table(locale)})
}
