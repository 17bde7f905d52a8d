package middleware

import (
	"io"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localesDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "locales")
}

func TestNewI18nLoadsBundledLocales(t *testing.T) {
	i, err := NewI18n(LangEN, localesDir(t))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{LangEN, LangVI}, i.GetSupportedLanguages())
}

func TestTranslateFallsBackToDefaultLang(t *testing.T) {
	i, err := NewI18n(LangEN, localesDir(t))
	require.NoError(t, err)

	msg := i.Translate("error.not_found", "fr", nil)
	assert.Equal(t, i.Translate("error.not_found", LangEN, nil), msg)
}

func TestTranslateVietnamese(t *testing.T) {
	i, err := NewI18n(LangEN, localesDir(t))
	require.NoError(t, err)

	msg := i.Translate("error.not_found", LangVI, nil)
	assert.NotEqual(t, "error.not_found", msg)
	assert.NotEqual(t, i.Translate("error.not_found", LangEN, nil), msg)
}

func TestI18nMiddlewareSetsLangFromAcceptLanguage(t *testing.T) {
	i, err := NewI18n(LangEN, localesDir(t))
	require.NoError(t, err)

	app := fiber.New()
	app.Use(I18nMiddleware(i))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("lang").(string))
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept-Language", "vi-VN,vi;q=0.9")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, LangVI, string(body))
}
