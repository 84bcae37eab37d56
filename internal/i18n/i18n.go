package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/amoylab/rentmanager/internal/common/cnst"

	"github.com/BurntSushi/toml"
	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var locales embed.FS

var supported = []language.Tag{language.English, language.Vietnamese}

// I18n holds the message bundle and the language matcher
type I18n struct {
	bundle      *i18n.Bundle
	matcher     language.Matcher
	defaultLang string
}

// New loads the embedded bundles. extraDir, when set, is scanned for
// additional *.toml files that override embedded messages.
func New(defaultLang, extraDir string) (*I18n, error) {
	base := language.Make(defaultLang)
	bundle := i18n.NewBundle(base)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		name := path.Join("locales", e.Name())
		data, err := locales.ReadFile(name)
		if err != nil {
			return nil, err
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	}

	if extraDir != "" {
		if err := loadDir(bundle, extraDir); err != nil {
			return nil, err
		}
	}

	return &I18n{
		bundle:      bundle,
		matcher:     language.NewMatcher(supported),
		defaultLang: normalize(base),
	}, nil
}

func loadDir(bundle *i18n.Bundle, dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read translations directory: %w", err)
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".toml") {
			continue
		}
		if _, err := bundle.LoadMessageFile(filepath.Join(dir, f.Name())); err != nil {
			return fmt.Errorf("load %s: %w", f.Name(), err)
		}
	}
	return nil
}

// Translate returns the localized message, or msgID itself when unknown
func (i *I18n) Translate(msgID, lang string, data map[string]any) string {
	localizer := i18n.NewLocalizer(i.bundle, lang, i.defaultLang)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: data,
	})
	if err != nil {
		return msgID
	}
	return msg
}

// Resolve picks the response language: X-Lang, then Accept-Language, then
// the configured default.
func (i *I18n) Resolve(xLang, acceptLanguage string) string {
	for _, header := range []string{xLang, acceptLanguage} {
		if strings.TrimSpace(header) == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(header)
		if err != nil || len(tags) == 0 {
			continue
		}
		if _, idx, conf := i.matcher.Match(tags...); conf != language.No {
			return normalize(supported[idx])
		}
	}
	return i.defaultLang
}

// Middleware stores the resolved language in the gin context
func (i *I18n) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := i.Resolve(c.GetHeader(cnst.XLang), c.GetHeader("Accept-Language"))
		c.Set(cnst.XLang, lang)
		c.Header("Content-Language", lang)
		c.Next()
	}
}

// Lang returns the language stored by Middleware, or the default
func (i *I18n) Lang(c *gin.Context) string {
	if lang := c.GetString(cnst.XLang); lang != "" {
		return lang
	}
	return i.defaultLang
}

// TranslateContext translates msgID in the request's language
func (i *I18n) TranslateContext(c *gin.Context, msgID string, data map[string]any) string {
	return i.Translate(msgID, i.Lang(c), data)
}

func normalize(tag language.Tag) string {
	b, _ := tag.Base()
	switch b.String() {
	case cnst.LangVI:
		return cnst.LangVI
	default:
		return cnst.LangEN
	}
}
