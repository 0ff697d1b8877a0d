package locale

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed messages/*.toml
var messageFiles embed.FS

// Message IDs in the embedded message files
const (
	msgEANTypeError            = "EANTypeError"
	msgCheckingEANCode         = "CheckingEANCode"
	msgSetLocaleCookies        = "SetLocaleCookies"
	msgFetchDepositInformation = "FetchDepositInformation"
	msgTotalValue              = "TotalValue"
)

// Catalog holds the localized console and error messages
type Catalog struct {
	bundle     *i18n.Bundle
	localizers map[Locale]*i18n.Localizer
}

// Messages is the catalog loaded from the embedded message files
var Messages = MustNewCatalog()

// NewCatalog loads the embedded message files into a new Catalog
func NewCatalog() (*Catalog, error) {
	// Finnish must stay the bundle default: a message missing in Finnish
	// (SetLocaleCookies) then localizes to "" instead of another language.
	bundle := i18n.NewBundle(language.Finnish)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	paths, err := fs.Glob(messageFiles, "messages/*.toml")
	if err != nil {
		return nil, fmt.Errorf("listing message files: %w", err)
	}
	for _, path := range paths {
		if _, err := bundle.LoadMessageFileFS(messageFiles, path); err != nil {
			return nil, fmt.Errorf("loading message file %s: %w", path, err)
		}
	}

	c := &Catalog{
		bundle:     bundle,
		localizers: make(map[Locale]*i18n.Localizer, len(names)),
	}
	for _, l := range All() {
		c.localizers[l] = i18n.NewLocalizer(bundle, l.Tag().String())
	}
	return c, nil
}

// MustNewCatalog is NewCatalog that panics on error
func MustNewCatalog() *Catalog {
	c, err := NewCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// EANTypeError is the error text for an EAN that is not an integer
func (c *Catalog) EANTypeError(l Locale) string {
	return c.localize(l, msgEANTypeError, nil)
}

// CheckingEANCode is the status line logged when a lookup starts
func (c *Catalog) CheckingEANCode(l Locale, ean any) string {
	return c.localize(l, msgCheckingEANCode, map[string]any{"EAN": ean})
}

// SetLocaleCookies is the status line logged before switching the service
// locale. It is empty for FI.
func (c *Catalog) SetLocaleCookies(l Locale) string {
	return c.localize(l, msgSetLocaleCookies, nil)
}

// FetchDepositInformation is the status line logged before the lookup POST
func (c *Catalog) FetchDepositInformation(l Locale) string {
	return c.localize(l, msgFetchDepositInformation, nil)
}

// TotalValue labels the summed deposit of several lookups
func (c *Catalog) TotalValue(l Locale) string {
	return c.localize(l, msgTotalValue, nil)
}

func (c *Catalog) localize(l Locale, id string, data map[string]any) string {
	localizer, ok := c.localizers[l]
	if !ok {
		return ""
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return ""
	}
	return msg
}
