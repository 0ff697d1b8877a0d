package deposit

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/onsi/gomega/ghttp"
)

const (
	noccoEAN  = 7340131601954
	fakeToken = "0f8a4c2e-csrf"
)

type productText struct {
	message   string
	recycling string
}

// Texts the real service answers with for the NOCCO can
var productTexts = map[string]productText{
	"FI": {"Juomapakkaus on rekisteröity PALPAn pantilliseen palautusjärjestelmään.", "Tölkki"},
	"SV": {"Dryckesförpackningen hör till PALPAs retursystem.", "Burk"},
	"EN": {"The beverage package is registered to PALPAs return system.", "Can"},
}

var invalidEANTexts = map[string]string{
	"FI": "Tarkistahan, että syötit numerosarjan oikein.",
	"SV": "Kontrollera nummerserien",
	"EN": "Check the barcode numbers",
}

// fakeService imitates the PALPA lookup page: a session cookie from the page,
// a locale cookie from /locale/{NAME} and a CSRF protected JSON lookup
type fakeService struct {
	server *ghttp.Server

	mu           sync.Mutex
	page         string
	pageStatus   int
	deposit      string
	rawLookup    string
	lookupStatus int
	lookupBodies []string
}

func newFakeService() *fakeService {
	f := &fakeService{
		server: ghttp.NewServer(),
		page: fmt.Sprintf(`<!DOCTYPE html>
<html lang="fi">
<head><title>Pantillisuus</title></head>
<body class="essi" %s="%s">
<main id="app"></main>
</body>
</html>`, CSRFTokenAttr, fakeToken),
		pageStatus: http.StatusOK,
		deposit:    "0,15 €",
	}
	f.server.RouteToHandler(http.MethodGet, "/pantillisuus", f.handlePage)
	f.server.RouteToHandler(http.MethodGet, regexp.MustCompile(`^/locale/[A-Z]+$`), f.handleLocale)
	f.server.RouteToHandler(http.MethodPost, "/pantillisuus", f.handleLookup)
	return f
}

func (f *fakeService) set(fn func(f *fakeService)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeService) bodies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lookupBodies...)
}

func (f *fakeService) paths() []string {
	var paths []string
	for _, r := range f.server.ReceivedRequests() {
		paths = append(paths, r.Method+" "+r.URL.Path)
	}
	return paths
}

func (f *fakeService) handlePage(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: "essi_session", Value: "s-1", Path: "/"})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(f.pageStatus)
	io.WriteString(w, f.page)
}

func (f *fakeService) handleLocale(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie("essi_session"); err != nil {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:  "essi_locale",
		Value: strings.TrimPrefix(r.URL.Path, "/locale/"),
		Path:  "/",
	})
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeService) handleLookup(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	f.lookupBodies = append(f.lookupBodies, string(body))

	w.Header().Set("Content-Type", "application/json")
	if _, err := r.Cookie("essi_session"); err != nil || r.Header.Get("X-CSRF-TOKEN") != fakeToken {
		w.WriteHeader(419)
		io.WriteString(w, `{"message":"CSRF token mismatch."}`)
		return
	}

	if f.lookupStatus != 0 {
		w.WriteHeader(f.lookupStatus)
	}
	if f.rawLookup != "" {
		io.WriteString(w, f.rawLookup)
		return
	}

	lang := "FI"
	if c, err := r.Cookie("essi_locale"); err == nil {
		lang = c.Value
	}

	var req struct {
		EAN string `json:"ean"`
	}
	if err := json.Unmarshal(body, &req); err != nil || req.EAN != fmt.Sprint(noccoEAN) {
		json.NewEncoder(w).Encode(map[string]any{
			"payLoad": nil,
			"message": invalidEANTexts[lang],
		})
		return
	}

	texts := productTexts[lang]
	json.NewEncoder(w).Encode(map[string]any{
		"payLoad": map[string]string{
			"message":   texts.message,
			"name":      "NOCCO Focus Raspberry Blast",
			"recycling": texts.recycling,
			"deposit":   f.deposit,
			"type":      "APPROVED_OR_CONDITIONAL_NOT_34",
		},
		"message": "",
	})
}
