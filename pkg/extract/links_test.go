package extract

import (
	"io"
	"net/url"
	"sort"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func extractFrom(t *testing.T, html, baseURL, rootHost string) []string {
	t.Helper()
	base, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("parse base %q: %v", baseURL, err)
	}
	links, err := NewLinkExtractor(testLogger()).Links([]byte(html), base, rootHost)
	if err != nil {
		t.Fatalf("Links: %v", err)
	}
	sort.Strings(links)
	return links
}

func TestLinksBasicExtraction(t *testing.T) {
	html := `<html><body>
		<a href="/about">About</a>
		<a href="/pricing">Pricing</a>
		<a href="https://example.com/contact">Contact</a>
	</body></html>`

	links := extractFrom(t, html, "https://example.com/", "example.com")
	assert.Equal(t, []string{
		"https://example.com/about",
		"https://example.com/contact",
		"https://example.com/pricing",
	}, links)
}

func TestLinksRelativeResolution(t *testing.T) {
	html := `<a href="getting-started">Start</a><a href="../api">API</a>`
	links := extractFrom(t, html, "https://example.com/docs/guide/intro", "example.com")
	assert.Equal(t, []string{
		"https://example.com/docs/api",
		"https://example.com/docs/guide/getting-started",
	}, links)
}

func TestLinksDeduplication(t *testing.T) {
	// Query strings and fragments collapse to the same canonical URL
	html := `
		<a href="/a">1</a>
		<a href="/a?utm=x">2</a>
		<a href="/a#section">3</a>
		<a href="/a/">4</a>`
	links := extractFrom(t, html, "https://example.com/", "example.com")
	assert.Equal(t, []string{"https://example.com/a"}, links)
}

func TestLinksCrossDomainFiltered(t *testing.T) {
	html := `
		<a href="https://other.com/x">other</a>
		<a href="https://blog.example.com/x">subdomain</a>
		<a href="https://www.example.com/x">www</a>
		<a href="/keep">keep</a>`
	links := extractFrom(t, html, "https://example.com/", "example.com")
	assert.Equal(t, []string{"https://example.com/keep"}, links)
}

func TestLinksNonNavigableSchemesFiltered(t *testing.T) {
	html := `
		<a href="javascript:void(0)">js</a>
		<a href="#top">anchor</a>
		<a href="mailto:x@example.com">mail</a>
		<a href="tel:+1555">tel</a>
		<a href="data:text/plain,x">data</a>
		<a href="blob:https://example.com/x">blob</a>
		<a href="">empty</a>
		<a href="/real">real</a>`
	links := extractFrom(t, html, "https://example.com/", "example.com")
	assert.Equal(t, []string{"https://example.com/real"}, links)
}

func TestLinksNoAnchors(t *testing.T) {
	links := extractFrom(t, `<html><body><p>no links here</p></body></html>`, "https://example.com/", "example.com")
	assert.Empty(t, links)
}

func TestLinksMalformedHrefSkipped(t *testing.T) {
	html := `<a href="http://%zz">bad</a><a href="/ok">ok</a>`
	links := extractFrom(t, html, "https://example.com/", "example.com")
	assert.Equal(t, []string{"https://example.com/ok"}, links)
}
