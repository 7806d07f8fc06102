package extract

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/zarif007/RepliKat/pkg/parse"
	"github.com/zarif007/RepliKat/pkg/utils"
)

// LinkExtractor finds in-domain child links on a fetched page
type LinkExtractor struct {
	log *logrus.Entry
}

// NewLinkExtractor creates a LinkExtractor
func NewLinkExtractor(log *logrus.Entry) *LinkExtractor {
	return &LinkExtractor{log: log}
}

// Links parses the HTML body of a successfully fetched page and returns the
// distinct canonical URLs of anchors that survive normalization and the
// strict same-host filter. Duplicates within the page collapse to one; order
// is not significant.
func (le *LinkExtractor) Links(body []byte, base *url.URL, rootHost string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML from '%s': %w", utils.ErrParsing, base.String(), err)
	}

	found := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, element *goquery.Selection) {
		href, exists := element.Attr("href")
		if !exists {
			return
		}

		canonical, ok := parse.ResolveLink(href, base)
		if !ok {
			return // Empty, non-navigable scheme, or unparsable
		}

		linkURL, err := url.Parse(canonical)
		if err != nil {
			return
		}
		if !parse.SameHost(linkURL, rootHost) {
			le.log.Debugf("Skipping cross-domain link: %s", canonical)
			return
		}

		if _, seen := found[canonical]; !seen {
			found[canonical] = struct{}{}
			links = append(links, canonical)
		}
	})

	le.log.WithFields(logrus.Fields{"base": base.String(), "links": len(links)}).Debug("Link extraction finished")
	return links, nil
}
