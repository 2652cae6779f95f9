package crawler

import (
	"fmt"

	apperrors "sjsage522/listingwatcher/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// attribute declares how one item field is read from a fragment. Optional
// attributes resolve to nil when their marker is missing; a missing marker
// on a required attribute fails the whole item.
type attribute struct {
	name     string
	required bool
	extract  func(*goquery.Selection) (string, error)
}

// extractor is the declared attribute set of one site
type extractor struct {
	provider   string
	attributes []attribute
}

func (e extractor) run(s *goquery.Selection) (map[string]*string, error) {
	values := make(map[string]*string, len(e.attributes))
	for _, attr := range e.attributes {
		value, err := attr.extract(s)
		if err != nil {
			if attr.required {
				return nil, fmt.Errorf("%s item %s: %w", e.provider, attr.name, err)
			}
			values[attr.name] = nil
			continue
		}
		values[attr.name] = &value
	}
	return values, nil
}

// markers looks up page markers and reports missing ones as lookup errors
type markers struct {
	provider string
}

// first returns the first descendant of s matching selector
func (m markers) first(s *goquery.Selection, selector string) (*goquery.Selection, error) {
	sel := s.Find(selector).First()
	if sel.Length() == 0 {
		return nil, apperrors.NewLookup(m.provider, selector)
	}
	return sel, nil
}

// attr returns the named attribute of the first descendant matching selector
func (m markers) attr(s *goquery.Selection, selector, name string) (string, error) {
	sel, err := m.first(s, selector)
	if err != nil {
		return "", err
	}
	value, exists := sel.Attr(name)
	if !exists {
		return "", apperrors.NewLookup(m.provider, selector+"["+name+"]")
	}
	return value, nil
}
