package advice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/fcobackup/fco-backup-fetcher/internal/utils"
)

// Selectors on gov.uk. The index lists countries under .countries-list;
// a country page links its parts from the travel advice nav.
const (
	countryListSelector = ".countries-list a"
	partsNavSelector    = `nav[aria-label="Travel advice pages"] li`
	partTitleSelector   = ".part-title"
	partBodySelector    = ".govuk-govspeak"
)

// Renderer produces rendered page HTML. Restart discards broken browser
// state between retry attempts.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
	Restart()
}

// Crawler fetches and parses travel advice pages through a Renderer
type Crawler struct {
	renderer Renderer
	limiter  *rate.Limiter
	indexURL string
}

// NewCrawler creates a Crawler. pageDelay spaces out page loads; zero
// disables the limiter.
func NewCrawler(renderer Renderer, indexURL string, pageDelay time.Duration) *Crawler {
	return &Crawler{
		renderer: renderer,
		limiter:  newLimiter(pageDelay.Seconds()),
		indexURL: indexURL,
	}
}

// ListCountries renders the country index and returns every linked country
func (c *Crawler) ListCountries(ctx context.Context) ([]Country, error) {
	html, err := c.render(ctx, c.indexURL)
	if err != nil {
		return nil, fmt.Errorf("error listing countries: %w", err)
	}
	countries, err := parseCountryList(html, c.indexURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing country list: %w", err)
	}
	return countries, nil
}

// FetchCountry renders a country's page and every linked part, returning the
// pages in navigation order.
func (c *Crawler) FetchCountry(ctx context.Context, countryURL string) ([]Page, error) {
	html, err := c.render(ctx, countryURL)
	if err != nil {
		return nil, fmt.Errorf("error fetching %s: %w", countryURL, err)
	}

	pages, links, err := parseCountryParts(html, countryURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", countryURL, err)
	}

	for _, link := range links {
		partHTML, err := c.render(ctx, link)
		if err != nil {
			return nil, fmt.Errorf("error fetching part %s: %w", link, err)
		}
		page, err := parsePage(partHTML)
		if err != nil {
			return nil, fmt.Errorf("error parsing part %s: %w", link, err)
		}
		pages = append(pages, page)
	}

	return pages, nil
}

// render loads a page through the browser with rate limiting and retries,
// restarting the browser between failed attempts.
func (c *Crawler) render(ctx context.Context, url string) (string, error) {
	return utils.Retry(func() (string, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
		return c.renderer.Render(ctx, url)
	}, c.renderer.Restart)
}

func parseCountryList(html, baseURL string) ([]Country, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var countries []Country
	doc.Find(countryListSelector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		countries = append(countries, Country{
			Name: strings.TrimSpace(s.Text()),
			URL:  resolveURL(baseURL, href),
		})
	})

	if len(countries) == 0 {
		return nil, fmt.Errorf("no countries found under %q", countryListSelector)
	}
	return countries, nil
}

// parseCountryParts reads the travel advice navigation. A nav item without a
// link is the part rendered on the current page; an item with a link is a
// part to fetch separately.
func parseCountryParts(html, baseURL string) ([]Page, []string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, err
	}

	var (
		pages    []Page
		links    []string
		parseErr error
	)

	doc.Find(partsNavSelector).Each(func(_ int, item *goquery.Selection) {
		if parseErr != nil {
			return
		}
		anchors := item.Find("a")
		switch anchors.Length() {
		case 0:
			page, err := parsePageDoc(doc)
			if err != nil {
				parseErr = err
				return
			}
			pages = append(pages, page)
		case 1:
		default:
			utils.GetLogger().Warn("Found more than one link in a table of contents, picking first")
		}
		if anchors.Length() > 0 {
			if href, ok := anchors.First().Attr("href"); ok {
				links = append(links, resolveURL(baseURL, href))
			}
		}
	})

	if parseErr != nil {
		return nil, nil, parseErr
	}
	return pages, links, nil
}

func parsePage(html string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Page{}, err
	}
	return parsePageDoc(doc)
}

func parsePageDoc(doc *goquery.Document) (Page, error) {
	title := doc.Find(partTitleSelector).First()
	if title.Length() == 0 {
		return Page{}, fmt.Errorf("no %q element found", partTitleSelector)
	}
	body := doc.Find(partBodySelector).First()
	if body.Length() == 0 {
		return Page{}, fmt.Errorf("no %q element found", partBodySelector)
	}
	return Page{
		Title:   strings.TrimSpace(title.Text()),
		Content: strings.TrimSpace(body.Text()) + "\n",
	}, nil
}
