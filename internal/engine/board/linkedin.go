package board

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"github.com/anatolykoptev/go-apply/internal/engine"
)

// LinkedIn Guest API endpoint — returns HTML, no auth required.
const linkedInGuestAPI = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"

const tilesPerPage = 25

// experienceMap maps experience-level config keys to LinkedIn filter codes.
var experienceMap = map[string]string{
	"internship": "1",
	"entry":      "2",
	"associate":  "3",
	"mid-senior": "4",
	"director":   "5",
	"executive":  "6",
}

// jobTypeMap maps job-type config keys to LinkedIn filter codes.
var jobTypeMap = map[string]string{
	"full-time":  "F",
	"part-time":  "P",
	"contract":   "C",
	"temporary":  "T",
	"internship": "I",
	"volunteer":  "V",
}

// timeRangeMap maps the date config value to LinkedIn seconds-based codes.
var timeRangeMap = map[string]string{
	"24_hours": "r86400",
	"week":     "r604800",
	"month":    "r2592000",
}

// jobIDRe extracts job ID from LinkedIn job URLs.
// Matches both /jobs/view/4335742219 and /jobs/view/golang-developer-at-ceipal-4335742219
var jobIDRe = regexp.MustCompile(`/jobs/view/[^?]*?(\d{7,})`)

// ExtractJobID extracts a LinkedIn job ID from a URL.
func ExtractJobID(jobURL string) string {
	if m := jobIDRe.FindStringSubmatch(jobURL); m != nil {
		return m[1]
	}
	return ""
}

// GuestBoard implements JobsPage over the LinkedIn Guest API.
type GuestBoard struct{}

// NewGuestBoard returns the guest-API search implementation.
func NewGuestBoard() *GuestBoard { return &GuestBoard{} }

// Page fetches and parses one search-results page.
func (b *GuestBoard) Page(ctx context.Context, position, location string, page int) ([]Tile, error) {
	u, err := url.Parse(linkedInGuestAPI)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("keywords", position)
	if location != "" {
		q.Set("location", location)
	}
	q.Set("start", fmt.Sprintf("%d", page*tilesPerPage))
	q.Set("f_LF", "f_AL") // Easy Apply only

	if engine.Cfg.SortBy == "relevance" {
		q.Set("sortBy", "R")
	} else {
		q.Set("sortBy", "DD") // sort by date
	}
	if engine.Cfg.Distance > 0 {
		q.Set("distance", fmt.Sprintf("%d", engine.Cfg.Distance))
	}
	if codes := mapCodes(engine.Cfg.ExperienceLevels, experienceMap); codes != "" {
		q.Set("f_E", codes)
	}
	if codes := mapCodes(engine.Cfg.JobTypes, jobTypeMap); codes != "" {
		q.Set("f_JT", codes)
	}
	if codes := workplaceCodes(); codes != "" {
		q.Set("f_WT", codes)
	}
	if v, ok := timeRangeMap[engine.Cfg.DatePosted]; ok {
		q.Set("f_TPR", v)
	}
	u.RawQuery = q.Encode()

	body, err := guestRequest(ctx, u.String())
	if err != nil {
		return nil, err
	}
	return parseTiles(string(body)), nil
}

// mapCodes collects filter codes for every enabled key, sorted for stable URLs.
func mapCodes(enabled map[string]bool, codes map[string]string) string {
	var out []string
	for key, on := range enabled {
		if !on {
			continue
		}
		norm := strings.ReplaceAll(strings.ReplaceAll(strings.ToLower(key), "_", "-"), " ", "-")
		norm = strings.TrimSuffix(norm, "-level")
		if code, ok := codes[norm]; ok {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

// workplaceCodes builds the f_WT filter. All three or none selected means no
// filter at all.
func workplaceCodes() string {
	var out []string
	if engine.Cfg.Onsite {
		out = append(out, "1")
	}
	if engine.Cfg.Remote {
		out = append(out, "2")
	}
	if engine.Cfg.Hybrid {
		out = append(out, "3")
	}
	if len(out) == 0 || len(out) == 3 {
		return ""
	}
	return strings.Join(out, ",")
}

// guestRequest fetches a LinkedIn URL using BrowserClient (Chrome TLS
// fingerprint) when available, falling back to the standard net/http client.
// LinkedIn blocks non-browser TLS fingerprints, so BrowserClient is strongly
// preferred.
func guestRequest(ctx context.Context, targetURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, engine.Cfg.FetchTimeout)
	defer cancel()

	engine.IncrGuestFetches()

	if engine.Cfg.BrowserClient != nil {
		headers := engine.ChromeHeaders()
		headers["accept"] = "text/html,application/xhtml+xml,application/xml;q=0.9"
		headers["referer"] = "https://www.linkedin.com/"

		return engine.RetryDo(ctx, engine.DefaultRetryConfig, func() ([]byte, error) {
			d, _, s, e := engine.Cfg.BrowserClient.Do("GET", targetURL, headers, nil)
			if e != nil {
				return nil, e
			}
			if s != 200 {
				return nil, fmt.Errorf("linkedin status %d", s)
			}
			return d, nil
		})
	}

	req, err := http.NewRequestWithContext(ctx, "GET", targetURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", engine.UserAgentChrome)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("linkedin status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 512*1024))
}

// parseTiles extracts job tiles from the Guest API HTML response using
// golang.org/x/net/html for robust tree-based parsing.
func parseTiles(body string) []Tile {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var tiles []Tile
	for _, li := range findElements(doc, "li") {
		if t := parseTile(li); t.Title != "" && t.Link != "" {
			tiles = append(tiles, t)
		}
	}
	return tiles
}

// parseTile extracts a Tile from an <li> node.
func parseTile(li *html.Node) Tile {
	var t Tile

	if link := findByClass(li, "base-card__full-link"); link != nil {
		if href := getAttr(link, "href"); href != "" {
			t.Link = strings.TrimSpace(strings.SplitN(href, "?", 2)[0])
		}
	}
	if n := findByClass(li, "base-search-card__title"); n != nil {
		t.Title = strings.TrimSpace(textContent(n))
	}
	if n := findByClass(li, "base-search-card__subtitle"); n != nil {
		t.Company = strings.TrimSpace(textContent(n))
	}
	if n := findByClass(li, "job-search-card__location"); n != nil {
		t.Location = strings.TrimSpace(textContent(n))
	}

	// Prefer ISO datetime attribute over relative text
	if n := findByClass(li, "job-search-card__listdate"); n != nil {
		if dt := getAttr(n, "datetime"); dt != "" {
			t.Posted = strings.TrimSpace(dt)
		} else {
			t.Posted = strings.TrimSpace(textContent(n))
		}
	}

	// A footer state like "Applied" means the account already engaged.
	if n := findByClass(li, "job-search-card__footer-state"); n != nil {
		switch state := strings.ToLower(strings.TrimSpace(textContent(n))); {
		case strings.Contains(state, "applied"):
			t.ApplyMethod = ApplyApplied
		case strings.Contains(state, "continue"):
			t.ApplyMethod = ApplyContinue
		}
	}
	if t.ApplyMethod == "" {
		t.ApplyMethod = ApplyEasy
	}

	if n := findByClass(li, "num-applicants__caption"); n != nil {
		t.ApplicantsText = strings.TrimSpace(textContent(n))
	}

	return t
}

// Describe fetches the posting page and fills the job's description as
// markdown, plus the recruiter link when present.
func (b *GuestBoard) Describe(ctx context.Context, job *Job) error {
	body, err := guestRequest(ctx, job.Link)
	if err != nil {
		return fmt.Errorf("describe %s: %w", job.ID, err)
	}

	page := string(body)
	descHTML := extractDescriptionHTML(page)
	if descHTML == "" {
		return fmt.Errorf("describe %s: no description found", job.ID)
	}

	md, err := htmltomarkdown.ConvertString(descHTML)
	if err != nil || md == "" {
		return fmt.Errorf("describe %s: markdown conversion failed", job.ID)
	}
	job.Description = md
	job.RecruiterLink = extractRecruiterLink(page)
	return nil
}

// extractDescriptionHTML extracts the job-description HTML section.
func extractDescriptionHTML(body string) string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ""
	}
	classes := []string{
		"show-more-less-html__markup",
		"description__text",
		"job-description",
	}
	for _, cls := range classes {
		if n := findByClass(doc, cls); n != nil {
			return renderChildren(n)
		}
	}
	return ""
}

// extractRecruiterLink pulls the hiring-contact profile URL, best effort.
func extractRecruiterLink(body string) string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ""
	}
	if n := findByClass(doc, "message-the-recruiter"); n != nil {
		for _, a := range findElements(n, "a") {
			if href := getAttr(a, "href"); strings.Contains(href, "/in/") {
				return engine.NormalizeLink(href)
			}
		}
	}
	return ""
}
