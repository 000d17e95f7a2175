package sources

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
	"github.com/orestes-garcia-martinez/careerclaw/internal/textsignal"
)

const (
	RemoteOKName       = "remoteok"
	RemoteOKURL        = "https://remoteok.com/remote-dev-jobs.rss"
	RemoteOKMaxItems   = 50
	unknownCompany     = "Unknown"
	titleCompanySep    = " at "
	companyTitlePrefix = ": "
)

var pubDateLayouts = []string{time.RFC1123Z, time.RFC1123, "02 Jan 2006 15:04:05 -0700"}

// Tags RemoteOK uses as region markers.
var knownLocations = map[string]string{
	"worldwide":      "Worldwide",
	"anywhere":       "Anywhere",
	"usa":            "USA",
	"us":             "USA",
	"united states":  "USA",
	"uk":             "UK",
	"united kingdom": "UK",
	"europe":         "Europe",
	"canada":         "Canada",
	"australia":      "Australia",
	"latin america":  "Latin America",
	"latam":          "Latin America",
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        string   `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Description string   `xml:"description"`
	Categories  []string `xml:"category"`
}

// RemoteOK reads the RemoteOK RSS feed.
type RemoteOK struct {
	URL    string
	Limit  int
	client *Client
	logger *zap.Logger
}

func NewRemoteOK(client *Client, logger *zap.Logger) *RemoteOK {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = NewClient(logger)
	}
	return &RemoteOK{
		URL:    RemoteOKURL,
		Limit:  RemoteOKMaxItems,
		client: client,
		logger: logger,
	}
}

func (r *RemoteOK) Name() string { return RemoteOKName }

func (r *RemoteOK) Fetch(ctx context.Context) ([]jobs.Job, error) {
	body, err := r.client.get(ctx, r.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching remoteok feed: %w", err)
	}
	return r.parse(body)
}

func (r *RemoteOK) parse(body []byte) ([]jobs.Job, error) {
	var feed rssFeed
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false
	if err := dec.Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing remoteok feed: %w", err)
	}

	items := feed.Channel.Items
	if r.Limit >= 0 && len(items) > r.Limit {
		items = items[:r.Limit]
	}

	out := make([]jobs.Job, 0, len(items))
	for _, item := range items {
		job, ok := toJob(item)
		if !ok {
			r.logger.Debug("skipping incomplete item", zap.String("title", item.Title))
			continue
		}
		out = append(out, job)
	}
	return out, nil
}

func toJob(item rssItem) (jobs.Job, bool) {
	title, company := splitTitleCompany(item.Title)
	description := textsignal.Normalize(item.Description)
	if title == "" || company == "" || description == "" {
		return jobs.Job{}, false
	}

	tags := make([]string, 0, len(item.Categories))
	for _, c := range item.Categories {
		if c = strings.ToLower(collapse(c)); c != "" {
			tags = append(tags, c)
		}
	}

	job := jobs.Job{
		Source:      RemoteOKName,
		Title:       title,
		Company:     company,
		Description: description,
		Location:    locationFromTags(tags),
		Tags:        tags,
		PostedAt:    parsePubDate(item.PubDate),
		URL:         strings.TrimSpace(item.Link),
		SourceRef:   strings.TrimSpace(item.GUID),
	}
	job.Normalize()
	return job, true
}

// splitTitleCompany handles "Role at Company" and "Company: Role".
func splitTitleCompany(raw string) (string, string) {
	t := collapse(raw)

	if role, company, ok := strings.Cut(t, titleCompanySep); ok {
		role, company = collapse(role), collapse(company)
		if role == "" {
			role = t
		}
		if company == "" {
			company = unknownCompany
		}
		return role, company
	}

	if company, role, ok := strings.Cut(t, companyTitlePrefix); ok {
		if company, role = collapse(company), collapse(role); company != "" && role != "" {
			return role, company
		}
	}

	if t == "" {
		return "", ""
	}
	return t, unknownCompany
}

func locationFromTags(tags []string) string {
	for _, tag := range tags {
		if loc, ok := knownLocations[tag]; ok {
			return loc
		}
	}
	return ""
}

func parsePubDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
