package source

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/scoutline/sourcing-cli/internal/model"
	"github.com/scoutline/sourcing-cli/internal/resilience"
	"github.com/scoutline/sourcing-cli/pkg/websearch"
)

// linkedInMaxDetailFetches bounds how many profile pages are fetched through
// the reader per run; the rest are built from search snippets alone.
const linkedInMaxDetailFetches = 5

// LinkedInCollector sources candidates from public LinkedIn profiles surfaced
// through site-filtered web search. Public profile pages are fetched through
// the reader endpoint and parsed; login-walled responses fall back to the
// search snippet.
type LinkedInCollector struct {
	client websearch.Client
	limit  int
}

// NewLinkedInCollector creates the LinkedIn collector.
func NewLinkedInCollector(client websearch.Client, limit int) *LinkedInCollector {
	return &LinkedInCollector{client: client, limit: limit}
}

// Name returns the source identifier.
func (l *LinkedInCollector) Name() string { return "linkedin" }

// Collect searches site:linkedin.com/in for the criteria terms and normalizes
// the hits into candidate records, keyed by profile slug.
func (l *LinkedInCollector) Collect(ctx context.Context, criteria model.SearchCriteria) model.SourceOutcome {
	log := zap.L().With(zap.String("component", "source.linkedin"))
	outcome := model.SourceOutcome{Source: l.Name()}

	seen := make(map[string]bool)
	detailBudget := linkedInMaxDetailFetches
	var lastErr error

	for _, spec := range PlanQueries(criteria) {
		if Deadline(ctx) || len(outcome.Records) >= l.limit {
			break
		}

		query := strings.Join(spec.Terms, " ")
		if criteria.Location != "" {
			query += " " + criteria.Location
		}

		resp, err := resilience.Once(ctx, "linkedin search", func(ctx context.Context) (*websearch.SearchResponse, error) {
			return l.client.Search(ctx, query, websearch.WithSiteFilter("linkedin.com/in"))
		})
		if err != nil {
			if resilience.IsQuota(err) {
				log.Info("rate limited, returning partial results",
					zap.Int("records", len(outcome.Records)))
				break
			}
			lastErr = err
			log.Warn("search failed", zap.String("query", query), zap.Error(err))
			continue
		}

		outcome.TotalFound += len(resp.Data)
		for _, res := range resp.Data {
			if Deadline(ctx) || len(outcome.Records) >= l.limit {
				break
			}
			slug := profileSlug(res.URL)
			if slug == "" || seen[slug] {
				continue
			}
			seen[slug] = true

			rec := recordFromSnippet(slug, res)
			if detailBudget > 0 && !Deadline(ctx) {
				if enriched := l.fetchDetail(ctx, res.URL); enriched != nil {
					detailBudget--
					mergeDetail(&rec, enriched)
				}
			}

			if rec.Name != "" && Viable(rec, time.Now()) {
				outcome.Records = append(outcome.Records, rec)
			}
		}
	}

	outcome.Records = Cap(DedupeByID(outcome.Records), l.limit)
	if len(outcome.Records) == 0 && lastErr != nil {
		outcome.Error = lastErr.Error()
	}
	return outcome
}

// fetchDetail pulls the public profile page through the reader and parses the
// HTML. Returns nil on any failure or login wall; the snippet record stands.
func (l *LinkedInCollector) fetchDetail(ctx context.Context, profileURL string) *model.RawCandidateRecord {
	resp, err := resilience.Once(ctx, "linkedin read", func(ctx context.Context) (*websearch.ReadResponse, error) {
		return l.client.Read(ctx, profileURL)
	})
	if err != nil || resp.Data.HTML == "" {
		return nil
	}
	if isLoginWall(resp.Data.Content) || isLoginWall(resp.Data.HTML) {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Data.HTML))
	if err != nil {
		return nil
	}

	var rec model.RawCandidateRecord
	rec.Name = strings.TrimSpace(doc.Find("h1").First().Text())
	rec.Title = strings.TrimSpace(doc.Find(".top-card-layout__headline").First().Text())
	rec.Location = strings.TrimSpace(doc.Find(".top-card-layout__first-subline .top-card__subline-item").First().Text())
	rec.Summary = strings.TrimSpace(doc.Find("section.summary p, .core-section-container__content p").First().Text())
	if img, ok := doc.Find("img.top-card-layout__entity-image").First().Attr("src"); ok {
		rec.AvatarURL = img
	}
	doc.Find(".skills-section li, section[data-section='skills'] li").Each(func(_ int, sel *goquery.Selection) {
		if skill := strings.TrimSpace(sel.Text()); skill != "" {
			rec.Skills = append(rec.Skills, skill)
		}
	})

	if rec.Name == "" && rec.Title == "" {
		return nil
	}
	return &rec
}

// recordFromSnippet builds a record using the search result alone. LinkedIn
// titles follow "Name - Title - Company | LinkedIn".
func recordFromSnippet(slug string, res websearch.SearchResult) model.RawCandidateRecord {
	rec := model.RawCandidateRecord{
		SourceID:   slug,
		Platform:   "linkedin",
		ProfileURL: res.URL,
		Summary:    strings.TrimSpace(res.Description),
	}

	title := strings.TrimSuffix(strings.TrimSpace(res.Title), "| LinkedIn")
	parts := strings.SplitN(title, " - ", 3)
	if len(parts) > 0 {
		rec.Name = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		rec.Title = strings.TrimSpace(strings.TrimSuffix(parts[1], "|"))
	}
	if len(parts) > 2 {
		loc := strings.TrimSpace(parts[2])
		// Third segment is a company more often than a location; only treat
		// it as location when it looks like "City, Region".
		if strings.Contains(loc, ",") {
			rec.Location = loc
		}
	}
	return rec
}

// mergeDetail overlays parsed page fields onto the snippet record, keeping
// snippet values where the page had nothing.
func mergeDetail(rec *model.RawCandidateRecord, detail *model.RawCandidateRecord) {
	if detail.Name != "" {
		rec.Name = detail.Name
	}
	if detail.Title != "" {
		rec.Title = detail.Title
	}
	if detail.Location != "" {
		rec.Location = detail.Location
	}
	if detail.Summary != "" {
		rec.Summary = detail.Summary
	}
	if detail.AvatarURL != "" {
		rec.AvatarURL = detail.AvatarURL
	}
	if len(detail.Skills) > 0 {
		rec.Skills = detail.Skills
	}
}

// profileSlug extracts the /in/<slug> identifier from a LinkedIn URL.
func profileSlug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || !strings.Contains(u.Host, "linkedin.com") {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "in" {
		return strings.ToLower(parts[1])
	}
	return ""
}

func isLoginWall(content string) bool {
	lower := strings.ToLower(content)
	return strings.Contains(lower, "sign in to linkedin") ||
		strings.Contains(lower, "join linkedin") && strings.Contains(lower, "password")
}
