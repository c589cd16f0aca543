package source

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scoutline/sourcing-cli/internal/model"
	"github.com/scoutline/sourcing-cli/internal/resilience"
	"github.com/scoutline/sourcing-cli/pkg/websearch"
)

// nameFromTitleRe matches "Jane Doe - Senior Engineer" / "Jane Doe | Portfolio"
// style page titles.
var nameFromTitleRe = regexp.MustCompile(`^([A-Z][\p{L}'.-]+(?: [A-Z][\p{L}'.-]+){1,3})\s*[|\-–—:]`)

// WebSearchCollector sources candidates from general web search results
// (personal sites, portfolios, resumes).
type WebSearchCollector struct {
	client websearch.Client
	limit  int
}

// NewWebSearchCollector creates the web search collector.
func NewWebSearchCollector(client websearch.Client, limit int) *WebSearchCollector {
	return &WebSearchCollector{client: client, limit: limit}
}

// Name returns the source identifier.
func (w *WebSearchCollector) Name() string { return "websearch" }

// Collect issues one search per planned query and extracts candidate fields
// from result titles and snippets. Results without a recognizable person name
// are screened out.
func (w *WebSearchCollector) Collect(ctx context.Context, criteria model.SearchCriteria) model.SourceOutcome {
	log := zap.L().With(zap.String("component", "source.websearch"))
	outcome := model.SourceOutcome{Source: w.Name()}

	seen := make(map[string]bool)
	terms := criteria.Terms()
	var lastErr error

	for _, spec := range PlanQueries(criteria) {
		if Deadline(ctx) || len(outcome.Records) >= w.limit {
			break
		}

		query := w.buildQuery(spec, criteria)
		resp, err := resilience.Once(ctx, "web search", func(ctx context.Context) (*websearch.SearchResponse, error) {
			return w.client.Search(ctx, query)
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
			if len(outcome.Records) >= w.limit {
				break
			}
			rec, ok := w.toRecord(res, terms)
			if !ok || seen[rec.SourceID] {
				continue
			}
			seen[rec.SourceID] = true
			if Viable(rec, time.Now()) {
				outcome.Records = append(outcome.Records, rec)
			}
		}
	}

	outcome.Records = Cap(DedupeByID(outcome.Records), w.limit)
	if len(outcome.Records) == 0 && lastErr != nil {
		outcome.Error = lastErr.Error()
	}
	return outcome
}

func (w *WebSearchCollector) buildQuery(spec QuerySpec, criteria model.SearchCriteria) string {
	parts := append([]string{}, spec.Terms...)
	switch spec.Kind {
	case KindSkills, KindStack:
		parts = append(parts, "developer portfolio")
	case KindRole:
		parts = append(parts, "resume")
	}
	if criteria.Location != "" {
		parts = append(parts, criteria.Location)
	}
	return strings.Join(parts, " ")
}

// toRecord extracts a candidate record from one search result. The URL is the
// platform-native identifier; skills are criteria terms present in the
// result text.
func (w *WebSearchCollector) toRecord(res websearch.SearchResult, terms []string) (model.RawCandidateRecord, bool) {
	name := extractPersonName(res.Title)
	if name == "" {
		return model.RawCandidateRecord{}, false
	}

	u, err := url.Parse(res.URL)
	if err != nil || u.Host == "" {
		return model.RawCandidateRecord{}, false
	}

	text := strings.ToLower(res.Title + " " + res.Description + " " + res.Content)
	var skills []string
	for _, t := range terms {
		if strings.Contains(text, t) {
			skills = append(skills, t)
		}
	}

	return model.RawCandidateRecord{
		SourceID:   strings.TrimPrefix(u.Host, "www.") + u.Path,
		Platform:   "websearch",
		Name:       name,
		Summary:    strings.TrimSpace(res.Description),
		ProfileURL: res.URL,
		Skills:     skills,
	}, true
}

// extractPersonName pulls a person-looking name from a page title. Empty when
// the title doesn't lead with one.
func extractPersonName(title string) string {
	if m := nameFromTitleRe.FindStringSubmatch(strings.TrimSpace(title)); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
