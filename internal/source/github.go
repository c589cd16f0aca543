package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scoutline/sourcing-cli/internal/model"
	"github.com/scoutline/sourcing-cli/internal/resilience"
	"github.com/scoutline/sourcing-cli/pkg/github"
)

const (
	githubPerPage  = 10
	githubMaxPages = 2
	githubMaxRepos = 30
)

// GitHubCollector sources candidates from GitHub user search, enriched with
// profile details and repository language/star signals.
type GitHubCollector struct {
	client github.Client
	limit  int // max records to return
	now    func() time.Time
}

// NewGitHubCollector creates the GitHub collector.
func NewGitHubCollector(client github.Client, limit int) *GitHubCollector {
	return &GitHubCollector{client: client, limit: limit, now: time.Now}
}

// WithNow sets a fixed clock for testing.
func (g *GitHubCollector) WithNow(fn func() time.Time) *GitHubCollector {
	g.now = fn
	return g
}

// Name returns the source identifier.
func (g *GitHubCollector) Name() string { return "github" }

// Collect runs the query plan against GitHub user search. Rate-limit
// exhaustion ends the run with whatever was gathered; other failures are
// retried once and then recorded.
func (g *GitHubCollector) Collect(ctx context.Context, criteria model.SearchCriteria) model.SourceOutcome {
	log := zap.L().With(zap.String("component", "source.github"))
	outcome := model.SourceOutcome{Source: g.Name()}

	// Seen logins are scoped to this invocation; cross-source duplicates are
	// the dedup engine's job.
	seen := make(map[string]bool)
	var lastErr error

plan:
	for _, spec := range PlanQueries(criteria) {
		query := g.buildQuery(spec, criteria)

		for page := 1; page <= githubMaxPages; page++ {
			if Deadline(ctx) || len(outcome.Records) >= g.limit {
				break plan
			}

			resp, err := resilience.Once(ctx, "github search", func(ctx context.Context) (*github.UserSearchResponse, error) {
				return g.client.SearchUsers(ctx, query, page, githubPerPage)
			})
			if err != nil {
				if resilience.IsQuota(err) {
					log.Info("rate limited, returning partial results",
						zap.Int("records", len(outcome.Records)))
					break plan
				}
				lastErr = err
				log.Warn("search failed", zap.String("query", query), zap.Error(err))
				continue plan
			}

			outcome.TotalFound += len(resp.Items)
			for _, item := range resp.Items {
				if Deadline(ctx) || len(outcome.Records) >= g.limit {
					break plan
				}
				login := strings.ToLower(item.Login)
				if seen[login] || item.Type != "User" {
					continue
				}
				seen[login] = true

				rec, err := g.enrich(ctx, item.Login)
				if err != nil {
					if resilience.IsQuota(err) {
						break plan
					}
					log.Debug("enrich failed", zap.String("login", item.Login), zap.Error(err))
					continue
				}
				if rec != nil && Viable(*rec, g.now()) {
					outcome.Records = append(outcome.Records, *rec)
				}
			}

			if len(resp.Items) < githubPerPage {
				break // no more pages for this query
			}
		}
	}

	outcome.Records = Cap(DedupeByID(outcome.Records), g.limit)
	if len(outcome.Records) == 0 && lastErr != nil {
		outcome.Error = lastErr.Error()
	}
	return outcome
}

// buildQuery renders a QuerySpec in GitHub search syntax.
func (g *GitHubCollector) buildQuery(spec QuerySpec, criteria model.SearchCriteria) string {
	var parts []string
	switch spec.Kind {
	case KindSkills:
		parts = append(parts, "language:"+quoteIfSpaced(spec.Terms[0]))
	case KindStack:
		parts = append(parts, strings.Join(spec.Terms, " "))
	case KindRole:
		parts = append(parts, fmt.Sprintf("%q in:bio", spec.Terms[0]))
	case KindCatchAll:
		parts = append(parts, spec.Terms[0])
	}
	if criteria.Location != "" {
		parts = append(parts, "location:"+quoteIfSpaced(criteria.Location))
	}
	parts = append(parts, "type:user")
	return strings.Join(parts, " ")
}

// enrich fetches the full profile and repository signals for one login.
func (g *GitHubCollector) enrich(ctx context.Context, login string) (*model.RawCandidateRecord, error) {
	user, err := resilience.Once(ctx, "github user", func(ctx context.Context) (*github.User, error) {
		return g.client.GetUser(ctx, login)
	})
	if err != nil {
		return nil, err
	}
	if user.Type != "User" {
		return nil, nil // organization slipped through search
	}

	rec := model.RawCandidateRecord{
		SourceID:     user.Login,
		Platform:     "github",
		Name:         firstNonEmpty(user.Name, user.Login),
		Location:     user.Location,
		Summary:      user.Bio,
		AvatarURL:    user.AvatarURL,
		ProfileURL:   user.HTMLURL,
		Email:        user.Email,
		Followers:    user.Followers,
		RepoCount:    user.PublicRepos,
		LastActiveAt: user.UpdatedAt,
	}
	if !user.CreatedAt.IsZero() {
		rec.YearsActive = int(g.now().Sub(user.CreatedAt).Hours() / 24 / 365)
	}

	repos, err := resilience.Once(ctx, "github repos", func(ctx context.Context) ([]github.Repo, error) {
		return g.client.ListRepos(ctx, login, githubMaxRepos)
	})
	if err != nil {
		// Profile alone is still worth keeping.
		return &rec, nil
	}

	langs := make(map[string]bool)
	for _, repo := range repos {
		if repo.Fork {
			continue
		}
		rec.Stars += repo.StargazersCount
		if repo.Language != "" && !langs[strings.ToLower(repo.Language)] {
			langs[strings.ToLower(repo.Language)] = true
			rec.Skills = append(rec.Skills, repo.Language)
		}
		if repo.UpdatedAt != nil && (rec.LastActiveAt == nil || repo.UpdatedAt.After(*rec.LastActiveAt)) {
			rec.LastActiveAt = repo.UpdatedAt
		}
	}

	return &rec, nil
}

func quoteIfSpaced(s string) string {
	if strings.ContainsRune(s, ' ') {
		return `"` + s + `"`
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
