package source

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scoutline/sourcing-cli/internal/model"
	"github.com/scoutline/sourcing-cli/internal/resilience"
	"github.com/scoutline/sourcing-cli/pkg/stackexchange"
)

const (
	soPageSize = 15
	soMaxPages = 2
	soTopTags  = 10
)

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// StackOverflowCollector sources candidates from Stack Exchange user search,
// with skills derived from each user's top answer tags.
type StackOverflowCollector struct {
	client stackexchange.Client
	limit  int
	now    func() time.Time
}

// NewStackOverflowCollector creates the Stack Overflow collector.
func NewStackOverflowCollector(client stackexchange.Client, limit int) *StackOverflowCollector {
	return &StackOverflowCollector{client: client, limit: limit, now: time.Now}
}

// WithNow sets a fixed clock for testing.
func (s *StackOverflowCollector) WithNow(fn func() time.Time) *StackOverflowCollector {
	s.now = fn
	return s
}

// Name returns the source identifier.
func (s *StackOverflowCollector) Name() string { return "stackoverflow" }

// Collect searches users by the criteria terms. The users endpoint only
// matches display names, so skill terms double as name fragments here and the
// real skill signal comes from top answer tags fetched per user.
func (s *StackOverflowCollector) Collect(ctx context.Context, criteria model.SearchCriteria) model.SourceOutcome {
	log := zap.L().With(zap.String("component", "source.stackoverflow"))
	outcome := model.SourceOutcome{Source: s.Name()}

	seen := make(map[string]bool)
	var lastErr error

	terms := searchNames(criteria)

plan:
	for _, term := range terms {
		for page := 1; page <= soMaxPages; page++ {
			if Deadline(ctx) || len(outcome.Records) >= s.limit {
				break plan
			}

			resp, err := resilience.Once(ctx, "stackexchange users", func(ctx context.Context) (*stackexchange.UsersResponse, error) {
				return s.client.SearchUsers(ctx, term, page, soPageSize)
			})
			if err != nil {
				if resilience.IsQuota(err) {
					log.Info("quota exhausted, returning partial results",
						zap.Int("records", len(outcome.Records)))
					break plan
				}
				lastErr = err
				log.Warn("user search failed", zap.String("term", term), zap.Error(err))
				continue plan
			}

			outcome.TotalFound += len(resp.Items)
			for _, user := range resp.Items {
				if Deadline(ctx) || len(outcome.Records) >= s.limit {
					break plan
				}
				id := strconv.FormatInt(user.UserID, 10)
				if seen[id] || user.UserType == "does_not_exist" {
					continue
				}
				seen[id] = true

				rec := s.toRecord(ctx, user)
				if Viable(rec, s.now()) {
					outcome.Records = append(outcome.Records, rec)
				}
			}

			if !resp.HasMore {
				break
			}
		}
	}

	outcome.Records = Cap(DedupeByID(outcome.Records), s.limit)
	if len(outcome.Records) == 0 && lastErr != nil {
		outcome.Error = lastErr.Error()
	}
	return outcome
}

// toRecord maps one Stack Exchange user into the shared record type,
// enriching skills from top answer tags when the budget allows.
func (s *StackOverflowCollector) toRecord(ctx context.Context, user stackexchange.User) model.RawCandidateRecord {
	rec := model.RawCandidateRecord{
		SourceID:   strconv.FormatInt(user.UserID, 10),
		Platform:   "stackoverflow",
		Name:       user.DisplayName,
		Location:   user.Location,
		Summary:    stripHTML(user.AboutMe),
		AvatarURL:  user.ProfileImage,
		ProfileURL: user.Link,
		Followers:  user.Reputation, // reputation is the closest social signal
	}
	if user.LastAccess > 0 {
		t := time.Unix(user.LastAccess, 0).UTC()
		rec.LastActiveAt = &t
	}
	if user.CreationDate > 0 {
		created := time.Unix(user.CreationDate, 0).UTC()
		rec.YearsActive = int(s.now().Sub(created).Hours() / 24 / 365)
	}

	if !Deadline(ctx) {
		tags, err := resilience.Once(ctx, "stackexchange top tags", func(ctx context.Context) (*stackexchange.TopTagsResponse, error) {
			return s.client.TopTags(ctx, user.UserID, soTopTags)
		})
		if err == nil {
			for _, tag := range tags.Items {
				if tag.AnswerCount > 0 {
					rec.Skills = append(rec.Skills, tag.TagName)
				}
			}
		}
	}

	return rec
}

// searchNames picks the name fragments to feed the inname filter: the free
// query first, then role terms. Skill terms rarely match display names, so
// they are not used here.
func searchNames(criteria model.SearchCriteria) []string {
	var out []string
	if q := strings.TrimSpace(criteria.Query); q != "" {
		out = append(out, q)
	}
	for _, role := range criteria.RoleTypes {
		if role = strings.TrimSpace(role); role != "" {
			out = append(out, role)
		}
	}
	if len(out) == 0 {
		out = append(out, "developer")
	}
	return out
}

func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, " "))
}
