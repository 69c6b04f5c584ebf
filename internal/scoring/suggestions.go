package scoring

import "sort"

// SuggestionThreshold is the fit score at and above which no suggestions are made.
const SuggestionThreshold = 75

// Suggestion status values.
const (
	StatusMissing = "missing"
	StatusPartial = "partial"
)

// Suggestion recommends resume changes for an under-matched bucket. Priority is
// the number of fit points still available in the bucket.
type Suggestion struct {
	Bucket   string   `json:"bucket"`
	Priority int      `json:"priority"`
	Status   string   `json:"status"`
	Keywords string   `json:"keywords"`
	Bullets  []string `json:"bullets"`
	Learning []string `json:"learning"`
}

type bucketTips struct {
	keywords string
	bullets  []string
	learning []string
}

var tipsByBucket = map[string]bucketTips{
	"AI / ML": {
		keywords: "AI, machine learning, ML, LLM, NLP, generative AI, deep learning, GPT, transformer models",
		bullets: []string{
			"Led AI/ML product strategy for [product], driving [X%] adoption among enterprise customers",
			"Defined and shipped LLM-powered features that reduced [process] time by [X%]",
			"Partnered with ML engineering to build and deploy generative AI capabilities at scale",
		},
		learning: []string{
			"Complete a generative AI or LLM course",
			"Build a hands-on project using RAG pipelines or agentic frameworks",
			"Practice prompt engineering and model evaluation techniques",
		},
	},
	"Seniority": {
		keywords: "senior, staff, principal, director, lead, head of, VP",
		bullets: []string{
			"Led cross-functional team of [X] engineers, designers, and data scientists to deliver [product]",
			"Directed product strategy and roadmap for a [X]-person org generating [$X]M ARR",
			"Mentored [X] PMs and established product development practices across the organization",
		},
		learning: []string{
			"Lead a cross-functional initiative or mentor junior PMs",
			"Take a strategic product leadership course",
			"Quantify leadership impact with measurable outcomes",
		},
	},
	"Domain Fit": {
		keywords: "platform, enterprise, infrastructure, workflow, automation, agent, agentic",
		bullets: []string{
			"Built enterprise platform features serving [X]+ B2B customers with [X]% retention",
			"Designed workflow automation tools that reduced manual processes by [X%] across [X] teams",
			"Owned infrastructure product roadmap powering [X]M+ API calls per day",
		},
		learning: []string{
			"Study platform and infrastructure product patterns: APIs, SDKs, developer experience",
			"Build or contribute to a workflow automation or agentic AI project",
			"Learn enterprise concepts such as multi-tenancy, RBAC, compliance and SLAs",
		},
	},
	"Industry Verticals": {
		keywords: "real estate, proptech, healthcare, health tech, clinical",
		bullets: []string{
			"Launched [healthcare/real estate] product vertical generating [$X]M in first-year revenue",
			"Built HIPAA-compliant or proptech solutions used by [X]+ [providers/agents]",
			"Developed domain-specific features for [industry] reducing onboarding time by [X%]",
		},
		learning: []string{
			"Research the target industry's regulations, workflows and pain points",
			"Attend industry-specific conferences or webinars",
			"Build a case study targeting the vertical",
		},
	},
}

// Suggest returns resume suggestions for buckets that are unmatched or below their
// cap, highest priority first. Scores at or above SuggestionThreshold get none.
func Suggest(breakdown Breakdown, fit int) []Suggestion {
	if fit >= SuggestionThreshold {
		return nil
	}

	var out []Suggestion
	for _, b := range breakdown {
		tips, ok := tipsByBucket[b.Bucket]
		if !ok {
			continue
		}
		s := Suggestion{
			Bucket:   b.Bucket,
			Keywords: tips.keywords,
			Bullets:  tips.bullets,
			Learning: tips.learning,
		}
		switch {
		case b.MatchedTerms == nil:
			s.Status = StatusMissing
			s.Priority = b.MaxPts
		case b.Weight < b.MaxPts:
			s.Status = StatusPartial
			s.Priority = b.MaxPts - b.Weight
		default:
			continue
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}
