// Package concierge answers free-text discovery questions with a generative model and
// substitutes deterministic canned answers whenever the model is unavailable or
// returns something unusable.
package concierge

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"spotly/internal/logging"
	"spotly/internal/metrics"
)

// Mode selects how a request is answered.
type Mode string

const (
	ModeChat Mode = "chat"
	ModePlan Mode = "plan"
)

// Answer sources.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// Request is a concierge question.
type Request struct {
	Mode      Mode     `json:"mode" validate:"required,oneof=chat plan"`
	Message   string   `json:"message" validate:"max=1000"`
	Budget    string   `json:"budget" validate:"max=100"`
	Vibe      string   `json:"vibe" validate:"max=100"`
	Companion string   `json:"companion" validate:"max=100"`
	Answers   []string `json:"answers" validate:"max=10,dive,max=500"`
}

// Input is the free text the user typed: the message, else the first answer.
func (r Request) Input() string {
	if strings.TrimSpace(r.Message) != "" {
		return r.Message
	}
	if len(r.Answers) > 0 {
		return r.Answers[0]
	}
	return ""
}

// Spot is the slice of a listed spot the model sees.
type Spot struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Price    string   `json:"price"`
	Tags     []string `json:"tags"`
	Location string   `json:"location"`
	Rating   float64  `json:"rating"`
}

// Answer is the concierge reply. Spots holds spot ids.
type Answer struct {
	Narrative string   `json:"narrative"`
	Spots     []string `json:"spots"`
	Source    string   `json:"source"`
}

// Stop is one entry of a generated itinerary.
type Stop struct {
	Time        string `json:"time"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Rand picks canned replies.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Concierge turns requests into prompts and parses the model output.
type Concierge struct {
	gen     Generator
	timeout time.Duration
	rand    Rand
}

// Option configures a Concierge.
type Option func(*Concierge)

// WithRand sets the source used to pick canned replies.
func WithRand(r Rand) Option {
	return func(c *Concierge) { c.rand = r }
}

// WithTimeout bounds each upstream call.
func WithTimeout(d time.Duration) Option {
	return func(c *Concierge) { c.timeout = d }
}

// New creates a Concierge backed by gen.
func New(gen Generator, opts ...Option) *Concierge {
	c := &Concierge{gen: gen, timeout: 15 * time.Second, rand: globalRand{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var errNoKnownSpots = errors.New("model picked no known spots")

// Ask answers a chat or plan request. It always returns an answer.
func (c *Concierge) Ask(ctx context.Context, req Request, spots []Spot) Answer {
	var (
		ans Answer
		err error
	)
	switch req.Mode {
	case ModePlan:
		ans, err = c.plan(ctx, req, spots)
	default:
		ans, err = c.chat(ctx, req)
	}

	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("mode", string(req.Mode)).Msg("concierge using fallback")
		if req.Mode == ModePlan {
			ans = fallbackPlan(req.Vibe, spots)
		} else {
			ans = Answer{Narrative: fallbackChat(req.Input(), c.rand), Spots: []string{}, Source: SourceFallback}
		}
	}
	metrics.RecordConciergeRequest(string(req.Mode), ans.Source)
	return ans
}

func (c *Concierge) chat(ctx context.Context, req Request) (Answer, error) {
	prompt := fmt.Sprintf(`You are SPOTLY, a cynical, dark-humored AI host for a local discovery app.
USER SAYS: %q

Respond with a single, short, witty, roast-style message (max 2 sentences).
Do not offer to help. Just be sassy.`, req.Input())

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return Answer{}, err
	}
	return Answer{Narrative: text, Spots: []string{}, Source: SourceAI}, nil
}

func (c *Concierge) plan(ctx context.Context, req Request, spots []Spot) (Answer, error) {
	catalog, err := json.Marshal(spots)
	if err != nil {
		return Answer{}, fmt.Errorf("failed to encode spots: %w", err)
	}
	prompt := fmt.Sprintf(`You are SPOTLY, a cynical, dark-humored, high-end local concierge.

USER PROFILE:
- Budget: %s
- Vibe: %s
- Companion: %s
- Answers: %s

TASK:
1. Select exactly 3 distinct spots from the AVAILABLE SPOTS list below that best fit this plan.
2. Write a short, roasting narrative (2-3 sentences) explaining the picks. Be judgmental but helpful.
3. Return ONLY valid JSON in this format:
{"narrative": "string", "spots": ["id1", "id2", "id3"]}

AVAILABLE SPOTS:
%s`, req.Budget, req.Vibe, req.Companion, strings.Join(req.Answers, ", "), catalog)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return Answer{}, err
	}

	var parsed struct {
		Narrative string   `json:"narrative"`
		Spots     []string `json:"spots"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &parsed); err != nil {
		return Answer{}, fmt.Errorf("failed to parse plan: %w", err)
	}

	known := make(map[string]bool, len(spots))
	for _, s := range spots {
		known[s.ID] = true
	}
	ids := make([]string, 0, planSize)
	for _, id := range parsed.Spots {
		if known[id] && len(ids) < planSize {
			ids = append(ids, id)
			delete(known, id)
		}
	}
	if len(ids) == 0 {
		return Answer{}, errNoKnownSpots
	}
	return Answer{Narrative: parsed.Narrative, Spots: ids, Source: SourceAI}, nil
}

// Itinerary builds a three stop day plan for prompt. When the model fails the
// fallback spots are scheduled instead.
func (c *Concierge) Itinerary(ctx context.Context, prompt string, fallback []Spot) ([]Stop, string) {
	stops, err := c.itinerary(ctx, prompt)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("itinerary using fallback")
		metrics.RecordConciergeRequest("itinerary", SourceFallback)
		return fallbackItinerary(fallback), SourceFallback
	}
	metrics.RecordConciergeRequest("itinerary", SourceAI)
	return stops, SourceAI
}

func (c *Concierge) itinerary(ctx context.Context, userPrompt string) ([]Stop, error) {
	prompt := fmt.Sprintf(`You are a local city expert and concierge.
Suggest a 3-stop itinerary based on the user's request: %q.
STRICTLY return a JSON array of objects. Do not include markdown formatting.
Each object must have:
- "time": string (e.g. "7:00 PM")
- "title": string (name of the place or activity)
- "location": string (brief location or neighborhood)
- "description": string (why it's a good choice, max 1 sentence)`, userPrompt)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var stops []Stop
	if err := json.Unmarshal([]byte(stripFences(text)), &stops); err != nil {
		return nil, fmt.Errorf("failed to parse itinerary: %w", err)
	}
	if len(stops) == 0 {
		return nil, errors.New("empty itinerary")
	}
	return stops, nil
}

func (c *Concierge) generate(ctx context.Context, prompt string) (string, error) {
	if c.gen == nil {
		return "", ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.gen.Generate(ctx, prompt)
}

// stripFences removes markdown code fences the model sometimes wraps JSON in.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
