package concierge

import (
	"fmt"
	"strings"
)

var (
	greetings = []string{
		"Oh, you're being polite? How refreshing. What do you want?",
		"Hello to you too. Ready to make questionable life choices?",
		"Hi. I'm judging you already. What's the plan?",
		"Hey there, social butterfly. Let's see what disaster you're planning.",
	}
	genericReplies = []string{
		"That's... interesting. Use the buttons above for actual recommendations.",
		"I'm not sure what you want me to do with that information.",
		"Okay. Anyway, click a button above and let's get you sorted.",
		"Cool story. Now pick an option from the buttons.",
		"Noted. Moving on, use those shiny buttons above.",
	}
)

type keywordReply struct {
	keywords []string
	reply    string
}

var chatReplies = []keywordReply{
	{[]string{"help", "suggest"}, "Help? That's what I'm here for. Click those buttons above and let me roast your choices properly."},
	{[]string{"food", "eat", "hungry"}, "Hungry? Shocking. Try the 'Date Night' or 'Solo' options above. I'll find you something that won't poison you."},
	{[]string{"party", "drink", "club"}, "Party mode activated. Click 'Party (Regrettable)' above and let's see how bad this gets."},
	{[]string{"coffee", "cafe"}, "Coffee? The universal excuse for pretending to be productive. I respect it. Use the buttons above."},
}

type vibeRule struct {
	vibes     []string
	tags      []string
	narrative string
}

var vibeRules = []vibeRule{
	{[]string{"date", "romantic"}, []string{"romantic", "fine"}, "A date? Brave. Here's where you can pretend to be interesting for a few hours."},
	{[]string{"party", "wild"}, []string{"nightlife", "bar"}, "Party time. Here's your recipe for regret. You're welcome."},
	{[]string{"solo", "alone"}, []string{"cafe", "quiet"}, "Solo adventure? Finally, someone with standards. Here's where you can avoid people."},
}

const defaultPlanNarrative = "I'm not sure what you're going for, but here are some safe bets."

// planSize is the number of spots a plan recommends.
const planSize = 3

var itineraryTimes = [planSize]string{"10:00 AM", "1:00 PM", "7:00 PM"}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// fallbackChat picks a canned reply by substring tests on the lowercased input.
func fallbackChat(input string, r Rand) string {
	in := strings.ToLower(input)
	if containsAny(in, []string{"hi", "hello", "hey"}) {
		return greetings[r.IntN(len(greetings))]
	}
	for _, kr := range chatReplies {
		if containsAny(in, kr.keywords) {
			return kr.reply
		}
	}
	return genericReplies[r.IntN(len(genericReplies))]
}

// fallbackPlan selects up to three spots whose tags match the vibe, topping up
// from the head of the list when fewer match.
func fallbackPlan(vibe string, spots []Spot) Answer {
	v := strings.ToLower(vibe)
	narrative := defaultPlanNarrative
	var picked []Spot
	for _, rule := range vibeRules {
		if !containsAny(v, rule.vibes) {
			continue
		}
		narrative = rule.narrative
		for _, s := range spots {
			if len(picked) == planSize {
				break
			}
			if tagged(s, rule.tags) {
				picked = append(picked, s)
			}
		}
		break
	}

	ids := make([]string, 0, planSize)
	seen := make(map[string]bool, planSize)
	for _, s := range picked {
		ids = append(ids, s.ID)
		seen[s.ID] = true
	}
	for _, s := range spots {
		if len(ids) == planSize {
			break
		}
		if !seen[s.ID] {
			ids = append(ids, s.ID)
			seen[s.ID] = true
		}
	}
	return Answer{Narrative: narrative, Spots: ids, Source: SourceFallback}
}

func tagged(s Spot, wanted []string) bool {
	for _, t := range s.Tags {
		if containsAny(strings.ToLower(t), wanted) {
			return true
		}
	}
	return false
}

// fallbackItinerary schedules the given spots (best first) at fixed times of day.
func fallbackItinerary(spots []Spot) []Stop {
	stops := make([]Stop, 0, planSize)
	for i, s := range spots {
		if i == planSize {
			break
		}
		stops = append(stops, Stop{
			Time:        itineraryTimes[i],
			Title:       s.Name,
			Location:    s.Location,
			Description: describe(s),
		})
	}
	return stops
}

func describe(s Spot) string {
	if s.Rating > 0 {
		return fmt.Sprintf("Top %s spot, rated %.1f by locals.", strings.ToLower(s.Category), s.Rating)
	}
	return fmt.Sprintf("A local %s spot worth a look.", strings.ToLower(s.Category))
}
