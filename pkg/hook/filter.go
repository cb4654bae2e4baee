package hook

import (
	"slices"
	"strings"
)

// Match returns the events this subscription should receive, in their
// original order. An event passes when its kind is in the subscription's
// EventTypes and, if a channel filter is configured, every set predicate
// holds on the event's channel name.
//
// Callers compare len(matched) against len(events): a shorter result means
// the outgoing payload differs from what was originally signed and its
// signature must be recomputed. An empty result means the subscription is
// skipped entirely.
func (s Subscription) Match(events []Event) []Event {
	matched := make([]Event, 0, len(events))
	for _, ev := range events {
		if !slices.Contains(s.EventTypes, ev.Name) {
			continue
		}
		if s.Filter != nil && !s.Filter.matches(ev.Channel) {
			continue
		}
		matched = append(matched, ev)
	}
	return matched
}

func (f *ChannelFilter) matches(channel string) bool {
	if f.StartsWith != "" && !strings.HasPrefix(channel, f.StartsWith) {
		return false
	}
	if f.EndsWith != "" && !strings.HasSuffix(channel, f.EndsWith) {
		return false
	}
	return true
}
