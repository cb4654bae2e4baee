package hook

// App is an application (tenant) owning webhook subscriptions. The engine
// holds a borrowed reference during processing; the authoritative record
// lives in the registry.
type App struct {
	ID       string         `json:"id"`
	Key      string         `json:"key"`
	Secret   string         `json:"secret"`
	Webhooks []Subscription `json:"webhooks,omitempty"`

	// Per-kind short-circuit flags, derived from Webhooks. Producers check
	// these before building a payload so apps without subscribers for a
	// kind cost nothing on the hot path.
	HasClientEventWebhooks     bool `json:"has_client_event_webhooks"`
	HasMemberAddedWebhooks     bool `json:"has_member_added_webhooks"`
	HasMemberRemovedWebhooks   bool `json:"has_member_removed_webhooks"`
	HasChannelVacatedWebhooks  bool `json:"has_channel_vacated_webhooks"`
	HasChannelOccupiedWebhooks bool `json:"has_channel_occupied_webhooks"`
	HasCacheMissedWebhooks     bool `json:"has_cache_missed_webhooks"`
}

// HasWebhooksFor reports whether any subscription of the app is subscribed
// to the given event kind.
func (a *App) HasWebhooksFor(kind Kind) bool {
	switch kind {
	case KindClientEvent:
		return a.HasClientEventWebhooks
	case KindMemberAdded:
		return a.HasMemberAddedWebhooks
	case KindMemberRemoved:
		return a.HasMemberRemovedWebhooks
	case KindChannelVacated:
		return a.HasChannelVacatedWebhooks
	case KindChannelOccupied:
		return a.HasChannelOccupiedWebhooks
	case KindCacheMissed:
		return a.HasCacheMissedWebhooks
	}
	return false
}

// RefreshWebhookFlags recomputes the per-kind flags from the subscription
// list. Registries call this after loading an app so the flags never drift
// from the stored subscriptions.
func (a *App) RefreshWebhookFlags() {
	a.HasClientEventWebhooks = a.subscribed(KindClientEvent)
	a.HasMemberAddedWebhooks = a.subscribed(KindMemberAdded)
	a.HasMemberRemovedWebhooks = a.subscribed(KindMemberRemoved)
	a.HasChannelVacatedWebhooks = a.subscribed(KindChannelVacated)
	a.HasChannelOccupiedWebhooks = a.subscribed(KindChannelOccupied)
	a.HasCacheMissedWebhooks = a.subscribed(KindCacheMissed)
}

func (a *App) subscribed(kind Kind) bool {
	for _, w := range a.Webhooks {
		for _, k := range w.EventTypes {
			if k == kind {
				return true
			}
		}
	}
	return false
}

// Target identifies which delivery mechanism a subscription uses. Exactly
// one target field is expected to be set; TargetInvalid marks misconfigured
// subscriptions that no transport will ever match.
type Target int

const (
	TargetInvalid Target = iota
	TargetHTTP
	TargetLambda
)

// LambdaSettings configures function-invocation delivery for one
// subscription.
type LambdaSettings struct {
	// Async selects fire-and-forget ("Event") invocation instead of
	// request-response.
	Async bool `json:"async,omitempty"`
	// Region overrides the default invocation region.
	Region string `json:"region,omitempty"`
	// Endpoint overrides the Lambda API endpoint, e.g. for LocalStack.
	Endpoint string `json:"endpoint,omitempty"`
}

// ChannelFilter restricts a subscription to channels matching the configured
// name predicates. Absent predicates impose no constraint; when both are set
// they combine with logical AND.
type ChannelFilter struct {
	StartsWith string `json:"channel_name_starts_with,omitempty"`
	EndsWith   string `json:"channel_name_ends_with,omitempty"`
}

// Subscription is one configured delivery target plus its event filter.
// Either URL or LambdaFunction is set, never both.
type Subscription struct {
	// HTTP target.
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`

	// Lambda target.
	LambdaFunction string          `json:"lambda_function,omitempty"`
	Lambda         *LambdaSettings `json:"lambda,omitempty"`

	EventTypes []Kind         `json:"event_types"`
	Filter     *ChannelFilter `json:"filter,omitempty"`
}

// Target returns the delivery mechanism of the subscription. The URL target
// wins if a subscription is misconfigured with both fields set.
func (s Subscription) Target() Target {
	switch {
	case s.URL != "":
		return TargetHTTP
	case s.LambdaFunction != "":
		return TargetLambda
	default:
		return TargetInvalid
	}
}
