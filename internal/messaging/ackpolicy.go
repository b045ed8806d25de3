package messaging

import "github.com/fractalmind/teamchat-go/internal/store"

// AckPolicy is the resolved {timeout, retries} pair governing one send's
// ack-wait loop.
type AckPolicy struct {
	AckTimeoutSeconds int
	MaxRetries        int
}

var defaultAckPolicy = map[string]AckPolicy{
	"default":           {AckTimeoutSeconds: 60, MaxRetries: 2},
	"decision_required": {AckTimeoutSeconds: 180, MaxRetries: 3},
	"shutdown_request":  {AckTimeoutSeconds: 180, MaxRetries: 2},
}

// resolveAckPolicy merges config.json's ack_policy overrides over the
// built-in defaults, keyed by message type with a "default" fallback, then
// applies any non-nil call-site overrides on top.
func resolveAckPolicy(cfg store.TeamConfig, msgType string, callSiteTimeout, callSiteRetries *int) AckPolicy {
	policy := defaultAckPolicy["default"]
	if p, ok := defaultAckPolicy[msgType]; ok {
		policy = p
	}

	if cfg.AckPolicy != nil {
		if override, ok := cfg.AckPolicy["default"]; ok {
			policy = mergeOverride(policy, override)
		}
		if override, ok := cfg.AckPolicy[msgType]; ok {
			policy = mergeOverride(policy, override)
		}
	}

	if callSiteTimeout != nil {
		policy.AckTimeoutSeconds = *callSiteTimeout
	}
	if callSiteRetries != nil {
		policy.MaxRetries = *callSiteRetries
	}
	return policy
}

func mergeOverride(base AckPolicy, override store.AckPolicyOverride) AckPolicy {
	if override.AckTimeoutSeconds != 0 {
		base.AckTimeoutSeconds = override.AckTimeoutSeconds
	}
	if override.MaxRetries != 0 {
		base.MaxRetries = override.MaxRetries
	}
	return base
}
