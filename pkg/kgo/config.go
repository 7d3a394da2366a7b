package kgo

import "github.com/kafkasaur/kgo/pkg/sasl"

// cfg holds everything an Opt can configure, mirroring the teacher's own
// cfg struct populated by a functional-options constructor.
type cfg struct {
	logger Logger
	hooks  hooks

	sasls []sasl.Mechanism

	authenticationTimeoutMillis     int64
	reauthenticationThresholdMillis int64
	allowAutoTopicCreation          bool

	connectionTimeoutMillis int64

	softwareName    string
	softwareVersion string

	dialFn DialFunc
}

func defaultCfg() cfg {
	return cfg{
		logger:                          nopLogger{},
		authenticationTimeoutMillis:     1000,
		reauthenticationThresholdMillis: 10000,
		allowAutoTopicCreation:          true,
		connectionTimeoutMillis:         10000,
		softwareName:                    "kgo",
		softwareVersion:                 "0.1.0",
	}
}

// Opt configures a Broker at construction time.
type Opt interface {
	apply(*cfg)
}

type opt func(*cfg)

func (o opt) apply(c *cfg) { o(c) }

// WithLogger sets the broker's Logger. Default is a no-op logger.
func WithLogger(l Logger) Opt {
	return opt(func(c *cfg) { c.logger = l })
}

// WithHooks registers observability hooks (§ supplemented features).
func WithHooks(hs ...Hook) Opt {
	return opt(func(c *cfg) { c.hooks = append(c.hooks, hs...) })
}

// WithSASL configures the SASL mechanisms to try, in preference order. The
// authenticator advertises sasls[0] first and falls back through the rest
// if the broker reports UNSUPPORTED_SASL_MECHANISM (mirroring the teacher's
// own handshake retry loop).
func WithSASL(mechanisms ...sasl.Mechanism) Opt {
	return opt(func(c *cfg) { c.sasls = mechanisms })
}

// WithAuthenticationTimeout overrides the default 1000ms authentication
// timeout (§3).
func WithAuthenticationTimeout(millis int64) Opt {
	return opt(func(c *cfg) { c.authenticationTimeoutMillis = millis })
}

// WithReauthenticationThreshold overrides the default 10000ms
// reauthentication threshold (§3, §4.5).
func WithReauthenticationThreshold(millis int64) Opt {
	return opt(func(c *cfg) { c.reauthenticationThresholdMillis = millis })
}

// WithAllowAutoTopicCreation overrides the default true value passed to
// Metadata requests.
func WithAllowAutoTopicCreation(allow bool) Opt {
	return opt(func(c *cfg) { c.allowAutoTopicCreation = allow })
}

// WithConnectionTimeout overrides the default 10000ms timeout the Broker
// gives each request it sends, version negotiation included; dialing itself
// is bounded only by the caller's context. The connect lock's own timeout
// is derived from this (§3: 2·connectionTimeout + authenticationTimeout).
func WithConnectionTimeout(millis int64) Opt {
	return opt(func(c *cfg) { c.connectionTimeoutMillis = millis })
}

// WithClientSoftware sets the name/version advertised in ApiVersions v3+
// (KIP-511).
func WithClientSoftware(name, version string) Opt {
	return opt(func(c *cfg) { c.softwareName, c.softwareVersion = name, version })
}

// WithDialFunc overrides how NewBrokerAddr's Connection dials the TCP
// socket; primarily for tests. Has no effect on a Broker constructed with
// NewBroker, since that already takes a built Connection.
func WithDialFunc(fn DialFunc) Opt {
	return opt(func(c *cfg) { c.dialFn = fn })
}
