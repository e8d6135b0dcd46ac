package v1

import "time"

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	dir        string
	configFile string
	autoStart  bool
	now        func() time.Time
}

// WithDir stores reminders, logs and the daemon lock in dir.
func WithDir(dir string) Option {
	return func(c *clientConfig) {
		c.dir = dir
	}
}

// WithConfigFile reads configuration from path instead of ~/.remindme/config.yaml.
func WithConfigFile(path string) Option {
	return func(c *clientConfig) {
		c.configFile = path
	}
}

// WithAutoStart starts the remindme daemon found on PATH when a reminder is added
// and no daemon is running.
func WithAutoStart(on bool) Option {
	return func(c *clientConfig) {
		c.autoStart = on
	}
}

// WithClock overrides the current time, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *clientConfig) {
		c.now = now
	}
}
