package config

import "time"

type SessionConfig interface {
	GetSessionIdleLimit() time.Duration
	GetSessionMaxDuration() time.Duration
	GetSessionSweepInterval() time.Duration
}

type Sessions struct{}

var _ SessionConfig = Sessions{}

// GetSessionIdleLimit is the maximum gap between validated uses of a session.
func (Sessions) GetSessionIdleLimit() time.Duration {
	return getDuration("SESSION_IDLE_LIMIT", 24*time.Hour)
}

// GetSessionMaxDuration is the maximum session age regardless of activity.
func (Sessions) GetSessionMaxDuration() time.Duration {
	return getDuration("SESSION_MAX_DURATION", 7*24*time.Hour)
}

// GetSessionSweepInterval is how often expired sessions are swept out.
func (Sessions) GetSessionSweepInterval() time.Duration {
	return getDuration("SESSION_SWEEP_INTERVAL", time.Hour)
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
