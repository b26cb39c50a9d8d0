package config

import (
	"sync"
	"sync/atomic"
	"time"
)

const defaultRefreshInterval = 30 * time.Second

var (
	refreshInterval          atomic.Value
	refreshIntervalListeners []chan time.Duration
	listenersMu              sync.Mutex
)

func init() {
	refreshInterval.Store(defaultRefreshInterval)
}

func SetRefreshInterval() {
	cfg := GetConfig()
	setRefreshInterval(calculateRefreshInterval(cfg))
}

// CalculateBetweenTime converts a Timer into a duration, enforcing a one
// second minimum.
func CalculateBetweenTime(timer Timer) time.Duration {
	intervalMs := CalculateMillisecondsOfPeriod(timer)

	minInterval := uint64(1000)
	if intervalMs < minInterval {
		intervalMs = minInterval
	}

	return time.Duration(intervalMs) * time.Millisecond
}

func CalculateMillisecondsOfPeriod(timer Timer) uint64 {
	return uint64(timer.Days)*24*60*60*1000 +
		uint64(timer.Hours)*60*60*1000 +
		uint64(timer.Minutes)*60*1000 +
		uint64(timer.Seconds)*1000
}

func GetRefreshInterval() time.Duration {
	return refreshInterval.Load().(time.Duration)
}

// RefreshIntervalUpdates returns a channel that receives the current interval
// immediately and again whenever the configuration changes it.
func RefreshIntervalUpdates() <-chan time.Duration {
	ch := make(chan time.Duration, 1)
	listenersMu.Lock()
	refreshIntervalListeners = append(refreshIntervalListeners, ch)
	listenersMu.Unlock()

	ch <- GetRefreshInterval()
	return ch
}

func setRefreshInterval(interval time.Duration) {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}

	current := GetRefreshInterval()
	if current == interval {
		return
	}

	refreshInterval.Store(interval)

	listenersMu.Lock()
	defer listenersMu.Unlock()
	for _, ch := range refreshIntervalListeners {
		select {
		case ch <- interval:
		default:
		}
	}
}

func calculateRefreshInterval(cfg Config) time.Duration {
	timer := cfg.Monitor.RefreshTimer
	if timer.Days == 0 && timer.Hours == 0 && timer.Minutes == 0 && timer.Seconds == 0 {
		return defaultRefreshInterval
	}
	return CalculateBetweenTime(timer)
}
