// Package taillog incrementally consumes the gateway's stream access log.
package taillog

import (
	"regexp"
	"time"

	"whitegate/internal/domain"
)

// Event is one parsed admission decision from the access log.
type Event struct {
	Address   string
	Outcome   string
	Protocol  string
	Timestamp time.Time
}

// Log line shape:
//
//	<address> [<timestamp>] <protocol> <status> <sent> <received> <duration> whitelist:<0|1>
//
// The address alternation accepts dotted quads and (optionally bracketed)
// IPv6 addresses.
var lineRegex = regexp.MustCompile(
	`^(\d+\.\d+\.\d+\.\d+|\[?[0-9a-fA-F:]+\]?) \[([^\]]+)\] (\w+) (\d+) (\d+) (\d+) ([\d.]+) whitelist:([01])$`,
)

const timestampLayout = "02/Jan/2006:15:04:05 -0700"

// ParseLine matches one log line against the access-log grammar. Lines from
// unrelated subsystems interleave in the same file, so a non-matching line is
// not an error: ok is false and the caller moves on. A matching line with an
// unreadable timestamp still yields an event stamped with now, because
// dropping the admission record loses data while the time is merely
// approximate.
func ParseLine(line string, now time.Time) (Event, bool) {
	match := lineRegex.FindStringSubmatch(line)
	if match == nil {
		return Event{}, false
	}

	timestamp, err := time.Parse(timestampLayout, match[2])
	if err != nil {
		timestamp = now
	}

	outcome := domain.OutcomeDenied
	if match[8] == "1" {
		outcome = domain.OutcomeAllowed
	}

	return Event{
		Address:   match[1],
		Outcome:   outcome,
		Protocol:  match[3],
		Timestamp: timestamp,
	}, true
}
