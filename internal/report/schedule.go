package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// specParser accepts standard 5-field cron specs plus @descriptors.
var specParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

var reHHMM = regexp.MustCompile(`^\s*(\d{1,3}):(\d{2})\s*$`)

// ParseSchedule normalizes a schedule string into a cron spec.
//
// Supported forms:
//   - Cron: "*/5 * * * *", "15 * * * *", "@hourly", "@every 55m"
//   - Interval duration: "55m", "2h30m"
//   - Interval HH:MM: "00:50" (50 minutes), "02:30" (2 hours 30 minutes)
//
// Interval forms are rewritten to "@every" descriptors. The returned spec
// is guaranteed to parse.
func ParseSchedule(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("schedule required")
	}

	// Whitespace or a leading '@' means cron.
	if strings.ContainsAny(s, " \t\n\r") || strings.HasPrefix(s, "@") {
		if _, err := specParser.Parse(s); err != nil {
			return "", fmt.Errorf("invalid cron spec %q: %w", s, err)
		}
		return s, nil
	}

	if m := reHHMM.FindStringSubmatch(s); m != nil {
		d, err := hhmmDuration(m)
		if err != nil {
			return "", err
		}
		return "@every " + d.String(), nil
	}

	if d, err := time.ParseDuration(s); err == nil {
		if d < time.Minute {
			return "", fmt.Errorf("interval must be at least one minute")
		}
		return "@every " + d.String(), nil
	}

	return "", fmt.Errorf(
		"invalid schedule %q (use cron like '*/5 * * * *', HH:MM like '02:30', or duration like '55m')",
		raw,
	)
}

func hhmmDuration(m []string) (time.Duration, error) {
	var hh int
	for i := 0; i < len(m[1]); i++ {
		hh = hh*10 + int(m[1][i]-'0')
	}
	mm := int(m[2][0]-'0')*10 + int(m[2][1]-'0')
	if mm > 59 {
		return 0, fmt.Errorf("invalid minutes in %q:%q", m[1], m[2])
	}
	d := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
	if d < time.Minute {
		return 0, fmt.Errorf("interval must be at least one minute")
	}
	return d, nil
}
