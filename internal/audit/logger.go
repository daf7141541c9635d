package audit

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Logger writes structured audit events for account business actions.
type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// Record matches the auth service's audit hook. Emails are masked and
// failed or ignored results are logged at warn level.
func (l *Logger) Record(action string, fields map[string]string) {
	evt := l.log.Info()
	switch fields["result"] {
	case "error", "ignored":
		evt = l.log.Warn()
	}

	evt = evt.Str("action", action)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := fields[k]
		if k == "email" {
			v = maskEmail(v)
		}
		evt = evt.Str(k, v)
	}
	evt.Msg("audit")
}

// maskEmail partially masks email for privacy in logs
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return email[:1] + "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
