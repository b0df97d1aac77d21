package record

// Severity is a log level as defined by syslog (RFC 5424).
type Severity int

const (
	SeverityUndefined Severity = iota
	SeverityDebug
	SeverityInfo
	SeverityNotice
	SeverityWarning
	SeverityError
	SeverityCritical
	SeverityAlert
	SeverityEmergency
)

var severityTags = map[string]Severity{
	"[debug]":     SeverityDebug,
	"[info]":      SeverityInfo,
	"[notice]":    SeverityNotice,
	"[warning]":   SeverityWarning,
	"[error]":     SeverityError,
	"[err]":       SeverityError,
	"[critical]":  SeverityCritical,
	"[crit]":      SeverityCritical,
	"[alert]":     SeverityAlert,
	"[emergency]": SeverityEmergency,
	"[emerg]":     SeverityEmergency,
	"[panic]":     SeverityEmergency,
}

// ParseSeverity maps a bracketed level tag such as "[info]" to a Severity.
// Unknown tags yield SeverityUndefined.
func ParseSeverity(tag string) Severity {
	return severityTags[tag]
}

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityNotice:
		return "notice"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	case SeverityAlert:
		return "alert"
	case SeverityEmergency:
		return "emergency"
	default:
		return "undefined"
	}
}
