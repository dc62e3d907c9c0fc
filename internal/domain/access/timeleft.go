package access

import (
	"fmt"
	"time"
)

// FormatTimeLeft devuelve el tiempo restante en buckets gruesos
// (días, luego horas). Sin minutos a propósito: evita churn de refresco
// en la UI y mantiene el string estable.
func FormatTimeLeft(expiresAt, now time.Time) string {
	diff := expiresAt.Sub(now)
	if diff <= 0 {
		return "Expired"
	}

	days := int(diff.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%d day%s left", days, plural(days))
	}

	hours := int(diff.Hours())
	if hours > 0 {
		return fmt.Sprintf("%d hour%s left", hours, plural(hours))
	}
	return "Expiring soon"
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
