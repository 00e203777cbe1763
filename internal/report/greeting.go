package report

import "time"

// Greeting returns the salutation for the hour of t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 6:
		return "Доброй ночи"
	case h < 12:
		return "Доброе утро"
	case h < 18:
		return "Добрый день"
	default:
		return "Добрый вечер"
	}
}
