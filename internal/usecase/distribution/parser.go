package distribution

import (
	"regexp"
	"strings"

	"wa-distribution-bot/internal/domain"
)

// Команда дистрибуции: адрес почты, дефис, платформа. Ничего до и ничего
// после; регистр платформы не важен.
var requestRegex = regexp.MustCompile(`(?i)^([a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,})-(android|ios)$`)

// ParseRequest разбирает текст сообщения как команду добавления
// тестировщика. Несовпадение — не ошибка: такие сообщения молча
// пропускаются вызывающей стороной.
func ParseRequest(text string) (domain.DistributionRequest, bool) {
	trimmed := strings.TrimSpace(text)
	matches := requestRegex.FindStringSubmatch(trimmed)
	if len(matches) < 3 {
		return domain.DistributionRequest{}, false
	}
	return domain.DistributionRequest{
		Email:    strings.ToLower(matches[1]),
		Platform: strings.ToLower(matches[2]),
	}, true
}
