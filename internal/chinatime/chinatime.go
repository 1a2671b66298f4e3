package chinatime

import "time"

// Все суточные границы приложения считаются в фиксированном UTC+8,
// независимо от таймзоны сервера.
var Location = time.FixedZone("UTC+8", 8*60*60)

// Now подменяется в тестах для контроля даты
var Now = time.Now

const dateLayout = "2006-01-02"

// Today возвращает сегодняшнюю дату в UTC+8 в формате YYYY-MM-DD
func Today() string {
	return Now().In(Location).Format(dateLayout)
}

// Yesterday возвращает вчерашнюю дату в UTC+8
func Yesterday() string {
	return DaysAgo(1)
}

// DaysAgo возвращает дату n дней назад в UTC+8
func DaysAgo(n int) string {
	return Now().In(Location).AddDate(0, 0, -n).Format(dateLayout)
}

// Hour возвращает текущий час (0-23) в UTC+8
func Hour() int {
	return Now().In(Location).Hour()
}
