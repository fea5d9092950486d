package watcher

import (
	"fmt"
	"time"

	"visawatch/internal/slot"
)

// Chat message bodies. The ru-kz portal serves a Russian-speaking audience,
// so user-facing texts stay in Russian.

func newSlotsText(newSlots slot.Set, appointmentsURL string) string {
	return fmt.Sprintf(
		"Появились новые свободные даты на собеседование:\n\n%s\n\nСсылка: %s",
		newSlots.Format(), appointmentsURL,
	)
}

func noNewSlotsText(total int, appointmentsURL string) string {
	return fmt.Sprintf(
		"Проверка выполнена: новых свободных дат не найдено.\nТекущее количество дат в календаре: %d\nСсылка: %s",
		total, appointmentsURL,
	)
}

func checkFailedText(reason, appointmentsURL string) string {
	return fmt.Sprintf(
		"Проверка НЕ удалась (ошибка при получении календаря/слотов).\nПричина: %s\nСсылка: %s",
		reason, appointmentsURL,
	)
}

func busyText(appointmentsURL string) string {
	return fmt.Sprintf(
		"Сайт занят («Система занята»), проверка пропущена.\nСсылка: %s",
		appointmentsURL,
	)
}

func startupText(once, headless bool, interval time.Duration, schedule string) string {
	mode := "постоянный"
	if once {
		mode = "однократный"
	}
	cadence := "интервал=" + interval.String()
	if schedule != "" {
		cadence = "расписание=" + schedule
	}
	return fmt.Sprintf("Вотчер запущен. Режим: %s, headless=%v, %s", mode, headless, cadence)
}

func crashText(reason string) string {
	return fmt.Sprintf("Вотчер аварийно завершился.\nПричина: %s", reason)
}

func shutdownText() string {
	return "Вотчер остановлен."
}
