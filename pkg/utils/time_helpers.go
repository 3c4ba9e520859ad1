package utils

import "time"

const DateLayout = "2006-01-02"

// Clock возвращает текущее время. Сервисы получают его при создании,
// чтобы тесты могли зафиксировать "сегодня".
type Clock func() time.Time

// ClockIn возвращает часы, показывающие время в заданном часовом поясе.
func ClockIn(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}

// DateOnly переводит момент в календарную дату: полночь UTC того же дня,
// что и t в его собственном часовом поясе.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateBefore сравнивает календарные даты, время суток не учитывается.
func DateBefore(a, b time.Time) bool {
	return DateOnly(a).Before(DateOnly(b))
}

// AddDays сдвигает календарную дату на n дней.
func AddDays(t time.Time, n int) time.Time {
	return DateOnly(t).AddDate(0, 0, n)
}

// ParseDate разбирает дату вида 2006-01-02 или RFC3339.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

func FormatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
