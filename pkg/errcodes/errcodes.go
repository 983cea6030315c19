package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"

	// Поиск путей и расчёт объёмов
	MalformedOffer   failure.ErrorCode = "MalformedOffer"  // Курс <= 0, NaN или отрицательный сток
	InvalidLeague    failure.ErrorCode = "InvalidLeague"   // Неизвестная лига
	InvalidCurrency  failure.ErrorCode = "InvalidCurrency" // Валюта не поддерживается каталогом
	InvalidPathfind  failure.ErrorCode = "InvalidPathfind" // Некорректный запрос поиска
	SnapshotNotFound failure.ErrorCode = "SnapshotNotFound"

	// Конфигурация пользователя и каталог
	InvalidUserConfig  failure.ErrorCode = "InvalidUserConfig"
	UnsupportedItem    failure.ErrorCode = "UnsupportedItem"
	BackendUnavailable failure.ErrorCode = "BackendUnavailable"
)
