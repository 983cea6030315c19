package handler

import "strings"

// commandArgument всё, что идёт после команды; названия валют содержат пробелы.
func commandArgument(text string) string {
	_, arg, found := strings.Cut(strings.TrimSpace(text), " ")
	if !found {
		return ""
	}
	return strings.Join(strings.Fields(arg), " ")
}
