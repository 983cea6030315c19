package pathfinder

// Policy пользовательские ограничения на объёмы сделок.
type Policy interface {
	StockBoundaries(sell, buy string) (int, int)
	MaxTradeVolume(item string) int
}

// FindPaths перебирает в глубину пути не длиннее maxLength из start в target
// и возвращает прибыльные по курсу. Путь, дошедший до target, не продлевается.
// Порядок результата не определён.
func FindPaths(graph Graph, start, target string, policy Policy, maxLength int) []Path {
	wants, ok := graph[start]
	if !ok {
		return nil
	}

	var stack []Path

	for _, want := range graph.Neighbours(start) {
		for _, offer := range wants[want] {
			stack = append(stack, Path{offer})
		}
	}

	var found []Path

	for len(stack) > 0 {
		path := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(path) > maxLength {
			continue
		}

		if !path.withinStockBounds(policy) {
			continue
		}

		last := path[len(path)-1]

		if last.Want == target {
			if IsProfitable(path) {
				found = append(found, path)
			}
			continue
		}

		if len(path) >= maxLength {
			continue
		}

		// Последний допустимый шаг имеет смысл только в target.
		lastHop := maxLength == len(path)+1

		for _, next := range graph.Neighbours(last.Want) {
			if path.visitedAfterFirst(next) {
				continue
			}

			if lastHop && next != target {
				continue
			}

			for _, offer := range graph[last.Want][next] {
				stack = append(stack, path.extend(offer))
			}
		}
	}

	return found
}
