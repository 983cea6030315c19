package pathfinder

import (
	"maps"
	"slices"

	"currency_flip/internal/domain/entity"
)

// Graph смежность «продаю → покупаю → котировки».
// Параллельные котировки одной пары хранятся в порядке поступления.
type Graph map[string]map[string][]entity.Offer

// BuildGraph раскладывает котировки по парам, не изменяя входной срез.
func BuildGraph(offers []entity.Offer) Graph {
	graph := make(Graph)

	for _, offer := range offers {
		wants, ok := graph[offer.Have]
		if !ok {
			wants = make(map[string][]entity.Offer)
			graph[offer.Have] = wants
		}

		wants[offer.Want] = append(wants[offer.Want], offer)
	}

	return graph
}

// Assets возвращает отсортированные активы, у которых есть исходящие котировки.
func (g Graph) Assets() []string {
	return slices.Sorted(maps.Keys(g))
}

// Neighbours возвращает отсортированные активы, в которые можно обменять asset.
func (g Graph) Neighbours(asset string) []string {
	return slices.Sorted(maps.Keys(g[asset]))
}

func (g Graph) Offers(have, want string) []entity.Offer {
	return g[have][want]
}

// Size общее число котировок в графе.
func (g Graph) Size() int {
	var n int
	for _, wants := range g {
		for _, offers := range wants {
			n += len(offers)
		}
	}
	return n
}
