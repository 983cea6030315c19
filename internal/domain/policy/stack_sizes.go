package policy

// Один инвентарь: 12 столбцов по 5 ячеек.
const inventoryCells = 12 * 5

// StackSizes размер стака по имени предмета, неизвестные предметы не стакаются.
type StackSizes map[string]int

func DefaultStackSizes() StackSizes {
	return StackSizes{
		"Orb of Alchemy":         10,
		"Regal Orb":              10,
		"Chaos Orb":              10,
		"Vaal Orb":               10,
		"Exalted Orb":            10,
		"Divine Orb":             10,
		"Mirror of Kalandra":     10,
		"Simple Sextant":         10,
		"Prime Sextant":          10,
		"Awakened Sextant":       10,
		"Blacksmith's Whetstone": 20,
		"Chromatic Orb":          20,
		"Orb of Chance":          20,
		"Orb of Alteration":      20,
		"Glassblower's Bauble":   20,
		"Jeweller's Orb":         20,
		"Orb of Fusing":          20,
		"Gemcutter's Prism":      20,
		"Blessed Orb":            20,
		"Orb of Annulment":       20,
		"Cartographer's Chisel":  20,
		"Orb of Augmentation":    30,
		"Orb of Scouring":        30,
		"Armourer's Scrap":       40,
		"Orb of Transmutation":   40,
		"Orb of Regret":          40,
	}
}

func (s StackSizes) Size(item string) int {
	if size, ok := s[item]; ok && size > 0 {
		return size
	}
	return 1
}

// MaxVolume сколько предметов помещается в один полный инвентарь.
func (s StackSizes) MaxVolume(item string) int {
	return s.Size(item) * inventoryCells
}
