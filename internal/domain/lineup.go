package domain

import "sort"

// CompositionRules define los mínimos por rol y los límites de plantilla.
type CompositionRules struct {
	MinPerRole  map[Role]int
	MaxHoldings int
	LineupSize  int
}

// DefaultCompositionRules devuelve las reglas estándar de la liga.
func DefaultCompositionRules() CompositionRules {
	return CompositionRules{
		MinPerRole: map[Role]int{
			RoleGoalkeeper: 1,
			RoleDefender:   3,
			RoleMidfielder: 2,
			RoleForward:    1,
		},
		MaxHoldings: 15,
		LineupSize:  11,
	}
}

// RoleCounts cuenta los activos por rol.
func RoleCounts(assets []Asset) map[Role]int {
	counts := make(map[Role]int, 4)
	for _, a := range assets {
		counts[a.Role]++
	}
	return counts
}

// ValidateComposition comprueba que un conjunto de holdings cumple los
// mínimos por rol y no excede el tamaño máximo de plantilla.
func ValidateComposition(assets []Asset, rules CompositionRules) bool {
	if rules.MaxHoldings > 0 && len(assets) > rules.MaxHoldings {
		return false
	}
	counts := RoleCounts(assets)
	for role, min := range rules.MinPerRole {
		if counts[role] < min {
			return false
		}
	}
	return true
}

// SelectBestLineup elige el mejor once de la plantilla por quality score.
// Selección greedy en dos pasadas: primero cubre los mínimos por rol,
// después rellena con los mejores restantes. Determinista: empates se
// resuelven por ID para que dos llamadas con el mismo input coincidan.
func SelectBestLineup(holdings []Asset, scores map[string]float64, rules CompositionRules) []Asset {
	sorted := make([]Asset, len(holdings))
	copy(sorted, holdings)
	sort.Slice(sorted, func(i, j int) bool {
		si, sj := scores[sorted[i].ID], scores[sorted[j].ID]
		if si != sj {
			return si > sj
		}
		return sorted[i].ID < sorted[j].ID
	})

	selected := make([]Asset, 0, rules.LineupSize)
	picked := make(map[string]bool, rules.LineupSize)
	counts := make(map[Role]int, 4)

	// Primera pasada: mínimos por rol con los mejores disponibles.
	for _, a := range sorted {
		if len(selected) >= rules.LineupSize {
			break
		}
		if counts[a.Role] < rules.MinPerRole[a.Role] {
			selected = append(selected, a)
			picked[a.ID] = true
			counts[a.Role]++
		}
	}

	// Segunda pasada: huecos restantes con los mejores no elegidos.
	for _, a := range sorted {
		if len(selected) >= rules.LineupSize {
			break
		}
		if !picked[a.ID] {
			selected = append(selected, a)
			picked[a.ID] = true
			counts[a.Role]++
		}
	}

	return selected
}

// LineupStrength devuelve la fuerza total de un once: puntos medios
// acumulados y suma de quality scores.
func LineupStrength(lineup []Asset, scores map[string]float64) (points, value float64) {
	for _, a := range lineup {
		points += a.AvgOutput
		value += scores[a.ID]
	}
	return points, value
}
