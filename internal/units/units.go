// Package units holds the pure unit conversions used by the cost engine.
// Every conversion that needs a configured factor fails loudly when the
// factor is missing or non-positive, so costing can never silently report
// zero because of a catalog configuration gap.
package units

import "fmt"

// KgToGrams converts kilograms to grams.
func KgToGrams(kg float64) float64 { return kg * 1000 }

// GramsToKg converts grams to kilograms.
func GramsToKg(g float64) float64 { return g / 1000 }

// PerRollToPerMeter converts a roll price to a per-meter price.
func PerRollToPerMeter(pricePerRoll, lengthMetersPerRoll float64) (float64, error) {
	if lengthMetersPerRoll <= 0 {
		return 0, fmt.Errorf("lengthMetersPerRoll requerido")
	}
	return pricePerRoll / lengthMetersPerRoll, nil
}

// PerRollToPerLabel converts a roll price to a per-label price.
func PerRollToPerLabel(pricePerRoll, labelsPerRoll float64) (float64, error) {
	if labelsPerRoll <= 0 {
		return 0, fmt.Errorf("labelsPerRoll requerido")
	}
	return pricePerRoll / labelsPerRoll, nil
}

// PaperCostPerMeterFromBasis derives the cost of one linear meter of paper
// from its basis weight (g/m²), web width (mm) and a per-kilogram price.
func PaperCostPerMeterFromBasis(pricePerKg, basisGM2, widthMM float64) (float64, error) {
	if basisGM2 <= 0 || widthMM <= 0 {
		return 0, fmt.Errorf("basis_g_m2 y width_mm requeridos")
	}
	massGPerM := basisGM2 * (widthMM / 1000) // grams per linear meter
	return GramsToKg(massGPerM) * pricePerKg, nil
}

// MetersToLabels converts linear meters to label count.
func MetersToLabels(meters, labelsPerMeter float64) (float64, error) {
	if labelsPerMeter <= 0 {
		return 0, fmt.Errorf("labelsPerMeter requerido")
	}
	return meters * labelsPerMeter, nil
}
