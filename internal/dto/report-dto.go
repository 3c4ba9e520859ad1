package dto

// SweepSummaryDTO - итог проверки просроченных заявок.
type SweepSummaryDTO struct {
	Count            int                  `json:"count"`
	Requests         []RequestResponseDTO `json:"requests"`
	NotifierFailures []string             `json:"notifier_failures"`
}

// GenerationSummaryDTO - итог генерации плановых работ.
type GenerationSummaryDTO struct {
	Checked  int                  `json:"checked"`
	Created  int                  `json:"created"`
	Skipped  int                  `json:"skipped"`
	Failures []GenerationFailure  `json:"failures"`
	Requests []RequestResponseDTO `json:"requests"`
}

type GenerationFailure struct {
	EquipmentID   string `json:"equipment_id"`
	EquipmentName string `json:"equipment_name"`
	Error         string `json:"error"`
}
