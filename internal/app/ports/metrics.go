package ports

import "wildcore/internal/domain/behavior"

type StepMetrics interface {
	RecordMode(mode behavior.UpdateMode)
	RecordHandleFault(handleID string)
	RecordValidationReject(handleID string)
	RecordRefresh()
}
