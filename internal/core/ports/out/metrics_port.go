package out

import "time"

type PipelineStage string

const (
	PipelineStageRoomLists    PipelineStage = "room_lists"
	PipelineStageRooms        PipelineStage = "rooms"
	PipelineStageAppointments PipelineStage = "appointments"
)

type MetricsPort interface {
	ObserveStage(stage PipelineStage, duration time.Duration)
	IncBranchFailure(stage PipelineStage)
	IncPipelineRun(result string)
}
