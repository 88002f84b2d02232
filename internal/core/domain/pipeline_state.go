package domain

type PipelineState string

const (
	PipelineStateIdle                PipelineState = "idle"
	PipelineStateListingRoomLists    PipelineState = "listing_room_lists"
	PipelineStateExpandingRooms      PipelineState = "expanding_rooms"
	PipelineStateFillingAppointments PipelineState = "filling_appointments"
	PipelineStateDone                PipelineState = "done"
	PipelineStateFailed              PipelineState = "failed"
)
