package cnst

// Tracer names
const (
	TraceService   = "rentmanager/service"
	TraceOccupancy = "rentmanager/occupancy"
)

// Span names
const (
	SpanTenantCreate   = "tenant.create"
	SpanTenantUpdate   = "tenant.update"
	SpanTenantDelete   = "tenant.delete"
	SpanRoomDelete     = "room.delete"
	SpanReconcileSweep = "reconcile.sweep"
)

// Attribute keys
const (
	AttrCallerID = "caller.id"
	AttrTenantID = "tenant.id"
	AttrRoomID   = "room.id"
	AttrSteps    = "occupancy.steps"
)
