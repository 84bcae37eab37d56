package dto

// PageQuery is the validated page window of a listing request
type PageQuery struct {
	Page  int
	Limit int
}

// Offset is the number of rows skipped for the requested page
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(q PageQuery, total int64) Pagination {
	pages := 0
	if q.Limit > 0 {
		pages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}
	return Pagination{
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: pages,
	}
}

type DeletedResponse struct {
	Deleted bool `json:"deleted"`
}

type DashboardStats struct {
	TotalProperties int64 `json:"total_properties"`
	TotalRooms      int64 `json:"total_rooms"`
	OccupiedRooms   int64 `json:"occupied_rooms"`
	VacantRooms     int64 `json:"vacant_rooms"`
	ActiveTenants   int64 `json:"active_tenants"`
}
