package dto

const (
	RoomStatusVacant   = "vacant"
	RoomStatusOccupied = "occupied"
)

type CreateRoomRequest struct {
	PropertyID string   `json:"property_id" binding:"required,uuid"`
	Name       string   `json:"name" binding:"required,min=1,max=100"`
	Floor      *int     `json:"floor" binding:"omitempty,min=1"`
	Area       *float64 `json:"area" binding:"omitempty,gt=0"`
	BaseRent   float64  `json:"base_rent" binding:"required,gt=0"`
	Status     string   `json:"status" binding:"omitempty,oneof=vacant occupied"`
}

type UpdateRoomRequest struct {
	Name     *string           `json:"name" binding:"omitempty,min=1,max=100"`
	Floor    *int              `json:"floor" binding:"omitempty,min=1"`
	Area     Optional[float64] `json:"area" binding:"omitempty,gt=0"`
	BaseRent *float64          `json:"base_rent" binding:"omitempty,gt=0"`
	Status   *string           `json:"status" binding:"omitempty,oneof=vacant occupied"`
}

type ListRoomsQuery struct {
	PropertyID string `form:"property_id" json:"property_id" binding:"omitempty,uuid"`
	Status     string `form:"status" json:"status" binding:"omitempty,oneof=vacant occupied"`
	Search     string `form:"search" json:"search"`
	Page       int    `form:"page,default=1" json:"page" binding:"min=1"`
	Limit      int    `form:"limit,default=20" json:"limit" binding:"min=1,max=100"`
}

func (q ListRoomsQuery) Paging() PageQuery {
	return PageQuery{Page: q.Page, Limit: q.Limit}
}
