package dto

import "time"

type CreateTenantRequest struct {
	FullName   string     `json:"full_name" binding:"required,min=1,max=100"`
	Phone      *string    `json:"phone" binding:"omitempty,vnphone"`
	Email      *string    `json:"email" binding:"omitempty,email"`
	IDCard     *string    `json:"id_card"`
	RoomID     *string    `json:"room_id" binding:"omitempty,uuid"`
	MoveInDate *time.Time `json:"move_in_date"`
	IsActive   *bool      `json:"is_active"`
}

// UpdateTenantRequest fields left out of the body keep their stored value;
// nullable fields sent as null are cleared.
type UpdateTenantRequest struct {
	FullName    *string             `json:"full_name" binding:"omitempty,min=1,max=100"`
	Phone       Optional[string]    `json:"phone" binding:"omitempty,vnphone"`
	Email       Optional[string]    `json:"email" binding:"omitempty,email"`
	IDCard      Optional[string]    `json:"id_card"`
	RoomID      Optional[string]    `json:"room_id" binding:"omitempty,uuid"`
	MoveInDate  *time.Time          `json:"move_in_date"`
	MoveOutDate Optional[time.Time] `json:"move_out_date"`
	IsActive    *bool               `json:"is_active"`
}

type ListTenantsQuery struct {
	RoomID   string `form:"room_id" json:"room_id" binding:"omitempty,uuid"`
	IsActive string `form:"is_active" json:"is_active" binding:"omitempty,oneof=true false"`
	Search   string `form:"search" json:"search"`
	Page     int    `form:"page,default=1" json:"page" binding:"min=1"`
	Limit    int    `form:"limit,default=20" json:"limit" binding:"min=1,max=100"`
}

func (q ListTenantsQuery) Paging() PageQuery {
	return PageQuery{Page: q.Page, Limit: q.Limit}
}
