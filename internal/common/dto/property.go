package dto

type CreatePropertyRequest struct {
	Name    string  `json:"name" binding:"required,min=1,max=255"`
	Address *string `json:"address"`
	LogoURL *string `json:"logo_url" binding:"omitempty,url"`
}

type UpdatePropertyRequest struct {
	Name    *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Address Optional[string] `json:"address"`
	LogoURL Optional[string] `json:"logo_url" binding:"omitempty,url"`
}
