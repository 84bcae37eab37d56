package handler

import (
	"net/http"

	"github.com/amoylab/rentmanager/internal/apiserver/middleware"
	"github.com/amoylab/rentmanager/internal/apiserver/service"
	"github.com/amoylab/rentmanager/internal/common/dto"
	"github.com/amoylab/rentmanager/internal/common/errorx"

	"github.com/gin-gonic/gin"
)

// Handler adapts the service layer to HTTP
type Handler struct {
	svc *service.Service
	eh  *errorx.ErrorHandler
}

func New(svc *service.Service, eh *errorx.ErrorHandler) *Handler {
	return &Handler{svc: svc, eh: eh}
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}

func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.eh.HandleError(c, errorx.FromBinding(err))
		return false
	}
	return true
}

func (h *Handler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.eh.HandleError(c, errorx.FromBinding(err))
		return false
	}
	return true
}

// Properties

func (h *Handler) ListProperties(c *gin.Context) {
	props, err := h.svc.ListProperties(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.eh.HandleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"properties": props})
}

func (h *Handler) CreateProperty(c *gin.Context) {
	var req dto.CreatePropertyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.svc.CreateProperty(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		h.eh.HandleError(c, err)
		return
	}
	respond(c, http.StatusCreated, p)
}

func (h *Handler) GetProperty(c *gin.Context) {
	p, err := h.svc.GetProperty(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.eh.HandleError(c, err)
		return
	}
	respond(c, http.StatusOK, p)
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	var req dto.UpdatePropertyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.svc.UpdateProperty(c.Request.Context(), middleware.UserID(c), c.Param("id"), &req)
	if err != nil {
		h.eh.HandleError(c, err)
		return
	}
	respond(c, http.StatusOK, p)
}

// Rooms

func (h *Handler) ListRooms(c *gin.Context) {
	var q dto.ListRoomsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	rooms, page, err := h.svc.ListRooms(c.Request.Context(), middleware.UserID(c), &q)
	if err != nil {
		h.eh.HandleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"rooms": rooms, "pagination": page})
}

func (h *Handler) CreateRoom(c *gin.Context) {
	var req dto.CreateRoomRequest
	if !h.bindJSON(c, &req) {
		return
	}
	r, err := h.svc.CreateRoom(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		h.eh.HandleError(c, err)
		return
	}
	respond(c, http.StatusCreated, r)
}

func (h *Handler) GetRoom(c *gin.Context) {
	r, err := h.svc.GetRoom(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.eh.HandleError(c, err)
		return
	}
	respond(c, http.StatusOK, r)
}

func (h *Handler) UpdateRoom(c *gin.Context) {
	var req dto.UpdateRoomRequest
	if !h.bindJSON(c, &req) {
		return
	}
	r, err := h.svc.UpdateRoom(c.Request.Context(), middleware.UserID(c), c.Param("id"), &req)
	if err != nil {
		h.eh.HandleError(c, err)
		return
	}
	respond(c, http.StatusOK, r)
}

func (h *Handler) DeleteRoom(c *gin.Context) {
	if err := h.svc.DeleteRoom(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		h.eh.HandleError(c, err)
		return
	}
	respond(c, http.StatusOK, dto.DeletedResponse{Deleted: true})
}

// Tenants

func (h *Handler) ListTenants(c *gin.Context) {
	var q dto.ListTenantsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	tenants, page, err := h.svc.ListTenants(c.Request.Context(), middleware.UserID(c), &q)
	if err != nil {
		h.eh.HandleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"tenants": tenants, "pagination": page})
}

func (h *Handler) CreateTenant(c *gin.Context) {
	var req dto.CreateTenantRequest
	if !h.bindJSON(c, &req) {
		return
	}
	t, err := h.svc.CreateTenant(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		h.eh.HandleError(c, err)
		return
	}
	respond(c, http.StatusCreated, t)
}

func (h *Handler) GetTenant(c *gin.Context) {
	t, err := h.svc.GetTenant(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.eh.HandleError(c, err)
		return
	}
	respond(c, http.StatusOK, t)
}

func (h *Handler) UpdateTenant(c *gin.Context) {
	var req dto.UpdateTenantRequest
	if !h.bindJSON(c, &req) {
		return
	}
	t, err := h.svc.UpdateTenant(c.Request.Context(), middleware.UserID(c), c.Param("id"), &req)
	if err != nil {
		h.eh.HandleError(c, err)
		return
	}
	respond(c, http.StatusOK, t)
}

func (h *Handler) DeleteTenant(c *gin.Context) {
	if err := h.svc.DeleteTenant(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		h.eh.HandleError(c, err)
		return
	}
	respond(c, http.StatusOK, dto.DeletedResponse{Deleted: true})
}

// Dashboard

func (h *Handler) DashboardStats(c *gin.Context) {
	st, err := h.svc.DashboardStats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.eh.HandleError(c, err)
		return
	}
	respond(c, http.StatusOK, st)
}
