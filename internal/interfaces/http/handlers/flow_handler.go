package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerrors "codemint.backend/internal/domain/errors"
	"codemint.backend/internal/interfaces/http/response"
	"codemint.backend/internal/usecases"
)

// FlowHandler handles transaction flow status endpoints
type FlowHandler struct {
	flows *usecases.FlowManager
}

// NewFlowHandler creates a new flow handler
func NewFlowHandler(flows *usecases.FlowManager) *FlowHandler {
	return &FlowHandler{flows: flows}
}

// GetFlow reports a flow's lifecycle state
// GET /api/v1/flows/:id
func (h *FlowHandler) GetFlow(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid flow ID"))
		return
	}

	flow, ok := h.flows.Get(id)
	if !ok {
		response.Error(c, domainerrors.NotFound("Flow not found"))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"flow": flowView(flow)})
}

// AbandonFlow marks a flow as walked-away-from; the work keeps running
// DELETE /api/v1/flows/:id
func (h *FlowHandler) AbandonFlow(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid flow ID"))
		return
	}

	if !h.flows.Abandon(id) {
		response.Error(c, domainerrors.NotFound("Flow not found"))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"abandoned": true})
}

// flowView is the wire shape of a flow's status.
func flowView(flow *usecases.Flow) gin.H {
	view := gin.H{
		"id":        flow.ID,
		"kind":      flow.Kind,
		"state":     flow.State(),
		"createdAt": flow.Created,
	}
	if hash := flow.TxHash(); hash != "" {
		view["txHash"] = hash
	}
	if err := flow.Err(); err != nil {
		view["error"] = err.Error()
	}
	return view
}
